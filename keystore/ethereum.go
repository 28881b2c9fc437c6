// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package keystore

import (
	"context"
	"crypto/ecdsa"

	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/types"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// ImportEthereumKey stores the ethereum transaction key under name.
func (s *Store) ImportEthereumKey(name string, key *ecdsa.PrivateKey) error {
	return s.put(ethereumPrefix, name, crypto.FromECDSA(key))
}

// GenerateEthereumKey creates a new secp256k1 key and stores it under name.
func (s *Store) GenerateEthereumKey(name string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := s.ImportEthereumKey(name, key); err != nil {
		return nil, err
	}
	return key, nil
}

// GetEthereumKey loads the ethereum key stored under name.
func (s *Store) GetEthereumKey(ctx context.Context, name string) (*ecdsa.PrivateKey, error) {
	buf, err := s.get(ctx, ethereumPrefix, name)
	if err != nil {
		return nil, err
	}
	key, err := crypto.ToECDSA(buf)
	if err != nil {
		s.log.Error("unable to decode ethereum key", logging.String("key-name", name), logging.Error(err))
		return nil, errors.Wrap(types.ErrKeyUnavailable, err.Error())
	}
	return key, nil
}

// GetEthereumKeyPair loads the key configured as EthereumKeyName.
func (s *Store) GetEthereumKeyPair(ctx context.Context) (*ecdsa.PrivateKey, error) {
	return s.GetEthereumKey(ctx, s.getConfig().EthereumKeyName)
}
