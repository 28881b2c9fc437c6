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

package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
)

var ErrChainIDMismatch = errors.New("ethereum chain id does not match")

// Backend is everything needed from an ethereum node.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// Dial connects to the node at rawURL. When expectedChainID is not 0 the
// chain id reported by the node must match it.
func Dial(ctx context.Context, rawURL string, expectedChainID uint64) (*ethclient.Client, *big.Int, error) {
	client, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not instantiate ethereum client")
	}
	chid, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, nil, errors.Wrap(err, "could not read ethereum chain id")
	}
	if expectedChainID != 0 && chid.Uint64() != expectedChainID {
		client.Close()
		return nil, nil, errors.Wrapf(ErrChainIDMismatch, "expected %d got %s", expectedChainID, chid)
	}
	return client, chid, nil
}
