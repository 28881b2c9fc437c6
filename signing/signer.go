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

package signing

import (
	"context"
	"sync"

	"code.vegaprotocol.io/obavs/crypto/bls"
	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/types"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// KeyProvider gives access to the operator BLS key.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/key_provider_mock.go -package mocks code.vegaprotocol.io/obavs/signing KeyProvider
type KeyProvider interface {
	GetKeyPair(ctx context.Context) (*bls.KeyPair, error)
}

// OperatorIDFromPubKey returns keccak256(x || y) where x and y are the big
// endian minimal encodings of the G1 public key coordinates.
func OperatorIDFromPubKey(pk *bls.G1Point) types.OperatorID {
	x, y := pk.Coordinates()
	var id types.OperatorID
	copy(id[:], crypto.Keccak256(x.Bytes(), y.Bytes()))
	return id
}

// Signer signs task responses on behalf of an operator.
type Signer struct {
	log  *logging.Logger
	kp   *bls.KeyPair
	opID types.OperatorID

	mu  sync.RWMutex
	cfg Config
}

func New(log *logging.Logger, cfg Config, kp *bls.KeyPair) *Signer {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())
	s := &Signer{
		log:  log,
		cfg:  cfg,
		kp:   kp,
		opID: OperatorIDFromPubKey(kp.PubKeyG1),
	}
	log.Info("signer ready", logging.OperatorID(s.opID))
	return s
}

// NewFromProvider loads the key pair from the provider. Any failure is
// reported as ErrKeyUnavailable, the caller should abstain for the round.
func NewFromProvider(ctx context.Context, log *logging.Logger, cfg Config, kp KeyProvider) (*Signer, error) {
	pair, err := kp.GetKeyPair(ctx)
	if err != nil {
		if errors.Is(err, types.ErrKeyUnavailable) {
			return nil, err
		}
		return nil, errors.Wrap(types.ErrKeyUnavailable, err.Error())
	}
	if pair == nil {
		return nil, types.ErrKeyUnavailable
	}
	return New(log, cfg, pair), nil
}

// ReloadConf updates the internal configuration.
func (s *Signer) ReloadConf(cfg Config) {
	s.log.Info("reloading configuration")
	if s.log.GetLevel() != cfg.Level.Get() {
		s.log.Info("updating log level",
			logging.String("old", s.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		s.log.SetLevel(cfg.Level.Get())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

func (s *Signer) OperatorID() types.OperatorID {
	return s.opID
}

func (s *Signer) PubKeyG1() *bls.G1Point {
	return s.kp.PubKeyG1
}

func (s *Signer) PubKeyG2() *bls.G2Point {
	return s.kp.PubKeyG2
}

// SignTaskResponse signs the digest of the canonical encoding of tr.
func (s *Signer) SignTaskResponse(tr types.TaskResponse) (*types.SignedTaskResponse, error) {
	digest, err := tr.Digest()
	if err != nil {
		return nil, errors.Wrap(err, "could not encode task response")
	}

	s.mu.RLock()
	selfVerify := s.cfg.SelfVerify
	s.mu.RUnlock()

	sig := s.kp.SignMessage(digest)
	if selfVerify {
		ok, err := sig.Verify(s.kp.PubKeyG2, digest)
		if err != nil || !ok {
			s.log.Error("produced signature does not verify",
				logging.TaskIndex(tr.ReferenceTaskIndex),
				logging.Error(err),
			)
			return nil, errors.Wrap(types.ErrKeyUnavailable, "key pair is inconsistent")
		}
	}

	if s.log.GetLevel() == logging.DebugLevel {
		s.log.Debug("task response signed",
			logging.TaskIndex(tr.ReferenceTaskIndex),
			logging.Hex("digest", digest[:]),
		)
	}

	return &types.SignedTaskResponse{
		TaskResponse: tr,
		Signature:    sig.Bytes(),
		OperatorID:   s.opID,
	}, nil
}
