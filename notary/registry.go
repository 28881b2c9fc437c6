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

package notary

import (
	"sync"

	"code.vegaprotocol.io/obavs/crypto/bls"
	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/signing"
	"code.vegaprotocol.io/obavs/types"

	"github.com/pkg/errors"
)

var ErrInconsistentKeys = errors.New("g1 and g2 public keys do not match")

// Registry is the static set of operators known to the aggregator.
type Registry struct {
	log *logging.Logger

	mu    sync.RWMutex
	keys  map[types.OperatorID]*bls.G2Point
	order []types.OperatorID
}

// NewRegistry loads the configured operators.
func NewRegistry(log *logging.Logger, operators []OperatorKey) (*Registry, error) {
	r := &Registry{
		log:  log.Named("registry"),
		keys: map[types.OperatorID]*bls.G2Point{},
	}
	for i, op := range operators {
		g1, g2 := &bls.G1Point{}, &bls.G2Point{}
		if err := g1.UnmarshalText([]byte(op.PubKeyG1)); err != nil {
			return nil, errors.Wrapf(err, "invalid g1 public key for operator %d", i)
		}
		if err := g2.UnmarshalText([]byte(op.PubKeyG2)); err != nil {
			return nil, errors.Wrapf(err, "invalid g2 public key for operator %d", i)
		}
		if _, err := r.Add(g1, g2); err != nil {
			return nil, errors.Wrapf(err, "operator %d", i)
		}
	}
	return r, nil
}

// Add registers an operator and returns its identity.
func (r *Registry) Add(pk1 *bls.G1Point, pk2 *bls.G2Point) (types.OperatorID, error) {
	ok, err := bls.CheckKeyConsistency(pk1, pk2)
	if err != nil {
		return types.OperatorID{}, err
	}
	if !ok {
		return types.OperatorID{}, ErrInconsistentKeys
	}

	id := signing.OperatorIDFromPubKey(pk1)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.keys[id]; !ok {
		r.order = append(r.order, id)
	}
	r.keys[id] = pk2.Clone()
	r.log.Info("operator registered", logging.OperatorID(id))
	return id, nil
}

// GetOperator returns the G2 public key of the operator.
func (r *Registry) GetOperator(id types.OperatorID) (*bls.G2Point, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pk, ok := r.keys[id]
	return pk, ok
}

// Operators returns the identities in registration order.
func (r *Registry) Operators() []types.OperatorID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]types.OperatorID{}, r.order...)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
