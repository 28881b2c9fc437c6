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

	"code.vegaprotocol.io/obavs/types"
	"code.vegaprotocol.io/obavs/types/num"
)

// Weigher gives the voting weight of an operator.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/weigher_mock.go -package mocks code.vegaprotocol.io/obavs/notary Weigher
type Weigher interface {
	Weight(types.OperatorID) uint64
}

// CountWeigher gives every operator a weight of one.
type CountWeigher struct{}

func (CountWeigher) Weight(types.OperatorID) uint64 { return 1 }

// StakeWeigher weights operators by their stake, unknown operators have
// no weight.
type StakeWeigher struct {
	mu     sync.RWMutex
	stakes map[types.OperatorID]uint64
}

func NewStakeWeigher() *StakeWeigher {
	return &StakeWeigher{
		stakes: map[types.OperatorID]uint64{},
	}
}

func (s *StakeWeigher) SetStake(id types.OperatorID, stake uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stakes[id] = stake
}

func (s *StakeWeigher) Weight(id types.OperatorID) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stakes[id]
}

// TaskQuorum holds the quorum parameters of a task, the weights are
// taken once when the task is started.
type TaskQuorum struct {
	Index     uint32
	Threshold uint8
	Operators []types.OperatorID
	weights   map[types.OperatorID]uint64
	total     *num.Uint
}

func newTaskQuorum(task types.Task, w Weigher) *TaskQuorum {
	q := &TaskQuorum{
		Index:     task.Index,
		Threshold: task.QuorumThresholdPercentage,
		Operators: append([]types.OperatorID{}, task.Operators...),
		weights:   make(map[types.OperatorID]uint64, len(task.Operators)),
		total:     num.Zero(),
	}
	for _, op := range q.Operators {
		weight := w.Weight(op)
		q.weights[op] = weight
		q.total.Add(q.total, num.NewUint(weight))
	}
	return q
}

func (q *TaskQuorum) IsEligible(id types.OperatorID) bool {
	_, ok := q.weights[id]
	return ok
}

func (q *TaskQuorum) Weight(id types.OperatorID) uint64 {
	return q.weights[id]
}

func (q *TaskQuorum) TotalWeight() *num.Uint {
	return q.total.Clone()
}

// Reached reports whether weight, as a whole percentage of the total
// rounded half up, meets the threshold: 200*w >= (2*t-1)*total. A 100%
// threshold needs the whole weight.
func (q *TaskQuorum) Reached(weight *num.Uint) bool {
	if q.total.IsZero() {
		return false
	}
	if q.Threshold >= 100 {
		return weight.GTE(q.total)
	}
	lhs := num.Zero().Mul(weight, num.NewUint(200))
	rhs := num.Zero().Mul(q.total, num.NewUint(2*uint64(q.Threshold)-1))
	return lhs.GTE(rhs)
}
