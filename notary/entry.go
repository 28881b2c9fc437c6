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
	"time"

	"code.vegaprotocol.io/obavs/audit"
	"code.vegaprotocol.io/obavs/types"
	"code.vegaprotocol.io/obavs/types/num"

	"github.com/ethereum/go-ethereum/common"
)

// Status is the outcome of a registered signature.
type Status string

const (
	StatusRecorded              Status = "recorded"
	StatusDuplicate             Status = "duplicate"
	StatusFinalized             Status = "finalized"
	StatusRecordedAfterFinalize Status = "recorded-after-finalize"
)

// Receipt is returned to the operator for every accepted signature. The
// aggregate of a finalized task is submitted after the receipt is sent.
type Receipt struct {
	Status Status `json:"status"`
}

type vote struct {
	digest   common.Hash
	proposal *types.SignedTaskResponse
}

// tally is the weight gathered by a single digest.
type tally struct {
	weight    *num.Uint
	proposals []*types.SignedTaskResponse
}

// entry is the ledger of a single task, from the first proposal until it
// is retired or evicted.
type entry struct {
	mu sync.Mutex

	quorum    *TaskQuorum
	createdAt time.Time
	votes     map[types.OperatorID]vote
	tallies   map[common.Hash]*tally

	finalized  bool
	submitting bool
	submitted  bool
	evicted    bool
	digest     common.Hash
	aggregate  *types.AggregateResponse
}

func newEntry(q *TaskQuorum, now time.Time) *entry {
	return &entry{
		quorum:    q,
		createdAt: now,
		votes:     map[types.OperatorID]vote{},
		tallies:   map[common.Hash]*tally{},
	}
}

// finalizeJob is what is needed to build the aggregate once the entry
// lock is released.
type finalizeJob struct {
	digest    common.Hash
	proposals []*types.SignedTaskResponse
}

type recordResult struct {
	status Status
	fault  audit.Kind
	job    *finalizeJob
}

// record must be called with the entry lock held. The proposal signature
// has already been verified.
func (e *entry) record(sp *types.SignedTaskResponse, digest common.Hash) (recordResult, error) {
	if prev, ok := e.votes[sp.OperatorID]; ok {
		if prev.digest == digest {
			return recordResult{status: StatusDuplicate}, nil
		}
		return recordResult{fault: audit.KindConflict}, types.ErrConflictingProposal
	}

	e.votes[sp.OperatorID] = vote{digest: digest, proposal: sp}
	if e.finalized {
		return recordResult{status: StatusRecordedAfterFinalize, fault: audit.KindLateProposal}, nil
	}

	res := recordResult{status: StatusRecorded}
	t, ok := e.tallies[digest]
	if !ok {
		if len(e.tallies) > 0 {
			res.fault = audit.KindDivergence
		}
		t = &tally{weight: num.Zero()}
		e.tallies[digest] = t
	}
	t.weight.Add(t.weight, num.NewUint(e.quorum.Weight(sp.OperatorID)))
	t.proposals = append(t.proposals, sp)

	if e.quorum.Reached(t.weight) {
		e.finalized = true
		e.submitting = true
		e.digest = digest
		res.status = StatusFinalized
		res.job = &finalizeJob{
			digest:    digest,
			proposals: append([]*types.SignedTaskResponse{}, t.proposals...),
		}
	}
	return res, nil
}
