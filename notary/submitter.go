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
	"context"
	"time"

	"code.vegaprotocol.io/obavs/crypto/bls"
	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/metrics"
	"code.vegaprotocol.io/obavs/types"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// Sink receives the certified responses.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/sink_mock.go -package mocks code.vegaprotocol.io/obavs/notary Sink
type Sink interface {
	RespondToTask(ctx context.Context, resp *types.AggregateResponse) error
}

// OperatorKeys gives access to the G2 public keys of the operators.
type OperatorKeys interface {
	GetOperator(id types.OperatorID) (*bls.G2Point, bool)
}

// Submitter builds the aggregate of a finalized task and hands it to the
// sink.
type Submitter struct {
	log     *logging.Logger
	keys    OperatorKeys
	sink    Sink
	timeout time.Duration

	// indices an aggregate was built for
	built *lru.Cache[uint32, struct{}]
}

func NewSubmitter(log *logging.Logger, cfg Config, keys OperatorKeys, sink Sink) (*Submitter, error) {
	built, err := lru.New[uint32, struct{}](cfg.RetiredCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "could not create the built tasks cache")
	}
	return &Submitter{
		log:     log.Named("submitter"),
		keys:    keys,
		sink:    sink,
		timeout: cfg.SubmitTimeout.Get(),
		built:   built,
	}, nil
}

// Submit aggregates the proposals that reached quorum over digest and
// delivers the result. The aggregate is returned whenever it could be
// built, even if the delivery failed.
func (s *Submitter) Submit(
	ctx context.Context,
	q *TaskQuorum,
	digest common.Hash,
	proposals []*types.SignedTaskResponse,
) (*types.AggregateResponse, error) {
	if ok, _ := s.built.ContainsOrAdd(q.Index, struct{}{}); ok {
		s.log.Panic("aggregate already built for task", logging.TaskIndex(q.Index))
	}

	agg, err := s.build(q, digest, proposals)
	if err != nil {
		s.log.Error("could not build aggregate",
			logging.TaskIndex(q.Index),
			logging.Error(err),
		)
		return nil, err
	}
	return agg, s.deliver(ctx, agg)
}

// Resubmit hands an aggregate built earlier to the sink again.
func (s *Submitter) Resubmit(ctx context.Context, agg *types.AggregateResponse) error {
	s.log.Info("resubmitting aggregate", logging.TaskIndex(agg.TaskIndex))
	return s.deliver(ctx, agg)
}

func (s *Submitter) build(
	q *TaskQuorum,
	digest common.Hash,
	proposals []*types.SignedTaskResponse,
) (*types.AggregateResponse, error) {
	defer metrics.NewTimeCounter("aggregate").StepTimeObserve()

	sigs := make([]*bls.Signature, 0, len(proposals))
	pks := make([]*bls.G2Point, 0, len(proposals))
	signed := make(map[types.OperatorID]struct{}, len(proposals))
	for _, p := range proposals {
		sig, err := bls.SignatureFromBytes(p.Signature)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid signature from %s", p.OperatorID)
		}
		pk, ok := s.keys.GetOperator(p.OperatorID)
		if !ok {
			return nil, errors.Wrapf(types.ErrUnknownOperator, "%s", p.OperatorID)
		}
		sigs = append(sigs, sig)
		pks = append(pks, pk)
		signed[p.OperatorID] = struct{}{}
	}

	aggSig, err := bls.AggregateSignatures(sigs)
	if err != nil {
		return nil, err
	}
	aggPk := bls.AggregatePubKeys(pks)
	ok, err := aggSig.Verify(aggPk, digest)
	if err != nil {
		return nil, errors.Wrap(err, "could not verify aggregate signature")
	}
	if !ok {
		return nil, errors.Wrap(types.ErrInvalidSignature, "aggregate signature does not verify")
	}

	resp := &types.AggregateResponse{
		TaskIndex:          q.Index,
		Response:           proposals[0].TaskResponse,
		Digest:             digest,
		AggregateSignature: aggSig.G1Point,
		AggregatePubKeyG2:  aggPk,
		Signers:            make([]types.OperatorID, 0, len(signed)),
		NonSigners:         []types.OperatorID{},
		SignersBitmap:      make([]byte, (len(q.Operators)+7)/8),
	}
	for i, op := range q.Operators {
		if _, ok := signed[op]; ok {
			resp.SignersBitmap[i/8] |= 1 << (uint(i) % 8)
			resp.Signers = append(resp.Signers, op)
		} else {
			resp.NonSigners = append(resp.NonSigners, op)
		}
	}
	return resp, nil
}

func (s *Submitter) deliver(ctx context.Context, agg *types.AggregateResponse) error {
	defer metrics.NewTimeCounter("submit").StepTimeObserve()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.sink.RespondToTask(ctx, agg); err != nil {
		metrics.SubmissionCounterInc("failed")
		s.log.Error("could not submit aggregate",
			logging.TaskIndex(agg.TaskIndex),
			logging.Error(err),
		)
		return errors.Wrap(types.ErrSubmissionFailure, err.Error())
	}

	metrics.SubmissionCounterInc("ok")
	s.log.Info("aggregate submitted",
		logging.TaskIndex(agg.TaskIndex),
		logging.Int("signers", len(agg.Signers)),
		logging.Int("non-signers", len(agg.NonSigners)),
	)
	return nil
}
