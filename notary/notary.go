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

// Package notary collects the signed task responses of the operators and
// certifies the first response reaching quorum for every task.
package notary

import (
	"context"
	"sync"
	"time"

	"code.vegaprotocol.io/obavs/audit"
	"code.vegaprotocol.io/obavs/crypto/bls"
	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/metrics"
	"code.vegaprotocol.io/obavs/types"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// Archive keeps the audit trail of the notary.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/archive_mock.go -package mocks code.vegaprotocol.io/obavs/notary Archive
type Archive interface {
	Archive(ctx context.Context, r audit.Record) error
}

// Notary aggregates the signatures of the operators for every task.
// Entries are locked individually, the arena lock only guards the maps.
type Notary struct {
	log       *logging.Logger
	cfg       Config
	keys      OperatorKeys
	weigher   Weigher
	archive   Archive
	submitter *Submitter

	mu      sync.RWMutex
	quorums map[uint32]*TaskQuorum
	started map[uint32]time.Time
	entries map[uint32]*entry
	// ledgers of the tasks which are done, kept for late proposals
	retired *lru.Cache[uint32, *entry]

	// submissions in flight
	inflight sync.WaitGroup
}

func New(
	log *logging.Logger,
	cfg Config,
	keys OperatorKeys,
	weigher Weigher,
	sink Sink,
	archive Archive,
) (*Notary, error) {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	retired, err := lru.New[uint32, *entry](cfg.RetiredCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "could not create the retired tasks cache")
	}
	submitter, err := NewSubmitter(log, cfg, keys, sink)
	if err != nil {
		return nil, err
	}
	if weigher == nil {
		weigher = CountWeigher{}
	}

	return &Notary{
		log:       log,
		cfg:       cfg,
		keys:      keys,
		weigher:   weigher,
		archive:   archive,
		submitter: submitter,
		quorums:   map[uint32]*TaskQuorum{},
		started:   map[uint32]time.Time{},
		entries:   map[uint32]*entry{},
		retired:   retired,
	}, nil
}

// ReloadConf updates the internal configuration.
func (n *Notary) ReloadConf(cfg Config) {
	n.log.Info("reloading configuration")
	if n.log.GetLevel() != cfg.Level.Get() {
		n.log.Info("updating log level",
			logging.String("old", n.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		n.log.SetLevel(cfg.Level.Get())
	}

	n.mu.Lock()
	n.cfg.RetentionWindow = cfg.RetentionWindow
	n.cfg.JanitorInterval = cfg.JanitorInterval
	n.mu.Unlock()
}

// OnNewTask makes the notary usable as a task handler.
func (n *Notary) OnNewTask(ctx context.Context, task types.Task) error {
	return n.StartTask(ctx, task)
}

// StartTask registers the quorum parameters of a task. Starting a task
// which is already known is safe: a task waiting for signatures is left
// untouched, a task which finalized without being delivered is delivered
// again and a retired task is ignored.
func (n *Notary) StartTask(ctx context.Context, task types.Task) error {
	if err := task.Validate(); err != nil {
		return errors.Wrapf(err, "invalid task %d", task.Index)
	}

	n.mu.Lock()
	if _, ok := n.retired.Peek(task.Index); ok {
		n.mu.Unlock()
		n.log.Debug("task already retired", logging.TaskIndex(task.Index))
		return nil
	}
	if _, ok := n.quorums[task.Index]; ok {
		e := n.entries[task.Index]
		n.mu.Unlock()
		if e != nil {
			n.resubmit(ctx, e)
		}
		return nil
	}

	q := newTaskQuorum(task, n.weigher)
	if q.total.IsZero() {
		n.mu.Unlock()
		return errors.Errorf("eligible operators of task %d have no weight", task.Index)
	}
	n.quorums[task.Index] = q
	n.started[task.Index] = time.Now()
	n.mu.Unlock()

	metrics.PendingTasksAdd(1)
	n.log.Info("task started",
		logging.TaskIndex(task.Index),
		logging.Uint8("threshold", task.QuorumThresholdPercentage),
		logging.Int("operators", len(task.Operators)),
	)
	return nil
}

// RegisterSignature records a signed response. The call which makes a
// digest reach quorum starts the submission of the aggregate in the
// background and returns without waiting for the chain.
func (n *Notary) RegisterSignature(ctx context.Context, sp types.SignedTaskResponse) (Receipt, error) {
	idx := sp.TaskResponse.ReferenceTaskIndex

	q, retired := n.lookup(idx)
	if q == nil {
		return n.reject("unknown-task", errors.Wrapf(types.ErrUnknownTask, "task %d", idx))
	}
	if !q.IsEligible(sp.OperatorID) {
		return n.reject("unknown-operator",
			errors.Wrapf(types.ErrUnknownOperator, "operator %s is not eligible for task %d", sp.OperatorID, idx))
	}
	pk, ok := n.keys.GetOperator(sp.OperatorID)
	if !ok {
		return n.reject("unknown-operator",
			errors.Wrapf(types.ErrUnknownOperator, "no public key for operator %s", sp.OperatorID))
	}
	digest, err := verify(sp, pk)
	if err != nil {
		return n.reject("invalid-signature", err)
	}

	e := retired
	if e == nil {
		e = n.entryFor(idx, q)
	}
	if e == nil {
		if _, e = n.lookup(idx); e == nil {
			return n.reject("unknown-task", errors.Wrapf(types.ErrUnknownTask, "task %d expired", idx))
		}
	}

	e.mu.Lock()
	// finalized ledgers keep their bookkeeping after eviction
	if e.evicted && !e.finalized {
		e.mu.Unlock()
		return n.reject("unknown-task", errors.Wrapf(types.ErrUnknownTask, "task %d expired", idx))
	}
	res, err := e.record(&sp, digest)
	e.mu.Unlock()

	if err != nil {
		metrics.FaultCounterInc(string(res.fault))
		n.log.Warn("conflicting proposal",
			logging.TaskIndex(idx),
			logging.OperatorID(sp.OperatorID),
			logging.Hex("digest", digest[:]),
		)
		n.record(ctx, audit.Record{
			Kind:      audit.KindConflict,
			TaskIndex: idx,
			Operator:  &sp.OperatorID,
			Proposal:  &sp,
			Reason:    err.Error(),
		})
		return n.reject("conflict", errors.Wrapf(err, "operator %s", sp.OperatorID))
	}

	switch res.fault {
	case audit.KindDivergence:
		metrics.FaultCounterInc(string(res.fault))
		n.log.Warn("divergent proposal",
			logging.TaskIndex(idx),
			logging.OperatorID(sp.OperatorID),
			logging.Hex("digest", digest[:]),
		)
		n.record(ctx, audit.Record{
			Kind:      audit.KindDivergence,
			TaskIndex: idx,
			Operator:  &sp.OperatorID,
			Proposal:  &sp,
		})
	case audit.KindLateProposal:
		n.record(ctx, audit.Record{
			Kind:      audit.KindLateProposal,
			TaskIndex: idx,
			Operator:  &sp.OperatorID,
			Proposal:  &sp,
		})
	}

	metrics.ProposalCounterInc(string(res.status))
	if res.job != nil {
		n.log.Info("quorum reached",
			logging.TaskIndex(idx),
			logging.Hex("digest", res.job.digest[:]),
			logging.Int("signers", len(res.job.proposals)),
		)
		metrics.QuorumLatencyObserve(time.Since(e.createdAt))
		n.submit(context.WithoutCancel(ctx), e, res.job)
	}
	return Receipt{Status: res.status}, nil
}

func (n *Notary) submit(ctx context.Context, e *entry, job *finalizeJob) {
	n.inflight.Add(1)
	go func() {
		defer n.inflight.Done()
		agg, err := n.submitter.Submit(ctx, e.quorum, job.digest, job.proposals)
		n.complete(ctx, e, agg, err)
	}()
}

// Wait blocks until the submissions in flight are done. No signature
// must be registered and no task started while waiting.
func (n *Notary) Wait() {
	n.inflight.Wait()
}

func verify(sp types.SignedTaskResponse, pk *bls.G2Point) (common.Hash, error) {
	digest, err := sp.TaskResponse.Digest()
	if err != nil {
		return digest, errors.Wrapf(types.ErrInvalidSignature, "could not encode response: %v", err)
	}
	sig, err := bls.SignatureFromBytes(sp.Signature)
	if err != nil {
		return digest, errors.Wrapf(types.ErrInvalidSignature, "malformed signature: %v", err)
	}
	ok, err := sig.Verify(pk, digest)
	if err != nil || !ok {
		return digest, errors.Wrapf(types.ErrInvalidSignature, "signature of operator %s does not verify", sp.OperatorID)
	}
	return digest, nil
}

func (n *Notary) reject(label string, err error) (Receipt, error) {
	metrics.ProposalCounterInc(label)
	n.log.Debug("signature rejected", logging.String("reason", label), logging.Error(err))
	return Receipt{}, err
}

// lookup returns the quorum of the task, and its ledger if the task is
// retired.
func (n *Notary) lookup(idx uint32) (*TaskQuorum, *entry) {
	n.mu.RLock()
	q, ok := n.quorums[idx]
	n.mu.RUnlock()
	if ok {
		return q, nil
	}
	if e, ok := n.retired.Get(idx); ok {
		return e.quorum, e
	}
	return nil, nil
}

// entryFor returns the entry of the task, creating it on the first
// proposal. nil is returned if the task went away in the meantime.
func (n *Notary) entryFor(idx uint32, q *TaskQuorum) *entry {
	n.mu.RLock()
	e, ok := n.entries[idx]
	n.mu.RUnlock()
	if ok {
		return e
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if e, ok := n.entries[idx]; ok {
		return e
	}
	if _, ok := n.quorums[idx]; !ok {
		return nil
	}
	e = newEntry(q, n.started[idx])
	n.entries[idx] = e
	return e
}

func (n *Notary) resubmit(ctx context.Context, e *entry) {
	e.mu.Lock()
	if !e.finalized || e.submitting || e.submitted || e.evicted || e.aggregate == nil {
		e.mu.Unlock()
		return
	}
	e.submitting = true
	agg := e.aggregate
	e.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	n.inflight.Add(1)
	go func() {
		defer n.inflight.Done()
		err := n.submitter.Resubmit(ctx, agg)
		n.complete(ctx, e, agg, err)
	}()
}

// complete records the outcome of a submission, a delivered task is
// retired.
func (n *Notary) complete(ctx context.Context, e *entry, agg *types.AggregateResponse, err error) {
	idx := e.quorum.Index

	e.mu.Lock()
	e.submitting = false
	if agg != nil {
		e.aggregate = agg
	}
	e.submitted = err == nil
	e.mu.Unlock()

	if err != nil {
		n.record(ctx, audit.Record{
			Kind:      audit.KindSubmissionFailure,
			TaskIndex: idx,
			Aggregate: agg,
			Reason:    err.Error(),
		})
		return
	}

	n.retire(idx, e)
	n.record(ctx, audit.Record{
		Kind:      audit.KindAggregate,
		TaskIndex: idx,
		Aggregate: agg,
	})
}

func (n *Notary) retire(idx uint32, e *entry) {
	e.mu.Lock()
	// only the votes are needed from now on
	e.tallies = nil
	e.mu.Unlock()

	n.mu.Lock()
	if cur, ok := n.entries[idx]; ok && cur == e {
		delete(n.entries, idx)
		delete(n.quorums, idx)
		delete(n.started, idx)
		metrics.PendingTasksAdd(-1)
	}
	n.retired.Add(idx, e)
	n.mu.Unlock()
	n.log.Debug("task retired", logging.TaskIndex(idx))
}

func (n *Notary) record(ctx context.Context, r audit.Record) {
	if n.archive == nil {
		return
	}
	if err := n.archive.Archive(ctx, r); err != nil {
		n.log.Error("could not archive record",
			logging.TaskIndex(r.TaskIndex),
			logging.String("kind", string(r.Kind)),
			logging.Error(err),
		)
	}
}

// OnTick evicts the tasks which did not retire within the retention
// window. A task with a submission in flight is left for the next tick.
func (n *Notary) OnTick(ctx context.Context, now time.Time) {
	type expiredTask struct {
		idx       uint32
		finalized bool
	}
	expired := []expiredTask{}

	n.mu.Lock()
	window := n.cfg.RetentionWindow.Get()
	for idx, started := range n.started {
		if now.Sub(started) < window {
			continue
		}
		finalized := false
		e, ok := n.entries[idx]
		if ok {
			e.mu.Lock()
			if e.submitting {
				e.mu.Unlock()
				continue
			}
			e.evicted = true
			finalized = e.finalized
			e.mu.Unlock()
			delete(n.entries, idx)
		}
		if finalized {
			// it must not be finalized again if delivered later on
			n.retired.Add(idx, e)
		}
		delete(n.quorums, idx)
		delete(n.started, idx)
		expired = append(expired, expiredTask{idx: idx, finalized: finalized})
	}
	n.mu.Unlock()

	for _, t := range expired {
		metrics.PendingTasksAdd(-1)
		metrics.QuorumTimeoutInc()
		reason := types.ErrQuorumTimeout.Error()
		if t.finalized {
			reason = "finalized but never delivered"
		}
		n.log.Warn("task evicted",
			logging.TaskIndex(t.idx),
			logging.String("reason", reason),
		)
		n.record(ctx, audit.Record{
			Kind:      audit.KindTimeout,
			TaskIndex: t.idx,
			Time:      now,
			Reason:    reason,
		})
	}
}

// Run calls OnTick at every janitor interval until the context is done.
func (n *Notary) Run(ctx context.Context) error {
	n.mu.RLock()
	interval := n.cfg.JanitorInterval.Get()
	n.mu.RUnlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			n.OnTick(ctx, now)
		}
	}
}

// Pending returns the number of tasks which are neither retired nor
// evicted.
func (n *Notary) Pending() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.quorums)
}
