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

// Package operator runs the operator side of a task round: match the new
// order against its book snapshot, sign the proposal and send it to the
// aggregator.
package operator

import (
	"context"
	"sync"

	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/matching"
	"code.vegaprotocol.io/obavs/metrics"
	"code.vegaprotocol.io/obavs/notary"
	"code.vegaprotocol.io/obavs/signing"
	"code.vegaprotocol.io/obavs/types"

	"github.com/pkg/errors"
)

const (
	resultResponded    = "responded"
	resultAbstained    = "abstained"
	resultPrecondition = "precondition"
	resultSendFailure  = "send-failure"
)

// Sender delivers a signed proposal to the aggregator.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/sender_mock.go -package mocks code.vegaprotocol.io/obavs/operator Sender
type Sender interface {
	SendSignedTaskResponse(ctx context.Context, sp *types.SignedTaskResponse) (notary.Receipt, error)
}

type Operator struct {
	log       *logging.Logger
	cfg       Config
	signerCfg signing.Config
	keys      signing.KeyProvider
	sender    Sender

	mu     sync.Mutex
	signer *signing.Signer
}

// New creates an operator. The key is loaded lazily from keys, so an
// operator started without a key abstains until one is imported.
func New(log *logging.Logger, cfg Config, signerCfg signing.Config, keys signing.KeyProvider, sender Sender) *Operator {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Operator{
		log:       log,
		cfg:       cfg,
		signerCfg: signerCfg,
		keys:      keys,
		sender:    sender,
	}
}

// ReloadConf updates the internal configuration.
func (o *Operator) ReloadConf(cfg Config) {
	o.log.Info("reloading configuration")
	if o.log.GetLevel() != cfg.Level.Get() {
		o.log.Info("updating log level",
			logging.String("old", o.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		o.log.SetLevel(cfg.Level.Get())
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.cfg = cfg
}

// ReloadSignerConf updates the configuration of the signer, it is used as
// well for the signers loaded later on.
func (o *Operator) ReloadSignerConf(cfg signing.Config) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.signerCfg = cfg
	if o.signer != nil {
		o.signer.ReloadConf(cfg)
	}
}

// OnNewTask handles a task round and tells whether a proposal was accepted
// by the aggregator. A missing key makes the operator abstain, the error
// then wraps types.ErrKeyUnavailable.
func (o *Operator) OnNewTask(ctx context.Context, task types.Task) (bool, error) {
	o.mu.Lock()
	timeout := o.cfg.TaskTimeout.Get()
	o.mu.Unlock()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tc := metrics.NewTimeCounter("match")
	resp, err := matching.Match(task.Order, task.OrderBook, task.Index)
	tc.StepTimeObserve()
	if err != nil {
		metrics.OperatorCounterInc(resultPrecondition)
		o.log.Error("could not match task", logging.TaskIndex(task.Index), logging.Error(err))
		return false, err
	}

	signer, err := o.getSigner(ctx)
	if err != nil {
		metrics.OperatorCounterInc(resultAbstained)
		o.log.Warn("abstaining from task", logging.TaskIndex(task.Index), logging.Error(err))
		return false, err
	}

	tc = metrics.NewTimeCounter("sign")
	signed, err := signer.SignTaskResponse(resp)
	tc.StepTimeObserve()
	if err != nil {
		metrics.OperatorCounterInc(resultAbstained)
		o.log.Error("could not sign task response", logging.TaskIndex(task.Index), logging.Error(err))
		return false, err
	}

	tc = metrics.NewTimeCounter("send")
	receipt, err := o.sender.SendSignedTaskResponse(ctx, signed)
	tc.StepTimeObserve()
	if err != nil {
		metrics.OperatorCounterInc(resultSendFailure)
		o.log.Error("could not send task response",
			logging.TaskIndex(task.Index),
			logging.OperatorID(signed.OperatorID),
			logging.Error(err),
		)
		return false, err
	}

	metrics.OperatorCounterInc(resultResponded)
	o.log.Info("task response sent",
		logging.TaskIndex(task.Index),
		logging.Bool("matched", resp.Matched),
		logging.Uint64("matched-order-index", resp.MatchedOrderIndex),
		logging.String("status", string(receipt.Status)),
	)
	return true, nil
}

// getSigner returns the cached signer, loading the key on first use. Failed
// loads are not cached.
func (o *Operator) getSigner(ctx context.Context) (*signing.Signer, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.signer != nil {
		return o.signer, nil
	}
	signer, err := signing.NewFromProvider(ctx, o.log, o.signerCfg, o.keys)
	if err != nil {
		return nil, errors.Wrap(err, "could not load the operator key")
	}
	o.signer = signer
	o.log.Info("operator key loaded", logging.OperatorID(signer.OperatorID()))
	return signer, nil
}
