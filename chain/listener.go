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
	"sync"
	"time"

	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/types"

	"github.com/cenkalti/backoff/v4"
	eth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// Filterer is the part of the ethereum client used to look for new tasks.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/filterer_mock.go -package mocks code.vegaprotocol.io/obavs/chain Filterer
type Filterer interface {
	FilterLogs(ctx context.Context, q eth.FilterQuery) ([]ethtypes.Log, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// TaskHandler is notified of every task created on chain.
type TaskHandler interface {
	OnNewTask(ctx context.Context, task types.Task) error
}

// TaskHandlerFunc adapts a function to a TaskHandler.
type TaskHandlerFunc func(ctx context.Context, task types.Task) error

func (f TaskHandlerFunc) OnNewTask(ctx context.Context, task types.Task) error {
	return f(ctx, task)
}

// Operators gives the operators eligible for new tasks.
type Operators interface {
	Operators() []types.OperatorID
}

// TaskListener polls the task manager contract for NewTaskCreated logs and
// hands the decoded tasks to a handler, in block order.
type TaskListener struct {
	log       *logging.Logger
	cfg       Config
	client    Filterer
	address   common.Address
	handler   TaskHandler
	operators Operators

	mu   sync.Mutex
	next uint64
}

// NewTaskListener creates a listener starting at cfg.StartBlock. operators
// can be nil, the tasks then carry no eligible operators.
func NewTaskListener(log *logging.Logger, cfg Config, client Filterer, handler TaskHandler, operators Operators) *TaskListener {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &TaskListener{
		log:       log,
		cfg:       cfg,
		client:    client,
		address:   common.HexToAddress(cfg.TaskManagerAddress),
		handler:   handler,
		operators: operators,
		next:      cfg.StartBlock,
	}
}

// ReloadConf updates the internal configuration.
func (l *TaskListener) ReloadConf(cfg Config) {
	l.log.Info("reloading configuration")
	if l.log.GetLevel() != cfg.Level.Get() {
		l.log.Info("updating log level",
			logging.String("old", l.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		l.log.SetLevel(cfg.Level.Get())
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// the scanning position and the contract are kept
	cfg.StartBlock = l.cfg.StartBlock
	cfg.TaskManagerAddress = l.cfg.TaskManagerAddress
	l.cfg = cfg
}

// NextBlock returns the first block not scanned yet.
func (l *TaskListener) NextBlock() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.next
}

// Run polls until ctx is cancelled.
func (l *TaskListener) Run(ctx context.Context) error {
	l.mu.Lock()
	interval := l.cfg.PollInterval.Get()
	l.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.log.Info("listening for new tasks",
		logging.String("task-manager", l.address.Hex()),
		logging.Uint64("from-block", l.NextBlock()),
	)
	for {
		if err := l.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.log.Error("could not poll new tasks", logging.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Poll scans every confirmed block not scanned yet. Node calls are retried
// until they succeed or ctx is cancelled.
func (l *TaskListener) Poll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	head, err := l.currentHeight(ctx)
	if err != nil {
		return err
	}
	if head < l.cfg.Confirmations {
		return nil
	}
	tip := head - l.cfg.Confirmations

	for l.next <= tip {
		to := tip
		if l.cfg.MaxBlockRange > 0 && to-l.next >= l.cfg.MaxBlockRange {
			to = l.next + l.cfg.MaxBlockRange - 1
		}

		logs, err := l.filterLogs(ctx, l.next, to)
		if err != nil {
			return err
		}
		for _, log := range logs {
			l.handle(ctx, log)
		}
		l.next = to + 1
	}
	return nil
}

func (l *TaskListener) handle(ctx context.Context, log ethtypes.Log) {
	if log.Removed {
		return
	}
	task, err := DecodeNewTaskCreated(log)
	if err != nil {
		l.log.Warn("ignoring undecodable task log",
			logging.Uint64("block", log.BlockNumber),
			logging.String("tx-hash", log.TxHash.Hex()),
			logging.Error(err),
		)
		return
	}
	if l.operators != nil {
		task.Operators = l.operators.Operators()
	}

	if l.log.IsDebug() {
		l.log.Debug("new task created",
			logging.TaskIndex(task.Index),
			logging.Uint64("block", log.BlockNumber),
			logging.Int("order-book-size", len(task.OrderBook)),
		)
	}
	if err := l.handler.OnNewTask(ctx, task); err != nil {
		l.log.Error("could not handle new task", logging.TaskIndex(task.Index), logging.Error(err))
	}
}

func (l *TaskListener) currentHeight(ctx context.Context) (uint64, error) {
	var height uint64
	err := l.retry(ctx, func() error {
		h, err := l.client.BlockNumber(ctx)
		if err != nil {
			l.log.Error("couldn't get the current height of the ethereum chain", logging.Error(err))
			return err
		}
		height = h
		return nil
	})
	return height, err
}

func (l *TaskListener) filterLogs(ctx context.Context, from, to uint64) ([]ethtypes.Log, error) {
	query := eth.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{l.address},
		Topics:    [][]common.Hash{{NewTaskCreatedTopic()}},
	}

	var logs []ethtypes.Log
	err := l.retry(ctx, func() error {
		res, err := l.client.FilterLogs(ctx, query)
		if err != nil {
			l.log.Error("couldn't filter task manager logs",
				logging.Uint64("from-block", from),
				logging.Uint64("to-block", to),
				logging.Error(err),
			)
			return errors.Wrap(err, "couldn't filter task manager logs")
		}
		logs = res
		return nil
	})
	return logs, err
}

func (l *TaskListener) retry(ctx context.Context, op backoff.Operation) error {
	return backoff.Retry(op, backoff.WithContext(backoff.NewConstantBackOff(l.cfg.RetryInterval.Get()), ctx))
}
