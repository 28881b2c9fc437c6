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

// Package audit keeps the trail of what the aggregator saw for every task:
// certified aggregates, proposals arriving after finalization, conflicting
// and divergent proposals and tasks evicted before reaching quorum.
package audit

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"sync/atomic"
	"time"

	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/types"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type Kind string

const (
	KindAggregate         Kind = "aggregate"
	KindLateProposal      Kind = "late-proposal"
	KindConflict          Kind = "conflict"
	KindDivergence        Kind = "divergence"
	KindTimeout           Kind = "timeout"
	KindSubmissionFailure Kind = "submission-failure"
)

// Record is a single entry of the audit trail.
type Record struct {
	Kind      Kind                      `json:"kind"`
	TaskIndex uint32                    `json:"taskIndex"`
	Time      time.Time                 `json:"time"`
	Operator  *types.OperatorID         `json:"operator,omitempty"`
	Proposal  *types.SignedTaskResponse `json:"proposal,omitempty"`
	Aggregate *types.AggregateResponse  `json:"aggregate,omitempty"`
	Reason    string                    `json:"reason,omitempty"`
}

// Store is a leveldb backed audit trail. Records are keyed by task index
// then insertion order.
type Store struct {
	log *logging.Logger
	cfg Config
	db  *leveldb.DB
	seq atomic.Uint64
}

func New(log *logging.Logger, cfg Config) (*Store, error) {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	var (
		db  *leveldb.DB
		err error
	)
	if cfg.InMemory {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(cfg.Dir, nil)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to open audit database")
	}

	s := &Store{
		log: log,
		cfg: cfg,
		db:  db,
	}
	// sequence numbers only need to grow across restarts
	s.seq.Store(uint64(time.Now().UnixNano()))
	return s, nil
}

// ReloadConf updates the internal configuration.
func (s *Store) ReloadConf(cfg Config) {
	s.log.Info("reloading configuration")
	if s.log.GetLevel() != cfg.Level.Get() {
		s.log.Info("updating log level",
			logging.String("old", s.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		s.log.SetLevel(cfg.Level.Get())
	}
	s.cfg = cfg
}

func (s *Store) Close() error {
	return s.db.Close()
}

func taskPrefix(idx uint32) []byte {
	b := make([]byte, 5)
	b[0] = 't'
	binary.BigEndian.PutUint32(b[1:], idx)
	return b
}

func recordKey(idx uint32, seq uint64) []byte {
	b := make([]byte, 13)
	copy(b, taskPrefix(idx))
	binary.BigEndian.PutUint64(b[5:], seq)
	return b
}

// Archive appends the record to the trail.
func (s *Store) Archive(_ context.Context, r Record) error {
	if r.Time.IsZero() {
		r.Time = time.Now()
	}
	buf, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "failed to marshal audit record")
	}
	key := recordKey(r.TaskIndex, s.seq.Add(1))
	if err := s.db.Put(key, buf, &opt.WriteOptions{}); err != nil {
		s.log.Error("unable to store audit record",
			logging.TaskIndex(r.TaskIndex),
			logging.String("kind", string(r.Kind)),
			logging.Error(err),
		)
		return errors.Wrap(err, "failed to put audit record")
	}
	s.log.Debug("audit record stored",
		logging.TaskIndex(r.TaskIndex),
		logging.String("kind", string(r.Kind)),
	)
	return nil
}

// ByTask returns the records of a task in insertion order.
func (s *Store) ByTask(idx uint32) ([]Record, error) {
	return s.list(util.BytesPrefix(taskPrefix(idx)), nil)
}

// ByKind returns every record of the given kind, ordered by task index.
func (s *Store) ByKind(kind Kind) ([]Record, error) {
	return s.list(util.BytesPrefix([]byte{'t'}), func(r Record) bool {
		return r.Kind == kind
	})
}

func (s *Store) list(rng *util.Range, keep func(Record) bool) ([]Record, error) {
	iter := s.db.NewIterator(rng, &opt.ReadOptions{})
	defer iter.Release()

	records := []Record{}
	for iter.Next() {
		var r Record
		if err := json.Unmarshal(iter.Value(), &r); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal audit record")
		}
		if keep == nil || keep(r) {
			records = append(records, r)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate audit records")
	}
	return records, nil
}
