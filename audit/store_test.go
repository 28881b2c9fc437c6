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

package audit_test

import (
	"context"
	"testing"

	"code.vegaprotocol.io/obavs/audit"
	"code.vegaprotocol.io/obavs/crypto/bls"
	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestStore(t *testing.T) *audit.Store {
	t.Helper()
	cfg := audit.NewDefaultConfig()
	cfg.InMemory = true
	s, err := audit.New(logging.NewTestLogger(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestArchiveAndList(t *testing.T) {
	s := getTestStore(t)
	ctx := context.Background()
	op := types.OperatorID{1}

	require.NoError(t, s.Archive(ctx, audit.Record{Kind: audit.KindConflict, TaskIndex: 2, Operator: &op, Reason: "first"}))
	require.NoError(t, s.Archive(ctx, audit.Record{Kind: audit.KindTimeout, TaskIndex: 1}))
	require.NoError(t, s.Archive(ctx, audit.Record{Kind: audit.KindLateProposal, TaskIndex: 2, Operator: &op, Reason: "second"}))
	// 256 sorts after 2 only with a big endian key
	require.NoError(t, s.Archive(ctx, audit.Record{Kind: audit.KindTimeout, TaskIndex: 256}))

	recs, err := s.ByTask(2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "first", recs[0].Reason)
	assert.Equal(t, "second", recs[1].Reason)
	require.NotNil(t, recs[0].Operator)
	assert.Equal(t, op, *recs[0].Operator)
	assert.False(t, recs[0].Time.IsZero())

	timeouts, err := s.ByKind(audit.KindTimeout)
	require.NoError(t, err)
	require.Len(t, timeouts, 2)
	assert.Equal(t, uint32(1), timeouts[0].TaskIndex)
	assert.Equal(t, uint32(256), timeouts[1].TaskIndex)

	none, err := s.ByTask(99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestArchiveAggregate(t *testing.T) {
	s := getTestStore(t)

	kp, err := bls.KeyPairFromString("5")
	require.NoError(t, err)
	var digest [32]byte
	digest[0] = 1
	sig := kp.SignMessage(digest)

	agg := &types.AggregateResponse{
		TaskIndex:          3,
		Digest:             digest,
		AggregateSignature: sig.G1Point,
		AggregatePubKeyG2:  kp.PubKeyG2,
		Signers:            []types.OperatorID{{1}},
		NonSigners:         []types.OperatorID{{2}},
		SignersBitmap:      []byte{1},
	}
	require.NoError(t, s.Archive(context.Background(), audit.Record{Kind: audit.KindAggregate, TaskIndex: 3, Aggregate: agg}))

	recs, err := s.ByTask(3)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	got := recs[0].Aggregate
	require.NotNil(t, got)
	assert.Equal(t, agg.Digest, got.Digest)
	assert.True(t, got.AggregateSignature.Equal(agg.AggregateSignature))
	assert.True(t, got.AggregatePubKeyG2.Equal(agg.AggregatePubKeyG2))
	assert.Equal(t, agg.Signers, got.Signers)
	assert.True(t, got.HasSigned(0))
}
