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

package operator_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"code.vegaprotocol.io/obavs/audit"
	"code.vegaprotocol.io/obavs/crypto/bls"
	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/notary"
	nmocks "code.vegaprotocol.io/obavs/notary/mocks"
	"code.vegaprotocol.io/obavs/operator"
	"code.vegaprotocol.io/obavs/operator/mocks"
	"code.vegaprotocol.io/obavs/signing"
	smocks "code.vegaprotocol.io/obavs/signing/mocks"
	"code.vegaprotocol.io/obavs/types"
	"code.vegaprotocol.io/obavs/types/num"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tokenX = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokenY = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	alice  = common.HexToAddress("0x0000000000000000000000000000000000000001")
	bob    = common.HexToAddress("0x0000000000000000000000000000000000000002")
)

func newOrder(user, owned common.Address, amountOwned uint64, notOwned common.Address, amountNotOwned uint64, slippage uint64) types.Order {
	return types.Order{
		User:           user,
		TokenOwned:     owned,
		AmountOwned:    num.NewUint(amountOwned),
		TokenNotOwned:  notOwned,
		AmountNotOwned: num.NewUint(amountNotOwned),
		Slippage:       num.NewUint(slippage),
	}
}

// exampleTask is alice selling 100 X for 10 Y against bob selling 12 Y
// for 120 X.
func exampleTask(idx uint32, operators []types.OperatorID) types.Task {
	return types.Task{
		Index:                     idx,
		Order:                     newOrder(alice, tokenX, 100, tokenY, 10, 5),
		OrderBook:                 types.OrderBook{newOrder(bob, tokenY, 12, tokenX, 120, 5)},
		QuorumNumbers:             []byte{0},
		QuorumThresholdPercentage: 67,
		Operators:                 operators,
	}
}

type testOperator struct {
	*operator.Operator
	ctrl   *gomock.Controller
	keys   *smocks.MockKeyProvider
	sender *mocks.MockSender
}

func getTestOperator(t *testing.T) *testOperator {
	t.Helper()
	ctrl := gomock.NewController(t)
	keys := smocks.NewMockKeyProvider(ctrl)
	sender := mocks.NewMockSender(ctrl)
	op := operator.New(logging.NewTestLogger(), operator.NewDefaultConfig(), signing.NewDefaultConfig(), keys, sender)
	return &testOperator{
		Operator: op,
		ctrl:     ctrl,
		keys:     keys,
		sender:   sender,
	}
}

func TestOnNewTask(t *testing.T) {
	t.Run("signs and sends the match", testRespond)
	t.Run("key is loaded once", testKeyCached)
	t.Run("missing key abstains", testAbstain)
	t.Run("precondition failure sends nothing", testPrecondition)
	t.Run("send failure is reported", testSendFailure)
	t.Run("signer configuration is reloaded", testReloadSignerConf)
}

func testReloadSignerConf(t *testing.T) {
	top := getTestOperator(t)
	defer top.ctrl.Finish()
	kp, err := bls.KeyPairFromString("15")
	require.NoError(t, err)

	top.keys.EXPECT().GetKeyPair(gomock.Any()).Times(1).Return(kp, nil)
	top.sender.EXPECT().SendSignedTaskResponse(gomock.Any(), gomock.Any()).Times(3).
		Return(notary.Receipt{Status: notary.StatusRecorded}, nil)

	cfg := signing.NewDefaultConfig()
	cfg.SelfVerify = false
	// before the key is loaded
	top.ReloadSignerConf(cfg)

	responded, err := top.OnNewTask(context.Background(), exampleTask(3, nil))
	require.NoError(t, err)
	assert.True(t, responded)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			responded, err := top.OnNewTask(context.Background(), exampleTask(3, nil))
			assert.NoError(t, err)
			assert.True(t, responded)
		}()
	}
	top.ReloadSignerConf(signing.NewDefaultConfig())
	wg.Wait()
}

func testRespond(t *testing.T) {
	top := getTestOperator(t)
	defer top.ctrl.Finish()
	kp, err := bls.KeyPairFromString("11")
	require.NoError(t, err)

	top.keys.EXPECT().GetKeyPair(gomock.Any()).Times(1).Return(kp, nil)
	top.sender.EXPECT().SendSignedTaskResponse(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(
		func(_ context.Context, sp *types.SignedTaskResponse) (notary.Receipt, error) {
			assert.Equal(t, signing.OperatorIDFromPubKey(kp.PubKeyG1), sp.OperatorID)
			assert.Equal(t, uint32(3), sp.TaskResponse.ReferenceTaskIndex)
			assert.True(t, sp.TaskResponse.Matched)
			assert.True(t, sp.TaskResponse.NewOrder.IsFilled)

			sig, err := bls.SignatureFromBytes(sp.Signature)
			require.NoError(t, err)
			digest, err := sp.TaskResponse.Digest()
			require.NoError(t, err)
			ok, err := sig.Verify(kp.PubKeyG2, digest)
			require.NoError(t, err)
			assert.True(t, ok)
			return notary.Receipt{Status: notary.StatusRecorded}, nil
		})

	responded, err := top.OnNewTask(context.Background(), exampleTask(3, nil))
	require.NoError(t, err)
	assert.True(t, responded)
}

func testKeyCached(t *testing.T) {
	top := getTestOperator(t)
	defer top.ctrl.Finish()
	kp, err := bls.KeyPairFromString("12")
	require.NoError(t, err)

	top.keys.EXPECT().GetKeyPair(gomock.Any()).Times(1).Return(kp, nil)
	top.sender.EXPECT().SendSignedTaskResponse(gomock.Any(), gomock.Any()).Times(2).Return(notary.Receipt{Status: notary.StatusRecorded}, nil)

	for i := uint32(1); i <= 2; i++ {
		responded, err := top.OnNewTask(context.Background(), exampleTask(i, nil))
		require.NoError(t, err)
		assert.True(t, responded)
	}
}

func testAbstain(t *testing.T) {
	top := getTestOperator(t)
	defer top.ctrl.Finish()

	top.keys.EXPECT().GetKeyPair(gomock.Any()).Times(1).Return(nil, types.ErrKeyUnavailable)
	top.sender.EXPECT().SendSignedTaskResponse(gomock.Any(), gomock.Any()).Times(0)

	responded, err := top.OnNewTask(context.Background(), exampleTask(1, nil))
	assert.ErrorIs(t, err, types.ErrKeyUnavailable)
	assert.False(t, responded)

	// the key shows up for the next round
	kp, err := bls.KeyPairFromString("13")
	require.NoError(t, err)
	top.keys.EXPECT().GetKeyPair(gomock.Any()).Times(1).Return(kp, nil)
	top.sender.EXPECT().SendSignedTaskResponse(gomock.Any(), gomock.Any()).Times(1).Return(notary.Receipt{Status: notary.StatusRecorded}, nil)

	responded, err = top.OnNewTask(context.Background(), exampleTask(2, nil))
	require.NoError(t, err)
	assert.True(t, responded)
}

func testPrecondition(t *testing.T) {
	top := getTestOperator(t)
	defer top.ctrl.Finish()

	top.keys.EXPECT().GetKeyPair(gomock.Any()).Times(0)
	top.sender.EXPECT().SendSignedTaskResponse(gomock.Any(), gomock.Any()).Times(0)

	task := exampleTask(1, nil)
	task.Order.AmountNotOwned = num.NewUint(0)
	responded, err := top.OnNewTask(context.Background(), task)
	assert.ErrorIs(t, err, types.ErrMatchingPrecondition)
	assert.False(t, responded)
}

func testSendFailure(t *testing.T) {
	top := getTestOperator(t)
	defer top.ctrl.Finish()
	kp, err := bls.KeyPairFromString("14")
	require.NoError(t, err)

	top.keys.EXPECT().GetKeyPair(gomock.Any()).Times(1).Return(kp, nil)
	top.sender.EXPECT().SendSignedTaskResponse(gomock.Any(), gomock.Any()).Times(1).Return(notary.Receipt{}, types.ErrUnknownTask)

	responded, err := top.OnNewTask(context.Background(), exampleTask(1, nil))
	assert.ErrorIs(t, err, types.ErrUnknownTask)
	assert.False(t, responded)
}

// inProcess hands proposals straight to a notary.
type inProcess struct {
	n *notary.Notary
}

func (s inProcess) SendSignedTaskResponse(ctx context.Context, sp *types.SignedTaskResponse) (notary.Receipt, error) {
	return s.n.RegisterSignature(ctx, *sp)
}

type staticKey struct {
	kp *bls.KeyPair
}

func (k staticKey) GetKeyPair(context.Context) (*bls.KeyPair, error) {
	return k.kp, nil
}

func TestEndToEndThroughNotary(t *testing.T) {
	log := logging.NewTestLogger()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	sink := nmocks.NewMockSink(ctrl)

	acfg := audit.NewDefaultConfig()
	acfg.InMemory = true
	store, err := audit.New(log, acfg)
	require.NoError(t, err)
	defer store.Close()

	registry, err := notary.NewRegistry(log, nil)
	require.NoError(t, err)
	keys := make([]*bls.KeyPair, 0, 3)
	for i := 0; i < 3; i++ {
		kp, err := bls.KeyPairFromString(fmt.Sprintf("%d", 2000+i))
		require.NoError(t, err)
		_, err = registry.Add(kp.PubKeyG1, kp.PubKeyG2)
		require.NoError(t, err)
		keys = append(keys, kp)
	}

	n, err := notary.New(log, notary.NewDefaultConfig(), registry, nil, sink, store)
	require.NoError(t, err)

	task := exampleTask(3, registry.Operators())
	require.NoError(t, n.StartTask(context.Background(), task))

	var submitted *types.AggregateResponse
	sink.EXPECT().RespondToTask(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(
		func(_ context.Context, agg *types.AggregateResponse) error {
			submitted = agg
			return nil
		})

	// 2 of 3 operators is enough for a 67% threshold
	for i := 0; i < 2; i++ {
		op := operator.New(log, operator.NewDefaultConfig(), signing.NewDefaultConfig(), staticKey{keys[i]}, inProcess{n})
		responded, err := op.OnNewTask(context.Background(), task)
		require.NoError(t, err)
		assert.True(t, responded)
	}
	n.Wait()

	require.NotNil(t, submitted)
	assert.Equal(t, uint32(3), submitted.TaskIndex)
	assert.True(t, submitted.Response.Matched)
	assert.Equal(t, uint64(0), submitted.Response.MatchedOrderIndex)
	assert.True(t, submitted.Response.NewOrder.IsFilled)
	assert.True(t, submitted.Response.NewOtherOrder.IsPartiallyFilled)
	assert.Equal(t, uint64(110), submitted.Response.NewOtherOrder.AmountNotOwned.Uint64())
	assert.Len(t, submitted.Signers, 2)
	assert.Len(t, submitted.NonSigners, 1)
	assert.True(t, submitted.HasSigned(0))
	assert.True(t, submitted.HasSigned(1))
	assert.False(t, submitted.HasSigned(2))

	ok, err := (&bls.Signature{G1Point: submitted.AggregateSignature}).Verify(submitted.AggregatePubKeyG2, submitted.Digest)
	require.NoError(t, err)
	assert.True(t, ok)

	// the last operator is late but still accepted
	late := operator.New(log, operator.NewDefaultConfig(), signing.NewDefaultConfig(), staticKey{keys[2]}, inProcess{n})
	responded, err := late.OnNewTask(context.Background(), task)
	require.NoError(t, err)
	assert.True(t, responded)

	records, err := store.ByKind(audit.KindLateProposal)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
