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

package matching_test

import (
	"math/big"
	"math/rand"
	"testing"

	"code.vegaprotocol.io/obavs/matching"
	"code.vegaprotocol.io/obavs/types"
	"code.vegaprotocol.io/obavs/types/num"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tokenX = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokenY = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	tokenZ = common.HexToAddress("0x00000000000000000000000000000000000000cc")

	alice = common.HexToAddress("0x0000000000000000000000000000000000000001")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000002")
	carol = common.HexToAddress("0x0000000000000000000000000000000000000003")
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

func TestMatch(t *testing.T) {
	t.Run("end to end example", testEndToEndExample)
	t.Run("no eligible counter order echoes the incoming order", testNoMatch)
	t.Run("orders from the same user are skipped", testNoSelfMatch)
	t.Run("filled orders are skipped", testFilledSkipped)
	t.Run("counter order must offer the wanted asset", testAssetMismatch)
	t.Run("counter price must not be worse", testWorsePriceSkipped)
	t.Run("deviation is bounded by the slippage", testSlippage)
	t.Run("first eligible counter order wins", testFirstEligibleWins)
	t.Run("settlement branches", testSettlementBranches)
	t.Run("preconditions", testPreconditions)
	t.Run("inputs are never modified", testInputsUnchanged)
}

func testEndToEndExample(t *testing.T) {
	a := newOrder(alice, tokenX, 100, tokenY, 10, 5)
	b := newOrder(bob, tokenY, 12, tokenX, 120, 5)

	resp, err := matching.Match(a, types.OrderBook{b}, 3)
	require.NoError(t, err)

	assert.True(t, resp.Matched)
	assert.Equal(t, uint32(3), resp.ReferenceTaskIndex)
	assert.Equal(t, uint64(0), resp.MatchedOrderIndex)

	// A wants 10, B wants 120, A is filled and B keeps 110
	assert.Equal(t, alice, resp.NewOrder.User)
	assert.True(t, resp.NewOrder.IsFilled)
	assert.False(t, resp.NewOrder.IsPartiallyFilled)
	assert.True(t, resp.NewOrder.AmountNotOwned.IsZero())

	assert.Equal(t, bob, resp.NewOtherOrder.User)
	assert.False(t, resp.NewOtherOrder.IsFilled)
	assert.True(t, resp.NewOtherOrder.IsPartiallyFilled)
	assert.Equal(t, uint64(110), resp.NewOtherOrder.AmountNotOwned.Uint64())
	assert.Equal(t, uint64(12), resp.NewOtherOrder.AmountOwned.Uint64())
}

func testNoMatch(t *testing.T) {
	a := newOrder(alice, tokenX, 100, tokenY, 10, 5)

	for name, book := range map[string]types.OrderBook{
		"empty book": nil,
		"no candidate": {
			newOrder(bob, tokenZ, 12, tokenX, 120, 5),
		},
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := matching.Match(a, book, 9)
			require.NoError(t, err)
			assert.False(t, resp.Matched)
			assert.Equal(t, uint64(0), resp.MatchedOrderIndex)
			assert.Equal(t, uint32(9), resp.ReferenceTaskIndex)
			assert.True(t, a.Equal(resp.NewOrder))
			assert.True(t, a.Equal(resp.NewOtherOrder))
		})
	}
}

func testNoSelfMatch(t *testing.T) {
	a := newOrder(alice, tokenX, 100, tokenY, 10, 5)
	book := types.OrderBook{
		newOrder(alice, tokenY, 12, tokenX, 120, 5),
		newOrder(bob, tokenY, 12, tokenX, 120, 5),
	}

	resp, err := matching.Match(a, book, 1)
	require.NoError(t, err)
	require.True(t, resp.Matched)
	assert.Equal(t, uint64(1), resp.MatchedOrderIndex)
	assert.Equal(t, bob, resp.NewOtherOrder.User)

	resp, err = matching.Match(a, book[:1], 1)
	require.NoError(t, err)
	assert.False(t, resp.Matched)
}

func testFilledSkipped(t *testing.T) {
	a := newOrder(alice, tokenX, 100, tokenY, 10, 5)

	filled := newOrder(bob, tokenY, 12, tokenX, 0, 5)
	filled.IsFilled = true
	book := types.OrderBook{filled, newOrder(carol, tokenY, 12, tokenX, 120, 5)}

	resp, err := matching.Match(a, book, 1)
	require.NoError(t, err)
	require.True(t, resp.Matched)
	assert.Equal(t, uint64(1), resp.MatchedOrderIndex)

	// a filled incoming order with nothing left to buy is legal and never matches
	done := newOrder(alice, tokenX, 100, tokenY, 0, 5)
	done.IsFilled = true
	resp, err = matching.Match(done, book, 1)
	require.NoError(t, err)
	assert.False(t, resp.Matched)
	assert.True(t, done.Equal(resp.NewOrder))
}

func testAssetMismatch(t *testing.T) {
	a := newOrder(alice, tokenX, 100, tokenY, 10, 5)
	book := types.OrderBook{
		newOrder(bob, tokenX, 12, tokenY, 120, 5),
		newOrder(bob, tokenZ, 12, tokenX, 120, 5),
	}

	resp, err := matching.Match(a, book, 1)
	require.NoError(t, err)
	assert.False(t, resp.Matched)
}

func testWorsePriceSkipped(t *testing.T) {
	// A pays 10 X per Y, B asks 12 X per Y
	a := newOrder(alice, tokenX, 100, tokenY, 10, 100)
	b := newOrder(bob, tokenY, 10, tokenX, 120, 5)

	resp, err := matching.Match(a, types.OrderBook{b}, 1)
	require.NoError(t, err)
	assert.False(t, resp.Matched)
}

func testSlippage(t *testing.T) {
	// A pays 10 X per Y, B asks 9 X per Y, the deviation is 10%
	b := newOrder(bob, tokenY, 10, tokenX, 90, 5)

	tight := newOrder(alice, tokenX, 100, tokenY, 10, 5)
	resp, err := matching.Match(tight, types.OrderBook{b}, 1)
	require.NoError(t, err)
	assert.False(t, resp.Matched)

	exact := newOrder(alice, tokenX, 100, tokenY, 10, 10)
	resp, err = matching.Match(exact, types.OrderBook{b}, 1)
	require.NoError(t, err)
	assert.True(t, resp.Matched)
	t.Run("prices below one unit", func(t *testing.T) {
		// scaled prices of 1 and 0, their truncated average is 0
		cheap := newOrder(bob, tokenY, 2_000_000_000_000_000_000, tokenX, 1, 5)
		a := newOrder(alice, tokenX, 1, tokenY, 1_000_000_000_000_000_000, 100)
		resp, err := matching.Match(a, types.OrderBook{cheap}, 1)
		require.NoError(t, err)
		assert.False(t, resp.Matched)

		a.Slippage = num.NewUint(200)
		resp, err = matching.Match(a, types.OrderBook{cheap}, 1)
		require.NoError(t, err)
		assert.True(t, resp.Matched)
	})
}

func testFirstEligibleWins(t *testing.T) {
	a := newOrder(alice, tokenX, 100, tokenY, 10, 50)
	book := types.OrderBook{
		newOrder(bob, tokenY, 10, tokenX, 100, 5),
		// better for A, but later in the book
		newOrder(carol, tokenY, 10, tokenX, 95, 5),
	}

	resp, err := matching.Match(a, book, 1)
	require.NoError(t, err)
	require.True(t, resp.Matched)
	assert.Equal(t, uint64(0), resp.MatchedOrderIndex)
	assert.Equal(t, bob, resp.NewOtherOrder.User)
}

func testSettlementBranches(t *testing.T) {
	t.Run("equal wanted amounts fill both sides", func(t *testing.T) {
		a := newOrder(alice, tokenX, 100, tokenY, 10, 5)
		b := newOrder(bob, tokenY, 1, tokenX, 10, 5)

		resp, err := matching.Match(a, types.OrderBook{b}, 1)
		require.NoError(t, err)
		require.True(t, resp.Matched)
		assert.True(t, resp.NewOrder.IsFilled)
		assert.True(t, resp.NewOrder.AmountNotOwned.IsZero())
		assert.True(t, resp.NewOtherOrder.IsFilled)
		assert.True(t, resp.NewOtherOrder.AmountNotOwned.IsZero())
	})

	t.Run("smaller counter order is filled", func(t *testing.T) {
		a := newOrder(alice, tokenX, 100, tokenY, 10, 100)
		b := newOrder(bob, tokenY, 1, tokenX, 5, 5)

		resp, err := matching.Match(a, types.OrderBook{b}, 1)
		require.NoError(t, err)
		require.True(t, resp.Matched)
		assert.True(t, resp.NewOtherOrder.IsFilled)
		assert.True(t, resp.NewOtherOrder.AmountNotOwned.IsZero())
		assert.False(t, resp.NewOrder.IsFilled)
		assert.True(t, resp.NewOrder.IsPartiallyFilled)
		assert.Equal(t, uint64(5), resp.NewOrder.AmountNotOwned.Uint64())
	})
}

func testPreconditions(t *testing.T) {
	valid := newOrder(alice, tokenX, 100, tokenY, 10, 5)

	t.Run("incoming order wanting nothing", func(t *testing.T) {
		a := newOrder(alice, tokenX, 100, tokenY, 0, 5)
		_, err := matching.Match(a, nil, 1)
		assert.ErrorIs(t, err, types.ErrMatchingPrecondition)
	})

	t.Run("candidate offering nothing", func(t *testing.T) {
		b := newOrder(bob, tokenY, 0, tokenX, 120, 5)
		_, err := matching.Match(valid, types.OrderBook{b}, 1)
		assert.ErrorIs(t, err, types.ErrMatchingPrecondition)
	})

	t.Run("candidate wanting nothing", func(t *testing.T) {
		b := newOrder(bob, tokenY, 12, tokenX, 0, 5)
		_, err := matching.Match(valid, types.OrderBook{b}, 1)
		assert.ErrorIs(t, err, types.ErrMatchingPrecondition)
	})

	t.Run("malformed orders that are never candidates are ignored", func(t *testing.T) {
		book := types.OrderBook{
			newOrder(alice, tokenY, 0, tokenX, 0, 5),
			newOrder(bob, tokenZ, 0, tokenX, 0, 5),
		}
		resp, err := matching.Match(valid, book, 1)
		require.NoError(t, err)
		assert.False(t, resp.Matched)
	})

	t.Run("fixed point overflow", func(t *testing.T) {
		huge, overflow := num.UintFromBig(new(big.Int).Lsh(big.NewInt(1), 250))
		require.False(t, overflow)
		a := valid.Clone()
		a.AmountOwned = huge
		a.AmountNotOwned = num.NewUint(1)
		_, err := matching.Match(a, nil, 1)
		assert.ErrorIs(t, err, types.ErrMatchingPrecondition)
	})
}

func testInputsUnchanged(t *testing.T) {
	a := newOrder(alice, tokenX, 100, tokenY, 10, 5)
	book := types.OrderBook{newOrder(bob, tokenY, 12, tokenX, 120, 5)}
	aCopy, bookCopy := a.Clone(), book.Clone()

	resp, err := matching.Match(a, book, 1)
	require.NoError(t, err)
	require.True(t, resp.Matched)

	assert.True(t, aCopy.Equal(a))
	assert.True(t, bookCopy[0].Equal(book[0]))

	// the response does not alias the inputs
	resp.NewOrder.AmountOwned.SetUint64(1)
	resp.NewOtherOrder.AmountOwned.SetUint64(1)
	assert.Equal(t, uint64(100), a.AmountOwned.Uint64())
	assert.Equal(t, uint64(12), book[0].AmountOwned.Uint64())
}

func randomOrder(r *rand.Rand) types.Order {
	users := []common.Address{alice, bob, carol}
	tokens := []common.Address{tokenX, tokenY}
	owned := r.Intn(2)
	o := newOrder(
		users[r.Intn(len(users))],
		tokens[owned], uint64(1+r.Intn(200)),
		tokens[1-owned], uint64(1+r.Intn(200)),
		uint64(r.Intn(30)),
	)
	o.IsFilled = r.Intn(10) == 0
	return o
}

// TestMatchProperties checks determinism, the absence of self matches, the
// slippage bound and amount conservation over generated books.
func TestMatchProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		incoming := randomOrder(r)
		incoming.IsFilled = false
		book := make(types.OrderBook, r.Intn(8))
		for j := range book {
			book[j] = randomOrder(r)
		}

		resp, err := matching.Match(incoming, book, uint32(i))
		require.NoError(t, err)

		again, err := matching.Match(incoming, book, uint32(i))
		require.NoError(t, err)
		d1, err := resp.Digest()
		require.NoError(t, err)
		d2, err := again.Digest()
		require.NoError(t, err)
		require.Equal(t, d1, d2)
		require.Equal(t, resp.Matched, again.Matched)

		if !resp.Matched {
			require.True(t, incoming.Equal(resp.NewOrder))
			require.True(t, incoming.Equal(resp.NewOtherOrder))
			continue
		}

		counter := book[resp.MatchedOrderIndex]
		require.NotEqual(t, incoming.User, counter.User)
		require.Equal(t, counter.User, resp.NewOtherOrder.User)

		pI, err := matching.Price(incoming.AmountOwned, incoming.AmountNotOwned)
		require.NoError(t, err)
		pC, err := matching.Price(counter.AmountNotOwned, counter.AmountOwned)
		require.NoError(t, err)
		require.False(t, pC.GT(pI))
		dev, err := matching.Deviation(pI, pC)
		require.NoError(t, err)
		require.False(t, dev.GT(incoming.Slippage))

		wantI, wantC := incoming.AmountNotOwned, counter.AmountNotOwned
		smaller := num.Min(wantI, wantC)
		remainI := resp.NewOrder.AmountNotOwned
		remainC := resp.NewOtherOrder.AmountNotOwned
		// each side gave up exactly the smaller wanted amount
		require.True(t, num.Zero().Add(remainI, smaller).EQ(wantI))
		require.True(t, num.Zero().Add(remainC, smaller).EQ(wantC))
		require.True(t, remainI.IsZero() || remainC.IsZero())

		// earlier orders in the book were not eligible
		for j := 0; j < int(resp.MatchedOrderIndex); j++ {
			single, err := matching.Match(incoming, book[j:j+1], uint32(i))
			require.NoError(t, err)
			require.False(t, single.Matched)
		}
	}
}

func TestDeviation(t *testing.T) {
	for _, tc := range []struct {
		a, b, expected uint64
	}{
		{10, 10, 0},
		{0, 0, 0},
		{110, 90, 20},
		{90, 110, 20},
		{3, 0, 300},
		{1, 0, 200},
		{0, 1, 200},
		{100, 95, 5},
	} {
		dev, err := matching.Deviation(num.NewUint(tc.a), num.NewUint(tc.b))
		require.NoError(t, err)
		assert.Equal(t, tc.expected, dev.Uint64(), "deviation(%d, %d)", tc.a, tc.b)
	}
}

func TestPrice(t *testing.T) {
	p, err := matching.Price(num.NewUint(120), num.NewUint(12))
	require.NoError(t, err)
	assert.True(t, p.EQ(num.Zero().Mul(num.NewUint(10), matching.PriceScale)))

	_, err = matching.Price(num.NewUint(1), num.Zero())
	assert.ErrorIs(t, err, types.ErrMatchingPrecondition)
}
