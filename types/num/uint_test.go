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

package num_test

import (
	"fmt"
	"math/big"
	"strings"
	"testing"

	"code.vegaprotocol.io/obavs/types/num"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint256Constructors(t *testing.T) {
	var expected uint64 = 42

	t.Run("test from uint64", func(t *testing.T) {
		n := num.NewUint(expected)
		assert.Equal(t, expected, n.Uint64())
	})

	t.Run("test from string", func(t *testing.T) {
		n, ok := num.UintFromString("42", 10)
		assert.False(t, ok)
		assert.Equal(t, expected, n.Uint64())
	})

	t.Run("test from big", func(t *testing.T) {
		n, ok := num.UintFromBig(big.NewInt(int64(expected)))
		assert.False(t, ok)
		assert.Equal(t, expected, n.Uint64())
	})
}

func TestUint256Clone(t *testing.T) {
	var (
		expect1 uint64 = 42
		expect2 uint64 = 84
		first          = num.NewUint(expect1)
		second         = first.Clone()
	)

	assert.Equal(t, expect1, first.Uint64())
	assert.Equal(t, expect1, second.Uint64())

	// now we change second value, and ensure 1 hasn't changed
	second.Add(second, num.NewUint(42))

	assert.Equal(t, expect1, first.Uint64())
	assert.Equal(t, expect2, second.Uint64())
}

func TestUint256Copy(t *testing.T) {
	var (
		expect1 uint64 = 42
		expect2 uint64 = 84
		first          = num.NewUint(expect1)
		second         = num.NewUint(expect2)
	)

	assert.Equal(t, expect1, first.Uint64())
	assert.Equal(t, expect2, second.Uint64())

	// now we copy first into second
	second.Set(first)

	// we check that first and second have the same value
	assert.Equal(t, expect1, first.Uint64())
	assert.Equal(t, expect1, second.Uint64())

	// and now we will update first to have expect2 value
	// and make sure it haven't changed second
	first.SetUint64(expect2)
	assert.Equal(t, expect2, first.Uint64())
	assert.Equal(t, expect1, second.Uint64())
}

func TestUInt256IsZero(t *testing.T) {
	zero := num.NewUint(0)
	assert.True(t, zero.IsZero())
}

func TestUint256Print(t *testing.T) {
	var (
		expected = "42"
		n        = num.NewUint(42)
	)

	assert.Equal(t, expected, fmt.Sprintf("%v", n))
}

func TestDeferDoCopy(t *testing.T) {
	var (
		expected1 uint64 = 42
		expected2 uint64 = 84
		n1               = num.NewUint(42)
	)

	n2 := *n1

	assert.Equal(t, expected1, n1.Uint64())
	assert.Equal(t, expected1, n2.Uint64())

	n2.SetUint64(expected2)
	assert.Equal(t, expected1, n1.Uint64())
	assert.Equal(t, expected2, n2.Uint64())
}

func TestUint256MulDiv(t *testing.T) {
	scale := num.MustUintFromString("1000000000000000000", 10)

	t.Run("exact ratio", func(t *testing.T) {
		r, overflow := num.Zero().MulDiv(num.NewUint(30), scale, num.NewUint(3))
		require.False(t, overflow)
		assert.Equal(t, "10000000000000000000", r.String())
	})

	t.Run("truncates toward zero", func(t *testing.T) {
		r, overflow := num.Zero().MulDiv(num.NewUint(10), num.NewUint(1), num.NewUint(3))
		require.False(t, overflow)
		assert.Equal(t, uint64(3), r.Uint64())
	})

	t.Run("wide intermediate product", func(t *testing.T) {
		// 2^200 * 2^100 / 2^120 = 2^180, the product alone does not fit 256 bits
		x, _ := num.UintFromBig(new(big.Int).Lsh(big.NewInt(1), 200))
		y, _ := num.UintFromBig(new(big.Int).Lsh(big.NewInt(1), 100))
		d, _ := num.UintFromBig(new(big.Int).Lsh(big.NewInt(1), 120))
		r, overflow := num.Zero().MulDiv(x, y, d)
		require.False(t, overflow)
		assert.Equal(t, new(big.Int).Lsh(big.NewInt(1), 180), r.BigInt())
	})

	t.Run("result overflow", func(t *testing.T) {
		x, _ := num.UintFromBig(new(big.Int).Lsh(big.NewInt(1), 200))
		_, overflow := num.Zero().MulDiv(x, x, num.NewUint(1))
		assert.True(t, overflow)
	})
}

func TestUint256Overflow(t *testing.T) {
	_, overflow := num.UintFromBig(new(big.Int).Lsh(big.NewInt(1), 256))
	assert.True(t, overflow)

	_, overflow = num.UintFromBig(big.NewInt(-1))
	assert.True(t, overflow)

	_, overflow = num.UintFromString("not a number", 10)
	assert.True(t, overflow)

	_, overflow = num.Zero().MulDiv(num.MustUintFromString("8"+strings.Repeat("0", 63), 16), num.NewUint(2), num.NewUint(1))
	assert.True(t, overflow)
}

func TestUint256Delta(t *testing.T) {
	d, neg := num.Zero().Delta(num.NewUint(10), num.NewUint(4))
	assert.False(t, neg)
	assert.Equal(t, uint64(6), d.Uint64())

	d, neg = num.Zero().Delta(num.NewUint(4), num.NewUint(10))
	assert.True(t, neg)
	assert.Equal(t, uint64(6), d.Uint64())
}

func TestUint256JSON(t *testing.T) {
	v := num.MustUintFromString("123456789012345678901234567890", 10)
	data, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"123456789012345678901234567890"`, string(data))

	var got num.Uint
	require.NoError(t, got.UnmarshalJSON(data))
	assert.True(t, got.EQ(v))

	require.NoError(t, got.UnmarshalJSON([]byte("42")))
	assert.Equal(t, uint64(42), got.Uint64())

	assert.Error(t, got.UnmarshalJSON([]byte(`"-1"`)))
}
