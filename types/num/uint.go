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

package num

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/holiman/uint256"
)

var ErrInvalidUintString = errors.New("invalid uint string")

// Uint A wrapper for a 256 bits unsigned int.
type Uint struct {
	u uint256.Int
}

// NewUint creates a new Uint with the value of the
// uint64 passed as a paramter.
func NewUint(val uint64) *Uint {
	return &Uint{*uint256.NewInt(val)}
}

// Zero returns a new Uint set to 0.
func Zero() *Uint {
	return NewUint(0)
}

// Min returns the smallest of the 2 numbers.
func Min(a, b *Uint) *Uint {
	if a.LT(b) {
		return a
	}
	return b
}

// UintFromBig construct a new Uint with a big.Int
// returns true if overflow happened.
func UintFromBig(b *big.Int) (*Uint, bool) {
	if b == nil {
		return NewUint(0), false
	}
	if b.Sign() < 0 {
		return NewUint(0), true
	}
	u, overflow := uint256.FromBig(b)
	if overflow {
		return NewUint(0), true
	}
	return &Uint{*u}, false
}

// UintFromString created a new Uint from a string
// interpreted using the give base.
// A big.Int is used to read the string, so
// all error related to big.Int parsing applied here.
// will return true if an error/overflow happened.
func UintFromString(str string, base int) (*Uint, bool) {
	b, ok := big.NewInt(0).SetString(str, base)
	if !ok {
		return NewUint(0), true
	}
	return UintFromBig(b)
}

// MustUintFromString is UintFromString panicking on overflow or
// parse error. Only meant for constants and tests.
func MustUintFromString(str string, base int) *Uint {
	u, overflow := UintFromString(str, base)
	if overflow {
		panic(fmt.Sprintf("invalid uint: %s", str))
	}
	return u
}

// UintOrZero returns u or a new zero value when u is nil.
func UintOrZero(u *Uint) *Uint {
	if u == nil {
		return Zero()
	}
	return u
}

func (z *Uint) Set(oth *Uint) *Uint {
	z.u.Set(&oth.u)
	return z
}

func (z *Uint) SetUint64(val uint64) *Uint {
	z.u.SetUint64(val)
	return z
}

func (z Uint) Uint64() uint64 {
	return z.u.Uint64()
}

// IsUint64 reports whether the value fits in an uint64.
func (z Uint) IsUint64() bool {
	return z.u.IsUint64()
}

func (z Uint) BigInt() *big.Int {
	return z.u.ToBig()
}

// Add will add x and y then store the result
// into z
// this is equivalent to:
// `z = x + y`
// z is returned for convenience, no
// new variable is created.
func (z *Uint) Add(x, y *Uint) *Uint {
	z.u.Add(&x.u, &y.u)
	return z
}

// Sub will substract y from x then store the result
// into z
// this is equivalent to:
// `z = x - y`
// z is returned for convenience, no
// new variable is created.
func (z *Uint) Sub(x, y *Uint) *Uint {
	z.u.Sub(&x.u, &y.u)
	return z
}

// Delta will subtract y from x and store the result
// unless x-y overflowed, in which case the neg field will be set
// and the result of y - x is set instead.
func (z *Uint) Delta(x, y *Uint) (*Uint, bool) {
	// y is the bigger value - swap the two
	if y.GT(x) {
		_ = z.Sub(y, x)
		return z, true
	}
	_ = z.Sub(x, y)
	return z, false
}

// Mul will multiply x and y then store the result
// into z
// this is equivalent to:
// `z = x * y`
// z is returned for convenience, no
// new variable is created.
func (z *Uint) Mul(x, y *Uint) *Uint {
	z.u.Mul(&x.u, &y.u)
	return z
}

// Div will divide x by y then store the result
// into z, truncating toward zero
// this is equivalent to:
// `z = x / y`
// z is returned for convenience, no
// new variable is created.
func (z *Uint) Div(x, y *Uint) *Uint {
	z.u.Div(&x.u, &y.u)
	return z
}

// MulDiv computes x * y / d with a 512 bits intermediate
// product, the division truncates toward zero.
// True is returned if the result does not fit in 256 bits.
func (z *Uint) MulDiv(x, y, d *Uint) (*Uint, bool) {
	_, overflow := z.u.MulDivOverflow(&x.u, &y.u, &d.u)
	return z, overflow
}

// LT with check if the value stored in u is
// lesser than oth
// this is equivalent to:
// `u < oth`
func (u Uint) LT(oth *Uint) bool {
	return u.u.Lt(&oth.u)
}

// EQ with check if the value stored in u is
// equal to oth
// this is equivalent to:
// `u == oth`
func (u Uint) EQ(oth *Uint) bool {
	return u.u.Eq(&oth.u)
}

// GT with check if the value stored in u is
// greater than oth
// this is equivalent to:
// `u > oth`
func (u Uint) GT(oth *Uint) bool {
	return u.u.Gt(&oth.u)
}

// GTE with check if the value stored in u is
// greath than or equal to oth
// this is equivalent to:
// `u >= oth`
func (u Uint) GTE(oth *Uint) bool {
	return u.u.Gt(&oth.u) || u.u.Eq(&oth.u)
}

// IsZero return wether u == 0 or not.
func (u Uint) IsZero() bool {
	return u.u.IsZero()
}

// Clone create copy of this value
// this is the equivalent to:
// x := z.
func (z Uint) Clone() *Uint {
	return &Uint{z.u}
}

// Hex returns the hexadecimal representation
// of the stored value.
func (u Uint) Hex() string {
	return u.u.Hex()
}

// String returns the stored value as a string
// this is internally using big.Int.String().
func (u Uint) String() string {
	return u.u.ToBig().String()
}

// Format implement fmt.Formatter.
func (u Uint) Format(s fmt.State, ch rune) {
	u.u.Format(s, ch)
}

// Bytes return the internal representation
// of the Uint as [32]bytes, BigEndian encoded
// array.
func (u Uint) Bytes() [32]byte {
	return u.u.Bytes32()
}

// MarshalJSON encodes the value as a quoted base 10 string so
// amounts above 2^53 survive JSON decoders.
func (u Uint) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(u.String())), nil
}

func (u *Uint) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		s = string(data)
	}
	v, overflow := UintFromString(s, 10)
	if overflow {
		return fmt.Errorf("%w: %s", ErrInvalidUintString, s)
	}
	u.u = v.u
	return nil
}
