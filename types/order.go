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

package types

import (
	"fmt"

	"code.vegaprotocol.io/obavs/types/num"

	"github.com/ethereum/go-ethereum/common"
)

// Order is a limit order as posted to the task manager contract. The user
// offers AmountOwned of TokenOwned and wants AmountNotOwned of
// TokenNotOwned in exchange.
type Order struct {
	User              common.Address `json:"user"`
	TokenOwned        common.Address `json:"tokenOwned"`
	AmountOwned       *num.Uint      `json:"amountOwned"`
	TokenNotOwned     common.Address `json:"tokenNotOwned"`
	AmountNotOwned    *num.Uint      `json:"amountNotOwned"`
	Slippage          *num.Uint      `json:"slippage"`
	IsFilled          bool           `json:"isFilled"`
	IsPartiallyFilled bool           `json:"isPartiallyFilled"`
}

// Clone returns a deep copy of the order, nil amounts are replaced by zero.
func (o Order) Clone() Order {
	cpy := o
	cpy.AmountOwned = num.UintOrZero(o.AmountOwned).Clone()
	cpy.AmountNotOwned = num.UintOrZero(o.AmountNotOwned).Clone()
	cpy.Slippage = num.UintOrZero(o.Slippage).Clone()
	return cpy
}

// Equal compares two orders by value.
func (o Order) Equal(oth Order) bool {
	return o.User == oth.User &&
		o.TokenOwned == oth.TokenOwned &&
		num.UintOrZero(o.AmountOwned).EQ(num.UintOrZero(oth.AmountOwned)) &&
		o.TokenNotOwned == oth.TokenNotOwned &&
		num.UintOrZero(o.AmountNotOwned).EQ(num.UintOrZero(oth.AmountNotOwned)) &&
		num.UintOrZero(o.Slippage).EQ(num.UintOrZero(oth.Slippage)) &&
		o.IsFilled == oth.IsFilled &&
		o.IsPartiallyFilled == oth.IsPartiallyFilled
}

func (o Order) String() string {
	return fmt.Sprintf(
		"user(%s) owned(%s %s) notOwned(%s %s) slippage(%s) filled(%v) partiallyFilled(%v)",
		o.User.Hex(),
		num.UintOrZero(o.AmountOwned).String(),
		o.TokenOwned.Hex(),
		num.UintOrZero(o.AmountNotOwned).String(),
		o.TokenNotOwned.Hex(),
		num.UintOrZero(o.Slippage).String(),
		o.IsFilled,
		o.IsPartiallyFilled,
	)
}

// OrderBook is the snapshot of open orders a task was created with.
type OrderBook []Order

// Clone deep copies every order of the book.
func (b OrderBook) Clone() OrderBook {
	if b == nil {
		return nil
	}
	out := make(OrderBook, 0, len(b))
	for _, o := range b {
		out = append(out, o.Clone())
	}
	return out
}
