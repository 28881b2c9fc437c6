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

// Package matching computes the settlement an operator proposes for a new
// order. Every operator must reach the same result from the same inputs,
// so the code here is pure integer arithmetic with no time, randomness or
// map iteration.
package matching

import (
	"code.vegaprotocol.io/obavs/types"
	"code.vegaprotocol.io/obavs/types/num"
)

// Match scans book in order and settles incoming against the first
// eligible counter order. A counter order is eligible when it belongs to
// another user, neither side is filled, it offers the asset incoming
// wants, its price is no worse than the incoming limit price and the
// price deviation is within the incoming slippage.
//
// Without a match both orders of the response echo incoming. The inputs
// are never modified.
func Match(incoming types.Order, book types.OrderBook, taskIndex uint32) (types.TaskResponse, error) {
	resp := types.TaskResponse{
		ReferenceTaskIndex: taskIndex,
		NewOrder:           incoming.Clone(),
		NewOtherOrder:      incoming.Clone(),
	}

	// a filled order cannot match, no price is computed for it
	if incoming.IsFilled {
		return resp, nil
	}

	if err := validateIncoming(incoming); err != nil {
		return types.TaskResponse{}, err
	}

	// units of the offered asset per unit of the wanted asset
	incomingPrice, err := Price(incoming.AmountOwned, incoming.AmountNotOwned)
	if err != nil {
		return types.TaskResponse{}, err
	}

	for i, counter := range book {
		if counter.User == incoming.User || counter.IsFilled {
			continue
		}
		if counter.TokenOwned != incoming.TokenNotOwned {
			continue
		}
		if err := validateCandidate(i, counter); err != nil {
			return types.TaskResponse{}, err
		}

		counterPrice, err := Price(counter.AmountNotOwned, counter.AmountOwned)
		if err != nil {
			return types.TaskResponse{}, err
		}
		if counterPrice.GT(incomingPrice) {
			continue
		}

		dev, err := Deviation(incomingPrice, counterPrice)
		if err != nil {
			return types.TaskResponse{}, err
		}
		if dev.GT(incoming.Slippage) {
			continue
		}

		resp.NewOrder, resp.NewOtherOrder = settle(incoming, counter)
		resp.MatchedOrderIndex = uint64(i)
		resp.Matched = true
		return resp, nil
	}

	return resp, nil
}

// settle compares the wanted amounts of both orders, the smaller side is
// filled and the larger side keeps the difference.
func settle(incoming, counter types.Order) (newOrder, newOther types.Order) {
	newOrder, newOther = incoming.Clone(), counter.Clone()

	switch {
	case counter.AmountNotOwned.EQ(incoming.AmountNotOwned):
		fill(&newOrder)
		fill(&newOther)
	case counter.AmountNotOwned.GT(incoming.AmountNotOwned):
		fill(&newOrder)
		newOther.IsPartiallyFilled = true
		newOther.AmountNotOwned = num.Zero().Sub(counter.AmountNotOwned, incoming.AmountNotOwned)
	default:
		fill(&newOther)
		newOrder.IsPartiallyFilled = true
		newOrder.AmountNotOwned = num.Zero().Sub(incoming.AmountNotOwned, counter.AmountNotOwned)
	}
	return newOrder, newOther
}

func fill(o *types.Order) {
	o.IsFilled = true
	o.AmountNotOwned = num.Zero()
}
