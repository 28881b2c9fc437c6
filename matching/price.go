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

package matching

import (
	"code.vegaprotocol.io/obavs/types"
	"code.vegaprotocol.io/obavs/types/num"

	"github.com/pkg/errors"
)

var (
	// PriceScale is the fixed point scale prices are expressed with.
	PriceScale = num.MustUintFromString("1000000000000000000", 10)

	hundred = num.NewUint(100)
)

// Price returns numerator / denominator scaled by PriceScale, truncated.
func Price(numerator, denominator *num.Uint) (*num.Uint, error) {
	if denominator.IsZero() {
		return nil, errors.Wrap(types.ErrMatchingPrecondition, "zero price denominator")
	}
	p, overflow := num.Zero().MulDiv(numerator, PriceScale, denominator)
	if overflow {
		return nil, errors.Wrap(types.ErrMatchingPrecondition, "price overflow")
	}
	return p, nil
}

// Deviation returns the percentage deviation between two prices,
// |a - b| * 100 / floor((a + b) / 2). The average is computed as
// min + |a - b| / 2 so it cannot overflow. Equal zero prices deviate by
// 0, prices of 0 and 1 have a truncated average of 0 and deviate by
// 200.
func Deviation(a, b *num.Uint) (*num.Uint, error) {
	diff, _ := num.Zero().Delta(a, b)
	avg := num.Zero().Div(diff, num.NewUint(2))
	avg.Add(avg, num.Min(a, b))
	if avg.IsZero() {
		if diff.IsZero() {
			return num.Zero(), nil
		}
		return num.NewUint(200), nil
	}
	dev, overflow := num.Zero().MulDiv(diff, hundred, avg)
	if overflow {
		return nil, errors.Wrap(types.ErrMatchingPrecondition, "deviation overflow")
	}
	return dev, nil
}
