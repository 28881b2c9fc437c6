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

	"github.com/pkg/errors"
)

func validateIncoming(o types.Order) (err error) {
	if o.AmountNotOwned == nil || o.AmountNotOwned.IsZero() {
		err = errors.Wrap(types.ErrMatchingPrecondition, "incoming order wants a zero amount")
	} else if o.AmountOwned == nil {
		err = errors.Wrap(types.ErrMatchingPrecondition, "incoming order has no offered amount")
	} else if o.Slippage == nil {
		err = errors.Wrap(types.ErrMatchingPrecondition, "incoming order has no slippage")
	}
	return err
}

func validateCandidate(idx int, o types.Order) (err error) {
	if o.AmountOwned == nil || o.AmountOwned.IsZero() {
		err = errors.Wrapf(types.ErrMatchingPrecondition, "order book entry %d offers a zero amount", idx)
	} else if o.AmountNotOwned == nil || o.AmountNotOwned.IsZero() {
		err = errors.Wrapf(types.ErrMatchingPrecondition, "order book entry %d wants a zero amount", idx)
	}
	return err
}
