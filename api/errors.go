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

package api

import (
	"code.vegaprotocol.io/obavs/libs/jsonrpc"
	"code.vegaprotocol.io/obavs/types"

	"github.com/pkg/errors"
)

const (
	ErrorCodeUnknownTask         jsonrpc.ErrorCode = -32001
	ErrorCodeUnknownOperator     jsonrpc.ErrorCode = -32002
	ErrorCodeInvalidSignature    jsonrpc.ErrorCode = -32003
	ErrorCodeConflictingProposal jsonrpc.ErrorCode = -32004
)

var rejections = []struct {
	code jsonrpc.ErrorCode
	err  error
}{
	{ErrorCodeUnknownTask, types.ErrUnknownTask},
	{ErrorCodeUnknownOperator, types.ErrUnknownOperator},
	{ErrorCodeInvalidSignature, types.ErrInvalidSignature},
	{ErrorCodeConflictingProposal, types.ErrConflictingProposal},
}

// toErrorDetails maps a notary rejection on its JSON-RPC error.
func toErrorDetails(err error) *jsonrpc.ErrorDetails {
	for _, r := range rejections {
		if errors.Is(err, r.err) {
			return jsonrpc.NewErrorDetails(r.code, r.err.Error(), err)
		}
	}
	return jsonrpc.NewErrorDetails(jsonrpc.ErrorCodeServerError, "Server error", err)
}

// fromErrorDetails gives back the sentinel error of a rejection, so callers
// can test it with errors.Is.
func fromErrorDetails(d *jsonrpc.ErrorDetails) error {
	for _, r := range rejections {
		if d.Code == r.code {
			return errors.Wrap(r.err, d.Data)
		}
	}
	return d
}
