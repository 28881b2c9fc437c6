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

package jsonrpc_test

import (
	"encoding/json"
	"errors"
	"testing"

	"code.vegaprotocol.io/obavs/libs/jsonrpc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestCheck(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		req, err := jsonrpc.NewRequest("echo", "1", map[string]int{"a": 1})
		require.NoError(t, err)
		assert.NoError(t, req.Check())
		assert.False(t, req.IsNotification())
		assert.JSONEq(t, `{"a":1}`, string(req.Params))
	})

	t.Run("wrong version", func(t *testing.T) {
		req := jsonrpc.Request{Version: "1.0", Method: "echo"}
		assert.ErrorIs(t, req.Check(), jsonrpc.ErrOnlySupportJSONRPC2)
	})

	t.Run("missing method", func(t *testing.T) {
		req := jsonrpc.Request{Version: jsonrpc.VERSION2}
		assert.ErrorIs(t, req.Check(), jsonrpc.ErrMethodIsRequired)
		assert.True(t, req.IsNotification())
	})
}

func TestResponses(t *testing.T) {
	t.Run("successful response carries the result", func(t *testing.T) {
		resp := jsonrpc.NewSuccessfulResponse("7", map[string]string{"status": "ok"})
		buf, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.JSONEq(t, `{"jsonrpc":"2.0","result":{"status":"ok"},"id":"7"}`, string(buf))
	})

	t.Run("error response carries the details", func(t *testing.T) {
		resp := jsonrpc.NewErrorResponse("7", jsonrpc.NewInvalidParams(errors.New("bad operator id")))
		buf, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.JSONEq(t, `{"jsonrpc":"2.0","error":{"code":-32602,"message":"Invalid params","data":"bad operator id"},"id":"7"}`, string(buf))
		assert.False(t, resp.Error.IsInternalError())
		assert.Equal(t, "Invalid params (-32602): bad operator id", resp.Error.Error())
	})

	t.Run("unmarshalable result is an internal error", func(t *testing.T) {
		resp := jsonrpc.NewSuccessfulResponse("7", make(chan int))
		require.NotNil(t, resp.Error)
		assert.True(t, resp.Error.IsInternalError())
	})
}
