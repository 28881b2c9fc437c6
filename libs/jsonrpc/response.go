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

package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// ErrorCode is a code from the JSON-RPC 2.0 specification, or one of the
// server defined codes between -32000 and -32099.
type ErrorCode int32

const (
	// ErrorCodeParseError is returned when invalid JSON was received.
	ErrorCodeParseError ErrorCode = -32700
	// ErrorCodeInvalidRequest is returned when the JSON sent is not a valid
	// request object.
	ErrorCodeInvalidRequest ErrorCode = -32600
	// ErrorCodeMethodNotFound is returned when the method does not exist.
	ErrorCodeMethodNotFound ErrorCode = -32601
	// ErrorCodeInvalidParams is returned when the parameters are invalid.
	ErrorCodeInvalidParams ErrorCode = -32602
	// ErrorCodeInternalError is returned on an unexpected server failure.
	ErrorCodeInternalError ErrorCode = -32603
	// ErrorCodeServerError is the base of the server defined codes.
	ErrorCodeServerError ErrorCode = -32000
)

type ErrorDetails struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Data    string    `json:"data,omitempty"`
}

func (d *ErrorDetails) Error() string {
	if d.Data == "" {
		return fmt.Sprintf("%s (%d)", d.Message, d.Code)
	}
	return fmt.Sprintf("%s (%d): %s", d.Message, d.Code, d.Data)
}

func (d *ErrorDetails) IsInternalError() bool {
	return d.Code == ErrorCodeInternalError
}

func NewErrorDetails(code ErrorCode, message string, err error) *ErrorDetails {
	d := &ErrorDetails{
		Code:    code,
		Message: message,
	}
	if err != nil {
		d.Data = err.Error()
	}
	return d
}

func NewParseError(err error) *ErrorDetails {
	return NewErrorDetails(ErrorCodeParseError, "Parse error", err)
}

func NewInvalidRequest(err error) *ErrorDetails {
	return NewErrorDetails(ErrorCodeInvalidRequest, "Invalid Request", err)
}

func NewMethodNotFound(method string) *ErrorDetails {
	return NewErrorDetails(ErrorCodeMethodNotFound, "Method not found", fmt.Errorf("method %q is not supported", method))
}

func NewInvalidParams(err error) *ErrorDetails {
	return NewErrorDetails(ErrorCodeInvalidParams, "Invalid params", err)
}

func NewInternalError(err error) *ErrorDetails {
	return NewErrorDetails(ErrorCodeInternalError, "Internal error", err)
}

type Response struct {
	// Version specifies the version of the JSON-RPC protocol.
	// MUST be exactly "2.0".
	Version string `json:"jsonrpc"`

	// Result is set on success, it is never set alongside Error.
	Result json.RawMessage `json:"result,omitempty"`

	// Error is set when the invocation failed.
	Error *ErrorDetails `json:"error,omitempty"`

	// ID is the one of the request, empty when the request could not be read.
	ID string `json:"id"`
}

func NewSuccessfulResponse(id string, result interface{}) *Response {
	raw, err := json.Marshal(result)
	if err != nil {
		return NewErrorResponse(id, NewInternalError(err))
	}
	return &Response{
		Version: VERSION2,
		Result:  raw,
		ID:      id,
	}
}

func NewErrorResponse(id string, details *ErrorDetails) *Response {
	return &Response{
		Version: VERSION2,
		Error:   details,
		ID:      id,
	}
}
