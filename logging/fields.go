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

package logging

import (
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Binary constructs a field that carries an opaque binary blob.
func Binary(key string, val []byte) zap.Field {
	return zap.Binary(key, val)
}

// Bool constructs a field that carries a bool.
func Bool(key string, val bool) zap.Field {
	return zap.Bool(key, val)
}

// Duration constructs a field with the given key and value.
func Duration(key string, val time.Duration) zap.Field {
	return zap.Duration(key, val)
}

// Error is shorthand for the common idiom NamedError("error", err).
func Error(err error) zap.Field {
	return zap.Error(err)
}

// Float64 constructs a field that carries a float64.
func Float64(key string, val float64) zap.Field {
	return zap.Float64(key, val)
}

// Int constructs a field with the given key and value.
func Int(key string, val int) zap.Field {
	return zap.Int(key, val)
}

// Int64 constructs a field with the given key and value.
func Int64(key string, val int64) zap.Field {
	return zap.Int64(key, val)
}

// String constructs a field with the given key and value.
func String(key string, val string) zap.Field {
	return zap.String(key, val)
}

// Strings constructs a field that carries a slice of strings.
func Strings(key string, val []string) zap.Field {
	return zap.Strings(key, val)
}

// Time constructs a field with the given key and value.
func Time(key string, val time.Time) zap.Field {
	return zap.Time(key, val)
}

// Uint8 constructs a field with the given key and value.
func Uint8(key string, val uint8) zap.Field {
	return zap.Uint8(key, val)
}

// Uint32 constructs a field with the given key and value.
func Uint32(key string, val uint32) zap.Field {
	return zap.Uint32(key, val)
}

// Uint64 constructs a field with the given key and value.
func Uint64(key string, val uint64) zap.Field {
	return zap.Uint64(key, val)
}

// Hex constructs a field carrying the hex encoding of val.
func Hex(key string, val []byte) zap.Field {
	return zap.String(key, hex.EncodeToString(val))
}

// Stringer constructs a field with the given key and the output of the value's String method.
func Stringer(key string, val fmt.Stringer) zap.Field {
	return zap.Stringer(key, val)
}

// TaskIndex constructs a field carrying an on-chain task index.
func TaskIndex(idx uint32) zap.Field {
	return zap.Uint32("task-index", idx)
}

// OperatorID constructs a field carrying a hex encoded operator identity.
func OperatorID(id [32]byte) zap.Field {
	return zap.String("operator-id", "0x"+hex.EncodeToString(id[:]))
}
