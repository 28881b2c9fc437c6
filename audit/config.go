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

package audit

import (
	"code.vegaprotocol.io/obavs/config/encoding"
	"code.vegaprotocol.io/obavs/logging"
)

const namedLogger = "audit"

// Config represents the configuration of the audit package.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`
	// Dir is the directory of the leveldb database, relative paths are
	// resolved against the node home.
	Dir      string        `long:"dir" description:"Audit database directory"`
	InMemory encoding.Bool `long:"in-memory" description:"Keep the audit trail in memory only"`
}

func NewDefaultConfig() Config {
	return Config{
		Level:    encoding.LogLevel{Level: logging.InfoLevel},
		Dir:      "audit",
		InMemory: false,
	}
}
