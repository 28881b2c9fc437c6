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

package operator

import (
	"time"

	"code.vegaprotocol.io/obavs/config/encoding"
	"code.vegaprotocol.io/obavs/logging"
)

const namedLogger = "operator"

// Config represents the configuration of the operator pipeline.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`
	// TaskTimeout bounds the whole handling of a task, from matching to
	// the aggregator receipt.
	TaskTimeout encoding.Duration `long:"task-timeout" description:"Time allowed to handle a single task"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:       encoding.LogLevel{Level: logging.InfoLevel},
		TaskTimeout: encoding.Duration{Duration: 30 * time.Second},
	}
}
