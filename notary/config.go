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

package notary

import (
	"time"

	"code.vegaprotocol.io/obavs/config/encoding"
	"code.vegaprotocol.io/obavs/logging"
)

const namedLogger = "notary"

// OperatorKey is the pair of public keys of an operator, both 0x prefixed
// hex of the compressed points.
type OperatorKey struct {
	PubKeyG1 string
	PubKeyG2 string
}

// Config represents the configuration of the notary engine.
type Config struct {
	Level            encoding.LogLevel `long:"log-level"`
	RetentionWindow  encoding.Duration `long:"retention-window" description:"How long a task can wait for quorum before being evicted"`
	JanitorInterval  encoding.Duration `long:"janitor-interval" description:"How often expired tasks are looked for"`
	SubmitTimeout    encoding.Duration `long:"submit-timeout" description:"Time allowed to hand an aggregate to the chain"`
	RetiredCacheSize int               `long:"retired-cache-size" description:"Number of retired task indices remembered"`

	Operators []OperatorKey
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:            encoding.LogLevel{Level: logging.InfoLevel},
		RetentionWindow:  encoding.Duration{Duration: 5 * time.Minute},
		JanitorInterval:  encoding.Duration{Duration: 10 * time.Second},
		SubmitTimeout:    encoding.Duration{Duration: time.Minute},
		RetiredCacheSize: 4096,
	}
}
