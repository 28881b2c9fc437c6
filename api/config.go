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
	"time"

	"code.vegaprotocol.io/obavs/config/encoding"
	"code.vegaprotocol.io/obavs/logging"
)

const namedLogger = "api"

// Config represent the configuration of the aggregator JSON-RPC server.
type Config struct {
	Level          encoding.LogLevel `long:"log-level"`
	IP             string            `long:"ip" description:"Bind to address <ip>"`
	Port           int               `long:"port" description:"Listen for connection on port <port>"`
	Timeout        encoding.Duration `long:"timeout" description:"Read and write timeout of the server"`
	MaxBodySize    int64             `long:"max-body-size" description:"Maximum size of a request body in bytes"`
	AllowedOrigins []string          `long:"allowed-origins" description:"Allowed origins for CORS"`
	CORSMaxAge     int               `long:"cors-max-age" description:"Max age (in seconds) for preflight cache"`
}

// ClientConfig represent the configuration of the operator side client.
type ClientConfig struct {
	Level         encoding.LogLevel `long:"log-level"`
	URL           string            `long:"url" description:"Address of the aggregator"`
	Timeout       encoding.Duration `long:"timeout" description:"Timeout of a single call"`
	Retries       uint64            `long:"retries" description:"Number of retries of a call"`
	RetryInterval encoding.Duration `long:"retry-interval" description:"Initial interval between two retries"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:          encoding.LogLevel{Level: logging.InfoLevel},
		IP:             "0.0.0.0",
		Port:           8090,
		Timeout:        encoding.Duration{Duration: 30 * time.Second},
		MaxBodySize:    1 << 20,
		AllowedOrigins: []string{"*"},
	}
}

func NewDefaultClientConfig() ClientConfig {
	return ClientConfig{
		Level:         encoding.LogLevel{Level: logging.InfoLevel},
		URL:           "http://localhost:8090",
		Timeout:       encoding.Duration{Duration: 10 * time.Second},
		Retries:       5,
		RetryInterval: encoding.Duration{Duration: 500 * time.Millisecond},
	}
}
