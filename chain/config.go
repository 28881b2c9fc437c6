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

package chain

import (
	"time"

	"code.vegaprotocol.io/obavs/config/encoding"
	"code.vegaprotocol.io/obavs/logging"
)

const namedLogger = "chain"

// Config represents the configuration of the chain package.
type Config struct {
	Level              encoding.LogLevel `long:"log-level"`
	RPCURL             string            `long:"rpc-url" description:"Ethereum JSON-RPC endpoint"`
	ChainID            uint64            `long:"chain-id" description:"Expected chain id, 0 to accept the one reported by the node"`
	TaskManagerAddress string            `long:"task-manager-address" description:"Address of the task manager contract"`
	StartBlock         uint64            `long:"start-block" description:"First block scanned for new tasks"`
	PollInterval       encoding.Duration `long:"poll-interval" description:"How often new blocks are looked for"`
	MaxBlockRange      uint64            `long:"max-block-range" description:"Maximum number of blocks requested in a single log query"`
	Confirmations      uint64            `long:"confirmations" description:"Number of blocks a log needs on top of it before being processed"`
	RetryInterval      encoding.Duration `long:"retry-interval" description:"Time between two attempts of a failed node call"`
	ConfirmTimeout     encoding.Duration `long:"confirm-timeout" description:"Time allowed for a transaction to be mined"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:          encoding.LogLevel{Level: logging.InfoLevel},
		RPCURL:         "http://127.0.0.1:8545",
		PollInterval:   encoding.Duration{Duration: 2 * time.Second},
		MaxBlockRange:  1000,
		RetryInterval:  encoding.Duration{Duration: time.Second},
		ConfirmTimeout: encoding.Duration{Duration: 2 * time.Minute},
	}
}
