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

package keystore

import (
	"code.vegaprotocol.io/obavs/config/encoding"
	"code.vegaprotocol.io/obavs/logging"
)

const (
	namedLogger       = "keystore"
	badgerNamedLogger = "badger"
)

// Config represents the configuration of the keystore package.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`
	// Dir is the directory of the badger database, relative paths are
	// resolved against the node home.
	Dir             string        `long:"dir" description:"Keystore database directory"`
	KeyName         string        `long:"key-name" description:"Name of the BLS key used to sign task responses"`
	EthereumKeyName string        `long:"ethereum-key-name" description:"Name of the ethereum key used to send transactions"`
	SyncWrites      encoding.Bool `long:"sync-writes" description:"Sync every write to disk"`
}

func NewDefaultConfig() Config {
	return Config{
		Level:           encoding.LogLevel{Level: logging.InfoLevel},
		Dir:             "keystore",
		KeyName:         "operator",
		EthereumKeyName: "transactor",
		SyncWrites:      true,
	}
}
