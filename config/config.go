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

// Package config ties the per package configurations together and loads
// them from the config.toml file of the node home.
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"code.vegaprotocol.io/obavs/api"
	"code.vegaprotocol.io/obavs/audit"
	"code.vegaprotocol.io/obavs/chain"
	"code.vegaprotocol.io/obavs/keystore"
	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/metrics"
	"code.vegaprotocol.io/obavs/notary"
	"code.vegaprotocol.io/obavs/operator"
	"code.vegaprotocol.io/obavs/signing"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

var ErrConfigExists = errors.New("configuration already exists")

// Config ties together all other application configuration types.
type Config struct {
	Logging  logging.Config   `group:"Logging" namespace:"logging"`
	API      api.Config       `group:"API" namespace:"api"`
	Client   api.ClientConfig `group:"Client" namespace:"client"`
	Notary   notary.Config    `group:"Notary" namespace:"notary"`
	Audit    audit.Config     `group:"Audit" namespace:"audit"`
	Keystore keystore.Config  `group:"Keystore" namespace:"keystore"`
	Signing  signing.Config   `group:"Signing" namespace:"signing"`
	Chain    chain.Config     `group:"Chain" namespace:"chain"`
	Operator operator.Config  `group:"Operator" namespace:"operator"`
	Metrics  metrics.Config   `group:"Metrics" namespace:"metrics"`
}

// NewDefaultConfig returns a set of default configs for all packages, as
// specified at the per package config level.
func NewDefaultConfig() Config {
	return Config{
		Logging:  logging.NewDefaultConfig(),
		API:      api.NewDefaultConfig(),
		Client:   api.NewDefaultClientConfig(),
		Notary:   notary.NewDefaultConfig(),
		Audit:    audit.NewDefaultConfig(),
		Keystore: keystore.NewDefaultConfig(),
		Signing:  signing.NewDefaultConfig(),
		Chain:    chain.NewDefaultConfig(),
		Operator: operator.NewDefaultConfig(),
		Metrics:  metrics.NewDefaultConfig(),
	}
}

// ResolvePaths makes the database directories absolute, relative ones
// being taken from rootPath.
func (c *Config) ResolvePaths(rootPath string) {
	if !filepath.IsAbs(c.Keystore.Dir) {
		c.Keystore.Dir = filepath.Join(rootPath, c.Keystore.Dir)
	}
	if !filepath.IsAbs(c.Audit.Dir) {
		c.Audit.Dir = filepath.Join(rootPath, c.Audit.Dir)
	}
}

// Path returns the location of the configuration file in rootPath.
func Path(rootPath string) string {
	return filepath.Join(rootPath, configFileName)
}

// Read loads the configuration of rootPath, missing values keep their
// default.
func Read(rootPath string) (*Config, error) {
	buf, err := os.ReadFile(Path(rootPath))
	if err != nil {
		return nil, err
	}
	cfg := NewDefaultConfig()
	if _, err := toml.Decode(string(buf), &cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration file")
	}
	return &cfg, nil
}

// Write saves cfg in rootPath. An existing file is only replaced when
// overwrite is set.
func Write(rootPath string, cfg Config, overwrite bool) error {
	path := Path(rootPath)
	if _, err := os.Stat(path); err == nil && !overwrite {
		return errors.Wrapf(ErrConfigExists, "at path %s", path)
	}
	if err := os.MkdirAll(rootPath, 0o700); err != nil {
		return errors.Wrap(err, "couldn't create the configuration directory")
	}

	// write configuration to toml
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}
