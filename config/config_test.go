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

package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"code.vegaprotocol.io/obavs/config"
	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/notary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWrite(t *testing.T) {
	t.Run("default configuration round trip", testDefaultRoundTrip)
	t.Run("existing file is kept", testNoOverwrite)
	t.Run("missing values keep their defaults", testPartialFile)
	t.Run("relative paths are resolved", testResolvePaths)
}

func testDefaultRoundTrip(t *testing.T) {
	root := t.TempDir()
	cfg := config.NewDefaultConfig()
	cfg.Notary.Operators = []notary.OperatorKey{{PubKeyG1: "0x01", PubKeyG2: "0x02"}}
	cfg.Chain.TaskManagerAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	require.NoError(t, config.Write(root, cfg, false))

	got, err := config.Read(root)
	require.NoError(t, err)
	assert.Equal(t, cfg, *got)
}

func testNoOverwrite(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, config.Write(root, config.NewDefaultConfig(), false))

	err := config.Write(root, config.NewDefaultConfig(), false)
	assert.ErrorIs(t, err, config.ErrConfigExists)
	assert.NoError(t, config.Write(root, config.NewDefaultConfig(), true))
}

func testPartialFile(t *testing.T) {
	root := t.TempDir()
	content := "[API]\nPort = 9999\n\n[Notary]\nRetentionWindow = \"1m\"\n"
	require.NoError(t, os.WriteFile(config.Path(root), []byte(content), 0o600))

	got, err := config.Read(root)
	require.NoError(t, err)
	assert.Equal(t, 9999, got.API.Port)
	assert.Equal(t, time.Minute, got.Notary.RetentionWindow.Get())

	def := config.NewDefaultConfig()
	assert.Equal(t, def.API.IP, got.API.IP)
	assert.Equal(t, def.Notary.JanitorInterval, got.Notary.JanitorInterval)
	assert.Equal(t, def.Chain, got.Chain)
}

func testResolvePaths(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Audit.Dir = "/var/lib/audit"
	cfg.ResolvePaths("/home/obavs")
	assert.Equal(t, filepath.Join("/home/obavs", "keystore"), cfg.Keystore.Dir)
	assert.Equal(t, "/var/lib/audit", cfg.Audit.Dir)
}

func TestWatcher(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, config.Write(root, config.NewDefaultConfig(), false))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := config.NewWatcher(ctx, logging.NewTestLogger(), root)
	require.NoError(t, err)
	assert.Equal(t, logging.InfoLevel, w.Get().Notary.Level.Level)

	updates := make(chan config.Config, 16)
	w.OnConfigUpdate(func(cfg config.Config) {
		select {
		case updates <- cfg:
		default:
		}
	})

	cfg := config.NewDefaultConfig()
	cfg.Notary.Level.Level = logging.DebugLevel
	require.NoError(t, config.Write(root, cfg, true))

	timeout := time.After(5 * time.Second)
	for {
		select {
		case got := <-updates:
			// a truncated file can be seen first
			if got.Notary.Level.Get() != logging.DebugLevel {
				continue
			}
			assert.Equal(t, logging.DebugLevel, w.Get().Notary.Level.Level)
			return
		case <-timeout:
			t.Fatal("no configuration update received")
		}
	}
}

func TestWatcherHandlers(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, config.Write(root, config.NewDefaultConfig(), false))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	override := func(cfg *config.Config) error {
		cfg.API.Port = 1234
		return nil
	}
	w, err := config.NewWatcher(ctx, logging.NewTestLogger(), root, config.Use(override))
	require.NoError(t, err)
	assert.Equal(t, 1234, w.Get().API.Port)
}

func TestPassphraseFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passphrase")
	require.NoError(t, os.WriteFile(path, []byte("s3cr3t\n"), 0o600))

	pass, err := config.Passphrase(path).Get("keystore", true)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", pass)

	_, err = config.Passphrase(filepath.Join(t.TempDir(), "missing")).Get("keystore", false)
	assert.Error(t, err)
}
