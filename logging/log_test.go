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

package logging_test

import (
	"testing"

	"code.vegaprotocol.io/obavs/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for s, expected := range map[string]logging.Level{
		"debug":   logging.DebugLevel,
		"Info":    logging.InfoLevel,
		"warning": logging.WarnLevel,
		"warn":    logging.WarnLevel,
		"ERROR":   logging.ErrorLevel,
		"panic":   logging.PanicLevel,
		"fatal":   logging.FatalLevel,
	} {
		lvl, err := logging.ParseLevel(s)
		require.NoError(t, err)
		assert.Equal(t, expected, lvl)
	}

	_, err := logging.ParseLevel("chatty")
	assert.Error(t, err)
}

func TestLevelTextRoundTrip(t *testing.T) {
	for _, lvl := range []logging.Level{logging.DebugLevel, logging.InfoLevel, logging.WarnLevel, logging.ErrorLevel} {
		txt, err := lvl.MarshalText()
		require.NoError(t, err)
		var got logging.Level
		require.NoError(t, got.UnmarshalText(txt))
		assert.Equal(t, lvl, got)
	}
}

func TestNamedLogger(t *testing.T) {
	log := logging.NewTestLogger()
	defer log.AtExit()

	notary := log.Named("notary")
	assert.Equal(t, "notary", notary.GetName())
	assert.Equal(t, "notary.janitor", notary.Named("janitor").GetName())

	// levels of a named logger are independent from the parent
	notary.SetLevel(logging.DebugLevel)
	assert.Equal(t, logging.DebugLevel, notary.GetLevel())
	assert.Equal(t, logging.WarnLevel, log.GetLevel())
}
