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

package notary_test

import (
	"testing"

	"code.vegaprotocol.io/obavs/crypto/bls"
	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/notary"
	"code.vegaprotocol.io/obavs/signing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func operatorKey(t *testing.T, kp *bls.KeyPair) notary.OperatorKey {
	t.Helper()
	g1, err := kp.PubKeyG1.MarshalText()
	require.NoError(t, err)
	g2, err := kp.PubKeyG2.MarshalText()
	require.NoError(t, err)
	return notary.OperatorKey{PubKeyG1: string(g1), PubKeyG2: string(g2)}
}

func TestRegistry(t *testing.T) {
	log := logging.NewTestLogger()
	kp1, err := bls.KeyPairFromString("7")
	require.NoError(t, err)
	kp2, err := bls.KeyPairFromString("8")
	require.NoError(t, err)

	t.Run("operators are loaded from the configuration", func(t *testing.T) {
		r, err := notary.NewRegistry(log, []notary.OperatorKey{operatorKey(t, kp1), operatorKey(t, kp2)})
		require.NoError(t, err)
		require.Equal(t, 2, r.Len())

		ids := r.Operators()
		assert.Equal(t, signing.OperatorIDFromPubKey(kp1.PubKeyG1), ids[0])
		assert.Equal(t, signing.OperatorIDFromPubKey(kp2.PubKeyG1), ids[1])

		pk, ok := r.GetOperator(ids[1])
		require.True(t, ok)
		assert.True(t, pk.Equal(kp2.PubKeyG2))
	})

	t.Run("mismatched keys are refused", func(t *testing.T) {
		r, err := notary.NewRegistry(log, nil)
		require.NoError(t, err)
		_, err = r.Add(kp1.PubKeyG1, kp2.PubKeyG2)
		assert.True(t, errors.Is(err, notary.ErrInconsistentKeys))
		assert.Equal(t, 0, r.Len())

		mixed := operatorKey(t, kp1)
		mixed.PubKeyG2 = operatorKey(t, kp2).PubKeyG2
		_, err = notary.NewRegistry(log, []notary.OperatorKey{mixed})
		assert.Error(t, err)
	})

	t.Run("malformed keys are refused", func(t *testing.T) {
		_, err := notary.NewRegistry(log, []notary.OperatorKey{{PubKeyG1: "0x1234", PubKeyG2: "0x"}})
		assert.Error(t, err)
	})

	t.Run("adding an operator twice keeps a single entry", func(t *testing.T) {
		r, err := notary.NewRegistry(log, nil)
		require.NoError(t, err)
		id1, err := r.Add(kp1.PubKeyG1, kp1.PubKeyG2)
		require.NoError(t, err)
		id2, err := r.Add(kp1.PubKeyG1, kp1.PubKeyG2)
		require.NoError(t, err)
		assert.Equal(t, id1, id2)
		assert.Equal(t, 1, r.Len())
	})
}
