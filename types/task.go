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

package types

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// OperatorID identifies an operator, it is the keccak256 hash of the
// coordinates of its G1 public key.
type OperatorID [32]byte

func OperatorIDFromHex(s string) (OperatorID, error) {
	var id OperatorID
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return id, errors.Wrap(err, "invalid operator id")
	}
	if len(b) != len(id) {
		return id, errors.Errorf("invalid operator id length %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}

func (id OperatorID) Hex() string {
	return "0x" + hex.EncodeToString(id[:])
}

func (id OperatorID) String() string {
	return id.Hex()
}

func (id OperatorID) MarshalText() ([]byte, error) {
	return []byte(id.Hex()), nil
}

func (id *OperatorID) UnmarshalText(text []byte) error {
	v, err := OperatorIDFromHex(string(text))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// Task is a new order posted to the task manager, along with the order book
// snapshot to match it against and the quorum parameters of the round.
type Task struct {
	Index                     uint32       `json:"index"`
	Order                     Order        `json:"order"`
	OrderBook                 OrderBook    `json:"orderBook"`
	CreatedBlock              uint32       `json:"createdBlock"`
	QuorumNumbers             []byte       `json:"quorumNumbers"`
	QuorumThresholdPercentage uint8        `json:"quorumThresholdPercentage"`
	Operators                 []OperatorID `json:"operators"`
}

// Validate checks the quorum parameters of the task.
func (t Task) Validate() error {
	if t.QuorumThresholdPercentage == 0 || t.QuorumThresholdPercentage > 100 {
		return errors.Errorf("invalid quorum threshold percentage %d", t.QuorumThresholdPercentage)
	}
	if len(t.Operators) == 0 {
		return errors.New("task has no eligible operators")
	}
	seen := make(map[OperatorID]struct{}, len(t.Operators))
	for _, op := range t.Operators {
		if _, ok := seen[op]; ok {
			return errors.Errorf("duplicate operator %s", op)
		}
		seen[op] = struct{}{}
	}
	return nil
}

// IsEligible reports whether the operator is part of the task quorum.
func (t Task) IsEligible(id OperatorID) bool {
	for _, op := range t.Operators {
		if op == id {
			return true
		}
	}
	return false
}
