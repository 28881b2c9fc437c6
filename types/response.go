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
	"fmt"

	"code.vegaprotocol.io/obavs/crypto/bls"

	"github.com/ethereum/go-ethereum/common"
)

// TaskResponse is the settlement an operator proposes for a task.
//
// On the wire a MatchedOrderIndex of 0 is used both for a match against
// the first order of the book and for no match at all. Matched removes
// the ambiguity, it is not part of the signed encoding.
type TaskResponse struct {
	ReferenceTaskIndex uint32 `json:"referenceTaskIndex"`
	NewOrder           Order  `json:"newOrder"`
	NewOtherOrder      Order  `json:"newOtherOrder"`
	MatchedOrderIndex  uint64 `json:"matchedOrderIndex"`
	Matched            bool   `json:"matched"`
}

// Digest returns keccak256 of the canonical encoding of the response,
// which is the message signed by operators.
func (r TaskResponse) Digest() (common.Hash, error) {
	buf, err := r.Encode()
	if err != nil {
		return common.Hash{}, err
	}
	return keccak256Hash(buf), nil
}

func (r TaskResponse) String() string {
	return fmt.Sprintf(
		"task(%d) matched(%v) matchedOrderIndex(%d) newOrder(%s) newOtherOrder(%s)",
		r.ReferenceTaskIndex, r.Matched, r.MatchedOrderIndex, r.NewOrder, r.NewOtherOrder,
	)
}

// SignedTaskResponse is a response signed by a single operator. Signature
// is a compressed G1 point.
type SignedTaskResponse struct {
	TaskResponse TaskResponse `json:"taskResponse"`
	Signature    []byte       `json:"blsSignature"`
	OperatorID   OperatorID   `json:"operatorId"`
}

// AggregateResponse is the quorum certified response handed to the chain.
type AggregateResponse struct {
	TaskIndex          uint32       `json:"taskIndex"`
	Response           TaskResponse `json:"response"`
	Digest             common.Hash  `json:"digest"`
	AggregateSignature *bls.G1Point `json:"aggregateSignature"`
	AggregatePubKeyG2  *bls.G2Point `json:"aggregatePubKeyG2"`
	Signers            []OperatorID `json:"signers"`
	NonSigners         []OperatorID `json:"nonSigners"`
	// SignersBitmap has bit i set when the i-th eligible operator of the
	// task signed, bit 0 being the least significant bit of byte 0.
	SignersBitmap []byte `json:"signersBitmap"`
}

// HasSigned reads the bitmap for the operator at position i.
func (a AggregateResponse) HasSigned(i int) bool {
	if i < 0 || i/8 >= len(a.SignersBitmap) {
		return false
	}
	return a.SignersBitmap[i/8]&(1<<(uint(i)%8)) != 0
}
