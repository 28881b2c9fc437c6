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
	"math/big"

	"code.vegaprotocol.io/obavs/types/num"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// ABIOrder mirrors the solidity Order struct, field names match the
// camel cased tuple components so it can be packed by go-ethereum.
type ABIOrder struct {
	User              common.Address
	TokenOwned        common.Address
	AmountOwned       *big.Int
	TokenNotOwned     common.Address
	AmountNotOwned    *big.Int
	Slippage          *big.Int
	IsFilled          bool
	IsPartiallyFilled bool
}

// ABITaskResponse mirrors the solidity TaskResponse struct.
type ABITaskResponse struct {
	ReferenceTaskIndex uint32
	NewOrder           ABIOrder
	NewOtherOrder      ABIOrder
	MatchedOrderIndex  *big.Int
}

// ABITask mirrors the solidity Task struct emitted in NewTaskCreated.
type ABITask struct {
	Order                     ABIOrder
	Orderbook                 []ABIOrder
	TaskCreatedBlock          uint32
	QuorumNumbers             []byte
	QuorumThresholdPercentage uint32
}

var (
	OrderComponents = []abi.ArgumentMarshaling{
		{Name: "user", Type: "address"},
		{Name: "tokenOwned", Type: "address"},
		{Name: "amountOwned", Type: "uint256"},
		{Name: "tokenNotOwned", Type: "address"},
		{Name: "amountNotOwned", Type: "uint256"},
		{Name: "slippage", Type: "uint256"},
		{Name: "isFilled", Type: "bool"},
		{Name: "isPartiallyFilled", Type: "bool"},
	}

	TaskResponseComponents = []abi.ArgumentMarshaling{
		{Name: "referenceTaskIndex", Type: "uint32"},
		{Name: "newOrder", Type: "tuple", Components: OrderComponents},
		{Name: "newOtherOrder", Type: "tuple", Components: OrderComponents},
		{Name: "matchedOrderIndex", Type: "uint256"},
	}

	TaskComponents = []abi.ArgumentMarshaling{
		{Name: "order", Type: "tuple", Components: OrderComponents},
		{Name: "orderbook", Type: "tuple[]", Components: OrderComponents},
		{Name: "taskCreatedBlock", Type: "uint32"},
		{Name: "quorumNumbers", Type: "bytes"},
		{Name: "quorumThresholdPercentage", Type: "uint32"},
	}

	taskResponseArgs = abi.Arguments{{Name: "taskResponse", Type: mustNewType("tuple", TaskResponseComponents)}}
	taskArgs         = abi.Arguments{{Name: "task", Type: mustNewType("tuple", TaskComponents)}}
)

func mustNewType(t string, components []abi.ArgumentMarshaling) abi.Type {
	typ, err := abi.NewType(t, "", components)
	if err != nil {
		panic(err)
	}
	return typ
}

func keccak256Hash(buf []byte) common.Hash {
	return crypto.Keccak256Hash(buf)
}

func (o Order) ToABI() ABIOrder {
	return ABIOrder{
		User:              o.User,
		TokenOwned:        o.TokenOwned,
		AmountOwned:       num.UintOrZero(o.AmountOwned).BigInt(),
		TokenNotOwned:     o.TokenNotOwned,
		AmountNotOwned:    num.UintOrZero(o.AmountNotOwned).BigInt(),
		Slippage:          num.UintOrZero(o.Slippage).BigInt(),
		IsFilled:          o.IsFilled,
		IsPartiallyFilled: o.IsPartiallyFilled,
	}
}

func OrderFromABI(o ABIOrder) (Order, error) {
	amountOwned, overflow := num.UintFromBig(o.AmountOwned)
	if overflow {
		return Order{}, errors.New("amountOwned overflow")
	}
	amountNotOwned, overflow := num.UintFromBig(o.AmountNotOwned)
	if overflow {
		return Order{}, errors.New("amountNotOwned overflow")
	}
	slippage, overflow := num.UintFromBig(o.Slippage)
	if overflow {
		return Order{}, errors.New("slippage overflow")
	}
	return Order{
		User:              o.User,
		TokenOwned:        o.TokenOwned,
		AmountOwned:       amountOwned,
		TokenNotOwned:     o.TokenNotOwned,
		AmountNotOwned:    amountNotOwned,
		Slippage:          slippage,
		IsFilled:          o.IsFilled,
		IsPartiallyFilled: o.IsPartiallyFilled,
	}, nil
}

// ToABI converts the response to its solidity layout, the matched index is
// 0 when there was no match.
func (r TaskResponse) ToABI() ABITaskResponse {
	idx := new(big.Int)
	if r.Matched {
		idx.SetUint64(r.MatchedOrderIndex)
	}
	return ABITaskResponse{
		ReferenceTaskIndex: r.ReferenceTaskIndex,
		NewOrder:           r.NewOrder.ToABI(),
		NewOtherOrder:      r.NewOtherOrder.ToABI(),
		MatchedOrderIndex:  idx,
	}
}

// Encode returns abi.encode(taskResponse).
func (r TaskResponse) Encode() ([]byte, error) {
	return taskResponseArgs.Pack(r.ToABI())
}

// DecodeTaskResponse reverses Encode. A response is considered matched
// when its two orders differ, an unmatched response echoes the incoming
// order on both sides.
func DecodeTaskResponse(data []byte) (TaskResponse, error) {
	values, err := taskResponseArgs.Unpack(data)
	if err != nil {
		return TaskResponse{}, errors.Wrap(err, "could not unpack task response")
	}
	if len(values) != 1 {
		return TaskResponse{}, errors.New("unexpected task response encoding")
	}
	raw := *abi.ConvertType(values[0], new(ABITaskResponse)).(*ABITaskResponse)
	return TaskResponseFromABI(raw)
}

func TaskResponseFromABI(raw ABITaskResponse) (TaskResponse, error) {
	newOrder, err := OrderFromABI(raw.NewOrder)
	if err != nil {
		return TaskResponse{}, err
	}
	newOtherOrder, err := OrderFromABI(raw.NewOtherOrder)
	if err != nil {
		return TaskResponse{}, err
	}
	if raw.MatchedOrderIndex == nil || !raw.MatchedOrderIndex.IsUint64() {
		return TaskResponse{}, errors.New("matchedOrderIndex out of range")
	}
	return TaskResponse{
		ReferenceTaskIndex: raw.ReferenceTaskIndex,
		NewOrder:           newOrder,
		NewOtherOrder:      newOtherOrder,
		MatchedOrderIndex:  raw.MatchedOrderIndex.Uint64(),
		Matched:            !newOrder.Equal(newOtherOrder),
	}, nil
}

// ToABI converts the task to its solidity layout.
func (t Task) ToABI() ABITask {
	book := make([]ABIOrder, 0, len(t.OrderBook))
	for _, o := range t.OrderBook {
		book = append(book, o.ToABI())
	}
	qn := t.QuorumNumbers
	if qn == nil {
		qn = []byte{}
	}
	return ABITask{
		Order:                     t.Order.ToABI(),
		Orderbook:                 book,
		TaskCreatedBlock:          t.CreatedBlock,
		QuorumNumbers:             qn,
		QuorumThresholdPercentage: uint32(t.QuorumThresholdPercentage),
	}
}

// TaskFromABI builds a task from the NewTaskCreated payload. The eligible
// operators are not part of the event and are set by the caller.
func TaskFromABI(index uint32, raw ABITask) (Task, error) {
	if raw.QuorumThresholdPercentage > 100 {
		return Task{}, errors.Errorf("invalid quorum threshold percentage %d", raw.QuorumThresholdPercentage)
	}
	order, err := OrderFromABI(raw.Order)
	if err != nil {
		return Task{}, errors.Wrap(err, "invalid order")
	}
	book := make(OrderBook, 0, len(raw.Orderbook))
	for i, o := range raw.Orderbook {
		bo, err := OrderFromABI(o)
		if err != nil {
			return Task{}, errors.Wrapf(err, "invalid order book entry %d", i)
		}
		book = append(book, bo)
	}
	return Task{
		Index:                     index,
		Order:                     order,
		OrderBook:                 book,
		CreatedBlock:              raw.TaskCreatedBlock,
		QuorumNumbers:             raw.QuorumNumbers,
		QuorumThresholdPercentage: uint8(raw.QuorumThresholdPercentage),
	}, nil
}

// EncodeTask returns abi.encode(task), the data of a NewTaskCreated log.
func EncodeTask(t Task) ([]byte, error) {
	return taskArgs.Pack(t.ToABI())
}

// DecodeTask decodes the non indexed data of a NewTaskCreated log.
func DecodeTask(index uint32, data []byte) (Task, error) {
	values, err := taskArgs.Unpack(data)
	if err != nil {
		return Task{}, errors.Wrap(err, "could not unpack task")
	}
	if len(values) != 1 {
		return Task{}, errors.New("unexpected task encoding")
	}
	raw := *abi.ConvertType(values[0], new(ABITask)).(*ABITask)
	return TaskFromABI(index, raw)
}
