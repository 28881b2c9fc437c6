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
	"encoding/binary"
	"math/big"

	"code.vegaprotocol.io/obavs/types"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

const (
	EventNewTaskCreated = "NewTaskCreated"
	MethodRespondToTask = "respondToTask"
	MethodCreateNewTask = "createNewTask"
)

var (
	ErrUnexpectedLog = errors.New("log is not a NewTaskCreated event")

	// TaskManagerABI is the part of the task manager contract used here.
	TaskManagerABI = newTaskManagerABI()
)

func mustNewType(t string, components []abi.ArgumentMarshaling) abi.Type {
	typ, err := abi.NewType(t, "", components)
	if err != nil {
		panic(err)
	}
	return typ
}

func newTaskManagerABI() abi.ABI {
	var (
		orderType        = mustNewType("tuple", types.OrderComponents)
		taskType         = mustNewType("tuple", types.TaskComponents)
		taskResponseType = mustNewType("tuple", types.TaskResponseComponents)
	)

	newTaskCreated := abi.NewEvent(EventNewTaskCreated, EventNewTaskCreated, false, abi.Arguments{
		{Name: "taskIndex", Type: mustNewType("uint32", nil), Indexed: true},
		{Name: "task", Type: taskType},
	})

	respondToTask := abi.NewMethod(MethodRespondToTask, MethodRespondToTask, abi.Function, "nonpayable", false, false,
		abi.Arguments{
			{Name: "taskResponse", Type: taskResponseType},
			{Name: "aggregateSignature", Type: mustNewType("uint256[2]", nil)},
			{Name: "aggregatePubKeyG2", Type: mustNewType("uint256[4]", nil)},
			{Name: "nonSigners", Type: mustNewType("bytes32[]", nil)},
		},
		nil,
	)

	createNewTask := abi.NewMethod(MethodCreateNewTask, MethodCreateNewTask, abi.Function, "nonpayable", false, false,
		abi.Arguments{
			{Name: "order", Type: orderType},
			{Name: "quorumThresholdPercentage", Type: mustNewType("uint32", nil)},
			{Name: "quorumNumbers", Type: mustNewType("bytes", nil)},
		},
		nil,
	)

	return abi.ABI{
		Methods: map[string]abi.Method{
			MethodRespondToTask: respondToTask,
			MethodCreateNewTask: createNewTask,
		},
		Events: map[string]abi.Event{
			EventNewTaskCreated: newTaskCreated,
		},
	}
}

// NewTaskCreatedTopic is the topic 0 of the NewTaskCreated logs.
func NewTaskCreatedTopic() common.Hash {
	return TaskManagerABI.Events[EventNewTaskCreated].ID
}

// DecodeNewTaskCreated decodes the task carried by a NewTaskCreated log.
// The eligible operators are left for the caller to set.
func DecodeNewTaskCreated(log ethtypes.Log) (types.Task, error) {
	if len(log.Topics) != 2 || log.Topics[0] != NewTaskCreatedTopic() {
		return types.Task{}, ErrUnexpectedLog
	}
	idx := binary.BigEndian.Uint32(log.Topics[1][common.HashLength-4:])
	return types.DecodeTask(idx, log.Data)
}

// respondToTaskArgs lays out an aggregate as the respondToTask arguments.
func respondToTaskArgs(agg *types.AggregateResponse) []interface{} {
	x, y := agg.AggregateSignature.Coordinates()
	nonSigners := make([][32]byte, 0, len(agg.NonSigners))
	for _, id := range agg.NonSigners {
		nonSigners = append(nonSigners, id)
	}
	return []interface{}{
		agg.Response.ToABI(),
		[2]*big.Int{x, y},
		agg.AggregatePubKeyG2.Coordinates(),
		nonSigners,
	}
}

// PackRespondToTask returns the call data of respondToTask for agg.
func PackRespondToTask(agg *types.AggregateResponse) ([]byte, error) {
	return TaskManagerABI.Pack(MethodRespondToTask, respondToTaskArgs(agg)...)
}

// PackCreateNewTask returns the call data of createNewTask.
func PackCreateNewTask(order types.Order, threshold uint8, quorumNumbers []byte) ([]byte, error) {
	return TaskManagerABI.Pack(MethodCreateNewTask, createNewTaskArgs(order, threshold, quorumNumbers)...)
}

func createNewTaskArgs(order types.Order, threshold uint8, quorumNumbers []byte) []interface{} {
	if quorumNumbers == nil {
		quorumNumbers = []byte{}
	}
	return []interface{}{order.ToABI(), uint32(threshold), quorumNumbers}
}
