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
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"

	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/types"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

var ErrTransactionReverted = errors.New("transaction reverted")

// Transactor sends the task manager transactions signed with a single
// ethereum key. It is the sink of the notary and the task creator of the
// operators.
type Transactor struct {
	log      *logging.Logger
	cfg      Config
	backend  Backend
	contract *bind.BoundContract
	key      *ecdsa.PrivateKey
	chainID  *big.Int

	// sends are serialised so two transactions never pick the same nonce
	mu sync.Mutex
}

func NewTransactor(log *logging.Logger, cfg Config, backend Backend, key *ecdsa.PrivateKey, chainID *big.Int) *Transactor {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	address := common.HexToAddress(cfg.TaskManagerAddress)
	return &Transactor{
		log:      log,
		cfg:      cfg,
		backend:  backend,
		contract: bind.NewBoundContract(address, TaskManagerABI, backend, backend, backend),
		key:      key,
		chainID:  chainID,
	}
}

// ReloadConf updates the internal configuration.
func (t *Transactor) ReloadConf(cfg Config) {
	t.log.Info("reloading configuration")
	if t.log.GetLevel() != cfg.Level.Get() {
		t.log.Info("updating log level",
			logging.String("old", t.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		t.log.SetLevel(cfg.Level.Get())
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	cfg.TaskManagerAddress = t.cfg.TaskManagerAddress
	t.cfg = cfg
}

// From returns the address paying for the transactions.
func (t *Transactor) From() common.Address {
	return ethcrypto.PubkeyToAddress(t.key.PublicKey)
}

// RespondToTask hands a quorum certified response to the task manager and
// waits for the transaction to be mined.
func (t *Transactor) RespondToTask(ctx context.Context, agg *types.AggregateResponse) error {
	receipt, err := t.transact(ctx, MethodRespondToTask, respondToTaskArgs(agg)...)
	if err != nil {
		return errors.Wrapf(err, "respondToTask(%d)", agg.TaskIndex)
	}
	t.log.Info("task response submitted",
		logging.TaskIndex(agg.TaskIndex),
		logging.String("tx-hash", receipt.TxHash.Hex()),
		logging.Uint64("block", receipt.BlockNumber.Uint64()),
		logging.Uint64("gas-used", receipt.GasUsed),
	)
	return nil
}

// CreateNewTask asks the task manager to open a task for order. The index
// of the task is only known once the NewTaskCreated log is seen.
func (t *Transactor) CreateNewTask(ctx context.Context, order types.Order, threshold uint8, quorumNumbers []byte) (common.Hash, error) {
	if threshold == 0 || threshold > 100 {
		return common.Hash{}, errors.Errorf("invalid quorum threshold percentage %d", threshold)
	}
	receipt, err := t.transact(ctx, MethodCreateNewTask, createNewTaskArgs(order, threshold, quorumNumbers)...)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "createNewTask")
	}
	t.log.Info("task created",
		logging.String("tx-hash", receipt.TxHash.Hex()),
		logging.Uint64("block", receipt.BlockNumber.Uint64()),
	)
	return receipt.TxHash, nil
}

func (t *Transactor) transact(ctx context.Context, method string, args ...interface{}) (*ethtypes.Receipt, error) {
	t.mu.Lock()
	opts, err := bind.NewKeyedTransactorWithChainID(t.key, t.chainID)
	if err != nil {
		t.mu.Unlock()
		return nil, errors.Wrap(err, "could not create transactor")
	}
	opts.Context = ctx
	tx, err := t.contract.Transact(opts, method, args...)
	confirmTimeout := t.cfg.ConfirmTimeout.Get()
	t.mu.Unlock()
	if err != nil {
		return nil, errors.Wrap(err, "could not send transaction")
	}

	if t.log.IsDebug() {
		t.log.Debug("transaction sent",
			logging.String("method", method),
			logging.String("tx-hash", tx.Hash().Hex()),
			logging.Uint64("nonce", tx.Nonce()),
		)
	}

	waitCtx, cancel := context.WithTimeout(ctx, confirmTimeout)
	defer cancel()
	receipt, err := bind.WaitMined(waitCtx, t.backend, tx)
	if err != nil {
		return nil, errors.Wrapf(err, "transaction %s not mined", tx.Hash().Hex())
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return nil, errors.Wrapf(ErrTransactionReverted, "transaction %s", tx.Hash().Hex())
	}
	return receipt, nil
}
