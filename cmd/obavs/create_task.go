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

package main

import (
	"context"
	"encoding/hex"
	"time"

	"code.vegaprotocol.io/obavs/chain"
	"code.vegaprotocol.io/obavs/config"
	"code.vegaprotocol.io/obavs/keystore"
	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/types"
	"code.vegaprotocol.io/obavs/types/num"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

type CreateTaskCmd struct {
	ctx context.Context

	config.HomeFlag
	config.PassphraseFlag

	User           string        `long:"user" description:"Owner of the order, the transactor address when empty"`
	TokenOwned     string        `long:"token-owned" required:"true" description:"Address of the offered token"`
	AmountOwned    string        `long:"amount-owned" required:"true" description:"Offered amount"`
	TokenNotOwned  string        `long:"token-not-owned" required:"true" description:"Address of the wanted token"`
	AmountNotOwned string        `long:"amount-not-owned" required:"true" description:"Wanted amount"`
	Slippage       string        `long:"slippage" default:"0" description:"Accepted price deviation in percent"`
	Threshold      uint8         `long:"threshold" default:"67" description:"Quorum threshold percentage"`
	QuorumNumbers  string        `long:"quorum-numbers" default:"00" description:"Hex encoded quorum numbers"`
	Count          uint          `long:"count" default:"1" description:"Number of tasks to create, 0 to create tasks until interrupted"`
	Interval       time.Duration `long:"interval" default:"5s" description:"Time between two tasks"`
}

var createTaskCmd CreateTaskCmd

func CreateTask(ctx context.Context, parser *flags.Parser) error {
	createTaskCmd = CreateTaskCmd{
		ctx:      ctx,
		HomeFlag: config.NewHomeFlag(),
	}
	_, err := parser.AddCommand("create-task", "Create tasks on chain", "Sends createNewTask transactions to the task manager, for local networks", &createTaskCmd)
	return err
}

func (opts *CreateTaskCmd) order(from common.Address) (types.Order, error) {
	amountOwned, err := parseAmount("amount owned", opts.AmountOwned)
	if err != nil {
		return types.Order{}, err
	}
	amountNotOwned, err := parseAmount("amount not owned", opts.AmountNotOwned)
	if err != nil {
		return types.Order{}, err
	}
	slippage, err := parseAmount("slippage", opts.Slippage)
	if err != nil {
		return types.Order{}, err
	}
	user := from
	if len(opts.User) != 0 {
		if !common.IsHexAddress(opts.User) {
			return types.Order{}, errors.Errorf("invalid user address %q", opts.User)
		}
		user = common.HexToAddress(opts.User)
	}
	for _, a := range []string{opts.TokenOwned, opts.TokenNotOwned} {
		if !common.IsHexAddress(a) {
			return types.Order{}, errors.Errorf("invalid token address %q", a)
		}
	}
	return types.Order{
		User:           user,
		TokenOwned:     common.HexToAddress(opts.TokenOwned),
		AmountOwned:    amountOwned,
		TokenNotOwned:  common.HexToAddress(opts.TokenNotOwned),
		AmountNotOwned: amountNotOwned,
		Slippage:       slippage,
	}, nil
}

func parseAmount(name, v string) (*num.Uint, error) {
	u, invalid := num.UintFromString(v, 10)
	if invalid {
		return nil, errors.Errorf("invalid %s %q", name, v)
	}
	return u, nil
}

func (opts *CreateTaskCmd) Execute(_ []string) error {
	log := logging.NewLoggerFromConfig(logging.NewDefaultConfig())
	defer log.AtExit()

	ctx, cancel := context.WithCancel(opts.ctx)
	defer cancel()
	go func() {
		waitSig(ctx, log)
		cancel()
	}()

	cfg, err := config.Read(opts.Home)
	if err != nil {
		return err
	}
	cfg.ResolvePaths(opts.Home)

	quorumNumbers, err := hex.DecodeString(opts.QuorumNumbers)
	if err != nil {
		return errors.Wrap(err, "invalid quorum numbers")
	}

	pass, err := opts.PassphraseFile.Get("keystore", false)
	if err != nil {
		return err
	}
	store, err := keystore.New(log, cfg.Keystore, pass)
	if err != nil {
		return err
	}
	defer store.Close()
	ethKey, err := store.GetEthereumKeyPair(ctx)
	if err != nil {
		return err
	}

	client, chainID, err := chain.Dial(ctx, cfg.Chain.RPCURL, cfg.Chain.ChainID)
	if err != nil {
		return err
	}
	defer client.Close()

	creator := chain.NewTransactor(log, cfg.Chain, client, ethKey, chainID)
	order, err := opts.order(creator.From())
	if err != nil {
		return err
	}

	if opts.Interval <= 0 {
		return errors.New("interval must be positive")
	}
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()
	for created := uint(0); opts.Count == 0 || created < opts.Count; created++ {
		if created > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
		if _, err := creator.CreateNewTask(ctx, order, opts.Threshold, quorumNumbers); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error("could not create task", logging.Error(err))
		}
	}
	return nil
}
