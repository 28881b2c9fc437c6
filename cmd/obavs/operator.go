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

	"code.vegaprotocol.io/obavs/api"
	"code.vegaprotocol.io/obavs/chain"
	"code.vegaprotocol.io/obavs/config"
	"code.vegaprotocol.io/obavs/keystore"
	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/metrics"
	"code.vegaprotocol.io/obavs/operator"
	"code.vegaprotocol.io/obavs/types"

	"github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"
)

type OperatorCmd struct {
	ctx context.Context

	config.HomeFlag
	config.PassphraseFlag

	config.Config
}

var operatorCmd OperatorCmd

func Operator(ctx context.Context, parser *flags.Parser) error {
	operatorCmd = OperatorCmd{
		ctx:      ctx,
		HomeFlag: config.NewHomeFlag(),
		Config:   config.NewDefaultConfig(),
	}
	cmd, err := parser.AddCommand("operator", "Runs an operator", "Matches the new tasks, signs the proposals and sends them to the aggregator", &operatorCmd)
	if err != nil {
		return err
	}

	for _, parent := range cmd.Groups() {
		for _, grp := range parent.Groups() {
			grp.ShortDescription = parent.ShortDescription + "::" + grp.ShortDescription
		}
	}
	return nil
}

func (opts *OperatorCmd) Execute(_ []string) error {
	log := logging.NewLoggerFromConfig(logging.NewDefaultConfig())
	defer log.AtExit()

	ctx, cancel := context.WithCancel(opts.ctx)
	defer cancel()

	watcher, err := loadConfig(ctx, log, opts.Home)
	if err != nil {
		return err
	}
	cfg := watcher.Get()
	log = logging.NewLoggerFromConfig(cfg.Logging)

	pass, err := opts.PassphraseFile.Get("keystore", false)
	if err != nil {
		return err
	}

	// counters only, the operator exposes no endpoint
	if err := metrics.Setup(cfg.Metrics); err != nil {
		return err
	}

	store, err := keystore.New(log, cfg.Keystore, pass)
	if err != nil {
		return err
	}
	defer store.Close()

	client, _, err := chain.Dial(ctx, cfg.Chain.RPCURL, cfg.Chain.ChainID)
	if err != nil {
		return err
	}
	defer client.Close()

	aggregator := api.NewClient(log, cfg.Client)
	op := operator.New(log, cfg.Operator, cfg.Signing, store, aggregator)
	handler := chain.TaskHandlerFunc(func(ctx context.Context, task types.Task) error {
		_, err := op.OnNewTask(ctx, task)
		return err
	})
	listener := chain.NewTaskListener(log, cfg.Chain, client, handler, nil)

	watcher.OnConfigUpdate(
		func(cfg config.Config) { store.ReloadConf(cfg.Keystore) },
		func(cfg config.Config) { aggregator.ReloadConf(cfg.Client) },
		func(cfg config.Config) { op.ReloadConf(cfg.Operator) },
		func(cfg config.Config) { op.ReloadSignerConf(cfg.Signing) },
		func(cfg config.Config) { listener.ReloadConf(cfg.Chain) },
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return listener.Run(gctx) })
	g.Go(func() error {
		waitSig(gctx, log)
		cancel()
		return nil
	})

	return g.Wait()
}
