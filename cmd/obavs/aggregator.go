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
	"time"

	"code.vegaprotocol.io/obavs/api"
	"code.vegaprotocol.io/obavs/audit"
	"code.vegaprotocol.io/obavs/chain"
	"code.vegaprotocol.io/obavs/config"
	"code.vegaprotocol.io/obavs/keystore"
	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/metrics"
	"code.vegaprotocol.io/obavs/notary"

	"github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"
)

type AggregatorCmd struct {
	ctx context.Context

	config.HomeFlag
	config.PassphraseFlag

	config.Config
}

var aggregatorCmd AggregatorCmd

func Aggregator(ctx context.Context, parser *flags.Parser) error {
	aggregatorCmd = AggregatorCmd{
		ctx:      ctx,
		HomeFlag: config.NewHomeFlag(),
		Config:   config.NewDefaultConfig(),
	}
	cmd, err := parser.AddCommand("aggregator", "Runs the aggregator", "Collects the operators signatures and submits the quorum certified responses", &aggregatorCmd)
	if err != nil {
		return err
	}

	// Print nested groups under parent's name using `::` as the separator.
	for _, parent := range cmd.Groups() {
		for _, grp := range parent.Groups() {
			grp.ShortDescription = parent.ShortDescription + "::" + grp.ShortDescription
		}
	}
	return nil
}

func (opts *AggregatorCmd) Execute(_ []string) error {
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

	if err := metrics.Setup(cfg.Metrics); err != nil {
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

	auditStore, err := audit.New(log, cfg.Audit)
	if err != nil {
		return err
	}
	defer auditStore.Close()

	registry, err := notary.NewRegistry(log, cfg.Notary.Operators)
	if err != nil {
		return err
	}

	transactor := chain.NewTransactor(log, cfg.Chain, client, ethKey, chainID)
	ntry, err := notary.New(log, cfg.Notary, registry, nil, transactor, auditStore)
	if err != nil {
		return err
	}
	listener := chain.NewTaskListener(log, cfg.Chain, client, ntry, registry)
	server := api.NewServer(log, cfg.API, ntry, cfg.Metrics)

	watcher.OnConfigUpdate(
		func(cfg config.Config) { store.ReloadConf(cfg.Keystore) },
		func(cfg config.Config) { auditStore.ReloadConf(cfg.Audit) },
		func(cfg config.Config) { transactor.ReloadConf(cfg.Chain) },
		func(cfg config.Config) { ntry.ReloadConf(cfg.Notary) },
		func(cfg config.Config) { listener.ReloadConf(cfg.Chain) },
		func(cfg config.Config) { server.ReloadConf(cfg.API) },
	)

	log.Info("starting aggregator",
		logging.String("transactor", transactor.From().Hex()),
		logging.Int("operators", registry.Len()),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ntry.Run(gctx) })
	g.Go(func() error { return listener.Run(gctx) })
	g.Go(server.Start)
	g.Go(func() error {
		waitSig(gctx, log)
		cancel()

		sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer scancel()
		return server.Stop(sctx)
	})

	err = g.Wait()
	// the api and the listener are stopped, let the submissions finish
	ntry.Wait()
	return err
}
