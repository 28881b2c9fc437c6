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
	"crypto/ecdsa"
	"fmt"
	"strings"

	"code.vegaprotocol.io/obavs/config"
	"code.vegaprotocol.io/obavs/crypto/bls"
	"code.vegaprotocol.io/obavs/keystore"
	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/signing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

type InitCmd struct {
	config.HomeFlag
	config.PassphraseFlag

	Force       bool   `short:"f" long:"force" description:"Erase exiting configuration at the specified path"`
	BLSKey      string `long:"bls-key" description:"BLS secret to import, base 10 or 0x prefixed hex, a new one is generated when empty"`
	EthereumKey string `long:"ethereum-key" description:"Hex encoded ethereum private key to import, a new one is generated when empty"`
}

var initCmd InitCmd

func Init(_ context.Context, parser *flags.Parser) error {
	initCmd = InitCmd{
		HomeFlag: config.NewHomeFlag(),
	}
	_, err := parser.AddCommand("init", "Initialize a node", "Generate the default configuration and the keys of a node", &initCmd)
	return err
}

func (opts *InitCmd) Execute(_ []string) error {
	log := logging.NewLoggerFromConfig(logging.NewDefaultConfig())
	defer log.AtExit()

	cfg := config.NewDefaultConfig()
	if err := config.Write(opts.Home, cfg, opts.Force); err != nil {
		return err
	}
	log.Info("configuration generated successfully", logging.String("path", config.Path(opts.Home)))

	pass, err := opts.PassphraseFile.Get("keystore", true)
	if err != nil {
		return err
	}

	cfg.ResolvePaths(opts.Home)
	store, err := keystore.New(log, cfg.Keystore, pass)
	if err != nil {
		return err
	}
	defer store.Close()

	kp, err := opts.blsKey(store, cfg.Keystore.KeyName)
	if err != nil {
		return err
	}
	ethKey, err := opts.ethereumKey(store, cfg.Keystore.EthereumKeyName)
	if err != nil {
		return err
	}

	g1, _ := kp.PubKeyG1.MarshalText()
	g2, _ := kp.PubKeyG2.MarshalText()
	fmt.Printf("operator id:       %s\n", signing.OperatorIDFromPubKey(kp.PubKeyG1))
	fmt.Printf("bls public key g1: %s\n", g1)
	fmt.Printf("bls public key g2: %s\n", g2)
	fmt.Printf("ethereum address:  %s\n", ethcrypto.PubkeyToAddress(ethKey.PublicKey).Hex())
	return nil
}

func (opts *InitCmd) blsKey(store *keystore.Store, name string) (*bls.KeyPair, error) {
	if len(opts.BLSKey) == 0 {
		return store.GenerateKey(name)
	}
	kp, err := bls.KeyPairFromString(opts.BLSKey)
	if err != nil {
		return nil, errors.Wrap(err, "invalid bls key")
	}
	return kp, store.ImportKey(name, kp)
}

func (opts *InitCmd) ethereumKey(store *keystore.Store, name string) (*ecdsa.PrivateKey, error) {
	if len(opts.EthereumKey) == 0 {
		return store.GenerateEthereumKey(name)
	}
	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(opts.EthereumKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid ethereum key")
	}
	return key, store.ImportEthereumKey(name, key)
}
