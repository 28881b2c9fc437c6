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
	"fmt"

	"code.vegaprotocol.io/obavs/version"

	"github.com/jessevdk/go-flags"
)

type VersionCmd struct {
	Help bool `short:"h" long:"help" description:"Show this help message"`
}

func (cmd *VersionCmd) Execute(_ []string) error {
	if cmd.Help {
		return &flags.Error{
			Type:    flags.ErrHelp,
			Message: "obavs version subcommand help",
		}
	}
	fmt.Printf("obavs CLI %s (%s)\n", version.Get(), version.GetCommitHash())
	return nil
}

var versionCmd VersionCmd

func Version(_ context.Context, parser *flags.Parser) error {
	versionCmd = VersionCmd{}
	_, err := parser.AddCommand("version", "Show version info", "Show version info", &versionCmd)
	return err
}
