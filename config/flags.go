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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

var ErrPassphraseDoNotMatch = errors.New("passphrases do not match")

// Empty is used as the root options of the command line parser.
type Empty struct{}

// HomeFlag selects the directory holding the configuration and databases.
type HomeFlag struct {
	Home string `long:"home" description:"Path to the node home directory"`
}

// NewHomeFlag defaults the home to $HOME/.obavs.
func NewHomeFlag() HomeFlag {
	return HomeFlag{Home: DefaultHome()}
}

func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".obavs"
	}
	return filepath.Join(home, ".obavs")
}

// Passphrase is the path to a file containing a passphrase. When empty the
// passphrase is read from the terminal.
type Passphrase string

// PassphraseFlag adds the passphrase file option to a command.
type PassphraseFlag struct {
	PassphraseFile Passphrase `short:"p" long:"passphrase-file" description:"A file containing the passphrase for the keystore, if empty will prompt for input"`
}

// Get returns the passphrase protecting name. When prompting, confirm asks
// for it twice.
func (p Passphrase) Get(name string, confirm bool) (string, error) {
	if len(p) != 0 {
		buf, err := os.ReadFile(string(p))
		if err != nil {
			return "", errors.Wrap(err, "could not read the passphrase file")
		}
		return strings.TrimRight(string(buf), "\r\n"), nil
	}

	pass, err := readPassphrase(fmt.Sprintf("please enter the %s passphrase:", name))
	if err != nil {
		return "", err
	}
	if confirm {
		again, err := readPassphrase(fmt.Sprintf("please confirm the %s passphrase:", name))
		if err != nil {
			return "", err
		}
		if pass != again {
			return "", ErrPassphraseDoNotMatch
		}
	}
	return pass, nil
}

func readPassphrase(prompt string) (string, error) {
	fmt.Print(prompt)
	buf, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", errors.Wrap(err, "could not read the passphrase")
	}
	return string(buf), nil
}
