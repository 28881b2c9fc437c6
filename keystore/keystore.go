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

// Package keystore keeps the BLS secrets of the operator and the ethereum
// keys used to send transactions in an encrypted badger database. The encryption key is derived from a passphrase with scrypt,
// the salt is stored next to the database.
package keystore

import (
	"context"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"code.vegaprotocol.io/obavs/crypto/bls"
	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/types"

	"github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

const (
	blsPrefix      = "bls/"
	ethereumPrefix = "eth/"
	saltFile       = "keystore.salt"
	saltLen        = 32
)

var (
	ErrKeyExists       = errors.New("key already exists")
	ErrEmptyPassphrase = errors.New("passphrase is required")
	ErrInvalidKeyName  = errors.New("invalid key name")
)

// Store is an encrypted key value store of secrets.
type Store struct {
	log *logging.Logger
	db  *badger.DB

	mu  sync.RWMutex
	cfg Config
}

// New opens, or creates, the keystore in cfg.Dir. A wrong passphrase fails
// to open the database.
func New(log *logging.Logger, cfg Config, passphrase string) (*Store, error) {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}
	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "couldn't create keystore directory")
	}

	encKey, err := deriveKey(cfg.Dir, passphrase)
	if err != nil {
		return nil, err
	}

	badgerLog := log.Named(badgerNamedLogger)
	badgerLog.SetLevel(logging.WarnLevel)
	opts := badger.DefaultOptions(cfg.Dir).
		WithSyncWrites(bool(cfg.SyncWrites)).
		WithEncryptionKey(encKey).
		WithIndexCacheSize(8 << 20).
		WithLogger(badgerLog)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open badger keystore")
	}

	return &Store{
		log: log,
		cfg: cfg,
		db:  db,
	}, nil
}

func deriveKey(dir, passphrase string) ([]byte, error) {
	path := filepath.Join(dir, saltFile)
	salt, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		salt = make([]byte, saltLen)
		if _, err := rand.Read(salt); err != nil {
			return nil, errors.Wrap(err, "couldn't generate keystore salt")
		}
		if err := os.WriteFile(path, salt, 0o600); err != nil {
			return nil, errors.Wrap(err, "couldn't write keystore salt")
		}
	} else if err != nil {
		return nil, errors.Wrap(err, "couldn't read keystore salt")
	}
	if len(salt) != saltLen {
		return nil, errors.New("corrupted keystore salt")
	}
	return scrypt.Key([]byte(passphrase), salt, 1<<15, 8, 1, 32)
}

// ReloadConf updates the internal configuration.
func (s *Store) ReloadConf(cfg Config) {
	s.log.Info("reloading configuration")
	if s.log.GetLevel() != cfg.Level.Get() {
		s.log.Info("updating log level",
			logging.String("old", s.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		s.log.SetLevel(cfg.Level.Get())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

func (s *Store) getConfig() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Store) Close() error {
	return s.db.Close()
}

func storeKey(prefix, name string) ([]byte, error) {
	if len(name) == 0 || strings.ContainsAny(name, "/ ") {
		return nil, ErrInvalidKeyName
	}
	return []byte(prefix + name), nil
}

// put stores a secret, existing secrets are never overwritten.
func (s *Store) put(prefix, name string, secret []byte) error {
	key, err := storeKey(prefix, name)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrKeyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, secret)
	})
	if err != nil {
		s.log.Error("unable to import key", logging.String("key-name", prefix+name), logging.Error(err))
		return err
	}
	s.log.Info("key imported", logging.String("key-name", prefix+name))
	return nil
}

// get reads a secret. A missing key is reported as types.ErrKeyUnavailable.
func (s *Store) get(ctx context.Context, prefix, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := storeKey(prefix, name)
	if err != nil {
		return nil, errors.Wrap(types.ErrKeyUnavailable, err.Error())
	}

	var buf []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		buf, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.Wrapf(types.ErrKeyUnavailable, "no key named %q", prefix+name)
	} else if err != nil {
		s.log.Error("unable to read key", logging.String("key-name", prefix+name), logging.Error(err))
		return nil, errors.Wrap(types.ErrKeyUnavailable, err.Error())
	}
	return buf, nil
}

// ImportKey stores the secret of kp under name. Existing keys are never
// overwritten.
func (s *Store) ImportKey(name string, kp *bls.KeyPair) error {
	return s.put(blsPrefix, name, kp.PrivKeyBytes())
}

// GenerateKey creates a new random key pair and stores it under name.
func (s *Store) GenerateKey(name string) (*bls.KeyPair, error) {
	kp, err := bls.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	if err := s.ImportKey(name, kp); err != nil {
		return nil, err
	}
	return kp, nil
}

// GetKey loads the key pair stored under name. A missing or undecodable
// key is reported as types.ErrKeyUnavailable.
func (s *Store) GetKey(ctx context.Context, name string) (*bls.KeyPair, error) {
	buf, err := s.get(ctx, blsPrefix, name)
	if err != nil {
		return nil, err
	}

	kp, err := bls.KeyPairFromBytes(buf)
	if err != nil {
		s.log.Error("unable to decode key", logging.String("key-name", name), logging.Error(err))
		return nil, errors.Wrap(types.ErrKeyUnavailable, err.Error())
	}
	return kp, nil
}

// GetKeyPair loads the key configured as KeyName.
func (s *Store) GetKeyPair(ctx context.Context) (*bls.KeyPair, error) {
	return s.GetKey(ctx, s.getConfig().KeyName)
}

// Names lists the stored BLS keys.
func (s *Store) Names() ([]string, error) {
	return s.names(blsPrefix)
}

// EthereumNames lists the stored ethereum keys.
func (s *Store) EthereumNames() ([]string, error) {
	return s.names(ethereumPrefix)
}

func (s *Store) names(prefix string) ([]string, error) {
	names := []string{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), prefix))
		}
		return nil
	})
	return names, err
}
