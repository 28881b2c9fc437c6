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
	"context"
	"os"
	"sync"
	"time"

	"code.vegaprotocol.io/obavs/logging"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

const (
	configFileName = "config.toml"
	namedLogger    = "cfgwatcher"
)

// Watcher is looking for updates in the configuration file and hands the
// new configuration to the registered listeners.
type Watcher struct {
	log  *logging.Logger
	cfg  Config
	path string

	cfgUpdateListeners []func(Config)
	cfgHandlers        []func(*Config) error
	mu                 sync.Mutex
}

// Option customises the watcher.
type Option func(w *Watcher)

// Use registers handlers run on every loaded configuration, before the
// listeners are notified. They are used to apply the command line flags
// over the file.
func Use(fns ...func(*Config) error) Option {
	return func(w *Watcher) {
		w.cfgHandlers = append(w.cfgHandlers, fns...)
	}
}

// NewWatcher loads the configuration of rootPath and watches it until ctx
// is cancelled.
func NewWatcher(ctx context.Context, log *logging.Logger, rootPath string, opts ...Option) (*Watcher, error) {
	watcherlog := log.Named(namedLogger)
	// configuration changes are always worth a line in the logs
	watcherlog.SetLevel(logging.DebugLevel)
	w := &Watcher{
		log:                watcherlog,
		cfg:                NewDefaultConfig(),
		path:               Path(rootPath),
		cfgUpdateListeners: []func(Config){},
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.load(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(w.path); err != nil {
		watcher.Close()
		return nil, err
	}

	w.log.Info("config watcher started successfully",
		logging.String("config", w.path))

	go w.watch(ctx, watcher)

	return w, nil
}

// Get return the last update of the configuration.
func (w *Watcher) Get() Config {
	w.mu.Lock()
	conf := w.cfg
	w.mu.Unlock()
	return conf
}

// OnConfigUpdate register functions to be called when the configuration is
// getting updated.
func (w *Watcher) OnConfigUpdate(fns ...func(Config)) {
	w.mu.Lock()
	w.cfgUpdateListeners = append(w.cfgUpdateListeners, fns...)
	w.mu.Unlock()
}

func (w *Watcher) load() error {
	buf, err := os.ReadFile(w.path)
	if err != nil {
		return err
	}
	cfg := NewDefaultConfig()
	if _, err := toml.Decode(string(buf), &cfg); err != nil {
		return errors.Wrap(err, "invalid configuration file")
	}
	for _, f := range w.cfgHandlers {
		if err := f(&cfg); err != nil {
			return err
		}
	}

	w.mu.Lock()
	w.cfg = cfg
	w.mu.Unlock()
	return nil
}

func (w *Watcher) notify() {
	w.mu.Lock()
	cfg := w.cfg
	listeners := make([]func(Config), len(w.cfgUpdateListeners))
	copy(listeners, w.cfgUpdateListeners)
	w.mu.Unlock()

	for _, f := range listeners {
		f(cfg)
	}
}

func (w *Watcher) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Create) {
				continue
			}
			if event.Has(fsnotify.Rename) {
				// editors replace the file with a renamed temporary one,
				// wait for it to be in place and watch the new inode
				time.Sleep(50 * time.Millisecond)
				if err := watcher.Add(w.path); err != nil {
					w.log.Error("unable to watch configuration", logging.Error(err))
					continue
				}
			}
			w.log.Info("configuration updated", logging.String("event", event.Name))
			if err := w.load(); err != nil {
				w.log.Error("unable to load configuration", logging.Error(err))
				continue
			}
			w.notify()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("config watcher received error event", logging.Error(err))
		case <-ctx.Done():
			w.log.Debug("config watcher stopped")
			return
		}
	}
}
