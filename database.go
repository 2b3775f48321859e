// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package crudstrategy wires the User and Account stores for the configured
// persistence backend. It is the only place that knows which storage.Store
// implementation is in use.
package crudstrategy

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/poiesic/crudstrategy/core"
	"github.com/poiesic/crudstrategy/storage"
	"github.com/poiesic/crudstrategy/storage/csvfile"
	"github.com/poiesic/crudstrategy/storage/sqlite"
)

// Version is reported on the index page.
const Version = "1.0.0"

type Database struct {
	backend  storage.Backend
	paths    map[string]string
	users    *storage.LockedStore[core.User]
	accounts *storage.LockedStore[core.Account]
	logger   *slog.Logger
}

type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	logger *slog.Logger
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDatabase builds both stores for backend. An empty path selects the
// backend's default file in the current directory.
//
// SQLite keeps every kind in one file, one table each. The CSV backend needs
// a file per kind; their names are derived from path by inserting the table
// name before the extension ("data.csv" becomes "data-users.csv").
func NewDatabase(backend storage.Backend, path string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := storage.ParseBackend(string(backend))
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = backend.DefaultPath()
	}

	db := &Database{
		backend: backend,
		paths:   make(map[string]string),
		logger:  options.logger,
	}

	switch backend {
	case storage.BackendSQLite:
		db.paths[core.UserKind.Table] = path
		db.paths[core.AccountKind.Table] = path
		db.users = storage.Locked(sqlite.New(core.UserKind, path, sqlite.WithLogger(options.logger)))
		db.accounts = storage.Locked(sqlite.New(core.AccountKind, path, sqlite.WithLogger(options.logger)))
	case storage.BackendCSV:
		usersPath := KindPath(path, core.UserKind.Table)
		accountsPath := KindPath(path, core.AccountKind.Table)
		db.paths[core.UserKind.Table] = usersPath
		db.paths[core.AccountKind.Table] = accountsPath
		db.users = storage.Locked(csvfile.New(core.UserKind, usersPath, csvfile.WithLogger(options.logger)))
		db.accounts = storage.Locked(csvfile.New(core.AccountKind, accountsPath, csvfile.WithLogger(options.logger)))
	default:
		return nil, fmt.Errorf("%w: %q", storage.ErrUnknownBackend, backend)
	}

	db.logger.Info("storage ready", "backend", backend, "users", db.paths[core.UserKind.Table],
		"accounts", db.paths[core.AccountKind.Table])
	return db, nil
}

// KindPath derives the per-kind file name for file backends.
func KindPath(base, table string) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return stem + "-" + table + ext
}

// Close releases resources. Stores hold no open handles between calls, so
// this only exists to give callers a symmetric lifecycle.
func (db *Database) Close() error {
	db.logger.Debug("closing database", "backend", db.backend)
	return nil
}

func (db *Database) Users() storage.Store[core.User] {
	return db.users
}

func (db *Database) Accounts() storage.Store[core.Account] {
	return db.accounts
}

func (db *Database) Backend() storage.Backend {
	return db.backend
}

// Path returns the file holding records of the given table.
func (db *Database) Path(table string) string {
	return db.paths[table]
}
