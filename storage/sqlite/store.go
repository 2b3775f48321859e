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


// Package sqlite implements storage.Store on an embedded SQLite database.
//
// Each record kind lives in its own table, (id TEXT PRIMARY KEY, fullname TEXT),
// created on the first Create. No connection is held between calls: every
// operation opens the database file, does its work and closes it again.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"

	"github.com/google/uuid"
	"github.com/poiesic/crudstrategy/core"
	"github.com/poiesic/crudstrategy/storage"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	driverName       = "sqlite"
	busyTimeoutMilli = 5000
)

type queries struct {
	createTable string
	insert      string
	selectAll   string
	update      string
	delete      string
}

func newQueries(table string) queries {
	return queries{
		createTable: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id       TEXT PRIMARY KEY,
  fullname TEXT
)`, table),
		insert:    fmt.Sprintf(`INSERT INTO %s (id, fullname) VALUES (?, ?)`, table),
		selectAll: fmt.Sprintf(`SELECT id, fullname FROM %s ORDER BY rowid`, table),
		update:    fmt.Sprintf(`UPDATE %s SET fullname = ? WHERE id = ?`, table),
		delete:    fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table),
	}
}

// Store is an SQLite-backed storage.Store.
type Store[T core.Record] struct {
	kind    core.Kind[T]
	path    string
	queries queries
	logger  *slog.Logger
}

var _ storage.Store[core.Account] = (*Store[core.Account])(nil)

// Option configures a Store.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New returns a store for kind in the database file at path. The file is
// not opened until the first operation.
func New[T core.Record](kind core.Kind[T], path string, opts ...Option) storage.Store[T] {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return &Store[T]{
		kind:    kind,
		path:    path,
		queries: newQueries(kind.Table),
		logger:  o.logger.With("backend", storage.BackendSQLite, "kind", kind.Name),
	}
}

// Create ensures the table exists and inserts item. A duplicate id fails
// with storage.ErrDuplicateKey.
func (s *Store[T]) Create(ctx context.Context, item T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := core.ValidateRecord(item); err != nil {
		return err
	}
	s.logger.Debug("creating record", "path", s.path, "id", item.RecordID())

	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, s.queries.createTable); err != nil {
		return backendError("create table "+s.kind.Table, err)
	}
	if _, err := db.ExecContext(ctx, s.queries.insert, item.RecordID().String(), item.RecordName()); err != nil {
		return backendError("insert "+s.kind.Name, err)
	}
	return nil
}

// ReadAll returns every row in insertion order. A missing database file or
// table yields an empty slice; any other failure is reported.
func (s *Store[T]) ReadAll(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.logger.Debug("reading all records", "path", s.path)

	exists, err := s.fileExists()
	if err != nil || !exists {
		return []T{}, err
	}

	db, err := s.open(ctx)
	if err != nil {
		s.logger.Warn("error opening sqlite connection", "path", s.path, "err", err)
		return nil, err
	}
	defer db.Close()

	ok, err := s.tableExists(ctx, db)
	if err != nil {
		s.logger.Warn("error inspecting schema", "path", s.path, "err", err)
		return nil, err
	}
	if !ok {
		return []T{}, nil
	}

	rows, err := db.QueryContext(ctx, s.queries.selectAll)
	if err != nil {
		s.logger.Warn("error preparing select", "path", s.path, "err", err)
		return nil, backendError("select "+s.kind.Table, err)
	}
	defer rows.Close()

	records := []T{}
	for rows.Next() {
		var idText string
		var fullname sql.NullString
		if err := rows.Scan(&idText, &fullname); err != nil {
			return nil, backendError("scan "+s.kind.Name, err)
		}
		id, err := uuid.Parse(idText)
		if err != nil {
			return nil, fmt.Errorf("%w: corrupt id %q in %s: %w", storage.ErrBackend, idText, s.kind.Table, err)
		}
		records = append(records, s.kind.New(id, fullname.String))
	}
	if err := rows.Err(); err != nil {
		return nil, backendError("iterate "+s.kind.Table, err)
	}
	return records, nil
}

// Update sets the fullname of the row whose id equals item's id.
// Zero affected rows is not an error.
func (s *Store[T]) Update(ctx context.Context, item T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := core.ValidateRecord(item); err != nil {
		return err
	}
	s.logger.Debug("updating record", "path", s.path, "id", item.RecordID())
	return s.execIfPresent(ctx, "update "+s.kind.Name, s.queries.update, item.RecordName(), item.RecordID().String())
}

// Delete removes the row whose id equals item's id.
// Zero affected rows is not an error.
func (s *Store[T]) Delete(ctx context.Context, item T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Debug("deleting record", "path", s.path, "id", item.RecordID())
	return s.execIfPresent(ctx, "delete "+s.kind.Name, s.queries.delete, item.RecordID().String())
}

// execIfPresent runs query unless the database file or table does not exist
// yet, in which case there is nothing to change.
func (s *Store[T]) execIfPresent(ctx context.Context, op, query string, args ...any) error {
	exists, err := s.fileExists()
	if err != nil || !exists {
		return err
	}

	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	ok, err := s.tableExists(ctx, db)
	if err != nil || !ok {
		return err
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return backendError(op, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		s.logger.Debug("rows affected", "op", op, "rows", n)
	}
	return nil
}

// open returns a single-connection handle with the busy timeout applied.
// Opening creates the database file if it does not exist.
func (s *Store[T]) open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn(s.path))
	if err != nil {
		return nil, backendError("open "+s.path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeoutMilli)); err != nil {
		_ = db.Close()
		return nil, backendError("open "+s.path, err)
	}
	return db, nil
}

// dsn turns a file path into an SQLite URI filename. The driver treats a
// bare "?" as the start of connection options, so the path is escaped.
func dsn(path string) string {
	return "file:" + (&url.URL{Path: path}).EscapedPath()
}

func (s *Store[T]) fileExists() (bool, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat %s: %w", storage.ErrIO, s.path, err)
	}
	return true, nil
}

func (s *Store[T]) tableExists(ctx context.Context, db *sql.DB) (bool, error) {
	var name string
	err := db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, s.kind.Table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, backendError("inspect schema", err)
	}
	return true, nil
}

// backendError wraps err as storage.ErrBackend, adding storage.ErrDuplicateKey
// for primary key and unique constraint violations.
func backendError(op string, err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT:
			return fmt.Errorf("%w: %w: %s: %w", storage.ErrBackend, storage.ErrDuplicateKey, op, err)
		}
	}
	return fmt.Errorf("%w: %s: %w", storage.ErrBackend, op, err)
}
