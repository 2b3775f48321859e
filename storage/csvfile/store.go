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


// Package csvfile implements storage.Store on top of a flat text file.
//
// Each record occupies one line, "<uuid>,<fullname>\n", with no header and no
// escaping. The file is the only source of truth: there is no in-memory index
// and every operation re-reads or rewrites the whole file.
//
// Create appends. Update and Delete rewrite the file into "<path>.tmp" and
// atomically rename it over the original, so a crash leaves either the old or
// the new contents, never a truncated file.
package csvfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/poiesic/crudstrategy/core"
	"github.com/poiesic/crudstrategy/storage"
)

const (
	tempSuffix      = ".tmp"
	defaultFileMode = 0o644
)

// Store is a file-backed storage.Store. It holds nothing but a path.
type Store[T core.Record] struct {
	kind   core.Kind[T]
	path   string
	logger *slog.Logger
}

var _ storage.Store[core.User] = (*Store[core.User])(nil)

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

// New returns a store for kind persisted at path. The file is not touched
// until the first operation.
func New[T core.Record](kind core.Kind[T], path string, opts ...Option) storage.Store[T] {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return &Store[T]{
		kind:   kind,
		path:   path,
		logger: o.logger.With("backend", storage.BackendCSV, "kind", kind.Name),
	}
}

// Create appends item as a new line, creating the file if needed.
func (s *Store[T]) Create(ctx context.Context, item T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := core.ValidateRecord(item); err != nil {
		return err
	}
	s.logger.Debug("creating record", "path", s.path, "id", item.RecordID())

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, defaultFileMode)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", storage.ErrIO, s.path, err)
	}
	defer f.Close()

	needsNewline, err := missingTrailingNewline(f)
	if err != nil {
		return fmt.Errorf("%w: inspect %s: %w", storage.ErrIO, s.path, err)
	}

	line := MarshalLine(item)
	buf := make([]byte, 0, len(line)+2)
	if needsNewline {
		buf = append(buf, '\n')
	}
	buf = append(buf, line...)
	buf = append(buf, '\n')

	// One write per record: O_APPEND keeps a single write contiguous.
	if _, err := f.Write(buf); err != nil {
		return fmt.Errorf("%w: append to %s: %w", storage.ErrIO, s.path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %w", storage.ErrIO, s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", storage.ErrIO, s.path, err)
	}
	return nil
}

// ReadAll returns every parseable record in file order. Empty lines are
// ignored and malformed lines are skipped with a warning.
func (s *Store[T]) ReadAll(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.logger.Debug("reading all records", "path", s.path)

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("%w: open %s: %w", storage.ErrIO, s.path, err)
	}
	defer f.Close()

	records := []T{}
	err = scanLines(f, func(n int, line string) error {
		if strings.TrimSuffix(line, "\r") == "" {
			return nil
		}
		r, err := ParseLine(s.kind, line)
		if err != nil {
			s.logger.Warn("skipping malformed line", "path", s.path, "line", n, "err", err)
			return nil
		}
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", storage.ErrIO, s.path, err)
	}
	return records, nil
}

// Update replaces the line of every record whose id equals item's id.
func (s *Store[T]) Update(ctx context.Context, item T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := core.ValidateRecord(item); err != nil {
		return err
	}
	s.logger.Debug("updating record", "path", s.path, "id", item.RecordID())
	return s.rewrite(item.RecordID(), &item)
}

// Delete drops the line of every record whose id equals item's id.
func (s *Store[T]) Delete(ctx context.Context, item T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Debug("deleting record", "path", s.path, "id", item.RecordID())
	return s.rewrite(item.RecordID(), nil)
}

// rewrite copies the file into a temporary sibling, replacing (or, when
// replacement is nil, dropping) every line whose parsed id equals id, then
// renames the copy over the original. Lines that do not parse are copied
// through untouched. When nothing matches the original is left as is.
func (s *Store[T]) rewrite(id uuid.UUID, replacement *T) error {
	src, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: open %s: %w", storage.ErrIO, s.path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", storage.ErrIO, s.path, err)
	}

	tmpPath := s.tempPath()
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", storage.ErrIO, tmpPath, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriter(tmp)
	matched := 0
	err = scanLines(src, func(_ int, line string) error {
		if r, perr := ParseLine(s.kind, line); perr == nil && r.RecordID() == id {
			matched++
			if replacement == nil {
				return nil
			}
			line = MarshalLine(*replacement)
		}
		if _, err := w.WriteString(line); err != nil {
			return err
		}
		return w.WriteByte('\n')
	})
	if err != nil {
		return fmt.Errorf("%w: rewrite %s: %w", storage.ErrIO, s.path, err)
	}
	if matched == 0 {
		s.logger.Debug("no record matched", "path", s.path, "id", id)
		return nil
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: write %s: %w", storage.ErrIO, tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %w", storage.ErrIO, tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", storage.ErrIO, tmpPath, err)
	}
	_ = src.Close()

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("%w: rename %s: %w", storage.ErrIO, tmpPath, err)
	}
	committed = true

	if err := syncDir(filepath.Dir(s.path)); err != nil {
		s.logger.Debug("directory sync failed", "path", s.path, "err", err)
	}
	s.logger.Debug("rewrote file", "path", s.path, "id", id, "matched", matched)
	return nil
}

func (s *Store[T]) tempPath() string {
	return s.path + tempSuffix
}

// scanLines calls fn for every line of r, without its terminating newline.
// A final line lacking a newline is still reported. Line numbers start at 1.
func scanLines(r io.Reader, fn func(n int, line string) error) error {
	br := bufio.NewReader(r)
	for n := 1; ; n++ {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if ferr := fn(n, strings.TrimSuffix(line, "\n")); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// missingTrailingNewline reports whether f is non-empty and its last byte is
// not a newline.
func missingTrailingNewline(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}
	var last [1]byte
	if _, err := f.ReadAt(last[:], info.Size()-1); err != nil {
		return false, err
	}
	return last[0] != '\n', nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
