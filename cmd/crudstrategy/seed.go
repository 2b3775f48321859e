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


package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"slices"

	"github.com/poiesic/crudstrategy"
	"github.com/poiesic/crudstrategy/config"
	"github.com/poiesic/crudstrategy/core"
	"github.com/poiesic/crudstrategy/seed"
	"github.com/poiesic/crudstrategy/storage"
	"github.com/urfave/cli/v2"
)

// sampleNames seeds the store when no source file is given.
var sampleNames = []string{
	"Ada Lovelace",
	"Alan Turing",
	"Grace Hopper",
	"Edsger Dijkstra",
	"Barbara Liskov",
	"Donald Knuth",
	"Margaret Hamilton",
	"Ken Thompson",
	"Dennis Ritchie",
	"Frances Allen",
	"John McCarthy",
	"Radia Perlman",
	"Hopper, Grace Brewster Murray",
	"Tony Hoare",
	"Leslie Lamport",
	"Shafi Goldwasser",
	"Niklaus Wirth",
	"Adele Goldberg",
	"Rob Pike",
	"Robert Griesemer",
}

// linesFromReader returns an iterator over lines in r and a function
// reporting the scan error, if any, once iteration has finished.
func linesFromReader(r io.Reader) (iter.Seq[string], func() error) {
	var scanErr error
	seq := func(yield func(string) bool) {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
		scanErr = scanner.Err()
	}
	return seq, func() error { return scanErr }
}

func seedCommand(c *cli.Context) error {
	cfg := settingsFromContext(c)
	if err := cfg.Validate(); err != nil {
		return err
	}
	backend, err := storage.ParseBackend(cfg.Backend)
	if err != nil {
		return err
	}
	kind := c.String("kind")
	if kind != core.UserKind.Table && kind != core.AccountKind.Table {
		return fmt.Errorf("%w: unknown kind %q: must be one of %s, %s",
			config.ErrInvalidConfig, kind, core.UserKind.Table, core.AccountKind.Table)
	}

	db, err := crudstrategy.NewDatabase(backend, cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer db.Close()

	// Determine source of seed data
	source := slices.Values(sampleNames)
	scanErr := func() error { return nil }
	if src := c.String("src"); src != "" {
		f, err := os.Open(src)
		if err != nil {
			return fmt.Errorf("failed to open seed file: %w", err)
		}
		defer f.Close()
		source, scanErr = linesFromReader(f)
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	var created int
	if kind == core.UserKind.Table {
		created, err = seedKind(ctx, db.Users(), core.UserKind, source, c.Int("workers"))
	} else {
		created, err = seedKind(ctx, db.Accounts(), core.AccountKind, source, c.Int("workers"))
	}
	if err != nil {
		return err
	}
	if err := scanErr(); err != nil {
		return fmt.Errorf("error reading seed file: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "created %d %s in %s\n", created, kind, db.Path(kind))
	return nil
}

func seedKind[T core.Record](ctx context.Context, store storage.Store[T], kind core.Kind[T], source iter.Seq[string], workers int) (int, error) {
	opts := []seed.Option{}
	if workers > 0 {
		opts = append(opts, seed.WithPoolSize(workers))
	}
	seeder, err := seed.New(store, kind, opts...)
	if err != nil {
		return 0, err
	}
	defer seeder.Release()

	return seeder.Seed(ctx, source)
}
