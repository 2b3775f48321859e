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


// Package storagetest holds the behavioural contract every storage.Store
// implementation must satisfy. Backend packages call Run from their tests so
// both strategies are held to identical properties.
package storagetest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/poiesic/crudstrategy/core"
	"github.com/poiesic/crudstrategy/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Opener returns a store persisting to path. The path does not exist yet.
type Opener[T core.Record] func(t *testing.T, path string) storage.Store[T]

var (
	id1 = uuid.MustParse("67e55044-10b1-426f-9247-bb680e5fe0c8")
	id2 = uuid.MustParse("67e55044-10b1-426f-9247-bb680e5fe0c9")
	id3 = uuid.MustParse("67e55044-10b1-426f-9247-bb680e5fe0ca")
)

// Run executes the contract suite against the store returned by open.
// fileName is joined to a fresh temporary directory for every subtest.
func Run[T core.Record](t *testing.T, kind core.Kind[T], fileName string, open Opener[T]) {
	newStore := func(t *testing.T) (storage.Store[T], string) {
		path := filepath.Join(t.TempDir(), fileName)
		return open(t, path), path
	}
	ctx := context.Background()

	t.Run("create then read returns the record", func(t *testing.T) {
		store, _ := newStore(t)
		r := kind.New(id1, "Test Account")

		require.NoError(t, store.Create(ctx, r))

		got, err := store.ReadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []T{r}, got)
	})

	t.Run("read of missing storage is empty and creates nothing", func(t *testing.T) {
		store, path := newStore(t)

		got, err := store.ReadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)

		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err), "ReadAll must not create %s", path)
	})

	t.Run("create preserves insertion order", func(t *testing.T) {
		store, _ := newStore(t)
		want := []T{
			kind.New(id1, "First"),
			kind.New(id2, "Second"),
			kind.New(id3, "Third"),
		}
		for _, r := range want {
			require.NoError(t, store.Create(ctx, r))
		}

		got, err := store.ReadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("fullname with commas round trips", func(t *testing.T) {
		store, _ := newStore(t)
		r := kind.New(id1, "Doe, Jane, Jr.")

		require.NoError(t, store.Create(ctx, r))

		got, err := store.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Doe, Jane, Jr.", got[0].RecordName())
		assert.Equal(t, id1, got[0].RecordID())
	})

	t.Run("update preserves identity and changes name", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, store.Create(ctx, kind.New(id1, "A")))
		require.NoError(t, store.Create(ctx, kind.New(id2, "Other")))

		require.NoError(t, store.Update(ctx, kind.New(id1, "B")))

		got, err := store.ReadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []T{kind.New(id1, "B"), kind.New(id2, "Other")}, got)
	})

	t.Run("update one of two", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, store.Create(ctx, kind.New(id1, "Test Account 1")))
		require.NoError(t, store.Create(ctx, kind.New(id2, "Test Account 2")))

		require.NoError(t, store.Update(ctx, kind.New(id1, "Modified Account 1")))

		got, err := store.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, kind.New(id1, "Modified Account 1"), got[0])
		assert.Equal(t, kind.New(id2, "Test Account 2"), got[1])
	})

	t.Run("delete removes exactly one", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, store.Create(ctx, kind.New(id1, "Test Account 1")))
		require.NoError(t, store.Create(ctx, kind.New(id2, "Test Account 2")))

		require.NoError(t, store.Delete(ctx, kind.New(id1, "ignored")))

		got, err := store.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, kind.New(id2, "Test Account 2"), got[0])
	})

	t.Run("delete one of one leaves an empty store", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, store.Create(ctx, kind.New(id1, "Test Account")))

		require.NoError(t, store.Delete(ctx, kind.New(id1, "Test Account")))

		got, err := store.ReadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("update and delete of unknown id are no-ops", func(t *testing.T) {
		store, _ := newStore(t)
		want := []T{kind.New(id1, "Test Account 1"), kind.New(id2, "Test Account 2")}
		for _, r := range want {
			require.NoError(t, store.Create(ctx, r))
		}

		require.NoError(t, store.Update(ctx, kind.New(id3, "Nobody")))
		require.NoError(t, store.Delete(ctx, kind.New(id3, "Nobody")))

		got, err := store.ReadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("update and delete on missing storage create nothing", func(t *testing.T) {
		store, path := newStore(t)

		require.NoError(t, store.Update(ctx, kind.New(id1, "Nobody")))
		require.NoError(t, store.Delete(ctx, kind.New(id1, "Nobody")))

		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err), "Update/Delete must not create %s", path)
	})

	t.Run("name containing another id does not match it", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, store.Create(ctx, kind.New(id1, "Target")))
		require.NoError(t, store.Create(ctx, kind.New(id2, "alias of "+id1.String())))

		require.NoError(t, store.Delete(ctx, kind.New(id1, "")))

		got, err := store.ReadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []T{kind.New(id2, "alias of "+id1.String())}, got)
	})

	t.Run("cancelled context fails fast", func(t *testing.T) {
		store, path := newStore(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		err := store.Create(cctx, kind.New(id1, "Test Account"))
		require.ErrorIs(t, err, context.Canceled)

		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("locked store serializes concurrent creates", func(t *testing.T) {
		base, _ := newStore(t)
		store := storage.Locked(base)

		const n = 20
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- store.Create(ctx, kind.New(uuid.New(), fmt.Sprintf("Record %d", i)))
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := store.ReadAll(ctx)
		require.NoError(t, err)
		assert.Len(t, got, n)
	})
}
