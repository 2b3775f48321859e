package crudstrategy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/crudstrategy/core"
	"github.com/poiesic/crudstrategy/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	for _, backend := range storage.Backends {
		t.Run(string(backend), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "data"+filepath.Ext(backend.DefaultPath()))
			db, err := NewDatabase(backend, path)
			require.NoError(t, err)
			require.NotNil(t, db)
			defer db.Close()

			assert.Equal(t, backend, db.Backend())
			assert.NotNil(t, db.Users())
			assert.NotNil(t, db.Accounts())
			assert.NotNil(t, db.logger)
		})
	}

	t.Run("backend name is normalized", func(t *testing.T) {
		tests := []struct {
			name string
			want storage.Backend
		}{
			{name: "CSV", want: storage.BackendCSV},
			{name: " SQLite ", want: storage.BackendSQLite},
		}
		for _, tt := range tests {
			path := filepath.Join(t.TempDir(), "data"+filepath.Ext(tt.want.DefaultPath()))
			db, err := NewDatabase(storage.Backend(tt.name), path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, db.Backend())

			require.NoError(t, db.Users().Create(context.Background(), core.NewUser("Jane Doe")))
			users, err := db.Users().ReadAll(context.Background())
			require.NoError(t, err)
			assert.Len(t, users, 1)
		}
	})

	t.Run("error with unknown backend", func(t *testing.T) {
		db, err := NewDatabase(storage.Backend("postgres"), "")
		assert.ErrorIs(t, err, storage.ErrUnknownBackend)
		assert.Nil(t, db)
	})
}

func TestNewDatabase_DefaultPaths(t *testing.T) {
	db, err := NewDatabase(storage.BackendCSV, "")
	require.NoError(t, err)
	assert.Equal(t, "crudstrategy-users.csv", db.Path(core.UserKind.Table))
	assert.Equal(t, "crudstrategy-accounts.csv", db.Path(core.AccountKind.Table))

	db, err = NewDatabase(storage.BackendSQLite, "")
	require.NoError(t, err)
	assert.Equal(t, "crudstrategy.sqlite", db.Path(core.UserKind.Table))
	assert.Equal(t, "crudstrategy.sqlite", db.Path(core.AccountKind.Table))
}

func TestKindPath(t *testing.T) {
	tests := []struct {
		base  string
		table string
		want  string
	}{
		{base: "data.csv", table: "users", want: "data-users.csv"},
		{base: "/var/lib/app/records.csv", table: "accounts", want: "/var/lib/app/records-accounts.csv"},
		{base: "records", table: "users", want: "records-users"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, KindPath(tt.base, tt.table))
		})
	}
}

// The same calls work against either backend without change.
func TestDatabase_BackendsAreInterchangeable(t *testing.T) {
	for _, backend := range storage.Backends {
		t.Run(string(backend), func(t *testing.T) {
			dir := t.TempDir()
			db, err := NewDatabase(backend, filepath.Join(dir, "data"+filepath.Ext(backend.DefaultPath())))
			require.NoError(t, err)
			ctx := context.Background()

			user := core.NewUser("Jane Doe")
			account := core.NewAccount("Test Account")
			require.NoError(t, db.Users().Create(ctx, user))
			require.NoError(t, db.Accounts().Create(ctx, account))

			users, err := db.Users().ReadAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, []core.User{user}, users)

			accounts, err := db.Accounts().ReadAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, []core.Account{account}, accounts)

			for _, table := range []string{core.UserKind.Table, core.AccountKind.Table} {
				_, err := os.Stat(db.Path(table))
				assert.NoError(t, err)
			}
		})
	}
}
