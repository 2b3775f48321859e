package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/poiesic/crudstrategy/core"
	"github.com/poiesic/crudstrategy/storage"
	"github.com/poiesic/crudstrategy/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testID1 = "67e55044-10b1-426f-9247-bb680e5fe0c8"
	testID2 = "67e55044-10b1-426f-9247-bb680e5fe0c9"
)

func TestStore_Contract(t *testing.T) {
	t.Run("users", func(t *testing.T) {
		storagetest.Run(t, core.UserKind, "users.csv", func(t *testing.T, path string) storage.Store[core.User] {
			return New(core.UserKind, path)
		})
	})
	t.Run("accounts", func(t *testing.T) {
		storagetest.Run(t, core.AccountKind, "accounts.csv", func(t *testing.T, path string) storage.Store[core.Account] {
			return New(core.AccountKind, path)
		})
	})
}

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accounts.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestCreate_CreatesFileWhenNotExist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.csv")
	store := New(core.AccountKind, path)

	require.NoError(t, store.Create(context.Background(), core.NewAccount("Test Account")))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestCreate_WritesExactLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.csv")
	store := New(core.AccountKind, path)
	account := core.Account{ID: uuid.MustParse(testID1), Fullname: "Test Account 1"}

	require.NoError(t, store.Create(context.Background(), account))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testID1+",Test Account 1\n", string(data))
}

func TestCreate_DoesNotClobberExistingContent(t *testing.T) {
	path := writeFile(t, testID1+",Test Account 1\n")
	store := New(core.AccountKind, path)

	require.NoError(t, store.Create(context.Background(), core.Account{ID: uuid.MustParse(testID2), Fullname: "Test Account 2"}))

	assert.Equal(t, []string{
		testID1 + ",Test Account 1",
		testID2 + ",Test Account 2",
	}, readLines(t, path))
}

func TestCreate_RepairsMissingTrailingNewline(t *testing.T) {
	path := writeFile(t, testID1+",Test Account 1")
	store := New(core.AccountKind, path)

	require.NoError(t, store.Create(context.Background(), core.Account{ID: uuid.MustParse(testID2), Fullname: "Test Account 2"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testID1+",Test Account 1\n"+testID2+",Test Account 2\n", string(data))
}

func TestCreate_RejectsLineBreaks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.csv")
	store := New(core.AccountKind, path)

	err := store.Create(context.Background(), core.NewAccount("Test\nAccount"))
	require.ErrorIs(t, err, storage.ErrInvalidRecord)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestCreate_MissingDirectoryIsIOError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "accounts.csv")
	store := New(core.AccountKind, path)

	err := store.Create(context.Background(), core.NewAccount("Test Account"))
	require.ErrorIs(t, err, storage.ErrIO)
}

func TestReadAll_SkipsMalformedLines(t *testing.T) {
	path := writeFile(t, strings.Join([]string{
		testID1 + ",Test Account 1",
		"",
		"just a display name",
		"not-a-uuid,Broken",
		testID2 + ",Test Account 2",
	}, "\n"))
	store := New(core.AccountKind, path)

	got, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []core.Account{
		{ID: uuid.MustParse(testID1), Fullname: "Test Account 1"},
		{ID: uuid.MustParse(testID2), Fullname: "Test Account 2"},
	}, got)
}

func TestReadAll_UnreadablePathIsIOError(t *testing.T) {
	// A directory where the file should be cannot be read as lines.
	dir := t.TempDir()
	store := New(core.AccountKind, dir)

	_, err := store.ReadAll(context.Background())
	require.ErrorIs(t, err, storage.ErrIO)
}

func TestUpdate_OneOfTwo(t *testing.T) {
	path := writeFile(t, testID1+",Test Account 1\n"+testID2+",Test Account 2")
	store := New(core.AccountKind, path)

	err := store.Update(context.Background(), core.Account{ID: uuid.MustParse(testID1), Fullname: "Modified Account 1"})
	require.NoError(t, err)

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, testID1+",Modified Account 1", lines[0])
	assert.Equal(t, testID2+",Test Account 2", lines[1])
}

func TestUpdate_OneOfOne(t *testing.T) {
	path := writeFile(t, testID1+",Test Account\n")
	store := New(core.AccountKind, path)

	err := store.Update(context.Background(), core.Account{ID: uuid.MustParse(testID1), Fullname: "Modified Account"})
	require.NoError(t, err)

	assert.Equal(t, []string{testID1 + ",Modified Account"}, readLines(t, path))
}

func TestUpdate_PreservesMalformedLines(t *testing.T) {
	path := writeFile(t, "legacy name only\n"+testID1+",Test Account 1\n")
	store := New(core.AccountKind, path)

	err := store.Update(context.Background(), core.Account{ID: uuid.MustParse(testID1), Fullname: "Modified"})
	require.NoError(t, err)

	assert.Equal(t, []string{"legacy name only", testID1 + ",Modified"}, readLines(t, path))
}

func TestUpdate_RejectsLineBreaks(t *testing.T) {
	path := writeFile(t, testID1+",Test Account 1\n")
	store := New(core.AccountKind, path)

	err := store.Update(context.Background(), core.Account{ID: uuid.MustParse(testID1), Fullname: "a\nb"})
	require.ErrorIs(t, err, storage.ErrInvalidRecord)
	assert.Equal(t, []string{testID1 + ",Test Account 1"}, readLines(t, path))
}

func TestDelete_OneOfTwo(t *testing.T) {
	path := writeFile(t, testID1+",Test Account 1\n"+testID2+",Test Account 2\n")
	store := New(core.AccountKind, path)

	require.NoError(t, store.Delete(context.Background(), core.Account{ID: uuid.MustParse(testID1)}))

	assert.Equal(t, []string{testID2 + ",Test Account 2"}, readLines(t, path))
}

func TestDelete_RemovesEveryDuplicate(t *testing.T) {
	path := writeFile(t, testID1+",First\n"+testID2+",Keep\n"+testID1+",Second\n")
	store := New(core.AccountKind, path)

	require.NoError(t, store.Delete(context.Background(), core.Account{ID: uuid.MustParse(testID1)}))

	assert.Equal(t, []string{testID2 + ",Keep"}, readLines(t, path))
}

func TestRewrite_LeavesNoTempFile(t *testing.T) {
	path := writeFile(t, testID1+",Test Account 1\n")
	store := New(core.AccountKind, path)

	require.NoError(t, store.Update(context.Background(), core.Account{ID: uuid.MustParse(testID1), Fullname: "Modified"}))
	require.NoError(t, store.Delete(context.Background(), core.Account{ID: uuid.MustParse(testID2)}))

	_, err := os.Stat(path + tempSuffix)
	assert.True(t, os.IsNotExist(err), "temp file should be gone")
}

func TestRewrite_NoMatchLeavesFileUntouched(t *testing.T) {
	original := testID1 + ",Test Account 1"
	path := writeFile(t, original)
	store := New(core.AccountKind, path)

	require.NoError(t, store.Delete(context.Background(), core.Account{ID: uuid.MustParse(testID2)}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data), "file without trailing newline must not be rewritten")
}

func TestRewrite_OverwritesStaleTempFile(t *testing.T) {
	path := writeFile(t, testID1+",Test Account 1\n")
	require.NoError(t, os.WriteFile(path+tempSuffix, []byte("garbage from a crash\n"), 0o644))
	store := New(core.AccountKind, path)

	require.NoError(t, store.Update(context.Background(), core.Account{ID: uuid.MustParse(testID1), Fullname: "Modified"}))

	assert.Equal(t, []string{testID1 + ",Modified"}, readLines(t, path))
}
