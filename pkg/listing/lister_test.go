package listing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/cloudcp/pkg/provider"
)

func entryNames(entries []Entry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

func TestListerFlat(t *testing.T) {
	ctx := context.Background()

	t.Run("one level with folders first", func(t *testing.T) {
		store := newPagedStore(100,
			"reports/2026/jan.csv",
			"reports/2026/feb.csv",
			"reports/summary.csv",
			"reports/archive/old.csv",
		)
		lister := New(store, 100)

		entries, err := lister.Flat(ctx, "reports/")
		require.NoError(t, err)
		assert.Equal(t, []string{"2026/", "archive/", "summary.csv"}, entryNames(entries))

		assert.True(t, entries[0].IsDir)
		assert.True(t, entries[1].IsDir)
		assert.False(t, entries[2].IsDir)
		assert.Equal(t, int64(300), entries[2].Size)
	})

	t.Run("prefix without trailing separator is normalized", func(t *testing.T) {
		store := newPagedStore(100, "reports/summary.csv", "reports/2026/jan.csv")
		lister := New(store, 100)

		withSlash, err := lister.Flat(ctx, "reports/")
		require.NoError(t, err)
		withoutSlash, err := lister.Flat(ctx, "reports")
		require.NoError(t, err)
		assert.Equal(t, entryNames(withSlash), entryNames(withoutSlash))
	})

	t.Run("directory marker object is not a row", func(t *testing.T) {
		store := newPagedStore(100, "reports/", "reports/summary.csv")
		lister := New(store, 100)

		entries, err := lister.Flat(ctx, "reports/")
		require.NoError(t, err)
		assert.Equal(t, []string{"summary.csv"}, entryNames(entries))
	})

	t.Run("bucket root", func(t *testing.T) {
		store := newPagedStore(100, "top.txt", "dir/nested.txt")
		lister := New(store, 100)

		entries, err := lister.Flat(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"dir/", "top.txt"}, entryNames(entries))
	})

	t.Run("empty prefix result", func(t *testing.T) {
		store := newPagedStore(100)
		lister := New(store, 100)

		entries, err := lister.Flat(ctx, "nothing/")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("list failure propagates", func(t *testing.T) {
		store := newPagedStore(100, "reports/a.csv")
		store.listErr = provider.ErrAccessDenied
		lister := New(store, 100)

		_, err := lister.Flat(ctx, "reports/")
		require.ErrorIs(t, err, provider.ErrAccessDenied)
	})
}

func TestListerRecursive(t *testing.T) {
	ctx := context.Background()

	t.Run("all objects relative to prefix", func(t *testing.T) {
		store := newPagedStore(2,
			"reports/",
			"reports/2026/feb.csv",
			"reports/2026/jan.csv",
			"reports/archive/old.csv",
			"reports/summary.csv",
		)
		lister := New(store, 2)

		entries, err := lister.Recursive(ctx, "reports/")
		require.NoError(t, err)
		assert.Equal(t, []string{
			"2026/feb.csv",
			"2026/jan.csv",
			"archive/old.csv",
			"summary.csv",
		}, entryNames(entries))
		for _, e := range entries {
			assert.False(t, e.IsDir)
		}
	})

	t.Run("bucket root keeps full keys", func(t *testing.T) {
		store := newPagedStore(100, "a.txt", "dir/b.txt")
		lister := New(store, 100)

		entries, err := lister.Recursive(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "dir/b.txt"}, entryNames(entries))
	})
}
