// file: internal/database/store_test.go
// version: 1.0.0
// guid: 6f2b8d04-1c3e-4a97-b5d0-e8a1f7c4290b

package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behavior every backend must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()

	_, ok, err := store.Get("met:objectIDs")
	require.NoError(t, err)
	assert.False(t, ok, "fresh store should not contain the key")

	require.NoError(t, store.Set("met:objectIDs", "[1,2,3]"))
	v, ok, err := store.Get("met:objectIDs")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1,2,3]", v)

	require.NoError(t, store.Set("met:objectIDs", "[4]"))
	v, _, err = store.Get("met:objectIDs")
	require.NoError(t, err)
	assert.Equal(t, "[4]", v, "Set should overwrite")

	require.NoError(t, store.Set("met:objectIDs:fetched_at", "2026-10-19T00:00:00Z"))
	require.NoError(t, store.Set("other:key", "x"))

	entries, err := store.List("met:", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "met:objectIDs", entries[0].Key)
	assert.Equal(t, "met:objectIDs:fetched_at", entries[1].Key)

	entries, err = store.List("met:", 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, store.Delete("met:objectIDs"))
	require.NoError(t, store.Delete("never:set"))
	_, ok, err = store.Get("met:objectIDs")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPebbleStore(t *testing.T) {
	store, err := NewPebbleStore(filepath.Join(t.TempDir(), "kv.pebble"))
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestPebbleStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.pebble")

	store, err := NewPebbleStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("met:objectIDs", "[436535]"))
	require.NoError(t, store.Close())

	reopened, err := NewPebbleStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get("met:objectIDs")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[436535]", v)
}

func TestPebbleStoreClosed(t *testing.T) {
	store, err := NewPebbleStore(filepath.Join(t.TempDir(), "kv.pebble"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, _, err = store.Get("k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, store.Set("k", "v"), ErrClosed)
	assert.ErrorIs(t, store.Close(), ErrClosed)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestSQLiteStoreListEscapesWildcards(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set("a_b", "1"))
	require.NoError(t, store.Set("axb", "2"))

	entries, err := store.List("a_", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a_b", entries[0].Key)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	store, err := NewRedisStore(addr)
	require.NoError(t, err)
	defer store.Close()

	for _, k := range []string{"met:objectIDs", "met:objectIDs:fetched_at", "other:key"} {
		_ = store.Delete(k)
	}
	exerciseStore(t, store)
}

func TestMockStore(t *testing.T) {
	store := NewMockStore()
	exerciseStore(t, store)
	assert.Greater(t, store.GetCalls, 0)
	assert.Greater(t, store.SetCalls, 0)
}

func TestInitializeStore(t *testing.T) {
	orig := GlobalStore
	defer func() { GlobalStore = orig }()

	dir := t.TempDir()

	t.Run("pebble default", func(t *testing.T) {
		require.NoError(t, InitializeStore("", filepath.Join(dir, "a.pebble"), false))
		assert.IsType(t, &PebbleStore{}, GlobalStore)
		require.NoError(t, CloseStore())
		assert.Nil(t, GlobalStore)
	})

	t.Run("sqlite requires opt in", func(t *testing.T) {
		err := InitializeStore("sqlite", filepath.Join(dir, "a.db"), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "enable-sqlite3-i-know-the-risks")
	})

	t.Run("sqlite3 alias", func(t *testing.T) {
		require.NoError(t, InitializeStore("sqlite3", filepath.Join(dir, "b.db"), true))
		assert.IsType(t, &SQLiteStore{}, GlobalStore)
		require.NoError(t, CloseStore())
	})

	t.Run("unsupported", func(t *testing.T) {
		err := InitializeStore("bolt", "x", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database type")
	})

	t.Run("close with nothing open", func(t *testing.T) {
		GlobalStore = nil
		assert.NoError(t, CloseStore())
	})
}
