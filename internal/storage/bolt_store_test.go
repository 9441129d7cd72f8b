package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltStoreMarksAndExpiresStats(t *testing.T) {
	opts := Options{
		StatsTTL:        1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}

	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "stats.db"), opts)
	require.NoError(t, err)
	store := storeRaw.(*boltStore)
	defer store.Close()

	const key = "724663360934772797:2514:3:338250"

	seen, err := store.SeenStats(key)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.MarkStats(key))

	seen, err = store.SeenStats(key)
	require.NoError(t, err)
	assert.True(t, seen)

	n, err := store.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	seen, err = store.SeenStats(key)
	require.NoError(t, err)
	assert.False(t, seen, "expected entry to expire and be removed")

	n, err = store.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBoltStoreCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "stats.db")
	store, err := NewStore("BBolt", path, Options{})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.MarkStats("k"))
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	require.NoError(t, err)
	require.NoError(t, store.MarkStats("x"))

	seen, err := store.SeenStats("x")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestNewStoreRejectsUnknownOrPathless(t *testing.T) {
	_, err := NewStore("mongo", "", Options{})
	assert.Error(t, err)

	_, err = NewStore("redis", "", Options{})
	assert.Error(t, err)

	_, err = NewStore("bbolt", " ", Options{})
	assert.Error(t, err)
}
