package dataset

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_HitOnUnchangedFile(t *testing.T) {
	path := writeTempCSV(t, "cached.csv", "Sales,Region\n10,North\n")
	cache := NewCache(NewLoader(nil), nil)

	first, hit, err := cache.Get(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := cache.Get(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Same(t, first, second, "hits return the shared dataset")
}

func TestCache_MissOnModifiedFile(t *testing.T) {
	path := writeTempCSV(t, "changing.csv", "Sales,Region\n10,North\n")
	cache := NewCache(NewLoader(nil), nil)

	_, _, err := cache.Get(context.Background(), path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path,
		[]byte("Sales,Region\n10,North\n20,South\n"), 0644))
	// A same-size rewrite within mtime resolution could alias; force a
	// distinct mtime to make the test deterministic.
	newTime := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, newTime, newTime))

	ds, hit, err := cache.Get(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, ds.NumRows())
}

func TestCache_Invalidate(t *testing.T) {
	path := writeTempCSV(t, "invalidated.csv", "Sales,Region\n10,North\n")
	cache := NewCache(NewLoader(nil), nil)

	_, _, err := cache.Get(context.Background(), path)
	require.NoError(t, err)

	cache.Invalidate(path)

	_, hit, err := cache.Get(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCache_MissingFile(t *testing.T) {
	cache := NewCache(NewLoader(nil), nil)
	_, _, err := cache.Get(context.Background(), "/nonexistent/sales.csv")
	assert.ErrorIs(t, err, ErrResourceNotFound)
}
