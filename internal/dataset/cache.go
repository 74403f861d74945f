package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// cacheKey identifies a cached dataset by resource identity. A changed
// mtime or size invalidates the entry, so a stale session never sees a
// rewritten file.
type cacheKey struct {
	modTime time.Time
	size    int64
}

type cacheEntry struct {
	key cacheKey
	ds  *Dataset
}

// Cache memoizes ingestion results per source file. Repeated requests for
// an unchanged file return the shared immutable dataset without re-running
// the ingestion pipeline.
type Cache struct {
	mu      sync.Mutex
	loader  *Loader
	logger  *slog.Logger
	entries map[string]*cacheEntry
}

// NewCache creates a dataset cache backed by the given loader.
func NewCache(loader *Loader, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		loader:  loader,
		logger:  logger.With(slog.String("component", "dataset_cache")),
		entries: make(map[string]*cacheEntry),
	}
}

// Get returns the dataset for path, ingesting it on a miss. The returned
// bool reports whether the cache satisfied the request.
func (c *Cache) Get(ctx context.Context, path string) (*Dataset, bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return nil, false, fmt.Errorf("%w: %s", ErrResourceNotFound, path)
	}
	key := cacheKey{modTime: info.ModTime(), size: info.Size()}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[abs]; ok && entry.key == key {
		c.logger.DebugContext(ctx, "dataset cache hit", slog.String("path", abs))
		return entry.ds, true, nil
	}

	ds, err := c.loader.Load(ctx, abs)
	if err != nil {
		return nil, false, err
	}

	c.entries[abs] = &cacheEntry{key: key, ds: ds}
	c.logger.InfoContext(ctx, "dataset cached",
		slog.String("path", abs),
		slog.Int("rows", ds.NumRows()))
	return ds, false, nil
}

// Invalidate drops the cached entry for path, forcing the next Get to
// re-run ingestion.
func (c *Cache) Invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, abs)
}
