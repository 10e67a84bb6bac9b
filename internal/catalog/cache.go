// Package catalog memoizes the book-library catalog and answers filtered
// and random lookups over it in memory.
package catalog

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	loadKey            = "catalog"
	defaultLoadTimeout = 30 * time.Second
)

// Loader downloads the full catalog.
type Loader func(ctx context.Context) ([]Entry, error)

// Cache loads the catalog at most once per process. Concurrent callers that
// arrive during the first load share it. A failed load is remembered as an
// empty catalog and is not retried.
type Cache struct {
	load        Loader
	loadTimeout time.Duration
	group       singleflight.Group

	mu      sync.RWMutex
	loaded  bool
	entries []Entry
}

// Option is a functional option for configuring the Cache.
type Option func(*Cache)

// WithLoadTimeout bounds the single download.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.loadTimeout = d
		}
	}
}

// New creates an empty cache backed by load.
func New(load Loader, opts ...Option) *Cache {
	c := &Cache{load: load, loadTimeout: defaultLoadTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) snapshot() ([]Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries, c.loaded
}

// Catalog returns the memoized catalog, downloading it on first use.
// If ctx ends while the first load is in flight the caller gets nil; the
// load itself keeps running and is stored for later callers.
func (c *Cache) Catalog(ctx context.Context) []Entry {
	if entries, ok := c.snapshot(); ok {
		return entries
	}

	ch := c.group.DoChan(loadKey, func() (any, error) {
		if entries, ok := c.snapshot(); ok {
			return entries, nil
		}

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()

		start := time.Now()
		entries, err := c.load(loadCtx)
		if err != nil {
			slog.Warn("Catalog load failed, keeping empty catalog", "error", err)
			entries = nil
		} else {
			slog.Info("Catalog loaded", "entries", len(entries), "duration", time.Since(start))
		}

		c.mu.Lock()
		c.entries = entries
		c.loaded = true
		c.mu.Unlock()
		return entries, nil
	})

	select {
	case res := <-ch:
		entries, _ := res.Val.([]Entry)
		return entries
	case <-ctx.Done():
		slog.Debug("Gave up waiting for catalog", "error", ctx.Err())
		return nil
	}
}

// Loaded reports whether the one-time load has completed.
func (c *Cache) Loaded() bool {
	_, ok := c.snapshot()
	return ok
}

// Search runs Search over the cached catalog.
func (c *Cache) Search(ctx context.Context, query, category, author string, limit int) []Entry {
	return Search(c.Catalog(ctx), query, category, author, limit)
}

// Random runs Random over the cached catalog.
func (c *Cache) Random(ctx context.Context, category string, rng *rand.Rand) (Entry, bool) {
	return Random(c.Catalog(ctx), category, rng)
}

// Categories runs Categories over the cached catalog.
func (c *Cache) Categories(ctx context.Context) []CategoryCount {
	return Categories(c.Catalog(ctx))
}

// ByPeriod runs ByPeriod over the cached catalog.
func (c *Cache) ByPeriod(ctx context.Context, minYear, maxYear, limit int) []Entry {
	return ByPeriod(c.Catalog(ctx), minYear, maxYear, limit)
}

// Statistics runs Stats over the cached catalog.
func (c *Cache) Statistics(ctx context.Context) Statistics {
	return Stats(c.Catalog(ctx))
}
