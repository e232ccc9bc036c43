package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"forecast-scraper/datasource"
)

// CachedPageSource wraps a PageSource and reuses a fetched page for a while
type CachedPageSource struct {
	source         datasource.PageSource
	entry          *cacheEntry
	mutex          sync.RWMutex
	cacheDuration  time.Duration
	cacheHitCount  int
	cacheMissCount int
	now            func() time.Time
}

// cacheEntry represents a cached page with its timestamp
type cacheEntry struct {
	Body      []byte
	Timestamp time.Time
}

// NewCachedPageSource creates a new cached wrapper around a page source
func NewCachedPageSource(source datasource.PageSource, cacheDuration time.Duration) *CachedPageSource {
	return &CachedPageSource{
		source:        source,
		cacheDuration: cacheDuration,
		now:           time.Now,
	}
}

// Name returns the name of the underlying page source with [Cached] suffix
func (c *CachedPageSource) Name() string {
	return c.source.Name() + " [Cached]"
}

// URL returns the wrapped source's address
func (c *CachedPageSource) URL() string {
	return c.source.URL()
}

// FetchPage returns the cached page while it is fresh and fetches it otherwise
func (c *CachedPageSource) FetchPage(ctx context.Context) ([]byte, error) {
	body, _, _, err := c.FetchCachedPage(ctx)
	return body, err
}

// FetchCachedPage works like FetchPage and also reports when the returned
// page was fetched and whether it came from the cache
func (c *CachedPageSource) FetchCachedPage(ctx context.Context) ([]byte, time.Time, bool, error) {
	c.mutex.RLock()
	entry := c.entry
	c.mutex.RUnlock()

	if entry != nil && c.now().Sub(entry.Timestamp) < c.cacheDuration {
		c.mutex.Lock()
		c.cacheHitCount++
		c.mutex.Unlock()

		slog.Debug("page cache hit", "source", c.source.Name(), "age", c.now().Sub(entry.Timestamp).Round(time.Second))
		return entry.Body, entry.Timestamp, true, nil
	}

	c.mutex.Lock()
	c.cacheMissCount++
	c.mutex.Unlock()

	slog.Debug("page cache miss", "source", c.source.Name())

	body, err := c.source.FetchPage(ctx)
	if err != nil {
		return nil, time.Time{}, false, err
	}
	fetchedAt := c.now()

	c.mutex.Lock()
	c.entry = &cacheEntry{
		Body:      body,
		Timestamp: fetchedAt,
	}
	c.mutex.Unlock()

	return body, fetchedAt, false, nil
}

// Invalidate drops the cached page so the next fetch goes to the source
func (c *CachedPageSource) Invalidate() {
	c.mutex.Lock()
	c.entry = nil
	c.mutex.Unlock()
}

// CacheStats returns statistics about cache hits and misses
func (c *CachedPageSource) CacheStats() (hits, misses int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.cacheHitCount, c.cacheMissCount
}

// Ensure CachedPageSource implements the PageSource interface
var _ datasource.PageSource = (*CachedPageSource)(nil)
