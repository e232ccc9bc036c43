package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	calls int
	err   error
}

func (f *fakeSource) Name() string { return "Fake" }
func (f *fakeSource) URL() string  { return "http://example.invalid/forecast" }
func (f *fakeSource) FetchPage(ctx context.Context) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("page"), nil
}

func TestCachedPageSource(t *testing.T) {
	src := &fakeSource{}
	c := NewCachedPageSource(src, time.Minute)
	clock := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	assert.Equal(t, "Fake [Cached]", c.Name())
	assert.Equal(t, src.URL(), c.URL())

	body, err := c.FetchPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "page", string(body))

	clock = clock.Add(30 * time.Second)
	_, err = c.FetchPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)

	clock = clock.Add(time.Minute)
	_, err = c.FetchPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)

	hits, misses := c.CacheStats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 2, misses)
}

func TestCachedPageSourceDoesNotCacheErrors(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	c := NewCachedPageSource(src, time.Minute)

	_, err := c.FetchPage(context.Background())
	assert.Error(t, err)

	src.err = nil
	body, err := c.FetchPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "page", string(body))
	assert.Equal(t, 2, src.calls)
}

func TestFetchCachedPageReportsFetchTime(t *testing.T) {
	src := &fakeSource{}
	c := NewCachedPageSource(src, time.Hour)
	fetched := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	clock := fetched
	c.now = func() time.Time { return clock }

	_, at, cached, err := c.FetchCachedPage(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, fetched, at)

	clock = clock.Add(4 * time.Minute)
	_, at, cached, err = c.FetchCachedPage(context.Background())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, fetched, at)
	assert.Equal(t, 1, src.calls)

	c.Invalidate()
	_, at, cached, err = c.FetchCachedPage(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, clock, at)
	assert.Equal(t, 2, src.calls)
}
