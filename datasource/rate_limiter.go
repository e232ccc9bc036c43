package datasource

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedPageSource wraps a PageSource with rate limiting
type RateLimitedPageSource struct {
	source  PageSource
	limiter *rate.Limiter
	name    string
}

// NewRateLimitedPageSource creates a new rate limited page source
// rps is the maximum requests per second allowed (can be fractional for less than 1 request per second)
// burst is the maximum burst size allowed
func NewRateLimitedPageSource(source PageSource, rps float64, burst int) *RateLimitedPageSource {
	return &RateLimitedPageSource{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    fmt.Sprintf("%s [Rate Limited]", source.Name()),
	}
}

// FetchPage fetches the page, respecting rate limits
func (r *RateLimitedPageSource) FetchPage(ctx context.Context) ([]byte, error) {
	// Wait for rate limiter permission or context cancellation
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	return r.source.FetchPage(ctx)
}

// Name returns the source name
func (r *RateLimitedPageSource) Name() string {
	return r.name
}

// URL returns the wrapped source's address
func (r *RateLimitedPageSource) URL() string {
	return r.source.URL()
}

var _ PageSource = (*RateLimitedPageSource)(nil)
