package datasource

import (
	"context"
)

// PageSource defines the interface for anything that can fetch the raw forecast page
type PageSource interface {
	// Name returns the source's name
	Name() string

	// URL returns the address the page is fetched from
	URL() string

	// FetchPage fetches the page and returns its body
	FetchPage(ctx context.Context) ([]byte, error)
}
