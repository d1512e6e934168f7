package connector

import "context"

// Fetcher retrieves a decoded JSON value for a source URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (any, error)
}

// ContentCache serves content for a URL through the chunked cache,
// invoking produce on a miss. expiryRaw is the requested expiry in minutes.
type ContentCache interface {
	Fetch(ctx context.Context, url string, produce func(ctx context.Context) (any, error), expiryRaw string) (any, error)
}
