package domain

import "errors"

var (
	// ErrInvalidURL signals a missing or non-http(s) source URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrTransport signals a failed fetch of the source URL.
	ErrTransport = errors.New("fetch failed")
	// ErrInvalidJSON signals a response body that is not parseable JSON.
	ErrInvalidJSON = errors.New("invalid json")
	// ErrEmptyContent signals a successful fetch that yielded no content.
	ErrEmptyContent = errors.New("empty content")
	// ErrCacheCapacity signals a content element too large for a single cache entry.
	ErrCacheCapacity = errors.New("cache capacity exceeded")
	// ErrInvalidSchema signals a sample row that is not an object.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrFieldIdentification signals a requested field that could not be matched.
	ErrFieldIdentification = errors.New("field identification failed")
)
