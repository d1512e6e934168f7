package db

import (
	"context"
	"time"
)

// Store is the cache database facade.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Entry holds a single key+value pair for pipelined SET.
type Entry struct {
	Key   string
	Value []byte
}

// KVStore provides key-value operations with TTL support.
// GetMulti returns one value per requested key; missing keys yield nil
// entries rather than an error so callers can skip expired chunks.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	GetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	SetMulti(ctx context.Context, entries []Entry, ttl time.Duration) error
}
