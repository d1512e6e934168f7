// Package pagecache persists one fetched JSON value as a set of size-bounded
// store entries plus an index entry that enumerates them.
package pagecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/gridwell/jsongrid/internal/db"
	"github.com/gridwell/jsongrid/internal/domain"
)

// indexSuffix marks the entry that lists a fetch's chunk keys.
const indexSuffix = ".keys"

// store is the consumer interface for the chunked cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	GetMulti(ctx context.Context, keys []string) ([][]byte, error)
	SetMulti(ctx context.Context, entries []db.Entry, ttl time.Duration) error
}

// Producer fetches fresh content on a cache miss. An alias so callers can
// pass plain func literals through their own interface declarations.
type Producer = func(ctx context.Context) (any, error)

// Config holds cache tuning parameters.
type Config struct {
	KeyPrefix     string
	DefaultTTL    time.Duration
	MaxEntryBytes int
}

// Cache reads and writes chunked content through a key-value store.
type Cache struct {
	store         store
	keyPrefix     string
	defaultTTL    time.Duration
	maxEntryBytes int
	cacheTotal    *prometheus.CounterVec
	logger        *zap.Logger
}

// New creates a chunked content cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(s store, cfg Config, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 300 * time.Second
	}
	if cfg.MaxEntryBytes <= 0 {
		cfg.MaxEntryBytes = 100 * 1024
	}
	return &Cache{
		store:         s,
		keyPrefix:     cfg.KeyPrefix,
		defaultTTL:    cfg.DefaultTTL,
		maxEntryBytes: cfg.MaxEntryBytes,
		cacheTotal:    cacheTotal,
		logger:        logger,
	}
}

// Fetch returns the cached content for url, or invokes produce once and
// stores the result chunked by top-level element. expiryRaw is the cache
// expiry in minutes; anything unparseable falls back to the default TTL.
func (c *Cache) Fetch(ctx context.Context, url string, produce Producer, expiryRaw string) (any, error) {
	key := c.keyPrefix + stripKey(url)
	indexKey := key + indexSuffix

	if content, ok := c.readCached(ctx, key, indexKey); ok {
		c.incCache("hit")
		return content, nil
	}
	c.incCache("miss")

	content, err := produce(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.write(ctx, key, indexKey, content, c.parseTTL(expiryRaw)); err != nil {
		// An element too large for a single entry is terminal: the caller
		// asked for caching and the payload cannot honor it.
		if errors.Is(err, domain.ErrCacheCapacity) {
			return nil, err
		}
		// Store I/O failures degrade to serving fresh content uncached.
		c.logger.Warn("Failed to store cached content", zap.String("key", key), zap.Error(err))
	}
	return content, nil
}

// write chunks content under key with the given TTL and records the chunk
// key list in the index entry.
func (c *Cache) write(ctx context.Context, key, indexKey string, content any, ttl time.Duration) error {
	entries, chunkKeys, err := chunk(key, content, c.maxEntryBytes)
	if err != nil {
		return err
	}

	indexValue, err := json.Marshal(chunkKeys)
	if err != nil {
		return fmt.Errorf("marshal cache index: %w", err)
	}
	entries = append(entries, db.Entry{Key: indexKey, Value: indexValue})

	return c.store.SetMulti(ctx, entries, ttl)
}

// readCached reassembles content from the index entry and its chunks.
// Returns false on any gap that prevents reassembly (treated as a miss).
func (c *Cache) readCached(ctx context.Context, key, indexKey string) (any, bool) {
	indexValue, err := c.store.Get(ctx, indexKey)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read cache index", zap.String("key", indexKey), zap.Error(err))
		}
		return nil, false
	}

	var chunkKeys []string
	if err := json.Unmarshal(indexValue, &chunkKeys); err != nil {
		c.logger.Warn("Failed to parse cache index", zap.String("key", indexKey), zap.Error(err))
		return nil, false
	}
	if len(chunkKeys) == 0 {
		return nil, false
	}

	values, err := c.store.GetMulti(ctx, chunkKeys)
	if err != nil {
		c.logger.Warn("Failed to read cache entries", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	return reassemble(key, chunkKeys, values)
}

func (c *Cache) parseTTL(expiryRaw string) time.Duration {
	minutes, err := strconv.Atoi(strings.TrimSpace(expiryRaw))
	if err != nil || minutes <= 0 {
		return c.defaultTTL
	}
	return time.Duration(minutes) * time.Minute
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// chunk serializes each top-level element of content into its own entry.
func chunk(key string, content any, maxEntryBytes int) ([]db.Entry, []string, error) {
	var elements []element

	switch v := content.(type) {
	case []any:
		elements = make([]element, len(v))
		for i, item := range v {
			elements[i] = element{key: strconv.Itoa(i), value: item}
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			elements = append(elements, element{key: k, value: v[k]})
		}
	default:
		// Bare scalar payloads cache as a single element.
		elements = []element{{key: "0", value: content}}
	}

	entries := make([]db.Entry, 0, len(elements))
	chunkKeys := make([]string, 0, len(elements))
	for _, el := range elements {
		data, err := json.Marshal(el.value)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal element %q: %w", el.key, err)
		}
		if len(data) > maxEntryBytes {
			return nil, nil, fmt.Errorf("%w: element %q is %d bytes (limit %d)",
				domain.ErrCacheCapacity, el.key, len(data), maxEntryBytes)
		}
		chunkKey := key + "." + el.key
		entries = append(entries, db.Entry{Key: chunkKey, Value: data})
		chunkKeys = append(chunkKeys, chunkKey)
	}
	return entries, chunkKeys, nil
}

type element struct {
	key   string
	value any
}

// reassemble rebuilds the original array or object from chunk values in
// listed-key order. Missing entries (expired independently) are skipped.
// All-numeric element suffixes rebuild an array, anything else an object.
func reassemble(key string, chunkKeys []string, values [][]byte) (any, bool) {
	prefix := key + "."

	isArray := true
	for _, ck := range chunkKeys {
		if _, err := strconv.Atoi(strings.TrimPrefix(ck, prefix)); err != nil {
			isArray = false
			break
		}
	}

	if isArray {
		out := make([]any, 0, len(chunkKeys))
		for i := range chunkKeys {
			if values[i] == nil {
				continue
			}
			var v any
			if err := json.Unmarshal(values[i], &v); err != nil {
				continue
			}
			out = append(out, v)
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	}

	out := make(map[string]any, len(chunkKeys))
	for i, ck := range chunkKeys {
		if values[i] == nil {
			continue
		}
		var v any
		if err := json.Unmarshal(values[i], &v); err != nil {
			continue
		}
		out[strings.TrimPrefix(ck, prefix)] = v
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// stripKey derives a deterministic cache key by dropping every
// non-alphanumeric rune from the URL.
func stripKey(url string) string {
	var b strings.Builder
	for _, r := range url {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
