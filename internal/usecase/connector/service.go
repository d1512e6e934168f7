// Package connector orchestrates schema and data requests: fetch the
// source (optionally through the chunked cache), discover the schema from
// one sample row, and project rows for the requested fields.
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gridwell/jsongrid/internal/domain"
	"github.com/gridwell/jsongrid/internal/domain/schema"
	"github.com/gridwell/jsongrid/internal/domain/schema/field"
	"github.com/gridwell/jsongrid/internal/domain/table"
)

// Service handles schema and data requests. One Service is constructed per
// process but carries no per-request state; everything flows through
// arguments and the context.
type Service struct {
	fetcher Fetcher
	cache   ContentCache
	logger  *zap.Logger
}

// New creates a connector service. cache may be nil to disable caching
// regardless of what requests ask for.
func New(fetcher Fetcher, cache ContentCache, logger *zap.Logger) *Service {
	return &Service{fetcher: fetcher, cache: cache, logger: logger}
}

// GetSchema fetches content and discovers the full field set.
func (s *Service) GetSchema(ctx context.Context, req domain.Request) ([]field.Field, error) {
	content, err := s.content(ctx, req)
	if err != nil {
		return nil, err
	}

	fields, err := schema.Discover(sampleRow(content))
	if err != nil {
		return nil, fmt.Errorf("discover schema for %q: %w", req.Config.URL, err)
	}

	s.logger.Debug("Discovered schema",
		zap.String("url", req.Config.URL),
		zap.Int("fields", len(fields)),
	)
	return fields, nil
}

// GetData fetches content, restricts the discovered schema to the requested
// field names in request order, and projects one output row per input row.
func (s *Service) GetData(ctx context.Context, req domain.Request) ([]field.Field, [][]any, error) {
	content, err := s.content(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	fields, err := schema.Discover(sampleRow(content))
	if err != nil {
		return nil, nil, fmt.Errorf("discover schema for %q: %w", req.Config.URL, err)
	}

	requested, err := restrict(fields, req.FieldNames)
	if err != nil {
		return nil, nil, err
	}

	rows := table.Project(content, requested)
	return requested, rows, nil
}

// content validates the request config and fetches the JSON value, going
// through the cache when the request asks for it.
func (s *Service) content(ctx context.Context, req domain.Request) (any, error) {
	if err := req.Config.Validate(); err != nil {
		return nil, err
	}

	url := req.Config.URL
	if req.Config.Cache && s.cache != nil {
		return s.cache.Fetch(ctx, url, func(ctx context.Context) (any, error) {
			return s.fetcher.Fetch(ctx, url)
		}, req.Config.CacheExpiryTime)
	}
	return s.fetcher.Fetch(ctx, url)
}

// sampleRow picks the representative object for schema discovery: the first
// array element, or the content itself when it is not an array.
func sampleRow(content any) any {
	if arr, ok := content.([]any); ok {
		if len(arr) == 0 {
			return nil
		}
		return arr[0]
	}
	return content
}

// restrict maps requested names onto discovered fields, preserving request order.
func restrict(fields []field.Field, names []string) ([]field.Field, error) {
	byID := make(map[string]field.Field, len(fields))
	for _, f := range fields {
		byID[f.ID()] = f
	}

	out := make([]field.Field, 0, len(names))
	for _, name := range names {
		f, ok := byID[field.Normalize(name)]
		if !ok {
			return nil, fmt.Errorf("%w: no field named %q", domain.ErrFieldIdentification, name)
		}
		out = append(out, f)
	}
	return out, nil
}
