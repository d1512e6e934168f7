// Package httpjson fetches a JSON value from a remote URL.
package httpjson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/gridwell/jsongrid/internal/domain"
)

// Config holds fetcher settings.
type Config struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	Logger       *zap.Logger
	// FetchTotal is a counter vec with label "result"
	// ("ok"/"transport_error"/"invalid_json"/"empty"), passed explicitly.
	FetchTotal *prometheus.CounterVec
}

// Fetcher retrieves and decodes JSON documents over HTTP.
type Fetcher struct {
	client       *http.Client
	maxBodyBytes int64
	logger       *zap.Logger
	fetchTotal   *prometheus.CounterVec
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 32 * 1024 * 1024
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:       &http.Client{Timeout: cfg.Timeout},
		maxBodyBytes: cfg.MaxBodyBytes,
		logger:       logger,
		fetchTotal:   cfg.FetchTotal,
	}
}

// Fetch GETs the URL and decodes the body as a JSON value. An empty body or
// a JSON null counts as empty content.
func (f *Fetcher) Fetch(ctx context.Context, url string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.incFetch("transport_error")
		return nil, fmt.Errorf("%w: build request for %q: %v", domain.ErrTransport, url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		f.incFetch("transport_error")
		return nil, fmt.Errorf("%w: get %q: %v", domain.ErrTransport, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.incFetch("transport_error")
		return nil, fmt.Errorf("%w: get %q: unexpected status %d", domain.ErrTransport, url, resp.StatusCode)
	}

	var content any
	dec := json.NewDecoder(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err := dec.Decode(&content); err != nil {
		if errors.Is(err, io.EOF) {
			f.incFetch("empty")
			return nil, fmt.Errorf("%w: %q returned an empty body", domain.ErrEmptyContent, url)
		}
		f.incFetch("invalid_json")
		return nil, fmt.Errorf("%w: decode body of %q: %v", domain.ErrInvalidJSON, url, err)
	}

	if content == nil {
		f.incFetch("empty")
		return nil, fmt.Errorf("%w: %q returned null", domain.ErrEmptyContent, url)
	}

	f.incFetch("ok")
	f.logger.Debug("Fetched content", zap.String("url", url))
	return content, nil
}

func (f *Fetcher) incFetch(result string) {
	if f.fetchTotal != nil {
		f.fetchTotal.WithLabelValues(result).Inc()
	}
}
