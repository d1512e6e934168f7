// Package domain holds the connector's shared value types and sentinel errors.
package domain

import (
	"fmt"
	"regexp"
)

var urlRegex = regexp.MustCompile(`^https?://`)

// ConfigParams carries the per-request connector configuration.
type ConfigParams struct {
	URL             string
	Cache           bool
	CacheExpiryTime string
}

// Validate checks that the source URL is present and http(s).
func (p ConfigParams) Validate() error {
	if p.URL == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidURL)
	}
	if !urlRegex.MatchString(p.URL) {
		return fmt.Errorf("%w: %q must start with http:// or https://", ErrInvalidURL, p.URL)
	}
	return nil
}

// Request is a schema or data request. FieldNames is empty for schema
// requests and lists the requested column ids, in order, for data requests.
type Request struct {
	Config     ConfigParams
	FieldNames []string
}
