// Package semtype classifies scalar JSON values into coarse semantic types.
package semtype

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Type is the semantic type of a column value.
type Type string

// Semantic type constants.
const (
	Number   Type = "NUMBER"
	Boolean  Type = "BOOLEAN"
	URL      Type = "URL"
	Datetime Type = "DATETIME"
	Text     Type = "TEXT"
)

// Concept distinguishes aggregatable metrics from grouping dimensions.
type Concept string

// Concept constants.
const (
	Metric    Concept = "METRIC"
	Dimension Concept = "DIMENSION"
)

// ConceptOf returns the concept for a semantic type: Number fields are
// metrics, everything else is a dimension.
func ConceptOf(t Type) Concept {
	if t == Number {
		return Metric
	}
	return Dimension
}

// urlRegex matches host.tld[/path] with an optional scheme. The 2-4 letter
// TLD heuristic mirrors what the connector needs, not full RFC 3986.
var urlRegex = regexp.MustCompile(`^(?:https?://)?[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)*\.[A-Za-z]{2,4}(?:/\S*)?$`)

// timeLayouts are tried in order when probing a string for a date-time.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	time.RFC1123,
	time.RFC1123Z,
}

// Classify maps a decoded JSON value to a semantic type. Rules apply in
// order, first match wins:
//  1. finite number (including numeric strings) -> Number
//  2. boolean, or the strings "true"/"false" -> Boolean
//  3. for remaining strings: URL-shaped -> URL, parseable date-time -> Datetime
//  4. everything else (objects, arrays, nil included) -> Text
func Classify(value any) Type {
	if f, ok := asFloat(value); ok && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Number
	}
	if isBool(value) {
		return Boolean
	}

	s, ok := value.(string)
	if !ok {
		return Text
	}
	if urlRegex.MatchString(s) {
		return URL
	}
	if _, ok := ParseTime(s); ok {
		return Datetime
	}
	return Text
}

// ParseTime probes a string against the known date-time layouts.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func isBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return true
	case string:
		lower := strings.ToLower(strings.TrimSpace(v))
		return lower == "true" || lower == "false"
	}
	return false
}
