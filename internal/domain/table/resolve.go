// Package table turns content plus a requested field list into output rows.
package table

import (
	"sort"

	"github.com/gridwell/jsongrid/internal/domain/schema/field"
)

// Resolve walks the dotted-path segments against row and returns whatever
// the cursor holds at the end. Lookup per segment runs two named strategies
// in order: direct key match, then a normalized-key scan. A segment that
// matches neither is silently dropped and the cursor stays where it is —
// discovery only samples one row, so other rows may be shaped differently.
// A property that is explicitly null short-circuits to the empty string.
func Resolve(segments []string, row any) any {
	cursor := row
	for _, segment := range segments {
		obj, ok := cursor.(map[string]any)
		if !ok {
			continue
		}

		if value, present := obj[segment]; present {
			if value == nil {
				return ""
			}
			cursor = value
			continue
		}

		if key, found := normalizedLookup(obj, segment); found {
			if obj[key] == nil {
				return ""
			}
			cursor = obj[key]
		}
	}
	return cursor
}

// normalizedLookup scans the object's own keys, comparing their normalized
// form against the segment. Keys are scanned in sorted order so ties between
// same-normalizing keys resolve deterministically.
func normalizedLookup(obj map[string]any, segment string) (string, bool) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if field.Normalize(k) == segment {
			return k, true
		}
	}
	return "", false
}
