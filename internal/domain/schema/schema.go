// Package schema discovers a flat tabular schema from one representative
// JSON object by inline-flattening nested structures into dotted-path fields.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gridwell/jsongrid/internal/domain"
	"github.com/gridwell/jsongrid/internal/domain/schema/field"
	"github.com/gridwell/jsongrid/internal/domain/semtype"
)

// Discover walks the sample row depth-first and returns one field per leaf
// value. Arrays are treated as opaque leaves. Duplicate normalized ids
// collapse to a single entry, last occurrence wins.
//
// Leaves reached while inlining through a nested object deliberately
// classify from the containing object rather than the leaf value, which
// makes every nested field TEXT. This mirrors the upstream connector
// behavior and is pinned by tests as a compatibility quirk.
func Discover(sample any) ([]field.Field, error) {
	obj, ok := sample.(map[string]any)
	if !ok || obj == nil {
		return nil, fmt.Errorf("%w: sample row is not an object (got %T)", domain.ErrInvalidSchema, sample)
	}

	var fields []field.Field
	if err := walk(obj, "", false, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// walk flattens obj into out. inline is true once the walk has descended
// below the sample row, switching leaf typing to the container object.
func walk(obj map[string]any, parentPath string, inline bool, out *[]field.Field) error {
	for _, key := range sortedKeys(obj) {
		value := obj[key]
		path := childPath(parentPath, key)

		if nested, ok := value.(map[string]any); ok && nested != nil {
			if err := walk(nested, path, true, out); err != nil {
				return err
			}
			continue
		}

		typed := value
		if inline {
			typed = obj
		}
		f, err := field.New(path, key, semtype.Classify(typed))
		if err != nil {
			return fmt.Errorf("%w: field %q: %v", domain.ErrFieldIdentification, path, err)
		}
		upsert(out, f)
	}
	return nil
}

// childPath joins the parent path and the raw key with a dot. A root-level
// key keeps its own name, with literal dots flattened to underscores so the
// id stays splittable.
func childPath(parent, key string) string {
	if parent == "" {
		return strings.ReplaceAll(key, ".", "_")
	}
	return parent + "." + key
}

// upsert appends f, dropping any earlier field with the same id.
func upsert(fields *[]field.Field, f field.Field) {
	for i, existing := range *fields {
		if existing.ID() == f.ID() {
			*fields = append((*fields)[:i], (*fields)[i+1:]...)
			break
		}
	}
	*fields = append(*fields, f)
}

// sortedKeys gives the walk a deterministic order; Go maps would otherwise
// randomize the schema between requests.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
