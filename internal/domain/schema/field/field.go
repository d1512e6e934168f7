// Package field defines the column descriptor produced by schema discovery.
package field

import (
	"fmt"
	"strings"

	"github.com/gridwell/jsongrid/internal/domain/semtype"
)

// Field is an immutable value object describing one flattened column.
// Identity is the normalized dotted-path id.
type Field struct {
	id          string
	displayName string
	semType     semtype.Type
	concept     semtype.Concept
}

// New validates and creates a Field. The dotted path is normalized into the
// id (lowercase, spaces to underscores); displayName keeps the raw key.
func New(dottedPath, displayName string, st semtype.Type) (Field, error) {
	id := Normalize(dottedPath)
	if id == "" {
		return Field{}, fmt.Errorf("field path is required")
	}
	switch st {
	case semtype.Number, semtype.Boolean, semtype.URL, semtype.Datetime, semtype.Text:
	default:
		return Field{}, fmt.Errorf("invalid semantic type %q for %q", st, id)
	}
	return Field{
		id:          id,
		displayName: displayName,
		semType:     st,
		concept:     semtype.ConceptOf(st),
	}, nil
}

// Reconstruct creates a Field without validation (hydration from a stored schema).
func Reconstruct(id, displayName string, st semtype.Type) Field {
	return Field{id: id, displayName: displayName, semType: st, concept: semtype.ConceptOf(st)}
}

// ID returns the normalized dotted-path identifier.
func (f Field) ID() string { return f.id }

// DisplayName returns the raw source key.
func (f Field) DisplayName() string { return f.displayName }

// SemanticType returns the inferred semantic type.
func (f Field) SemanticType() semtype.Type { return f.semType }

// Concept reports whether the field is a metric or a dimension.
func (f Field) Concept() semtype.Concept { return f.concept }

// IsMetric reports whether the field aggregates as a metric.
func (f Field) IsMetric() bool { return f.concept == semtype.Metric }

// PathSegments splits the id into its dotted-path segments.
func (f Field) PathSegments() []string { return strings.Split(f.id, ".") }

// Normalize lowercases a key and replaces spaces with underscores, matching
// the id form used for lookup fallbacks during value resolution.
func Normalize(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), " ", "_")
}
