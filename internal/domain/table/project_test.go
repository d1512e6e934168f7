package table

import (
	"testing"

	"github.com/gridwell/jsongrid/internal/domain/schema/field"
	"github.com/gridwell/jsongrid/internal/domain/semtype"
)

func makeField(t *testing.T, path string, st semtype.Type) field.Field {
	t.Helper()
	f, err := field.New(path, path, st)
	if err != nil {
		t.Fatalf("field.New: %v", err)
	}
	return f
}

func TestProject_ScalarPassthrough(t *testing.T) {
	content := []any{
		map[string]any{"name": "Ann", "age": float64(30), "active": true},
	}
	fields := []field.Field{
		makeField(t, "name", semtype.Text),
		makeField(t, "age", semtype.Number),
		makeField(t, "active", semtype.Boolean),
	}

	rows := Project(content, fields)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row[0] != "Ann" || row[1] != float64(30) || row[2] != true {
		t.Errorf("unexpected row: %v", row)
	}
}

func TestProject_DatetimeCanonicalForm(t *testing.T) {
	content := []any{map[string]any{"created": "2020-01-02T03:00:00Z"}}
	fields := []field.Field{makeField(t, "created", semtype.Datetime)}

	rows := Project(content, fields)
	if rows[0][0] != "2020010203" {
		t.Errorf("expected 2020010203, got %v", rows[0][0])
	}
}

func TestProject_DatetimeUnparseableDegrades(t *testing.T) {
	content := []any{map[string]any{"created": "not a date"}}
	fields := []field.Field{makeField(t, "created", semtype.Datetime)}

	rows := Project(content, fields)
	if rows[0][0] != "" {
		t.Errorf("expected empty string, got %v", rows[0][0])
	}
}

func TestProject_StructuredValueSerialized(t *testing.T) {
	content := []any{map[string]any{"tags": []any{"a", "b"}}}
	fields := []field.Field{makeField(t, "tags", semtype.Text)}

	rows := Project(content, fields)
	if rows[0][0] != `["a","b"]` {
		t.Errorf("expected serialized array, got %v", rows[0][0])
	}
}

func TestProject_SingleObjectContent(t *testing.T) {
	content := map[string]any{"name": "Ann"}
	fields := []field.Field{makeField(t, "name", semtype.Text)}

	rows := Project(content, fields)
	if len(rows) != 1 || rows[0][0] != "Ann" {
		t.Errorf("expected single-row projection, got %v", rows)
	}
}

func TestProject_NilRowYieldsEmptyCells(t *testing.T) {
	content := []any{nil}
	fields := []field.Field{
		makeField(t, "a", semtype.Text),
		makeField(t, "b", semtype.Number),
	}

	rows := Project(content, fields)
	if rows[0][0] != "" || rows[0][1] != "" {
		t.Errorf("expected empty cells for nil row, got %v", rows[0])
	}
}

func TestProject_MissingFieldSerializesCursor(t *testing.T) {
	// Unmatched segments leave the cursor at the row itself, which then
	// serializes as JSON. Degrade-gracefully per the resolver contract.
	content := []any{map[string]any{"a": float64(1)}}
	fields := []field.Field{makeField(t, "missing", semtype.Text)}

	rows := Project(content, fields)
	if rows[0][0] != `{"a":1}` {
		t.Errorf("expected serialized row, got %v", rows[0][0])
	}
}

func TestProject_PreservesRowAndFieldOrder(t *testing.T) {
	content := []any{
		map[string]any{"a": "r1a", "b": "r1b"},
		map[string]any{"a": "r2a", "b": "r2b"},
	}
	fields := []field.Field{
		makeField(t, "b", semtype.Text),
		makeField(t, "a", semtype.Text),
	}

	rows := Project(content, fields)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "r1b" || rows[0][1] != "r1a" {
		t.Errorf("unexpected first row: %v", rows[0])
	}
	if rows[1][0] != "r2b" || rows[1][1] != "r2a" {
		t.Errorf("unexpected second row: %v", rows[1])
	}
}

func TestProject_NestedResolution(t *testing.T) {
	content := []any{
		map[string]any{"address": map[string]any{"city": "Berlin"}},
	}
	fields := []field.Field{makeField(t, "address.city", semtype.Text)}

	rows := Project(content, fields)
	if rows[0][0] != "Berlin" {
		t.Errorf("expected Berlin, got %v", rows[0][0])
	}
}
