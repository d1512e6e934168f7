package table

import (
	"encoding/json"
	"fmt"

	"github.com/gridwell/jsongrid/internal/domain/schema/field"
	"github.com/gridwell/jsongrid/internal/domain/semtype"
)

// Project produces one output row per input row, resolving and normalizing
// each requested field in order. Non-array content is treated as a single
// row. Every output row has exactly one cell per requested field.
func Project(content any, fields []field.Field) [][]any {
	rows, ok := content.([]any)
	if !ok {
		rows = []any{content}
	}

	out := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(fields))
		for j, f := range fields {
			cells[j] = cell(row, f)
		}
		out[i] = cells
	}
	return out
}

func cell(row any, f field.Field) any {
	if row == nil {
		return ""
	}

	value := Resolve(f.PathSegments(), row)

	if f.SemanticType() == semtype.Datetime {
		return canonicalDatetime(value)
	}

	switch v := value.(type) {
	case string, float64, float32, int, int64, bool:
		return v
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return ""
	}
}

// canonicalDatetime renders a date-time value as YYYYMMDDHH in UTC.
// Values that do not parse degrade to the empty string.
func canonicalDatetime(value any) any {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	t, ok := semtype.ParseTime(s)
	if !ok {
		return ""
	}
	t = t.UTC()
	return fmt.Sprintf("%04d%02d%02d%02d", t.Year(), int(t.Month()), t.Day(), t.Hour())
}
