package loader

import (
	"strconv"
	"strings"

	"social-sentiment/src/posts"
)

// Column dtypes reported by Describe.
const (
	TypeInt    = "int64"
	TypeFloat  = "float64"
	TypeObject = "object"
)

// ColumnSummary describes one column of a RawTable.
type ColumnSummary struct {
	Name  string
	Type  string
	Nulls int
}

// Summary is the shape, column types and null counts of a RawTable.
type Summary struct {
	Rows    int
	Cols    int
	Columns []ColumnSummary
}

// Describe inspects every cell of t. Empty or whitespace-only cells count as
// nulls and do not influence the inferred type.
func Describe(t posts.RawTable) Summary {
	s := Summary{Rows: len(t.Rows), Cols: len(t.Columns)}
	for c, name := range t.Columns {
		col := ColumnSummary{Name: name, Type: TypeInt}
		seen := false
		for _, row := range t.Rows {
			v := strings.TrimSpace(row[c])
			if v == "" {
				col.Nulls++
				continue
			}
			seen = true
			col.Type = widen(col.Type, v)
		}
		if !seen {
			col.Type = TypeObject
		}
		s.Columns = append(s.Columns, col)
	}
	return s
}

// NullCounts returns the columns that have at least one null cell.
func (s Summary) NullCounts() map[string]int {
	out := make(map[string]int)
	for _, c := range s.Columns {
		if c.Nulls > 0 {
			out[c.Name] = c.Nulls
		}
	}
	return out
}

func widen(current, v string) string {
	switch current {
	case TypeInt:
		if _, err := strconv.ParseInt(v, 10, 64); err == nil {
			return TypeInt
		}
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return TypeFloat
		}
		return TypeObject
	case TypeFloat:
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return TypeFloat
		}
		return TypeObject
	default:
		return TypeObject
	}
}
