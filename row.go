package aetherdb

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Row is one result record. Every driver backs it with the same
// column-to-value map so the coercion rules below cannot drift between
// backends. A Row is immutable after construction and never wraps a
// backend-native response object.
type Row struct {
	columns []string
	values  map[string]any
}

// NewRow builds a Row from a column-value map. The map is copied; column
// names are reported in sorted order.
func NewRow(values map[string]any) Row {
	copied := make(map[string]any, len(values))
	columns := make([]string, 0, len(values))
	for k, v := range values {
		copied[k] = v
		columns = append(columns, k)
	}
	sort.Strings(columns)
	return Row{columns: columns, values: copied}
}

// ColumnNames returns the columns present in this row.
func (r Row) ColumnNames() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// HasColumn reports whether the row carries the column.
func (r Row) HasColumn(column string) bool {
	_, ok := r.values[column]
	return ok
}

// GetValue returns the raw value for a column.
func (r Row) GetValue(column string) (any, bool) {
	v, ok := r.values[column]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// GetString returns the column as a string. Non-string scalars are
// formatted, since backends disagree on whether identifiers and numbers
// arrive as text.
func (r Row) GetString(column string) (string, bool) {
	v, ok := r.GetValue(column)
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return fmt.Sprint(v), true
	}
}

// GetInt returns the column as an int, coercing per the shared ladder.
func (r Row) GetInt(column string) (int, bool) {
	v, ok := r.GetValue(column)
	if !ok {
		return 0, false
	}
	n, ok := coerceInt64(v)
	if !ok {
		return 0, false
	}
	return int(n), true
}

// GetLong returns the column as an int64.
func (r Row) GetLong(column string) (int64, bool) {
	v, ok := r.GetValue(column)
	if !ok {
		return 0, false
	}
	return coerceInt64(v)
}

// GetDouble returns the column as a float64.
func (r Row) GetDouble(column string) (float64, bool) {
	v, ok := r.GetValue(column)
	if !ok {
		return 0, false
	}
	return coerceFloat64(v)
}

// GetBoolean returns the column as a bool.
func (r Row) GetBoolean(column string) (bool, bool) {
	v, ok := r.GetValue(column)
	if !ok {
		return false, false
	}
	return coerceBool(v)
}

// coerceInt64 applies the integer coercion ladder: exact type, numeric
// widening, then string parse. Parse failures leave the value unset rather
// than raising.
func coerceInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		// JSON decoders surface integers as float64.
		return int64(n), true
	case float32:
		return int64(n), true
	case []byte:
		return parseInt64(string(n))
	case string:
		return parseInt64(n)
	default:
		return 0, false
	}
}

func parseInt64(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func coerceFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case []byte:
		return parseFloat64(string(n))
	case string:
		return parseFloat64(n)
	default:
		return 0, false
	}
}

func parseFloat64(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func coerceBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case int:
		return intAsBool(int64(b))
	case int32:
		return intAsBool(int64(b))
	case int64:
		return intAsBool(b)
	case []byte:
		return parseBool(string(b))
	case string:
		return parseBool(b)
	default:
		return false, false
	}
}

func intAsBool(n int64) (bool, bool) {
	switch n {
	case 0:
		return false, true
	case 1:
		return true, true
	default:
		return false, false
	}
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes":
		return true, true
	case "false", "f", "0", "no":
		return false, true
	default:
		return false, false
	}
}
