package store

import (
	"strconv"
	"time"
)

// Row is one materialized result row with named-column access. Accessors
// normalize the type differences between drivers (sqlite returns int64 for
// booleans and []byte for some text columns, postgres returns native types)
// so entity mapping code stays driver-agnostic.
type Row map[string]any

// String returns the named column as a string, or "" when absent or NULL.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// Int64 returns the named column as an int64, or 0 when absent or NULL.
func (r Row) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	default:
		return 0
	}
}

// Int returns the named column as an int.
func (r Row) Int(col string) int {
	return int(r.Int64(col))
}

// Float64 returns the named column as a float64, or 0 when absent or NULL.
func (r Row) Float64(col string) float64 {
	switch v := r[col].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case []byte:
		f, _ := strconv.ParseFloat(string(v), 64)
		return f
	default:
		return 0
	}
}

// Bool returns the named column as a bool. Integer columns treat any
// non-zero value as true.
func (r Row) Bool(col string) bool {
	switch v := r[col].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}

// Time returns the named column as a time.Time, or the zero time when the
// column is absent, NULL, or not a timestamp.
func (r Row) Time(col string) time.Time {
	if v, ok := r[col].(time.Time); ok {
		return v
	}
	return time.Time{}
}
