// Package model defines the typed row variants for each source table and the
// unified catalog record they merge into.
package model

import (
	"strconv"
	"strings"
)

// Record is a raw row as returned by the record store: field names to loosely
// typed JSON values. Typed row constructors consume it exactly once, at the
// ingestion boundary.
type Record map[string]any

// Str returns the named field as a trimmed string, "" when absent or null.
func (r Record) Str(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		// Caspio numerics decode as float64; integral values lose the ".0".
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// Int returns the named field as an int, 0 when absent, null, or unparseable.
func (r Record) Int(key string) int {
	v, ok := r[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		return SafeInt(n)
	default:
		return 0
	}
}

// Float returns the named field as a float64, 0 on absence or parse failure.
func (r Record) Float(key string) float64 {
	v, ok := r[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// SafeInt parses s as an integer, tolerating surrounding whitespace and a
// trailing decimal part. Returns 0 on failure.
func SafeInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		s = s[:dot]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Clamp truncates s to at most max bytes. Non-positive max means no limit.
func Clamp(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
