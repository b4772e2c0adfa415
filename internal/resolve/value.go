// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// cleanBibValue strips bibTeX brace-grouping markers from a raw field
// value and undoes the common {\%} escape.
func cleanBibValue(s string) string {
	s = strings.ReplaceAll(s, `{\%}`, "%")
	s = strings.Map(func(r rune) rune {
		if r == '{' || r == '}' {
			return -1
		}
		return r
	}, s)
	return normalizeSpace(s)
}

// SplitAuthors splits a bibTeX author string on the " and " separator
// into an ordered list of names. Segments written "Last, First" are
// normalized to "First Last".
func SplitAuthors(raw string) []string {
	raw = cleanBibValue(raw)
	if raw == "" {
		return nil
	}
	var authors []string
	for _, segment := range strings.Split(raw, " and ") {
		name := strings.TrimSpace(segment)
		if name == "" {
			continue
		}
		if strings.Contains(name, ",") {
			parts := strings.Split(name, ",")
			for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
				parts[i], parts[j] = parts[j], parts[i]
			}
			name = strings.Join(parts, " ")
		}
		if name = normalizeSpace(name); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}

// deriveDate builds an RFC 3339 timestamp (without zone) from the
// bibliography's year/month/day fields. Month and day default to 1; with
// no parsable year the result is empty.
func deriveDate(year, month, day string) string {
	y, err := strconv.Atoi(year)
	if err != nil {
		return ""
	}
	m := monthNumber(month)
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		d = 1
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC).Format("2006-01-02T15:04:05")
}

// monthNumber parses a bibTeX month field: a number or a month name
// (commonly the three-letter macro: jan, feb, ...). Unparsable months
// default to 1.
func monthNumber(s string) int {
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 12 {
		return n
	}
	if len(s) >= 3 {
		prefix := strings.ToLower(s[:3])
		for m := time.January; m <= time.December; m++ {
			if strings.ToLower(m.String()[:3]) == prefix {
				return int(m)
			}
		}
	}
	return 1
}

// scalarString renders a configuration value as a string. TOML datetimes
// and dates format themselves; everything else goes through fmt.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.Format("2006-01-02T15:04:05")
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// stringList coerces a configuration value to a string list. A bare
// scalar becomes a one-element list; nil input yields nil.
func stringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return t
	case []any:
		out := make([]string, len(t))
		for i, e := range t {
			out[i] = scalarString(e)
		}
		return out
	default:
		return []string{scalarString(v)}
	}
}

// intList coerces a configuration value to an int list. TOML integers
// decode as int64 and JSON numbers as float64, so both are accepted,
// along with numeric strings.
func intList(v any) []int {
	switch t := v.(type) {
	case []any:
		var out []int
		for _, e := range t {
			out = append(out, intList(e)...)
		}
		return out
	case []int:
		return t
	default:
		if n, ok := intValue(v); ok {
			return []int{n}
		}
		return nil
	}
}

func intValue(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(t)
		return n, err == nil
	default:
		return 0, false
	}
}

func boolValue(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// normalizeSpace collapses whitespace runs to single spaces and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
