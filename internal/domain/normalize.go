package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// taggedValue matches the verbose wrapper some client libraries emit for enum
// fields, e.g. root='Walk'.
var taggedValue = regexp.MustCompile(`\w+='([^']+)'`)

// ExtractEnumString unwraps label='<value>' forms and otherwise returns the
// trimmed string form of raw. nil yields "".
func ExtractEnumString(raw any) string {
	if raw == nil {
		return ""
	}
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}
	if m := taggedValue.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return strings.TrimSpace(s)
}

// ActivityKindOf prefers "type" and falls back to "sport_type".
func ActivityKindOf(rec Record) Kind {
	if k := ExtractEnumString(rec["type"]); k != "" {
		return Kind(k)
	}
	return Kind(ExtractEnumString(rec["sport_type"]))
}

// IsRun reports whether the record is a run-like activity.
func IsRun(rec Record) bool {
	return ActivityKindOf(rec).IsRun()
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp accepts ISO-ish timestamps with a T or space separator and an
// optional Z or ±HH:MM suffix. Values without an offset keep their wall clock
// and are placed in UTC. Anything else reports false.
func ParseTimestamp(raw any) (time.Time, bool) {
	s, ok := raw.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	s = strings.ReplaceAll(s, "Z", "+00:00")
	if !strings.Contains(s, "T") && strings.Contains(s, " ") {
		s = strings.Replace(s, " ", "T", 1)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// LocalStart returns start_date_local, falling back to start_date.
func LocalStart(rec Record) (time.Time, bool) {
	if t, ok := ParseTimestamp(rec["start_date_local"]); ok {
		return t, true
	}
	return ParseTimestamp(rec["start_date"])
}

// StartInstant returns start_date, falling back to start_date_local. Archive
// bounds use it because they become API cursors, which are absolute instants.
func StartInstant(rec Record) (time.Time, bool) {
	if t, ok := ParseTimestamp(rec["start_date"]); ok {
		return t, true
	}
	return ParseTimestamp(rec["start_date_local"])
}

// SafeNumber coerces v to float64. nil, NaN, booleans and unparsable values
// yield def.
func SafeNumber(v any, def float64) float64 {
	var f float64
	switch n := v.(type) {
	case nil, bool:
		return def
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return def
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return def
		}
		f = parsed
	default:
		return def
	}
	if math.IsNaN(f) {
		return def
	}
	return f
}

// SafeInt coerces v to int, truncating fractional values. nil, booleans,
// unparsable and out-of-range values yield def.
func SafeInt(v any, def int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
			return int(i)
		}
	}
	f := SafeNumber(v, math.NaN())
	// float64(math.MaxInt) rounds up to 2^63, which int cannot hold.
	if math.IsNaN(f) || f < math.MinInt || f >= math.MaxInt {
		return def
	}
	return int(f)
}

// NormalizeRecord returns a copy of rec with the enum-like fields unwrapped.
// It is applied once, when a record enters the archive.
func NormalizeRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	for _, key := range []string{"type", "sport_type"} {
		if v, ok := out[key]; ok && v != nil {
			out[key] = ExtractEnumString(v)
		}
	}
	return out
}
