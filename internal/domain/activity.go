// Package domain defines the activity record model and the normalisation rules
// applied to records coming from the upstream API or read back from the archive.
package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Kind is the activity type reported upstream (Run, Walk, Hike, Ride, ...).
type Kind string

const (
	KindRun        Kind = "Run"
	KindTrailRun   Kind = "TrailRun"
	KindVirtualRun Kind = "VirtualRun"
	KindWalk       Kind = "Walk"
	KindHike       Kind = "Hike"
	KindRide       Kind = "Ride"
)

// runKinds are the kinds that receive pace computation.
var runKinds = map[Kind]struct{}{
	KindRun:        {},
	KindTrailRun:   {},
	KindVirtualRun: {},
}

// IsRun reports whether pace is meaningful for the kind.
func (k Kind) IsRun() bool {
	_, ok := runKinds[k]
	return ok
}

func (k Kind) String() string { return string(k) }

// Record is one archived activity exactly as persisted: a JSON object keyed by
// the upstream field names.
type Record map[string]any

// ID returns the record identifier in its canonical string form.
func (r Record) ID() string {
	switch v := r["id"].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ExtractEnumString(v)
	}
}

// Text returns a trimmed string field, or "" when absent or not a string.
func (r Record) Text(key string) string {
	s, _ := r[key].(string)
	return strings.TrimSpace(s)
}

// Activity is the typed projection of a Record used by the derived views.
type Activity struct {
	ID                  string
	Kind                Kind
	Name                string
	StartLocal          time.Time
	StartUTC            time.Time
	DistanceMeters      float64
	MovingSeconds       int
	ElapsedSeconds      int
	ElevationGainMeters float64
	AverageSpeedMPS     float64
}

// Start returns the local civil start when recorded, otherwise the UTC start.
func (a Activity) Start() time.Time {
	if !a.StartLocal.IsZero() {
		return a.StartLocal
	}
	return a.StartUTC
}

// IsRun reports whether the activity is run-like.
func (a Activity) IsRun() bool { return a.Kind.IsRun() }

// FromRecord projects a raw record onto Activity. Malformed fields fall back to
// zero values; it never fails.
func FromRecord(rec Record) Activity {
	a := Activity{
		ID:                  rec.ID(),
		Kind:                ActivityKindOf(rec),
		Name:                rec.Text("name"),
		DistanceMeters:      SafeNumber(rec["distance"], 0),
		MovingSeconds:       SafeInt(rec["moving_time"], 0),
		ElapsedSeconds:      SafeInt(rec["elapsed_time"], 0),
		ElevationGainMeters: SafeNumber(rec["total_elevation_gain"], 0),
		AverageSpeedMPS:     SafeNumber(rec["average_speed"], 0),
	}
	if t, ok := ParseTimestamp(rec["start_date_local"]); ok {
		a.StartLocal = t
	}
	if t, ok := ParseTimestamp(rec["start_date"]); ok {
		a.StartUTC = t
	}
	return a
}

// Bounds is the (oldest, newest) start instant observed across the archive.
// Both are zero when the archive holds no dated record.
type Bounds struct {
	Oldest time.Time
	Newest time.Time
}

// Empty reports whether no dated record was seen.
func (b Bounds) Empty() bool { return b.Oldest.IsZero() && b.Newest.IsZero() }

// Observe widens the bounds to include t.
func (b *Bounds) Observe(t time.Time) {
	if t.IsZero() {
		return
	}
	if b.Oldest.IsZero() || t.Before(b.Oldest) {
		b.Oldest = t
	}
	if b.Newest.IsZero() || t.After(b.Newest) {
		b.Newest = t
	}
}

// Cursor models the pagination token of the archive listing.
type Cursor struct {
	StartedAt time.Time
	ID        string
}
