package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExtractEnumString(t *testing.T) {
	require.Equal(t, "Walk", ExtractEnumString("root='Walk'"))
	require.Equal(t, "Run", ExtractEnumString("Run"))
	require.Equal(t, "", ExtractEnumString(nil))
	require.Equal(t, "Hike", ExtractEnumString("  Hike \n"))
	require.Equal(t, "TrailRun", ExtractEnumString("ActivityType(root='TrailRun')"))
}

func TestActivityKindOfFallsBackToSportType(t *testing.T) {
	require.Equal(t, KindRun, ActivityKindOf(Record{"type": "root='Run'"}))
	require.Equal(t, KindTrailRun, ActivityKindOf(Record{"type": nil, "sport_type": "root='TrailRun'"}))
	require.Equal(t, KindWalk, ActivityKindOf(Record{"type": "  ", "sport_type": "Walk"}))
	require.Equal(t, Kind(""), ActivityKindOf(Record{}))
}

func TestIsRun(t *testing.T) {
	require.True(t, IsRun(Record{"type": "Run"}))
	require.True(t, IsRun(Record{"sport_type": "VirtualRun"}))
	require.False(t, IsRun(Record{"type": "Ride"}))
	require.False(t, IsRun(Record{}))
}

func TestParseTimestamp(t *testing.T) {
	cases := map[string]time.Time{
		"2026-01-18T13:50:17":       time.Date(2026, 1, 18, 13, 50, 17, 0, time.UTC),
		"2026-01-18 13:50:17":       time.Date(2026, 1, 18, 13, 50, 17, 0, time.UTC),
		"2026-01-18T21:50:17+00:00": time.Date(2026, 1, 18, 21, 50, 17, 0, time.UTC),
		"2026-01-18T21:50:17Z":      time.Date(2026, 1, 18, 21, 50, 17, 0, time.UTC),
	}
	for raw, want := range cases {
		got, ok := ParseTimestamp(raw)
		require.True(t, ok, raw)
		require.True(t, want.Equal(got), "%s: got %s", raw, got)
	}

	withOffset, ok := ParseTimestamp("2026-01-18T13:50:17-08:00")
	require.True(t, ok)
	require.True(t, time.Date(2026, 1, 18, 21, 50, 17, 0, time.UTC).Equal(withOffset))

	for _, bad := range []any{nil, "", "   ", "yesterday", "2026-13-45T99:00:00", 12345} {
		_, ok := ParseTimestamp(bad)
		require.False(t, ok, "%v", bad)
	}
}

func TestLocalStartPrefersLocal(t *testing.T) {
	rec := Record{"start_date_local": "2026-01-10T07:00:00", "start_date": "2026-01-10T15:00:00Z"}
	got, ok := LocalStart(rec)
	require.True(t, ok)
	require.Equal(t, 7, got.Hour())

	got, ok = LocalStart(Record{"start_date_local": "garbage", "start_date": "2026-01-10T15:00:00Z"})
	require.True(t, ok)
	require.Equal(t, 15, got.Hour())

	inst, ok := StartInstant(rec)
	require.True(t, ok)
	require.Equal(t, 15, inst.Hour())
}

func TestSafeNumber(t *testing.T) {
	require.Equal(t, 1.5, SafeNumber(nil, 1.5))
	require.Equal(t, 2.0, SafeNumber(math.NaN(), 2))
	require.Equal(t, 10.25, SafeNumber("10.25", 0))
	require.Equal(t, 0.0, SafeNumber("ten meters", 0))
	require.Equal(t, 42.0, SafeNumber(json.Number("42"), 0))
	require.Equal(t, 7.0, SafeNumber(7, 0))
	require.Equal(t, -1.0, SafeNumber(true, -1))
	require.Equal(t, 3.0, SafeNumber([]int{1}, 3))
}

func TestSafeInt(t *testing.T) {
	require.Equal(t, 0, SafeInt(nil, 0))
	require.Equal(t, 9, SafeInt(true, 9))
	require.Equal(t, 1800, SafeInt(1800.9, 0))
	require.Equal(t, 1800, SafeInt("1800.9", 0))
	require.Equal(t, 1800, SafeInt(json.Number("1800"), 0))
	require.Equal(t, 5, SafeInt("abc", 5))
	require.Equal(t, 7, SafeInt("1e30", 7))
	require.Equal(t, 7, SafeInt(-1e30, 7))
	require.Equal(t, 7, SafeInt(math.Inf(1), 7))
	require.Equal(t, 7, SafeInt(json.Number("1e19"), 7))
}

func TestNormalizeRecordUnwrapsOnce(t *testing.T) {
	in := Record{"id": json.Number("123"), "type": "root='Walk'", "sport_type": "root='Walk'", "name": "Evening"}
	out := NormalizeRecord(in)
	require.Equal(t, "Walk", out["type"])
	require.Equal(t, "Walk", out["sport_type"])
	require.Equal(t, "root='Walk'", in["type"], "input must not be mutated")
	require.Equal(t, "123", out.ID())
}

func TestFromRecordToleratesBadFields(t *testing.T) {
	a := FromRecord(Record{
		"id":               json.Number("987654321012"),
		"type":             "root='Run'",
		"start_date_local": "not a date",
		"start_date":       "2026-01-10T15:00:00Z",
		"distance":         "oops",
		"moving_time":      json.Number("1800"),
		"elapsed_time":     nil,
		"name":             "  Tempo  ",
	})
	require.Equal(t, "987654321012", a.ID)
	require.Equal(t, KindRun, a.Kind)
	require.True(t, a.StartLocal.IsZero())
	require.Equal(t, 15, a.Start().Hour())
	require.Zero(t, a.DistanceMeters)
	require.Equal(t, 1800, a.MovingSeconds)
	require.Zero(t, a.ElapsedSeconds)
	require.Equal(t, "Tempo", a.Name)
	require.True(t, a.IsRun())
}

func TestBoundsObserve(t *testing.T) {
	var b Bounds
	require.True(t, b.Empty())
	b.Observe(time.Time{})
	require.True(t, b.Empty())

	mid := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	b.Observe(mid)
	b.Observe(mid.Add(48 * time.Hour))
	b.Observe(mid.Add(-24 * time.Hour))
	require.Equal(t, mid.Add(-24*time.Hour), b.Oldest)
	require.Equal(t, mid.Add(48*time.Hour), b.Newest)
}
