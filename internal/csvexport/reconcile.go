package csvexport

import (
	"sort"
	"strings"
	"time"

	"example.com/activityarchive/internal/domain"
)

// Merge combines a previously written table with freshly derived rows. Rows
// are keyed by id and fresh rows win on collision; rows without an id are
// dropped. The result is sorted with SortRows, so it does not depend on the
// order of either input.
func Merge(existing, fresh []Row) []Row {
	byID := make(map[string]Row, len(existing)+len(fresh))
	for _, r := range existing {
		if id := strings.TrimSpace(r.ID); id != "" {
			byID[id] = r
		}
	}
	for _, r := range fresh {
		if id := strings.TrimSpace(r.ID); id != "" {
			byID[id] = r
		}
	}

	rows := make([]Row, 0, len(byID))
	for _, r := range byID {
		rows = append(rows, r)
	}
	SortRows(rows)
	return rows
}

// SortRows orders rows newest first by (date_local, start_time_local, id),
// each compared as a string.
func SortRows(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.DateLocal != b.DateLocal {
			return a.DateLocal > b.DateLocal
		}
		if a.StartTimeLocal != b.StartTimeLocal {
			return a.StartTimeLocal > b.StartTimeLocal
		}
		return a.ID > b.ID
	})
}

// RowTime parses date_local + start_time_local. Rows missing either part or
// holding a malformed value report false.
func RowTime(r Row) (time.Time, bool) {
	date := strings.TrimSpace(r.DateLocal)
	clock := strings.TrimSpace(r.StartTimeLocal)
	if date == "" || clock == "" {
		return time.Time{}, false
	}
	return domain.ParseTimestamp(date + "T" + clock)
}

// Anchor returns the latest parseable (date, time) in rows. Rows that fail to
// parse are ignored, so a corrupt row can never move the anchor backwards.
func Anchor(rows []Row) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, r := range rows {
		t, ok := RowTime(r)
		if !ok {
			continue
		}
		if !found || t.After(latest) {
			latest = t
			found = true
		}
	}
	return latest, found
}
