// Package report renders the fixed-width text logs derived from the archive or
// from the derived CSV table.
package report

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"example.com/activityarchive/internal/archive"
	"example.com/activityarchive/internal/csvexport"
	"example.com/activityarchive/internal/domain"
	"example.com/activityarchive/internal/units"
)

// ErrMissingInput marks an absent upstream artifact. The wrapped message names
// the step that produces it.
var ErrMissingInput = errors.New("missing report input")

// Entry is the slice of an activity the reports print.
type Entry struct {
	Date          string
	Start         time.Time
	Kind          domain.Kind
	DistanceMi    float64
	MovingSeconds int
	Pace          string
}

// IsRun reports whether the entry belongs in the run reports.
func (e Entry) IsRun() bool { return e.Kind.IsRun() }

// EntryFromActivity projects a. Activities without a start time report false.
func EntryFromActivity(a domain.Activity) (Entry, bool) {
	start := a.Start()
	if start.IsZero() {
		return Entry{}, false
	}
	distanceMi := units.MetersToMiles(a.DistanceMeters)
	e := Entry{
		Date:          start.Format("2006-01-02"),
		Start:         start,
		Kind:          a.Kind,
		DistanceMi:    distanceMi,
		MovingSeconds: a.MovingSeconds,
	}
	if a.IsRun() {
		e.Pace = units.PaceMMSS(distanceMi, a.MovingSeconds)
	}
	return e, true
}

// EntriesFromArchive reads every archived activity. Unreadable files and
// records without a start time are left out.
func EntriesFromArchive(store *archive.Store) ([]Entry, error) {
	if err := store.RequireDir(); err != nil {
		return nil, fmt.Errorf("%w: %s; run the sync step first", ErrMissingInput, store.Dir())
	}
	entries := make([]Entry, 0)
	for rec := range store.Enumerate() {
		if e, ok := EntryFromActivity(domain.FromRecord(rec)); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// EntriesFromCSV reads the derived table at path, keeping its order.
func EntriesFromCSV(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s; run the export step first", ErrMissingInput, path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csvexport.DecodeTable(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entryFromRow(row))
	}
	return entries, nil
}

func entryFromRow(row csvexport.Row) Entry {
	e := Entry{
		Date: strings.TrimSpace(row.DateLocal),
		Kind: domain.Kind(strings.TrimSpace(row.Type)),
		Pace: strings.TrimSpace(row.PaceMMSS),
	}
	if t, ok := csvexport.RowTime(row); ok {
		e.Start = t
	} else if t, ok := domain.ParseTimestamp(e.Date); ok {
		e.Start = t
	}
	if mi, err := strconv.ParseFloat(strings.TrimSpace(row.DistanceMi), 64); err == nil && !math.IsNaN(mi) {
		e.DistanceMi = mi
	}
	if minutes, err := strconv.ParseFloat(strings.TrimSpace(row.MovingTimeMin), 64); err == nil && !math.IsNaN(minutes) {
		e.MovingSeconds = units.RoundSeconds(minutes * 60)
	}
	return e
}
