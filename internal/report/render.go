package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"example.com/activityarchive/internal/archive"
	"example.com/activityarchive/internal/units"
)

const (
	delim = " -- "
	// NotAvailable is printed when a month has no positive distance or time.
	NotAvailable = "N/A"
)

var (
	sep    = strings.Repeat("-", 46)
	bigSep = strings.Repeat("=", 46)
)

type monthKey struct {
	year  int
	month time.Month
}

// RenderRunsByMonth groups runs by the month of their local start, newest
// month first, and closes every block with count, miles, time and pace.
func RenderRunsByMonth(entries []Entry) string {
	byMonth := make(map[monthKey][]Entry)
	for _, e := range entries {
		if !e.IsRun() || e.Start.IsZero() {
			continue
		}
		key := monthKey{year: e.Start.Year(), month: e.Start.Month()}
		byMonth[key] = append(byMonth[key], e)
	}

	keys := make([]monthKey, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year > keys[j].year
		}
		return keys[i].month > keys[j].month
	})

	lines := make([]string, 0)
	for _, k := range keys {
		lines = append(lines, monthBlock(k, byMonth[k])...)
	}
	return strings.TrimRight(strings.Join(lines, "\n"), " \t\r\n") + "\n"
}

func monthBlock(k monthKey, runs []Entry) []string {
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Date > runs[j].Date })

	lines := []string{bigSep, fmt.Sprintf("%s %d", k.month, k.year), sep}
	var miles float64
	var seconds int
	for _, r := range runs {
		pace := fmt.Sprintf("%5s", "")
		if r.Pace != "" {
			pace = fmt.Sprintf("%5s/mi", r.Pace)
		}
		lines = append(lines, strings.Join([]string{
			r.Date,
			fmt.Sprintf("%5.2fmi", r.DistanceMi),
			pace,
			fmt.Sprintf("%6smin", units.FormatMMSS(float64(r.MovingSeconds))),
		}, delim))
		miles += r.DistanceMi
		seconds += r.MovingSeconds
	}

	lines = append(lines,
		sep,
		fmt.Sprintf("Runs: %d", len(runs)),
		fmt.Sprintf("Miles: %.2f", miles),
		fmt.Sprintf("Time: %s", units.FormatHHMMSS(seconds)),
		"Pace: "+averagePace(miles, seconds),
		"\n",
	)
	return lines
}

func averagePace(miles float64, seconds int) string {
	pace, ok := units.PaceSecondsPerUnit(miles, float64(seconds))
	if !ok {
		return NotAvailable
	}
	return units.FormatMMSS(float64(units.RoundSeconds(pace))) + "/mi"
}

// RenderActivityLog prints every activity newest first. Runs carry pace and
// moving time; other kinds print date, kind and distance only.
func RenderActivityLog(entries []Entry) string {
	sorted := newestFirst(entries)
	lines := make([]string, 0, len(sorted))
	for _, e := range sorted {
		cols := []string{e.Date, fmt.Sprintf("%-4s", e.Kind), fmt.Sprintf("%5.2f", e.DistanceMi)}
		if e.IsRun() {
			cols = append(cols, runColumns(e)...)
		}
		lines = append(lines, strings.Join(cols, delim))
	}
	return strings.Join(lines, "\n") + "\n"
}

// RenderRunLog is the flat runs-only variant of RenderActivityLog.
func RenderRunLog(entries []Entry) string {
	sorted := newestFirst(entries)
	lines := make([]string, 0, len(sorted))
	for _, e := range sorted {
		if !e.IsRun() {
			continue
		}
		cols := []string{e.Date, fmt.Sprintf("%-4s", e.Kind), fmt.Sprintf("%5.2f", e.DistanceMi)}
		lines = append(lines, strings.Join(append(cols, runColumns(e)...), delim))
	}
	return strings.Join(lines, "\n") + "\n"
}

func runColumns(e Entry) []string {
	return []string{
		fmt.Sprintf("%5s/mi", e.Pace),
		fmt.Sprintf("%6smin", units.FormatMMSS(float64(e.MovingSeconds))),
	}
}

// newestFirst orders by start time without disturbing entries that share one.
func newestFirst(entries []Entry) []Entry {
	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start.After(sorted[j].Start) })
	return sorted
}

// WriteText writes text atomically, ending it with a newline.
func WriteText(path, text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return archive.WriteFileAtomic(path, []byte(text))
}

// Paths names the three report files.
type Paths struct {
	RunsByMonth string
	Activities  string
	Runs        string
}

// Summary counts what WriteAll rendered.
type Summary struct {
	Entries int
	Runs    int
}

// WriteAll renders and writes every report variant.
func WriteAll(entries []Entry, paths Paths) (Summary, error) {
	outputs := []struct {
		path string
		text string
	}{
		{paths.RunsByMonth, RenderRunsByMonth(entries)},
		{paths.Activities, RenderActivityLog(entries)},
		{paths.Runs, RenderRunLog(entries)},
	}
	for _, out := range outputs {
		if out.path == "" {
			continue
		}
		if err := WriteText(out.path, out.text); err != nil {
			return Summary{}, fmt.Errorf("write %s: %w", out.path, err)
		}
	}

	summary := Summary{Entries: len(entries)}
	for _, e := range entries {
		if e.IsRun() {
			summary.Runs++
		}
	}
	return summary, nil
}
