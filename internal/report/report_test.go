package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/activityarchive/internal/archive"
	"example.com/activityarchive/internal/csvexport"
	"example.com/activityarchive/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.Add(7 * time.Hour)
}

func sampleEntries() []Entry {
	return []Entry{
		{Date: "2026-01-03", Start: day("2026-01-03"), Kind: domain.KindRun, DistanceMi: 3.1, MovingSeconds: 1500, Pace: "8:04"},
		{Date: "2025-12-31", Start: day("2025-12-31"), Kind: domain.KindRun},
		{Date: "2026-01-05", Start: day("2026-01-05"), Kind: domain.KindWalk, DistanceMi: 1},
		{Date: "2026-01-10", Start: day("2026-01-10"), Kind: domain.KindRun, DistanceMi: 5, MovingSeconds: 2400, Pace: "8:00"},
	}
}

func TestRenderRunsByMonth(t *testing.T) {
	want := strings.Join([]string{
		"==============================================",
		"January 2026",
		"----------------------------------------------",
		"2026-01-10 --  5.00mi --  8:00/mi --  40:00min",
		"2026-01-03 --  3.10mi --  8:04/mi --  25:00min",
		"----------------------------------------------",
		"Runs: 2",
		"Miles: 8.10",
		"Time: 01:05:00",
		"Pace: 8:01/mi",
		"",
		"",
		"==============================================",
		"December 2025",
		"----------------------------------------------",
		"2025-12-31 --  0.00mi --       --       min",
		"----------------------------------------------",
		"Runs: 1",
		"Miles: 0.00",
		"Time: 00:00:00",
		"Pace: N/A",
	}, "\n") + "\n"

	require.Equal(t, want, RenderRunsByMonth(sampleEntries()))
}

func TestRenderRunsByMonthZeroDurationIsNotAvailable(t *testing.T) {
	out := RenderRunsByMonth([]Entry{
		{Date: "2026-03-01", Start: day("2026-03-01"), Kind: domain.KindRun, DistanceMi: 4},
		{Date: "2026-03-02", Start: day("2026-03-02"), Kind: domain.KindTrailRun, DistanceMi: 2},
	})
	require.Contains(t, out, "Runs: 2\n")
	require.Contains(t, out, "Miles: 6.00\n")
	require.True(t, strings.HasSuffix(out, "Pace: N/A\n"))
}

func TestRenderRunsByMonthEmpty(t *testing.T) {
	require.Equal(t, "\n", RenderRunsByMonth(nil))
}

func TestRenderActivityLog(t *testing.T) {
	want := strings.Join([]string{
		"2026-01-10 -- Run  --  5.00 --  8:00/mi --  40:00min",
		"2026-01-05 -- Walk --  1.00",
		"2026-01-03 -- Run  --  3.10 --  8:04/mi --  25:00min",
		"2025-12-31 -- Run  --  0.00 --      /mi --       min",
	}, "\n") + "\n"

	require.Equal(t, want, RenderActivityLog(sampleEntries()))
}

func TestRenderRunLogSkipsOtherKinds(t *testing.T) {
	out := RenderRunLog(sampleEntries())
	require.NotContains(t, out, "Walk")
	require.Equal(t, 3, strings.Count(out, "\n"))
	require.True(t, strings.HasPrefix(out, "2026-01-10 -- Run  --  5.00 --  8:00/mi --  40:00min\n"))
}

func TestEntriesFromArchive(t *testing.T) {
	store := archive.New(t.TempDir())
	require.NoError(t, store.WriteAtomic("1", domain.Record{"id": "1", "type": "Run", "start_date_local": "2026-01-10T07:00:00Z", "distance": 8046.72, "moving_time": 2400}))
	require.NoError(t, store.WriteAtomic("2", domain.Record{"id": "2", "type": "Hike", "start_date": "2026-01-04T15:00:00Z", "distance": 3218.688}))
	require.NoError(t, store.WriteAtomic("3", domain.Record{"id": "3", "type": "Run"}))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "4.json"), []byte("not json"), 0o644))

	entries, err := EntriesFromArchive(store)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	out := RenderActivityLog(entries)
	require.Equal(t, "2026-01-10 -- Run  --  5.00 --  8:00/mi --  40:00min\n2026-01-04 -- Hike --  2.00\n", out)
}

func TestEntriesFromArchiveMissingDir(t *testing.T) {
	_, err := EntriesFromArchive(archive.New(filepath.Join(t.TempDir(), "nope")))
	require.ErrorIs(t, err, ErrMissingInput)
	require.Contains(t, err.Error(), "run the sync step first")
}

func TestEntriesFromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.csv")
	require.NoError(t, csvexport.WriteTable(path, []csvexport.Row{
		{ID: "1", DateLocal: "2026-01-10", StartTimeLocal: "07:00:00", Type: "Run", DistanceMi: "5", MovingTimeMin: "40", PaceMMSS: "8:00"},
		{ID: "2", DateLocal: "2026-01-04", StartTimeLocal: "15:00:00", Type: "Ride", DistanceMi: "12.5"},
	}))

	entries, err := EntriesFromCSV(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 2400, entries[0].MovingSeconds)
	require.Equal(t, "2026-01-10 -- Run  --  5.00 --  8:00/mi --  40:00min\n2026-01-04 -- Ride -- 12.50\n", RenderActivityLog(entries))
}

func TestEntriesFromCSVMissingFile(t *testing.T) {
	_, err := EntriesFromCSV(filepath.Join(t.TempDir(), "activities.csv"))
	require.ErrorIs(t, err, ErrMissingInput)
	require.Contains(t, err.Error(), "run the export step first")
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		RunsByMonth: filepath.Join(dir, "reports", "runs_log.txt"),
		Activities:  filepath.Join(dir, "reports", "activity_log.txt"),
		Runs:        filepath.Join(dir, "reports", "runs_flat_log.txt"),
	}

	summary, err := WriteAll(sampleEntries(), paths)
	require.NoError(t, err)
	require.Equal(t, Summary{Entries: 4, Runs: 3}, summary)

	for _, p := range []string{paths.RunsByMonth, paths.Activities, paths.Runs} {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		require.True(t, strings.HasSuffix(string(data), "\n"))
	}
}

func TestWriteTextAddsTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, WriteText(path, "héllo"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "héllo\n", string(data))
}
