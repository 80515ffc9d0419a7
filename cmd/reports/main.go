package main

import (
	"flag"
	"log"

	"example.com/activityarchive/internal/archive"
	"example.com/activityarchive/internal/config"
	"example.com/activityarchive/internal/report"
)

func main() {
	source := flag.String("source", "archive", "input for the reports: archive or csv")
	flag.Parse()

	cfg := config.Load()

	var (
		entries []report.Entry
		err     error
	)
	switch *source {
	case "archive":
		entries, err = report.EntriesFromArchive(archive.New(cfg.ArchiveDir))
	case "csv":
		entries, err = report.EntriesFromCSV(cfg.DerivedCSVPath)
	default:
		log.Fatalf("unknown -source %q (want archive or csv)", *source)
	}
	if err != nil {
		log.Fatalf("reports: %v", err)
	}

	summary, err := report.WriteAll(entries, report.Paths{
		RunsByMonth: cfg.RunsLogPath(),
		Activities:  cfg.ActivityLogPath(),
		Runs:        cfg.FlatRunsLogPath(),
	})
	if err != nil {
		log.Fatalf("reports: %v", err)
	}
	log.Printf("wrote reports for %d activities (%d runs) to %s", summary.Entries, summary.Runs, cfg.ReportsDir)
}
