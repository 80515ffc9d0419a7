package syncer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	listedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_archive",
		Subsystem: "sync",
		Name:      "activities_listed_total",
		Help:      "Number of activity summaries examined from the upstream listing.",
	})

	writtenCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_archive",
		Subsystem: "sync",
		Name:      "activities_written_total",
		Help:      "Number of activity files committed to the archive.",
	})

	skippedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_archive",
		Subsystem: "sync",
		Name:      "activities_skipped_total",
		Help:      "Number of listed activities skipped because they were already archived.",
	})

	interruptedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_archive",
		Subsystem: "sync",
		Name:      "runs_interrupted_total",
		Help:      "Number of sync runs stopped by cancellation.",
	})

	lastWriteGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "activity_archive",
		Subsystem: "sync",
		Name:      "last_write_timestamp_seconds",
		Help:      "Unix timestamp of the most recent archive write.",
	})
)

func init() {
	prometheus.MustRegister(listedCounter, writtenCounter, skippedCounter, interruptedCounter, lastWriteGauge)
}

func recordListed()      { listedCounter.Inc() }
func recordSkipped()     { skippedCounter.Inc() }
func recordInterrupted() { interruptedCounter.Inc() }

func recordWritten(ts time.Time) {
	writtenCounter.Inc()
	if !ts.IsZero() {
		lastWriteGauge.Set(float64(ts.Unix()))
	}
}
