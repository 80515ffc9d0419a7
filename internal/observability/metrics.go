package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mirrorGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "activity_archive",
		Subsystem: "persistence",
		Name:      "last_rows_mirrored_timestamp_seconds",
		Help:      "Unix timestamp of the most recent derived-table upsert into Postgres.",
	})
	mirroredRows = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_archive",
		Subsystem: "persistence",
		Name:      "rows_mirrored_total",
		Help:      "Derived rows upserted into Postgres.",
	})
	rebuildGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "activity_archive",
		Subsystem: "derived",
		Name:      "last_rebuild_timestamp_seconds",
		Help:      "Unix timestamp of the most recent CSV and report rebuild.",
	})
)

func init() {
	prometheus.MustRegister(mirrorGauge, mirroredRows, rebuildGauge)
}

// RecordRowsMirrored updates the mirror watermark and row counter.
func RecordRowsMirrored(ts time.Time, rows int) {
	if rows > 0 {
		mirroredRows.Add(float64(rows))
	}
	if ts.IsZero() {
		return
	}
	mirrorGauge.Set(float64(ts.Unix()))
}

// RecordRebuild updates the derived-artifact watermark gauge.
func RecordRebuild(ts time.Time) {
	if ts.IsZero() {
		return
	}
	rebuildGauge.Set(float64(ts.Unix()))
}
