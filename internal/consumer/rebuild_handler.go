package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"example.com/activityarchive/internal/archive"
	"example.com/activityarchive/internal/csvexport"
	"example.com/activityarchive/internal/events"
	"example.com/activityarchive/internal/observability"
	"example.com/activityarchive/internal/report"
)

// RebuildHandler regenerates the derived CSV and the text reports from the
// archive whenever an activity is archived. Events archived before the last
// rebuild started are already reflected and are coalesced.
type RebuildHandler struct {
	store    *archive.Store
	exporter *csvexport.Exporter
	reports  report.Paths
	logger   *log.Logger
	now      func() time.Time

	lastRebuild time.Time
}

// NewRebuildHandler constructs a handler over store. exporter may be nil to
// only refresh the reports.
func NewRebuildHandler(store *archive.Store, exporter *csvexport.Exporter, reports report.Paths, logger *log.Logger) *RebuildHandler {
	if logger == nil {
		logger = log.New(log.Writer(), "[rebuild] ", log.LstdFlags)
	}
	return &RebuildHandler{
		store:    store,
		exporter: exporter,
		reports:  reports,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Handle rebuilds on activity.archived and ignores every other event type.
func (h *RebuildHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != events.EventTypeArchived {
		return nil
	}

	var evt events.ActivityArchived
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return fmt.Errorf("decode %s: %w", msg.EventType, err)
	}
	if !h.lastRebuild.IsZero() && !evt.ArchivedAt.IsZero() && !evt.ArchivedAt.After(h.lastRebuild) {
		recordRebuild("coalesced")
		return nil
	}
	return h.Rebuild(ctx)
}

// Rebuild regenerates every derived artifact from the archive.
func (h *RebuildHandler) Rebuild(ctx context.Context) error {
	started := h.now()

	if h.exporter != nil {
		if _, err := h.exporter.FromArchive(ctx, h.store); err != nil {
			return err
		}
	}
	entries, err := report.EntriesFromArchive(h.store)
	if err != nil {
		return err
	}
	summary, err := report.WriteAll(entries, h.reports)
	if err != nil {
		return err
	}

	h.lastRebuild = started
	recordRebuild("rebuilt")
	observability.RecordRebuild(started)
	h.logger.Printf("rebuilt reports from %d activities (%d runs)", summary.Entries, summary.Runs)
	return nil
}
