package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"example.com/activityarchive/internal/archive"
	"example.com/activityarchive/internal/domain"
	"example.com/activityarchive/internal/events"
)

// progressEvery controls how often progress is logged, in written files.
const progressEvery = 25

// Publisher receives a notification for every committed write.
type Publisher interface {
	PublishArchived(context.Context, events.ActivityArchived) error
}

// Options configures one sync run.
type Options struct {
	Mode Mode
	// Limit caps the number of files written, not the number listed. Nil
	// means no cap; a cap of zero writes nothing.
	Limit *int
	// Force re-fetches and overwrites activities that are already archived.
	Force bool
	// Pause is slept after each successful write to respect upstream rate limits.
	Pause time.Duration
}

// Summary reports the three independent counters of a run.
type Summary struct {
	RunID       string
	Plan        Plan
	Listed      int
	Written     int
	Skipped     int
	Interrupted bool
}

func (s Summary) String() string {
	return fmt.Sprintf("Listed %d | wrote %d | skipped %d", s.Listed, s.Written, s.Skipped)
}

// Option configures optional behaviour for the Syncer.
type Option func(*Syncer)

// WithLogger overrides the logger used to report progress.
func WithLogger(logger *log.Logger) Option {
	return func(s *Syncer) {
		s.logger = logger
	}
}

// WithPublisher sets the publisher notified after each write.
func WithPublisher(p Publisher) Option {
	return func(s *Syncer) {
		s.publisher = p
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Syncer) {
		s.now = now
	}
}

// Syncer copies activities from the upstream feed into the archive.
type Syncer struct {
	feed      domain.ActivityFeed
	store     *archive.Store
	publisher Publisher
	logger    *log.Logger
	now       func() time.Time
	sleep     func(context.Context, time.Duration) error
}

// New constructs a Syncer over feed and store.
func New(feed domain.ActivityFeed, store *archive.Store, opts ...Option) *Syncer {
	s := &Syncer{
		feed:      feed,
		store:     store,
		publisher: events.NopPublisher{},
		logger:    log.New(log.Writer(), "[sync] ", log.LstdFlags),
		now:       func() time.Time { return time.Now().UTC() },
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run lists candidates for the planned window and archives each one that is
// not already present. Cancelling ctx stops the loop without error; committed
// files stay intact. An upstream or write failure aborts the run and is
// returned together with the counters reached so far.
func (s *Syncer) Run(ctx context.Context, opts Options) (summary Summary, err error) {
	summary.RunID = uuid.NewString()
	summary.Plan = PlanFetch(opts.Mode, s.store.Bounds())
	s.logger.Print(summary.Plan.Description)

	defer func() {
		if summary.Interrupted {
			s.logger.Print("interrupted; already-written files are safe")
			recordInterrupted()
		}
		s.logger.Printf("done (run=%s). %s", summary.RunID, summary)
		s.logger.Printf("output: %s", s.store.Dir())
	}()

	lister, err := s.feed.ListActivities(ctx, summary.Plan.Options)
	if err != nil {
		if cancelled(ctx, err) {
			summary.Interrupted = true
			return summary, nil
		}
		return summary, fmt.Errorf("list activities: %w", err)
	}
	defer lister.Close()

	for {
		// The stop condition is writes, not listings.
		if opts.Limit != nil && summary.Written >= *opts.Limit {
			return summary, nil
		}
		if ctx.Err() != nil {
			summary.Interrupted = true
			return summary, nil
		}

		candidate, err := lister.Next(ctx)
		if errors.Is(err, io.EOF) {
			return summary, nil
		}
		if err != nil {
			if cancelled(ctx, err) {
				summary.Interrupted = true
				return summary, nil
			}
			return summary, fmt.Errorf("list activities: %w", err)
		}

		summary.Listed++
		recordListed()
		id := candidate.ID()
		if summary.Listed == 1 {
			s.logger.Printf("first listed activity id: %s", id)
		}
		if id == "" {
			s.logger.Print("listed activity without id; skipping")
			summary.Skipped++
			recordSkipped()
			continue
		}

		existed := s.store.Exists(id)
		if existed && !opts.Force {
			summary.Skipped++
			recordSkipped()
			continue
		}

		// The only call that spends API quota on content.
		detail, err := s.feed.GetActivity(ctx, id)
		if err != nil {
			if cancelled(ctx, err) {
				summary.Interrupted = true
				return summary, nil
			}
			return summary, fmt.Errorf("fetch activity %s: %w", id, err)
		}

		rec := domain.NormalizeRecord(detail)
		if rec.ID() == "" {
			rec["id"] = id
		}
		if err := s.store.WriteAtomic(id, rec); err != nil {
			return summary, err
		}
		summary.Written++
		recordWritten(s.now())
		s.publish(ctx, summary.RunID, rec, existed)

		if summary.Written%progressEvery == 0 {
			s.logger.Print(summary.String())
		}

		if opts.Pause > 0 {
			if err := s.sleep(ctx, opts.Pause); err != nil {
				summary.Interrupted = true
				return summary, nil
			}
		}
	}
}

func (s *Syncer) publish(ctx context.Context, runID string, rec domain.Record, overwrite bool) {
	activity := domain.FromRecord(rec)
	evt := events.ActivityArchived{
		EventID:      uuid.NewString(),
		RunID:        runID,
		ActivityID:   activity.ID,
		ActivityType: activity.Kind.String(),
		StartedAt:    activity.StartUTC,
		Overwrite:    overwrite,
		ArchivedAt:   s.now(),
	}
	if err := s.publisher.PublishArchived(ctx, evt); err != nil {
		s.logger.Printf("publish error (activity=%s): %v", activity.ID, err)
	}
}

func cancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
