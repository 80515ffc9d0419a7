package csvexport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"example.com/activityarchive/internal/archive"
	"example.com/activityarchive/internal/config"
	"example.com/activityarchive/internal/domain"
)

// ErrMissingArchive is returned when a rebuild is requested without an archive.
var ErrMissingArchive = errors.New("archive not found; run the sync step first")

// anchorSlack widens the incremental window so that a local wall-clock anchor
// covers every UTC offset. Re-listed rows collapse by id during the merge.
const anchorSlack = 14 * time.Hour

// Mirror receives the whole reconciled table after it has been written and
// must end up holding exactly those rows.
type Mirror interface {
	SyncRows(ctx context.Context, rows []Row) error
}

// Result describes one derived-table write.
type Result struct {
	Rows    int
	Fresh   int
	Skipped int
	Anchor  time.Time
	Path    string
}

// Rebuild derives one row per archived activity. Files that cannot be read or
// carry no id are skipped; Skipped reports how many archive files did not
// contribute a row.
func Rebuild(store *archive.Store, p config.Precision) ([]Row, int, error) {
	if err := store.RequireDir(); err != nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrMissingArchive, store.Dir())
	}

	fresh := make([]Row, 0)
	for rec := range store.Enumerate() {
		if rec.ID() == "" {
			continue
		}
		fresh = append(fresh, RowFromActivity(domain.FromRecord(rec), p))
	}
	rows := Merge(nil, fresh)
	return rows, store.Count() - len(rows), nil
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger overrides the default logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// WithMirror forwards every written table to m.
func WithMirror(m Mirror) Option {
	return func(e *Exporter) {
		e.mirror = m
	}
}

// Exporter writes the derived table at a fixed path.
type Exporter struct {
	path      string
	precision config.Precision
	mirror    Mirror
	logger    *log.Logger
}

// NewExporter constructs an Exporter targeting path.
func NewExporter(path string, p config.Precision, opts ...Option) *Exporter {
	e := &Exporter{
		path:      path,
		precision: p,
		logger:    log.New(log.Writer(), "[export] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Path returns the table location.
func (e *Exporter) Path() string { return e.path }

// FromArchive replaces the table with a full rebuild from store.
func (e *Exporter) FromArchive(ctx context.Context, store *archive.Store) (Result, error) {
	rows, skipped, err := Rebuild(store, e.precision)
	if err != nil {
		return Result{}, err
	}
	if err := e.write(ctx, rows); err != nil {
		return Result{}, err
	}
	e.logger.Printf("wrote %d rows to %s", len(rows), e.path)
	if skipped > 0 {
		e.logger.Printf("note: skipped %d unreadable or id-less files", skipped)
	}
	return Result{Rows: len(rows), Fresh: len(rows), Skipped: skipped, Path: e.path}, nil
}

// Incremental lists activities newer than the latest row already in the
// table, or everything when the table is empty, and merges them in. Only
// summary listings are used, so no per-activity detail calls are made.
func (e *Exporter) Incremental(ctx context.Context, feed domain.ActivityFeed) (Result, error) {
	existing, err := ReadTable(e.path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", e.path, err)
	}

	var res Result
	opts := domain.ListOptions{}
	if anchor, ok := Anchor(existing); ok {
		res.Anchor = anchor
		opts.After = anchor.Add(-anchorSlack)
		e.logger.Printf("incremental export after %s", anchor.Format("2006-01-02 15:04:05"))
	} else {
		e.logger.Print("no existing rows; full export")
	}

	lister, err := feed.ListActivities(ctx, opts)
	if err != nil {
		return Result{}, fmt.Errorf("list activities: %w", err)
	}
	defer lister.Close()

	fresh := make([]Row, 0)
	for {
		rec, err := lister.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("list activities: %w", err)
		}
		rec = domain.NormalizeRecord(rec)
		if rec.ID() == "" {
			res.Skipped++
			continue
		}
		fresh = append(fresh, RowFromActivity(domain.FromRecord(rec), e.precision))
	}

	rows := Merge(existing, fresh)
	if err := e.write(ctx, rows); err != nil {
		return Result{}, err
	}
	res.Rows = len(rows)
	res.Fresh = len(fresh)
	res.Path = e.path
	e.logger.Printf("merged %d fresh rows; %d total in %s", res.Fresh, res.Rows, e.path)
	return res, nil
}

func (e *Exporter) write(ctx context.Context, rows []Row) error {
	if err := WriteTable(e.path, rows); err != nil {
		return fmt.Errorf("write %s: %w", e.path, err)
	}
	if e.mirror != nil {
		if err := e.mirror.SyncRows(ctx, rows); err != nil {
			return fmt.Errorf("mirror rows: %w", err)
		}
	}
	return nil
}
