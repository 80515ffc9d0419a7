package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/activityarchive/internal/csvexport"
	"example.com/activityarchive/internal/observability"
)

//go:embed migrations/*.up.sql
var migrations embed.FS

const columns = `activity_id, date_local, start_time_local, activity_type, distance_mi, moving_time_min, elapsed_time_min, total_elev_gain_ft, avg_speed_mph, pace_mmss, pace_min_per_mi, name`

// Repository mirrors the derived activity table into Postgres.
type Repository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (r *Repository) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.up.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		body, err := migrations.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := r.pool.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return nil
}

// SyncRows makes the mirror match rows inside one transaction. Rows are
// upserted by activity id, matching the CSV merge rule, and ids absent from
// rows are deleted so the mirror never outlives the derived table.
func (r *Repository) SyncRows(ctx context.Context, rows []csvexport.Row) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const stmt = `INSERT INTO derived_activities (` + columns + `, started_local, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        ON CONFLICT (activity_id) DO UPDATE SET
            date_local = EXCLUDED.date_local,
            start_time_local = EXCLUDED.start_time_local,
            activity_type = EXCLUDED.activity_type,
            distance_mi = EXCLUDED.distance_mi,
            moving_time_min = EXCLUDED.moving_time_min,
            elapsed_time_min = EXCLUDED.elapsed_time_min,
            total_elev_gain_ft = EXCLUDED.total_elev_gain_ft,
            avg_speed_mph = EXCLUDED.avg_speed_mph,
            pace_mmss = EXCLUDED.pace_mmss,
            pace_min_per_mi = EXCLUDED.pace_min_per_mi,
            name = EXCLUDED.name,
            started_local = EXCLUDED.started_local,
            updated_at = EXCLUDED.updated_at`

	now := r.now()
	batch := &pgx.Batch{}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.ID == "" {
			continue
		}
		ids = append(ids, row.ID)
		var started any
		if t, ok := csvexport.RowTime(row); ok {
			started = t
		}
		batch.Queue(stmt,
			row.ID,
			row.DateLocal,
			row.StartTimeLocal,
			row.Type,
			row.DistanceMi,
			row.MovingTimeMin,
			row.ElapsedTimeMin,
			row.TotalElevGainFt,
			row.AvgSpeedMPH,
			row.PaceMMSS,
			row.PaceMinPerMi,
			row.Name,
			started,
			now,
		)
	}

	if batch.Len() > 0 {
		if err = tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
	}
	if _, err = tx.Exec(ctx, `DELETE FROM derived_activities WHERE activity_id <> ALL($1)`, ids); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordRowsMirrored(now, batch.Len())
	return nil
}

// Get returns the mirrored row for activityID, or nil when absent.
func (r *Repository) Get(ctx context.Context, activityID string) (*csvexport.Row, error) {
	const query = `SELECT ` + columns + ` FROM derived_activities WHERE activity_id=$1`

	var row csvexport.Row
	err := r.pool.QueryRow(ctx, query, activityID).Scan(scanTargets(&row)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns mirrored rows in derived-table order.
func (r *Repository) List(ctx context.Context, limit int) ([]csvexport.Row, error) {
	const query = `SELECT ` + columns + ` FROM derived_activities
        ORDER BY date_local DESC, start_time_local DESC, activity_id DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]csvexport.Row, 0, limit)
	for rows.Next() {
		var row csvexport.Row
		if err := rows.Scan(scanTargets(&row)...); err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func scanTargets(row *csvexport.Row) []any {
	return []any{
		&row.ID,
		&row.DateLocal,
		&row.StartTimeLocal,
		&row.Type,
		&row.DistanceMi,
		&row.MovingTimeMin,
		&row.ElapsedTimeMin,
		&row.TotalElevGainFt,
		&row.AvgSpeedMPH,
		&row.PaceMMSS,
		&row.PaceMinPerMi,
		&row.Name,
	}
}
