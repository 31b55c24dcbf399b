package runlog

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/ai-astrology/internal/domain/history"
)

// Schema creates the run log table.
const Schema = `
CREATE TABLE IF NOT EXISTS generation_runs (
	id            TEXT PRIMARY KEY,
	created_at    TIMESTAMPTZ NOT NULL,
	birth_date    TEXT NOT NULL,
	birth_time    TEXT NOT NULL,
	location      TEXT NOT NULL,
	resolved_name TEXT,
	sun_sign      TEXT,
	moon_sign     TEXT,
	rising_sign   TEXT,
	calc_mode     TEXT,
	report_id     TEXT,
	outcome       TEXT NOT NULL,
	duration_ms   BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS generation_runs_created_at_idx ON generation_runs (created_at DESC);
`

// PostgresRepository implements history.RunLog using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema applies Schema.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, Schema)
	return err
}

// Append inserts one run.
func (r *PostgresRepository) Append(ctx context.Context, record history.RunRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO generation_runs (
			id, created_at, birth_date, birth_time, location, resolved_name,
			sun_sign, moon_sign, rising_sign, calc_mode, report_id, outcome, duration_ms
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		record.ID, record.CreatedAt, record.Date, record.Time, record.Location, nullString(record.ResolvedName),
		nullString(record.SunSign), nullString(record.MoonSign), nullString(record.RisingSign),
		nullString(record.Mode), nullString(record.ReportID), record.Outcome, record.DurationMs,
	)
	return err
}

// Recent lists the newest runs.
func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]history.RunRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, created_at, birth_date, birth_time, location, resolved_name,
			sun_sign, moon_sign, rising_sign, calc_mode, report_id, outcome, duration_ms
		FROM generation_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []history.RunRecord
	for rows.Next() {
		record, err := scanRunRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunRecord(row rowScanner) (history.RunRecord, error) {
	var (
		record                                   history.RunRecord
		resolved, sun, moon, rising, mode, repID sql.NullString
	)
	if err := row.Scan(&record.ID, &record.CreatedAt, &record.Date, &record.Time, &record.Location, &resolved,
		&sun, &moon, &rising, &mode, &repID, &record.Outcome, &record.DurationMs); err != nil {
		return history.RunRecord{}, err
	}
	record.ResolvedName = resolved.String
	record.SunSign = sun.String
	record.MoonSign = moon.String
	record.RisingSign = rising.String
	record.Mode = mode.String
	record.ReportID = repID.String
	return record, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

var _ history.RunLog = (*PostgresRepository)(nil)
