package history

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a run.
func (r *PGRepo) Create(ctx context.Context, run Run) error {
	const query = `
INSERT INTO runs (
    id, request_id, kind, source_key, output_key, model, status, error, duration_ms, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.ExecContext(ctx, query,
		run.ID,
		run.RequestID,
		run.Kind,
		run.SourceKey,
		run.OutputKey,
		run.Model,
		run.Status,
		run.Error,
		run.DurationMs,
		run.CreatedAt,
	)
	return err
}

// List lists runs ordered newest-first.
func (r *PGRepo) List(ctx context.Context, kind string, limit, offset int) ([]Run, error) {
	limit, offset = normalizePage(limit, offset)
	const query = `
SELECT id, request_id, kind, source_key, output_key, model, status, error, duration_ms, created_at
FROM runs
WHERE ($1 = '' OR kind = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, kind, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID,
			&run.RequestID,
			&run.Kind,
			&run.SourceKey,
			&run.OutputKey,
			&run.Model,
			&run.Status,
			&run.Error,
			&run.DurationMs,
			&run.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
