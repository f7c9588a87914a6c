package tracking

import (
	"context"
	"database/sql"
)

// PGRepo persists visitor events in Postgres.
type PGRepo struct {
	DB *sql.DB
}

func NewPGRepo(db *sql.DB) *PGRepo {
	return &PGRepo{DB: db}
}

func (r *PGRepo) Insert(ctx context.Context, event Event) error {
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO visitor_events (id, visitor_key, event, path, referrer, user_agent, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID,
		event.VisitorKey,
		event.Event,
		event.Path,
		event.Referrer,
		event.UserAgent,
		event.OccurredAt,
	)
	return err
}

func (r *PGRepo) CountByDay(ctx context.Context, days int) ([]DayCount, error) {
	if days <= 0 {
		days = 7
	}
	rows, err := r.DB.QueryContext(ctx, `
SELECT to_char(date_trunc('day', occurred_at), 'YYYY-MM-DD') AS day, COUNT(*)
FROM visitor_events
WHERE occurred_at >= now() - make_interval(days => $1)
GROUP BY 1
ORDER BY 1`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]DayCount, 0, days)
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

func (r *PGRepo) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM visitor_events`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PGRepo) CountDistinctVisitors(ctx context.Context) (int, error) {
	var count int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(DISTINCT visitor_key) FROM visitor_events`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

var _ Repo = (*PGRepo)(nil)
