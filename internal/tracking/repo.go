package tracking

import "context"

// Repo persists visitor events.
type Repo interface {
	Insert(ctx context.Context, event Event) error
	CountByDay(ctx context.Context, days int) ([]DayCount, error)
	CountAll(ctx context.Context) (int, error)
	CountDistinctVisitors(ctx context.Context) (int, error)
}
