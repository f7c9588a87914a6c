package analysis

import "context"

// Repo persists analysis history records. Every query is owner-scoped.
type Repo interface {
	Create(ctx context.Context, record Record) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Record, error)
	Delete(ctx context.Context, userID, recordID string) error
	DeleteAllByUser(ctx context.Context, userID string) (int, error)
	ReassignUser(ctx context.Context, fromUserID, toUserID string) (int, error)
	CountAll(ctx context.Context) (int, error)
}
