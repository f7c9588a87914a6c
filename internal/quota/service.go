package quota

import (
	"context"

	"sentimentiq-backend/internal/tier"
)

type store interface {
	Get(ctx context.Context, userID string, t tier.Tier) (Usage, error)
	Consume(ctx context.Context, userID string, t tier.Tier, n int) (Usage, error)
	Reset(ctx context.Context, userID string, t tier.Tier) (Usage, error)
}

// Service manages per-user weekly quotas via an underlying store. The window
// rolls forward lazily: any read past ResetsAt starts a fresh period.
type Service struct {
	store store
}

// NewService constructs a Service with an in-memory store.
func NewService() *Service {
	return &Service{store: newMemoryStore()}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore store) *Service {
	return &Service{store: pgStore}
}

// Get returns the current usage for a user, initializing defaults if absent.
func (s *Service) Get(ctx context.Context, userID string, t tier.Tier) (Usage, error) {
	return s.store.Get(ctx, userID, t)
}

// Consume increments usage by n if within the limit.
func (s *Service) Consume(ctx context.Context, userID string, t tier.Tier, n int) (Usage, error) {
	return s.store.Consume(ctx, userID, t, n)
}

// Reset zeroes usage and restarts the window.
func (s *Service) Reset(ctx context.Context, userID string, t tier.Tier) (Usage, error) {
	return s.store.Reset(ctx, userID, t)
}
