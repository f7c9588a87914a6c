package quota

import (
	"context"
	"sync"
	"time"

	"sentimentiq-backend/internal/tier"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]Usage
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]Usage)}
}

func (s *memoryStore) Get(ctx context.Context, userID string, t tier.Tier) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(userID, t), nil
}

// ensureLocked rolls the window forward and refreshes the tier limit. Caller
// holds the mutex.
func (s *memoryStore) ensureLocked(userID string, t tier.Tier) Usage {
	now := time.Now().UTC()
	u, ok := s.data[userID]
	if !ok {
		u = defaultUsage(t)
	}
	if !now.Before(u.ResetsAt) {
		u.Used = 0
		u.ResetsAt = now.Add(window)
	}
	u.Tier = string(t)
	u.Limit = limitFor(t)
	s.data[userID] = u
	return u
}

func (s *memoryStore) Consume(ctx context.Context, userID string, t tier.Tier, n int) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.ensureLocked(userID, t)
	if n <= 0 {
		return u, nil
	}
	if u.Used+n > u.Limit {
		return Usage{}, ErrLimitReached
	}
	u.Used += n
	s.data[userID] = u
	return u, nil
}

func (s *memoryStore) Reset(ctx context.Context, userID string, t tier.Tier) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := defaultUsage(t)
	s.data[userID] = u
	return u, nil
}
