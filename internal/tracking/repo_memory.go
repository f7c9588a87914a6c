package tracking

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores events in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Insert(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepo) CountByDay(ctx context.Context, days int) ([]DayCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 7
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	r.mu.RLock()
	counts := make(map[string]int)
	for _, e := range r.events {
		if e.OccurredAt.Before(cutoff) {
			continue
		}
		counts[e.OccurredAt.UTC().Format("2006-01-02")]++
	}
	r.mu.RUnlock()

	out := make([]DayCount, 0, len(counts))
	for day, count := range counts {
		out = append(out, DayCount{Day: day, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

func (r *MemoryRepo) CountAll(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events), nil
}

func (r *MemoryRepo) CountDistinctVisitors(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool, len(r.events))
	for _, e := range r.events {
		seen[e.VisitorKey] = true
	}
	return len(seen), nil
}
