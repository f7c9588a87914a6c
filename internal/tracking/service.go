package tracking

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"sentimentiq-backend/internal/shared/metrics"
	"sentimentiq-backend/internal/shared/telemetry"
	"sentimentiq-backend/internal/shared/util"
)

// Service records visitor events. Recording is fire-and-forget: insert
// failures are logged and swallowed so tracking can never break a page load.
type Service struct {
	Repo Repo
	Log  *telemetry.Buffer
}

func NewService(repo Repo, log *telemetry.Buffer) *Service {
	return &Service{Repo: repo, Log: log}
}

// Record stores one event. The visitor IP is pseudonymized before it touches
// storage.
func (s *Service) Record(ctx context.Context, ip, name, path, referrer, userAgent string) {
	if s == nil || s.Repo == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "pageview"
	}
	event := Event{
		ID:         uuid.NewString(),
		VisitorKey: util.HashKey(ip),
		Event:      name,
		Path:       path,
		Referrer:   referrer,
		UserAgent:  userAgent,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.Repo.Insert(ctx, event); err != nil {
		if s.Log != nil {
			s.Log.Log("error", "tracking.insert_failed", map[string]any{"error": err.Error()})
		} else {
			telemetry.Error("tracking.insert_failed", map[string]any{"error": err.Error()})
		}
		return
	}
	metrics.IncVisitorEvents()
}

// DailyCounts returns per-day event counts for the dashboard.
func (s *Service) DailyCounts(ctx context.Context, days int) ([]DayCount, error) {
	return s.Repo.CountByDay(ctx, days)
}

// TotalEvents returns the all-time event count for the dashboard overview.
func (s *Service) TotalEvents(ctx context.Context) (int, error) {
	return s.Repo.CountAll(ctx)
}

// DistinctVisitors returns the number of unique visitor keys seen.
func (s *Service) DistinctVisitors(ctx context.Context) (int, error) {
	return s.Repo.CountDistinctVisitors(ctx)
}
