package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sentimentiq-backend/internal/feature"
	"sentimentiq-backend/internal/provider"
	"sentimentiq-backend/internal/quota"
	"sentimentiq-backend/internal/shared/metrics"
	"sentimentiq-backend/internal/shared/telemetry"
	"sentimentiq-backend/internal/tier"
)

const (
	// maxComprehensiveChars bounds the text accepted by the comprehensive
	// endpoint.
	maxComprehensiveChars = 10000
	// maxSingleChars is the provider's per-document ceiling applied to the
	// single-feature endpoints.
	maxSingleChars = 5120
	// minSummaryChars is the shortest text worth summarizing.
	minSummaryChars = 200
)

// Service orchestrates analysis requests: validation, concurrent per-feature
// fan-out, aggregation, quota accounting, and best-effort history persistence.
// It holds no per-request state.
type Service struct {
	Repo     Repo
	Provider provider.Client
	Quota    *quota.Service
	Log      *telemetry.Buffer
}

// Comprehensive validates the request, dispatches one provider call per
// requested feature concurrently, and aggregates the outcomes. A single
// feature's failure never fails its siblings or the request.
func (s *Service) Comprehensive(ctx context.Context, userID string, t tier.Tier, text string, requested []string) (Result, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Result{}, validationf("text required")
	}
	if n := characterCount(trimmed); n > maxComprehensiveChars {
		return Result{}, validationf("text too long: %d characters exceeds the %d limit", n, maxComprehensiveChars)
	}

	kinds, err := resolveKinds(requested)
	if err != nil {
		return Result{}, err
	}
	for _, k := range kinds {
		if !tier.CanAccessFeature(t, k) {
			return Result{}, &PermissionError{Kind: k, Tier: t}
		}
	}

	if s.Quota != nil {
		if _, err := s.Quota.Consume(ctx, userID, t, 1); err != nil {
			return Result{}, err
		}
	}

	metrics.IncAnalysisRequests()
	startedAt := time.Now().UTC()

	outcomes := make([]Outcome, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, k := range kinds {
		if k == feature.Summary && characterCount(trimmed) < minSummaryChars {
			outcomes[i] = Failure("text too short to summarize")
			continue
		}
		i, k := i, k
		g.Go(func() error {
			outcomes[i] = s.dispatch(gctx, k, trimmed)
			return nil
		})
	}
	g.Wait()

	result := Result{
		Text:           trimmed,
		WordCount:      wordCount(trimmed),
		CharacterCount: characterCount(trimmed),
		Timestamp:      time.Now().UTC(),
		Features:       make(map[feature.Kind]Outcome, len(kinds)),
	}
	for i, k := range kinds {
		result.Features[k] = outcomes[i]
	}

	metrics.ObserveAnalysisDurationMs(float64(time.Since(startedAt).Microseconds()) / 1000.0)

	s.persist(ctx, userID, t, kinds, result)
	return result, nil
}

// Single validates and dispatches one feature call. Provider failures are
// surfaced directly to the caller, not downgraded to outcome data.
func (s *Service) Single(ctx context.Context, userID string, t tier.Tier, k feature.Kind, text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, validationf("text required")
	}
	if n := characterCount(trimmed); n > maxSingleChars {
		return nil, validationf("text too long: %d characters exceeds the %d limit", n, maxSingleChars)
	}
	if !tier.CanAccessFeature(t, k) {
		return nil, &PermissionError{Kind: k, Tier: t}
	}
	if k == feature.Summary && characterCount(trimmed) < minSummaryChars {
		return nil, validationf("text too short to summarize: at least %d characters required", minSummaryChars)
	}

	if s.Quota != nil {
		if _, err := s.Quota.Consume(ctx, userID, t, 1); err != nil {
			return nil, err
		}
	}

	metrics.IncAnalysisRequests()
	metrics.IncFeatureCalls()
	payload, err := s.Provider.Analyze(ctx, k, trimmed)
	if err != nil {
		metrics.IncFeatureFailures()
		return nil, err
	}
	return payload, nil
}

// History returns the caller's records, newest first.
func (s *Service) History(ctx context.Context, userID string, limit, offset int) ([]Record, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// DeleteRecord removes one owned history record.
func (s *Service) DeleteRecord(ctx context.Context, userID, recordID string) error {
	if userID == "" || recordID == "" {
		return errors.New("userID and recordID are required")
	}
	return s.Repo.Delete(ctx, userID, recordID)
}

// ClearHistory removes all of the caller's records and reports how many.
func (s *Service) ClearHistory(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, errors.New("userID is required")
	}
	return s.Repo.DeleteAllByUser(ctx, userID)
}

func (s *Service) dispatch(ctx context.Context, k feature.Kind, text string) Outcome {
	metrics.IncFeatureCalls()
	payload, err := s.Provider.Analyze(ctx, k, text)
	if err != nil {
		metrics.IncFeatureFailures()
		s.log("warn", "analysis.feature_failed", map[string]any{
			"feature": string(k),
			"error":   err.Error(),
		})
		return Failure(err.Error())
	}
	return Success(payload)
}

// persist writes the history record when the tier keeps history. Failures are
// logged and swallowed so persistence can never alter the response.
func (s *Service) persist(ctx context.Context, userID string, t tier.Tier, kinds []feature.Kind, result Result) {
	if s.Repo == nil || userID == "" {
		return
	}
	if !tier.LimitsFor(t).HasHistory {
		return
	}
	record := Record{
		ID:        uuid.NewString(),
		UserID:    userID,
		Text:      result.Text,
		Features:  kinds,
		Result:    result,
		CreatedAt: result.Timestamp,
	}
	if err := s.Repo.Create(ctx, record); err != nil {
		s.log("error", "analysis.history_persist_failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

func (s *Service) log(level, msg string, fields map[string]any) {
	if s.Log != nil {
		s.Log.Log(level, msg, fields)
		return
	}
	switch level {
	case "error":
		telemetry.Error(msg, fields)
	default:
		telemetry.Info(msg, fields)
	}
}

// resolveKinds parses the requested feature identifiers. A nil request means
// every feature; an explicitly empty list and unknown identifiers reject the
// request.
func resolveKinds(requested []string) ([]feature.Kind, error) {
	if requested == nil {
		return feature.All(), nil
	}
	if len(requested) == 0 {
		return nil, validationf("select at least one feature")
	}
	kinds := make([]feature.Kind, 0, len(requested))
	seen := make(map[feature.Kind]bool, len(requested))
	for _, raw := range requested {
		k, ok := feature.Parse(raw)
		if !ok {
			return nil, validationf("unknown feature %q", raw)
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		kinds = append(kinds, k)
	}
	return kinds, nil
}
