package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"sentimentiq-backend/internal/feature"
	"sentimentiq-backend/internal/quota"
	"sentimentiq-backend/internal/tier"
)

// stubProvider counts calls and fails configured kinds.
type stubProvider struct {
	mu       sync.Mutex
	calls    int
	byKind   map[feature.Kind]int
	failures map[feature.Kind]error
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		byKind:   make(map[feature.Kind]int),
		failures: make(map[feature.Kind]error),
	}
}

func (p *stubProvider) failOn(k feature.Kind, err error) {
	p.failures[k] = err
}

func (p *stubProvider) Analyze(ctx context.Context, k feature.Kind, text string) (json.RawMessage, error) {
	p.mu.Lock()
	p.calls++
	p.byKind[k]++
	p.mu.Unlock()
	if err, ok := p.failures[k]; ok {
		return nil, err
	}
	return json.RawMessage(fmt.Sprintf(`{"kind":%q}`, k)), nil
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func newTestService(p *stubProvider) (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	return &Service{
		Repo:     repo,
		Provider: p,
		Quota:    quota.NewService(),
	}, repo
}

func longText(chars int) string {
	return strings.Repeat("a", chars)
}

func TestComprehensiveRejectionPrecedesDispatch(t *testing.T) {
	cases := []struct {
		name     string
		tier     tier.Tier
		text     string
		features []string
	}{
		{"empty text", tier.Pro, "   ", nil},
		{"text too long", tier.Pro, longText(10001), nil},
		{"empty feature list", tier.Pro, "some perfectly valid text", []string{}},
		{"unknown feature", tier.Pro, "some text", []string{"translation"}},
		{"tier forbids feature", tier.Guest, "some text", []string{"entities"}},
		{"tier forbids one of several", tier.Standard, "some text", []string{"sentiment", "summary"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newStubProvider()
			svc, _ := newTestService(p)
			_, err := svc.Comprehensive(context.Background(), "user-1", tc.tier, tc.text, tc.features)
			if err == nil {
				t.Fatal("expected rejection")
			}
			if p.callCount() != 0 {
				t.Errorf("provider called %d times for rejected request, want 0", p.callCount())
			}
		})
	}
}

func TestComprehensiveEmptyFeatureListRejected(t *testing.T) {
	p := newStubProvider()
	svc, _ := newTestService(p)

	_, err := svc.Comprehensive(context.Background(), "user-1", tier.Pro, "some perfectly valid text", []string{})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if ve.Msg != "select at least one feature" {
		t.Errorf("message = %q", ve.Msg)
	}
	if p.callCount() != 0 {
		t.Errorf("provider called %d times, want 0", p.callCount())
	}
}

func TestComprehensiveBoundaryLengthAccepted(t *testing.T) {
	p := newStubProvider()
	svc, _ := newTestService(p)
	if _, err := svc.Comprehensive(context.Background(), "user-1", tier.Pro, longText(10000), []string{"sentiment"}); err != nil {
		t.Fatalf("Comprehensive at exactly 10000 chars: %v", err)
	}
}

func TestComprehensivePartialFailureContainment(t *testing.T) {
	p := newStubProvider()
	p.failOn(feature.Entities, errors.New("provider exploded"))
	svc, _ := newTestService(p)

	text := "the quick brown fox jumps over the lazy dog"
	result, err := svc.Comprehensive(context.Background(), "user-1", tier.Pro, text, []string{"sentiment", "keyPhrases", "entities"})
	if err != nil {
		t.Fatalf("Comprehensive: %v", err)
	}

	if len(result.Features) != 3 {
		t.Fatalf("got %d feature entries, want 3", len(result.Features))
	}
	for _, k := range []feature.Kind{feature.Sentiment, feature.KeyPhrases} {
		out, ok := result.Features[k]
		if !ok || !out.OK() {
			t.Errorf("feature %s: outcome = %+v, want success", k, out)
		}
	}
	failed, ok := result.Features[feature.Entities]
	if !ok || failed.OK() {
		t.Fatalf("entities outcome = %+v, want failure", failed)
	}
	if !strings.Contains(failed.Err, "provider exploded") {
		t.Errorf("failure message = %q", failed.Err)
	}

	if result.WordCount != 9 {
		t.Errorf("wordCount = %d, want 9", result.WordCount)
	}
	if result.CharacterCount != len(text) {
		t.Errorf("characterCount = %d, want %d", result.CharacterCount, len(text))
	}
}

func TestComprehensiveDefaultsToAllFeatures(t *testing.T) {
	p := newStubProvider()
	svc, _ := newTestService(p)

	result, err := svc.Comprehensive(context.Background(), "user-1", tier.Pro, longText(300), nil)
	if err != nil {
		t.Fatalf("Comprehensive: %v", err)
	}
	if len(result.Features) != 5 {
		t.Fatalf("got %d feature entries, want all 5", len(result.Features))
	}
	if p.callCount() != 5 {
		t.Errorf("provider called %d times, want 5", p.callCount())
	}
}

func TestComprehensiveShortSummaryBecomesFailureOutcome(t *testing.T) {
	p := newStubProvider()
	svc, _ := newTestService(p)

	result, err := svc.Comprehensive(context.Background(), "user-1", tier.Pro, "short but valid text", []string{"sentiment", "summary"})
	if err != nil {
		t.Fatalf("Comprehensive: %v", err)
	}

	summary, ok := result.Features[feature.Summary]
	if !ok {
		t.Fatal("summary entry missing from result")
	}
	if summary.OK() || !strings.Contains(summary.Err, "too short") {
		t.Errorf("summary outcome = %+v, want too-short failure", summary)
	}
	if sentiment := result.Features[feature.Sentiment]; !sentiment.OK() {
		t.Errorf("sentiment outcome = %+v, siblings must be unaffected", sentiment)
	}
	if got := p.byKind[feature.Summary]; got != 0 {
		t.Errorf("summary dispatched %d times, want 0", got)
	}
}

func TestComprehensivePersistsForHistoryTiers(t *testing.T) {
	p := newStubProvider()
	svc, repo := newTestService(p)

	if _, err := svc.Comprehensive(context.Background(), "user-1", tier.Standard, "persist me please", []string{"sentiment"}); err != nil {
		t.Fatalf("Comprehensive: %v", err)
	}
	records, err := repo.ListByUser(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d history records, want 1", len(records))
	}
	if records[0].Text != "persist me please" {
		t.Errorf("record text = %q", records[0].Text)
	}
}

func TestComprehensiveGuestNotPersisted(t *testing.T) {
	p := newStubProvider()
	svc, repo := newTestService(p)

	if _, err := svc.Comprehensive(context.Background(), "guest:abc", tier.Guest, "hello there", []string{"sentiment"}); err != nil {
		t.Fatalf("Comprehensive: %v", err)
	}
	records, _ := repo.ListByUser(context.Background(), "guest:abc", 10, 0)
	if len(records) != 0 {
		t.Fatalf("guest history persisted %d records, want 0", len(records))
	}
}

type failingRepo struct {
	MemoryRepo
}

func (r *failingRepo) Create(ctx context.Context, record Record) error {
	return errors.New("db down")
}

func TestComprehensivePersistenceFailureInvisible(t *testing.T) {
	p := newStubProvider()
	svc := &Service{
		Repo:     &failingRepo{},
		Provider: p,
		Quota:    quota.NewService(),
	}

	result, err := svc.Comprehensive(context.Background(), "user-1", tier.Pro, "some reasonable text", []string{"sentiment"})
	if err != nil {
		t.Fatalf("persistence failure leaked into response: %v", err)
	}
	if out := result.Features[feature.Sentiment]; !out.OK() {
		t.Errorf("sentiment outcome = %+v, want success", out)
	}
}

func TestComprehensiveQuotaExhaustionBlocksDispatch(t *testing.T) {
	p := newStubProvider()
	svc, _ := newTestService(p)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if _, err := svc.Comprehensive(ctx, "guest:q", tier.Guest, "quota filler text", []string{"sentiment"}); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	callsBefore := p.callCount()

	_, err := svc.Comprehensive(ctx, "guest:q", tier.Guest, "one more", []string{"sentiment"})
	if !errors.Is(err, quota.ErrLimitReached) {
		t.Fatalf("err = %v, want ErrLimitReached", err)
	}
	if p.callCount() != callsBefore {
		t.Error("provider dispatched after quota exhaustion")
	}
}

func TestSingleValidation(t *testing.T) {
	cases := []struct {
		name string
		tier tier.Tier
		kind feature.Kind
		text string
	}{
		{"empty text", tier.Pro, feature.Sentiment, ""},
		{"over single ceiling", tier.Pro, feature.Sentiment, longText(5121)},
		{"summary too short", tier.Pro, feature.Summary, "tiny"},
		{"guest cannot keyphrase", tier.Guest, feature.KeyPhrases, "valid text here"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newStubProvider()
			svc, _ := newTestService(p)
			if _, err := svc.Single(context.Background(), "user-1", tc.tier, tc.kind, tc.text); err == nil {
				t.Fatal("expected rejection")
			}
			if p.callCount() != 0 {
				t.Errorf("provider called %d times, want 0", p.callCount())
			}
		})
	}
}

func TestSingleSummaryPermissionPrecedesLengthCheck(t *testing.T) {
	p := newStubProvider()
	svc, _ := newTestService(p)

	_, err := svc.Single(context.Background(), "guest:x", tier.Guest, feature.Summary, "tiny")
	var pe *PermissionError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want PermissionError", err)
	}
	if p.callCount() != 0 {
		t.Errorf("provider called %d times, want 0", p.callCount())
	}
}

func TestSingleSurfacesProviderError(t *testing.T) {
	p := newStubProvider()
	p.failOn(feature.Sentiment, errors.New("upstream 500"))
	svc, _ := newTestService(p)

	_, err := svc.Single(context.Background(), "user-1", tier.Pro, feature.Sentiment, "valid text")
	if err == nil || !strings.Contains(err.Error(), "upstream 500") {
		t.Fatalf("err = %v, want surfaced provider error", err)
	}
}

func TestSingleBoundaryLengthAccepted(t *testing.T) {
	p := newStubProvider()
	svc, _ := newTestService(p)
	if _, err := svc.Single(context.Background(), "user-1", tier.Pro, feature.Sentiment, longText(5120)); err != nil {
		t.Fatalf("Single at exactly 5120 chars: %v", err)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	p := newStubProvider()
	svc, _ := newTestService(p)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Comprehensive(ctx, "user-h", tier.Pro, fmt.Sprintf("history entry %d", i), []string{"sentiment"}); err != nil {
			t.Fatalf("Comprehensive %d: %v", i, err)
		}
	}

	records, err := svc.History(ctx, "user-h", 10, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	if err := svc.DeleteRecord(ctx, "user-h", records[0].ID); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if err := svc.DeleteRecord(ctx, "someone-else", records[1].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user delete err = %v, want ErrNotFound", err)
	}

	deleted, err := svc.ClearHistory(ctx, "user-h")
	if err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	if deleted != 2 {
		t.Errorf("cleared %d records, want 2", deleted)
	}
}
