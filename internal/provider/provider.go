package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sentimentiq-backend/internal/feature"
)

// Client abstracts the external language service. Each call is independently
// success/failure-observable and keyed by feature kind and document text.
type Client interface {
	Analyze(ctx context.Context, kind feature.Kind, text string) (json.RawMessage, error)
}

// ErrNotConfigured is returned when no provider is wired for a feature at all
// (missing credentials). Surfaced as service-unavailable at the API boundary.
var ErrNotConfigured = errors.New("analysis provider not configured")

// ErrUnsupportedKind is returned by a client asked for a feature it does not
// implement.
var ErrUnsupportedKind = errors.New("unsupported analysis feature")

// Mux routes feature kinds to concrete clients: summarization goes to the LLM
// client, everything else to the text-analytics client. Either slot may be nil
// when the corresponding credentials are absent.
type Mux struct {
	Text    Client
	Summary Client
}

func (m Mux) Analyze(ctx context.Context, kind feature.Kind, text string) (json.RawMessage, error) {
	target := m.Text
	if kind == feature.Summary {
		target = m.Summary
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, kind)
	}
	return target.Analyze(ctx, kind, text)
}

var _ Client = Mux{}
