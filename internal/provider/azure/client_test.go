package azure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sentimentiq-backend/internal/feature"
	"sentimentiq-backend/internal/provider"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL, "test-key")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestSentimentMapsProviderResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/sentiment") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "test-key" {
			t.Errorf("subscription key header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"documents":[{"id":"1","sentiment":"negative","confidenceScores":{"positive":0.01,"neutral":0.09,"negative":0.9}}],"errors":[]}`))
	})

	raw, err := client.Analyze(context.Background(), feature.Sentiment, "terrible service")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	var payload SentimentPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Sentiment != "negative" {
		t.Errorf("sentiment = %q, want negative", payload.Sentiment)
	}
	if payload.Score != -0.9 {
		t.Errorf("score = %v, want -0.9", payload.Score)
	}
	if payload.Intensity != "high" {
		t.Errorf("intensity = %q, want high", payload.Intensity)
	}
}

func TestKeyPhrasesEmptyDocumentYieldsEmptySlice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"documents":[{"id":"1","keyPhrases":null}],"errors":[]}`))
	})

	raw, err := client.Analyze(context.Background(), feature.KeyPhrases, "hm")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if string(raw) != `{"phrases":[]}` {
		t.Fatalf("payload = %s, want empty phrases array", raw)
	}
}

func TestDocumentErrorSurfaces(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"documents":[],"errors":[{"id":"1","error":{"code":"InvalidDocument","message":"Document text is empty."}}]}`))
	})

	_, err := client.Analyze(context.Background(), feature.Entities, "")
	if err == nil {
		t.Fatal("expected error for document-level failure")
	}
	if !strings.Contains(err.Error(), "InvalidDocument") {
		t.Fatalf("error = %v, want InvalidDocument code", err)
	}
}

func TestNon200StatusSurfaces(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":"429"}}`))
	})

	_, err := client.Analyze(context.Background(), feature.Language, "hello")
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("error = %v, want status in message", err)
	}
}

func TestSummaryIsUnsupported(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for an unsupported kind")
	})

	_, err := client.Analyze(context.Background(), feature.Summary, "some text")
	if err == nil || !strings.Contains(err.Error(), provider.ErrUnsupportedKind.Error()) {
		t.Fatalf("error = %v, want ErrUnsupportedKind", err)
	}
}
