package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"sentimentiq-backend/internal/feature"
	"sentimentiq-backend/internal/provider"
)

const apiVersion = "v3.1"

// Client calls the Azure Text Analytics REST API for sentiment, key phrase,
// entity, and language analysis. Summarization is not served here; the Mux
// routes it to the LLM client.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a text-analytics client. Endpoint and key are required.
func NewClient(endpoint, apiKey string) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("TEXT_ANALYTICS_ENDPOINT is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("TEXT_ANALYTICS_KEY is required")
	}
	timeout := 30 * time.Second
	if raw := strings.TrimSpace(os.Getenv("TEXT_ANALYTICS_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type document struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type documentsRequest struct {
	Documents []document `json:"documents"`
}

type confidenceScores struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

type apiError struct {
	ID    string `json:"id"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		InnerError *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"innererror,omitempty"`
	} `json:"error"`
}

// SentimentPayload is the caller-facing sentiment result shape.
type SentimentPayload struct {
	Sentiment  string           `json:"sentiment"`
	Score      float64          `json:"score"`
	Intensity  string           `json:"intensity"`
	Confidence confidenceScores `json:"confidenceScores"`
}

// KeyPhrasesPayload is the caller-facing key-phrase result shape.
type KeyPhrasesPayload struct {
	Phrases []string `json:"phrases"`
}

// Entity is one recognized entity.
type Entity struct {
	Text            string  `json:"text"`
	Category        string  `json:"category"`
	Subcategory     string  `json:"subcategory,omitempty"`
	ConfidenceScore float64 `json:"confidenceScore"`
}

// EntitiesPayload is the caller-facing entity-recognition result shape.
type EntitiesPayload struct {
	Entities []Entity `json:"entities"`
}

// LanguagePayload is the caller-facing language-detection result shape.
type LanguagePayload struct {
	Name            string  `json:"name"`
	ISO6391Name     string  `json:"iso6391Name"`
	ConfidenceScore float64 `json:"confidenceScore"`
}

func (c *Client) Analyze(ctx context.Context, kind feature.Kind, text string) (json.RawMessage, error) {
	switch kind {
	case feature.Sentiment:
		return c.sentiment(ctx, text)
	case feature.KeyPhrases:
		return c.keyPhrases(ctx, text)
	case feature.Entities:
		return c.entities(ctx, text)
	case feature.Language:
		return c.detectLanguage(ctx, text)
	default:
		return nil, fmt.Errorf("%w: %s", provider.ErrUnsupportedKind, kind)
	}
}

func (c *Client) sentiment(ctx context.Context, text string) (json.RawMessage, error) {
	var parsed struct {
		Documents []struct {
			Sentiment        string           `json:"sentiment"`
			ConfidenceScores confidenceScores `json:"confidenceScores"`
		} `json:"documents"`
		Errors []apiError `json:"errors"`
	}
	if err := c.post(ctx, "/sentiment", text, &parsed); err != nil {
		return nil, err
	}
	if err := firstDocumentError(parsed.Errors); err != nil {
		return nil, err
	}
	if len(parsed.Documents) == 0 {
		return nil, errors.New("sentiment response missing documents")
	}
	doc := parsed.Documents[0]
	score := scoreFor(doc.Sentiment, doc.ConfidenceScores)
	return marshalPayload(SentimentPayload{
		Sentiment:  doc.Sentiment,
		Score:      score,
		Intensity:  intensityFor(score),
		Confidence: doc.ConfidenceScores,
	})
}

func (c *Client) keyPhrases(ctx context.Context, text string) (json.RawMessage, error) {
	var parsed struct {
		Documents []struct {
			KeyPhrases []string `json:"keyPhrases"`
		} `json:"documents"`
		Errors []apiError `json:"errors"`
	}
	if err := c.post(ctx, "/keyPhrases", text, &parsed); err != nil {
		return nil, err
	}
	if err := firstDocumentError(parsed.Errors); err != nil {
		return nil, err
	}
	if len(parsed.Documents) == 0 {
		return nil, errors.New("key phrase response missing documents")
	}
	phrases := parsed.Documents[0].KeyPhrases
	if phrases == nil {
		phrases = []string{}
	}
	return marshalPayload(KeyPhrasesPayload{Phrases: phrases})
}

func (c *Client) entities(ctx context.Context, text string) (json.RawMessage, error) {
	var parsed struct {
		Documents []struct {
			Entities []Entity `json:"entities"`
		} `json:"documents"`
		Errors []apiError `json:"errors"`
	}
	if err := c.post(ctx, "/entities/recognition/general", text, &parsed); err != nil {
		return nil, err
	}
	if err := firstDocumentError(parsed.Errors); err != nil {
		return nil, err
	}
	if len(parsed.Documents) == 0 {
		return nil, errors.New("entity response missing documents")
	}
	entities := parsed.Documents[0].Entities
	if entities == nil {
		entities = []Entity{}
	}
	return marshalPayload(EntitiesPayload{Entities: entities})
}

func (c *Client) detectLanguage(ctx context.Context, text string) (json.RawMessage, error) {
	var parsed struct {
		Documents []struct {
			DetectedLanguage LanguagePayload `json:"detectedLanguage"`
		} `json:"documents"`
		Errors []apiError `json:"errors"`
	}
	if err := c.post(ctx, "/languages", text, &parsed); err != nil {
		return nil, err
	}
	if err := firstDocumentError(parsed.Errors); err != nil {
		return nil, err
	}
	if len(parsed.Documents) == 0 {
		return nil, errors.New("language response missing documents")
	}
	return marshalPayload(parsed.Documents[0].DetectedLanguage)
}

func (c *Client) post(ctx context.Context, path, text string, out any) error {
	payload, err := json.Marshal(documentsRequest{
		Documents: []document{{ID: "1", Text: text}},
	})
	if err != nil {
		return err
	}

	url := c.endpoint + "/text/analytics/" + apiVersion + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return fmt.Errorf("text analytics request timeout: %w", err)
		}
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("text analytics status %d: %s", resp.StatusCode, compactBody(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("text analytics response parse: %w", err)
	}
	return nil
}

func firstDocumentError(errs []apiError) error {
	if len(errs) == 0 {
		return nil
	}
	e := errs[0].Error
	if e.InnerError != nil && e.InnerError.Message != "" {
		return fmt.Errorf("text analytics error: %s (%s)", e.InnerError.Message, e.InnerError.Code)
	}
	return fmt.Errorf("text analytics error: %s (%s)", e.Message, e.Code)
}

func marshalPayload(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func compactBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 256 {
		s = s[:256]
	}
	return s
}

var _ provider.Client = (*Client)(nil)
