package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"sentimentiq-backend/internal/feature"
	"sentimentiq-backend/internal/provider"
)

const (
	defaultModel = "gpt-4o-mini"
	maxTokens    = 512

	systemPrompt = `You summarize user-submitted text. Respond with a JSON object of the form {"summary": "..."} containing a concise summary of at most three sentences. Do not add commentary.`
)

// Client serves the summary feature through the OpenAI Chat Completions API.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient constructs a summarization client.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	return &Client{api: openai.NewClient(apiKey), model: model}, nil
}

// SummaryPayload is the caller-facing summarization result shape.
type SummaryPayload struct {
	Summary string `json:"summary"`
}

func (c *Client) Analyze(ctx context.Context, kind feature.Kind, text string) (json.RawMessage, error) {
	if kind != feature.Summary {
		return nil, fmt.Errorf("%w: %s", provider.ErrUnsupportedKind, kind)
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	}
	// Reasoning models reject MaxTokens in favor of MaxCompletionTokens.
	if strings.HasPrefix(c.model, "o1") || strings.HasPrefix(c.model, "o3") || strings.HasPrefix(c.model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("summarize: response missing choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	var payload SummaryPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("summarize: invalid JSON from model: %w", err)
	}
	if strings.TrimSpace(payload.Summary) == "" {
		return nil, fmt.Errorf("summarize: empty summary from model")
	}
	return json.Marshal(payload)
}

var _ provider.Client = (*Client)(nil)
