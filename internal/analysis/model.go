package analysis

import (
	"encoding/json"
	"time"

	"sentimentiq-backend/internal/feature"
)

// Outcome is the per-feature result captured during fan-out: a success payload
// or a failure message, never an escaped error.
type Outcome struct {
	Data json.RawMessage
	Err  string
}

// Success wraps a provider payload in a successful outcome.
func Success(data json.RawMessage) Outcome {
	return Outcome{Data: data}
}

// Failure records a per-feature failure message.
func Failure(msg string) Outcome {
	return Outcome{Err: msg}
}

// OK reports whether the outcome carries a success payload.
func (o Outcome) OK() bool {
	return o.Err == ""
}

// MarshalJSON renders a success outcome as the raw payload and a failure as
// {"error": message}.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if !o.OK() {
		return json.Marshal(map[string]string{"error": o.Err})
	}
	if len(o.Data) == 0 {
		return []byte("null"), nil
	}
	return o.Data, nil
}

// UnmarshalJSON restores an outcome from its wire form.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var probe struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(data, &probe); err == nil && probe.Error != nil {
		*o = Failure(*probe.Error)
		return nil
	}
	*o = Success(append(json.RawMessage(nil), data...))
	return nil
}

// Result is the aggregate of one comprehensive analysis call.
type Result struct {
	Text           string                   `json:"text"`
	WordCount      int                      `json:"wordCount"`
	CharacterCount int                      `json:"characterCount"`
	Timestamp      time.Time                `json:"timestamp"`
	Features       map[feature.Kind]Outcome `json:"features"`
}

// Record is one persisted history entry, owned by an authenticated user.
type Record struct {
	ID        string         `json:"id"`
	UserID    string         `json:"-"`
	Text      string         `json:"text"`
	Features  []feature.Kind `json:"features"`
	Result    Result         `json:"result"`
	CreatedAt time.Time      `json:"createdAt"`
}
