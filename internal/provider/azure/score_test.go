package azure

import "testing"

func TestScoreFor(t *testing.T) {
	tests := []struct {
		name      string
		sentiment string
		cs        confidenceScores
		want      float64
	}{
		{"positive takes positive confidence", "positive", confidenceScores{Positive: 0.91, Neutral: 0.05, Negative: 0.04}, 0.91},
		{"negative takes negated negative confidence", "negative", confidenceScores{Positive: 0.02, Neutral: 0.1, Negative: 0.88}, -0.88},
		{"neutral scores zero", "neutral", confidenceScores{Positive: 0.2, Neutral: 0.6, Negative: 0.2}, 0},
		{"mixed leans positive", "mixed", confidenceScores{Positive: 0.5, Neutral: 0.1, Negative: 0.4}, 0.5},
		{"mixed leans negative", "mixed", confidenceScores{Positive: 0.3, Neutral: 0.1, Negative: 0.6}, -0.6},
		{"unknown label scores zero", "confused", confidenceScores{Positive: 0.9}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreFor(tt.sentiment, tt.cs); got != tt.want {
				t.Fatalf("scoreFor(%s) = %v, want %v", tt.sentiment, got, tt.want)
			}
		})
	}
}

func TestIntensityFor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.95, "high"},
		{-0.95, "high"},
		{0.61, "high"},
		{0.6, "medium"},
		{0.31, "medium"},
		{-0.45, "medium"},
		{0.3, "low"},
		{0.0, "low"},
		{-0.1, "low"},
	}

	for _, tt := range tests {
		if got := intensityFor(tt.score); got != tt.want {
			t.Errorf("intensityFor(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
