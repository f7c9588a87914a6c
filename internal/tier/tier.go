package tier

import (
	"strings"

	"sentimentiq-backend/internal/feature"
)

// Tier is a user's subscription level. It is stored on the user record and
// consulted on every analysis request.
type Tier string

const (
	Guest    Tier = "guest"
	Standard Tier = "standard"
	Pro      Tier = "pro"
)

// Limits describes the entitlements of a tier. Computed on demand, never
// persisted.
type Limits struct {
	MaxFeatures     int            `json:"maxFeatures"`
	AllowedFeatures []feature.Kind `json:"allowedFeatures"`
	HasHistory      bool           `json:"hasHistory"`
	RequiresAuth    bool           `json:"requiresAuth"`
}

// Parse normalizes a stored tier value. Anything unrecognized maps to Guest so
// a corrupt or missing tier can never widen access.
func Parse(raw string) Tier {
	t, _ := ParseExact(raw)
	return t
}

// ParseExact reports whether raw names a known tier. Callers validating
// input use this; storage reads go through Parse and its Guest fallback.
func ParseExact(raw string) (Tier, bool) {
	switch t := Tier(strings.ToLower(strings.TrimSpace(raw))); t {
	case Guest, Standard, Pro:
		return t, true
	default:
		return Guest, false
	}
}

// LimitsFor returns the entitlement record for a tier. Unknown tiers get the
// Guest record.
func LimitsFor(t Tier) Limits {
	switch t {
	case Standard:
		return Limits{
			MaxFeatures:     2,
			AllowedFeatures: []feature.Kind{feature.Sentiment, feature.KeyPhrases},
			HasHistory:      true,
			RequiresAuth:    true,
		}
	case Pro:
		return Limits{
			MaxFeatures:     5,
			AllowedFeatures: []feature.Kind{feature.Sentiment, feature.KeyPhrases, feature.Entities, feature.Summary, feature.Language},
			HasHistory:      true,
			RequiresAuth:    true,
		}
	default:
		return Limits{
			MaxFeatures:     1,
			AllowedFeatures: []feature.Kind{feature.Sentiment},
			HasHistory:      false,
			RequiresAuth:    false,
		}
	}
}

// CanAccessFeature reports whether a tier may invoke the given feature.
// Unknown tiers fall back to Guest; unknown features are simply not allowed.
func CanAccessFeature(t Tier, k feature.Kind) bool {
	for _, allowed := range LimitsFor(t).AllowedFeatures {
		if allowed == k {
			return true
		}
	}
	return false
}

// DisplayName returns the user-facing tier label.
func DisplayName(t Tier) string {
	switch t {
	case Standard:
		return "Standard"
	case Pro:
		return "Pro"
	default:
		return "Guest"
	}
}

// ColorClass returns the UI badge class for a tier.
func ColorClass(t Tier) string {
	switch t {
	case Standard:
		return "tier-standard"
	case Pro:
		return "tier-pro"
	default:
		return "tier-guest"
	}
}
