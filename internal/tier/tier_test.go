package tier

import (
	"reflect"
	"testing"

	"sentimentiq-backend/internal/feature"
)

func TestLimitsTable(t *testing.T) {
	tests := []struct {
		tier         Tier
		maxFeatures  int
		allowed      []feature.Kind
		hasHistory   bool
		requiresAuth bool
	}{
		{Guest, 1, []feature.Kind{feature.Sentiment}, false, false},
		{Standard, 2, []feature.Kind{feature.Sentiment, feature.KeyPhrases}, true, true},
		{Pro, 5, []feature.Kind{feature.Sentiment, feature.KeyPhrases, feature.Entities, feature.Summary, feature.Language}, true, true},
	}

	for _, tt := range tests {
		limits := LimitsFor(tt.tier)
		if limits.MaxFeatures != tt.maxFeatures {
			t.Errorf("%s: MaxFeatures = %d, want %d", tt.tier, limits.MaxFeatures, tt.maxFeatures)
		}
		if !reflect.DeepEqual(limits.AllowedFeatures, tt.allowed) {
			t.Errorf("%s: AllowedFeatures = %v, want %v", tt.tier, limits.AllowedFeatures, tt.allowed)
		}
		if limits.HasHistory != tt.hasHistory {
			t.Errorf("%s: HasHistory = %v, want %v", tt.tier, limits.HasHistory, tt.hasHistory)
		}
		if limits.RequiresAuth != tt.requiresAuth {
			t.Errorf("%s: RequiresAuth = %v, want %v", tt.tier, limits.RequiresAuth, tt.requiresAuth)
		}
		if len(limits.AllowedFeatures) != limits.MaxFeatures {
			t.Errorf("%s: allowed set size %d != MaxFeatures %d", tt.tier, len(limits.AllowedFeatures), limits.MaxFeatures)
		}
	}
}

func TestMonotonicity(t *testing.T) {
	order := []Tier{Guest, Standard, Pro}
	for i := 0; i < len(order)-1; i++ {
		lower := LimitsFor(order[i])
		higher := LimitsFor(order[i+1])
		if lower.MaxFeatures > higher.MaxFeatures {
			t.Errorf("MaxFeatures(%s) = %d > MaxFeatures(%s) = %d", order[i], lower.MaxFeatures, order[i+1], higher.MaxFeatures)
		}
		for _, k := range lower.AllowedFeatures {
			if !CanAccessFeature(order[i+1], k) {
				t.Errorf("feature %s allowed for %s but not for %s", k, order[i], order[i+1])
			}
		}
	}
}

func TestUnknownTierFallsBackToGuest(t *testing.T) {
	for _, raw := range []string{"", "enterprise", "PRO ", "admin", "42"} {
		parsed := Parse(raw)
		if raw == "PRO " {
			if parsed != Pro {
				t.Errorf("Parse(%q) = %s, want pro", raw, parsed)
			}
			continue
		}
		if parsed != Guest {
			t.Errorf("Parse(%q) = %s, want guest", raw, parsed)
		}
	}

	unknown := LimitsFor(Tier("enterprise"))
	if !reflect.DeepEqual(unknown, LimitsFor(Guest)) {
		t.Errorf("LimitsFor(unknown) = %+v, want guest record %+v", unknown, LimitsFor(Guest))
	}
}

func TestParseExact(t *testing.T) {
	cases := []struct {
		raw  string
		want Tier
		ok   bool
	}{
		{"guest", Guest, true},
		{"standard", Standard, true},
		{" Pro ", Pro, true},
		{"", Guest, false},
		{"platinum", Guest, false},
		{"por", Guest, false},
	}
	for _, tc := range cases {
		got, ok := ParseExact(tc.raw)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseExact(%q) = (%s, %v), want (%s, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCanAccessFeatureMatchesAllowedSet(t *testing.T) {
	for _, tr := range []Tier{Guest, Standard, Pro} {
		allowed := make(map[feature.Kind]bool)
		for _, k := range LimitsFor(tr).AllowedFeatures {
			allowed[k] = true
		}
		for _, k := range feature.All() {
			if got := CanAccessFeature(tr, k); got != allowed[k] {
				t.Errorf("CanAccessFeature(%s, %s) = %v, want %v", tr, k, got, allowed[k])
			}
		}
		if CanAccessFeature(tr, feature.Kind("translation")) {
			t.Errorf("CanAccessFeature(%s, translation) = true, want false", tr)
		}
	}
}

func TestDisplayHelpers(t *testing.T) {
	if DisplayName(Tier("bogus")) != "Guest" {
		t.Errorf("DisplayName(bogus) = %q, want Guest", DisplayName(Tier("bogus")))
	}
	if DisplayName(Pro) != "Pro" {
		t.Errorf("DisplayName(pro) = %q, want Pro", DisplayName(Pro))
	}
	if ColorClass(Tier("bogus")) != "tier-guest" {
		t.Errorf("ColorClass(bogus) = %q, want tier-guest", ColorClass(Tier("bogus")))
	}
}
