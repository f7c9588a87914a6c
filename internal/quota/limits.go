package quota

import (
	"time"

	"sentimentiq-backend/internal/tier"
)

const window = 7 * 24 * time.Hour

// limitFor maps a tier to its weekly analyze-request allowance.
func limitFor(t tier.Tier) int {
	switch t {
	case tier.Pro:
		return 1000
	case tier.Standard:
		return 100
	default:
		return 25
	}
}

func defaultUsage(t tier.Tier) Usage {
	return Usage{
		Tier:     string(t),
		Limit:    limitFor(t),
		Used:     0,
		ResetsAt: time.Now().UTC().Add(window),
	}
}
