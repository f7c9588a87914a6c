package azure

import "math"

// scoreFor collapses the provider's confidence breakdown into a single signed
// score: the winning polarity's confidence, negated for negative documents.
// Mixed documents take whichever polarity is stronger.
func scoreFor(sentiment string, cs confidenceScores) float64 {
	switch sentiment {
	case "positive":
		return cs.Positive
	case "negative":
		return -cs.Negative
	case "mixed":
		if cs.Positive >= cs.Negative {
			return cs.Positive
		}
		return -cs.Negative
	default:
		return 0
	}
}

// intensityFor buckets a signed score. The 0.6 and 0.3 cut points are product
// constants; do not tune them here.
func intensityFor(score float64) string {
	switch magnitude := math.Abs(score); {
	case magnitude > 0.6:
		return "high"
	case magnitude > 0.3:
		return "medium"
	default:
		return "low"
	}
}
