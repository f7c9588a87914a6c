package metrics

import (
	"bytes"
	"strings"
	"testing"
)

func TestHistogramSingleObservation(t *testing.T) {
	h := newHistogram([]float64{50, 100, 250})
	h.Observe(60)

	var buf bytes.Buffer
	writeHistogram(&buf, "x", "help", h.Snapshot())
	out := buf.String()

	for _, want := range []string{
		`x_bucket{le="50"} 0`,
		`x_bucket{le="100"} 1`,
		`x_bucket{le="250"} 1`,
		`x_bucket{le="+Inf"} 1`,
		`x_count 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHistogramCumulativeBuckets(t *testing.T) {
	h := newHistogram([]float64{50, 100, 250})
	h.Observe(10)
	h.Observe(60)
	h.Observe(60)
	h.Observe(999)

	var buf bytes.Buffer
	writeHistogram(&buf, "d", "help", h.Snapshot())
	out := buf.String()

	for _, want := range []string{
		`d_bucket{le="50"} 1`,
		`d_bucket{le="100"} 3`,
		`d_bucket{le="250"} 3`,
		`d_bucket{le="+Inf"} 4`,
		`d_sum 1129`,
		`d_count 4`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
