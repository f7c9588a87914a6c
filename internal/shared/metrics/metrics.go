package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	analysisRequestsTotal atomic.Uint64
	featureCallsTotal     atomic.Uint64
	featureFailuresTotal  atomic.Uint64
	visitorEventsTotal    atomic.Uint64

	analysisDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000})
)

// IncAnalysisRequests counts one accepted analysis request.
func IncAnalysisRequests() {
	analysisRequestsTotal.Add(1)
}

// IncFeatureCalls counts one dispatched per-feature provider call.
func IncFeatureCalls() {
	featureCallsTotal.Add(1)
}

// IncFeatureFailures counts one provider call that ended in a failure outcome.
func IncFeatureFailures() {
	featureFailuresTotal.Add(1)
}

// IncVisitorEvents counts one recorded visitor event.
func IncVisitorEvents() {
	visitorEventsTotal.Add(1)
}

// ObserveAnalysisDurationMs records how long one analysis request took.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
}

// Snapshot exposes the current counter values for the admin overview.
type Snapshot struct {
	AnalysisRequests uint64 `json:"analysisRequests"`
	FeatureCalls     uint64 `json:"featureCalls"`
	FeatureFailures  uint64 `json:"featureFailures"`
	VisitorEvents    uint64 `json:"visitorEvents"`
}

// Counters returns the current counter values.
func Counters() Snapshot {
	return Snapshot{
		AnalysisRequests: analysisRequestsTotal.Load(),
		FeatureCalls:     featureCallsTotal.Load(),
		FeatureFailures:  featureFailuresTotal.Load(),
		VisitorEvents:    visitorEventsTotal.Load(),
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "analysis_requests_total", "Total analysis requests accepted", analysisRequestsTotal.Load())
	writeCounter(&buf, "feature_calls_total", "Total per-feature provider calls dispatched", featureCallsTotal.Load())
	writeCounter(&buf, "feature_failures_total", "Total per-feature provider calls that failed", featureFailuresTotal.Load())
	writeCounter(&buf, "visitor_events_total", "Total visitor events recorded", visitorEventsTotal.Load())
	writeHistogram(&buf, "analysis_duration_ms", "Analysis request duration in milliseconds", analysisDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records a value into the first bucket that covers it. Counts are
// kept per bucket; the renderer accumulates them into the cumulative form the
// exposition format requires.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
