// Package metrics provides Prometheus metrics for the organizer service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "organizer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "organizer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Scan metrics
	scansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "organizer_scans_total",
			Help: "Total number of folder scans",
		},
		[]string{"result"},
	)

	scanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "organizer_scan_duration_seconds",
			Help:    "Time to scan a folder and summarize its sub-folders",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Execution metrics
	itemsMovedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "organizer_items_moved_total",
			Help: "Total number of items moved into categories",
		},
		[]string{"kind"},
	)

	itemsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "organizer_items_skipped_total",
			Help: "Total number of plan items skipped",
		},
		[]string{"reason"},
	)

	bytesMovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "organizer_bytes_moved_total",
			Help: "Total bytes moved into categories",
		},
	)

	// LLM metrics
	llmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "organizer_llm_requests_total",
			Help: "Total number of categorization requests",
		},
		[]string{"provider", "result"},
	)

	llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "organizer_llm_request_duration_seconds",
			Help:    "Categorization request duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 120},
		},
		[]string{"provider"},
	)

	rateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "organizer_rate_limit_hits_total",
			Help: "Total number of requests rejected by rate limiting",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordScan records a folder scan.
func RecordScan(duration time.Duration, success bool) {
	scansTotal.WithLabelValues(result(success)).Inc()
	scanDuration.Observe(duration.Seconds())
}

func RecordItemMoved(kind string) {
	itemsMovedTotal.WithLabelValues(kind).Inc()
}

func RecordItemSkipped(reason string) {
	itemsSkippedTotal.WithLabelValues(reason).Inc()
}

func RecordBytesMoved(bytes int64) {
	if bytes > 0 {
		bytesMovedTotal.Add(float64(bytes))
	}
}

// RecordLLMRequest records one categorization call.
func RecordLLMRequest(provider string, duration time.Duration, success bool) {
	llmRequestsTotal.WithLabelValues(provider, result(success)).Inc()
	llmRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordRateLimitHit records a rate limit rejection.
func RecordRateLimitHit() {
	rateLimitHits.Inc()
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
