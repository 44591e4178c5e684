// Package metrics provides Prometheus metrics for the highscores tracker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the tracker.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Sweep Metrics - The core polling loop
	sweepsCompleted       prometheus.Counter
	sweepDuration         prometheus.Histogram
	sweepLastUnix         prometheus.Gauge
	combinationsProcessed prometheus.Counter
	combinationsFailed    prometheus.Counter

	// Fetch Metrics - Upstream API health
	fetchAttempts *prometheus.CounterVec
	fetchRetries  prometheus.Counter

	// Sink Metrics - Storage writes
	pointsWritten       prometheus.Counter
	writeErrors         prometheus.Counter
	staleBatchesSkipped prometheus.Counter

	// Attribute refresh Metrics
	attributeRefreshes     prometheus.Counter
	attributeRefreshErrors prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ogt",
		subsystem:        "tracker",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.sweepsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sweeps_completed_total",
		Help:      "Total number of completed sweeps over all configured combinations",
	})
	m.sweepDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sweep_duration_seconds",
		Help:      "Wall-clock duration of one full sweep",
		Buckets:   []float64{60, 300, 600, 900, 1200, 1800, 3600},
	})
	m.sweepLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sweep_last_completed_unix",
		Help:      "Unix timestamp of the last completed sweep",
	})
	m.combinationsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "combinations_processed_total",
		Help:      "Total (server, category, type) combinations processed",
	})
	m.combinationsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "combinations_failed_total",
		Help:      "Total combinations skipped due to fetch, decode or write failures",
	})

	m.fetchAttempts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_attempts_total",
		Help:      "Upstream API fetch attempts by outcome",
	}, []string{"outcome"})
	m.fetchRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_retries_total",
		Help:      "Fetch retries performed under the retry_until_success policy",
	})

	m.pointsWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "points_written_total",
		Help:      "Normalized points written to the time-series store",
	})
	m.writeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "write_errors_total",
		Help:      "Failed batch writes to the time-series store",
	})
	m.staleBatchesSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stale_batches_skipped_total",
		Help:      "Batches skipped because the API response timestamp was unchanged",
	})

	m.attributeRefreshes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "attribute_refreshes_total",
		Help:      "Per-server player/alliance attribute refreshes performed",
	})
	m.attributeRefreshErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "attribute_refresh_errors_total",
		Help:      "Failed attribute refreshes",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests served by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Current heap allocation",
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutine_count",
		Help:      "Current number of goroutines",
	})
}

// RecordSweep records a completed sweep and its duration in seconds.
func RecordSweep(durationSeconds float64) {
	globalManager.sweepsCompleted.Inc()
	globalManager.sweepDuration.Observe(durationSeconds)
}

// UpdateLastSweepUnix sets the completion timestamp of the last sweep.
func UpdateLastSweepUnix(unix int64) {
	globalManager.sweepLastUnix.Set(float64(unix))
}

// RecordCombinationProcessed increments the processed combinations counter.
func RecordCombinationProcessed() {
	globalManager.combinationsProcessed.Inc()
}

// RecordCombinationFailed increments the failed combinations counter.
func RecordCombinationFailed() {
	globalManager.combinationsFailed.Inc()
}

// RecordFetchAttempt records one fetch attempt by outcome
// ("success", "transport", "http_status", "decode").
func RecordFetchAttempt(outcome string) {
	globalManager.fetchAttempts.WithLabelValues(outcome).Inc()
}

// RecordFetchRetry increments the fetch retry counter.
func RecordFetchRetry() {
	globalManager.fetchRetries.Inc()
}

// AddPointsWritten adds to the written points counter.
func AddPointsWritten(n int) {
	globalManager.pointsWritten.Add(float64(n))
}

// RecordWriteError increments the write error counter.
func RecordWriteError() {
	globalManager.writeErrors.Inc()
}

// RecordStaleBatchSkipped increments the skipped stale batches counter.
func RecordStaleBatchSkipped() {
	globalManager.staleBatchesSkipped.Inc()
}

// RecordAttributeRefresh increments the attribute refresh counter.
func RecordAttributeRefresh() {
	globalManager.attributeRefreshes.Inc()
}

// RecordAttributeRefreshError increments the attribute refresh error counter.
func RecordAttributeRefreshError() {
	globalManager.attributeRefreshErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage sets the current heap allocation.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the current goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
