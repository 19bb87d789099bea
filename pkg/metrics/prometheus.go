// Package metrics provides Prometheus metrics for the chapterboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeError      = "error"
	OutcomeSuperseded = "superseded"
	OutcomeAborted    = "aborted"
)

// Manager manages all Prometheus metrics for the chapterboard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Load coordination
	fetches             *prometheus.CounterVec
	fetchLatency        *prometheus.HistogramVec
	loadedRows          *prometheus.GaugeVec
	refreshes           *prometheus.CounterVec
	duplicatesCollapsed prometheus.Counter

	// Derived views
	viewLatency *prometheus.HistogramVec
	exports     prometheus.Counter

	// Dashboard cache
	cacheLookups *prometheus.CounterVec
	cacheErrors  *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorsByComponent *prometheus.CounterVec

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
		namespace:        "chapterboard",
		subsystem:        "analytics",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.fetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fetches_total",
		Help:        "Record fetches by resource and outcome (ok, error, superseded, aborted)",
		ConstLabels: labels,
	}, []string{"resource", "outcome"})

	m.fetchLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fetch_latency_milliseconds",
		Help:        "Histogram of record fetch latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"resource"})

	m.loadedRows = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "loaded_rows",
		Help:        "Rows currently held by the load coordinator",
		ConstLabels: labels,
	}, []string{"resource"})

	m.refreshes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "refreshes_total",
		Help:        "Full reloads by trigger (manual, scheduled)",
		ConstLabels: labels,
	}, []string{"trigger"})

	m.duplicatesCollapsed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "attendance_duplicates_total",
		Help:        "Duplicate attendance rows collapsed before aggregation (indicates data quality)",
		ConstLabels: labels,
	})

	m.viewLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "view_latency_milliseconds",
		Help:        "Histogram of derived view computation latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"view"})

	m.exports = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "exports_total",
		Help:        "Total number of XLSX reports written",
		ConstLabels: labels,
	})

	m.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_lookups_total",
		Help:        "Dashboard cache lookups by result (hit, miss)",
		ConstLabels: labels,
	}, []string{"result"})

	m.cacheErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_errors_total",
		Help:        "Dashboard cache failures by operation",
		ConstLabels: labels,
	}, []string{"op"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_seconds",
		Help:        "HTTP request duration in seconds",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_component_total",
		Help:        "Total number of errors by component",
		ConstLabels: labels,
	}, []string{"component", "error_type"})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})
}

// RecordFetch counts a finished fetch for resource with the given outcome.
func RecordFetch(resource, outcome string) {
	globalManager.fetches.WithLabelValues(resource, outcome).Inc()
}

// RecordFetchLatency records fetch latency in milliseconds.
func RecordFetchLatency(resource string, latencyMs float64) {
	globalManager.fetchLatency.WithLabelValues(resource).Observe(latencyMs)
}

// UpdateLoadedRows sets the number of rows held for resource.
func UpdateLoadedRows(resource string, count int) {
	globalManager.loadedRows.WithLabelValues(resource).Set(float64(count))
}

// RecordRefresh counts a full reload.
func RecordRefresh(trigger string) {
	globalManager.refreshes.WithLabelValues(trigger).Inc()
}

// RecordDuplicatesCollapsed adds n collapsed attendance rows.
func RecordDuplicatesCollapsed(n int) {
	if n > 0 {
		globalManager.duplicatesCollapsed.Add(float64(n))
	}
}

// RecordViewLatency records derived view computation latency in milliseconds.
func RecordViewLatency(view string, latencyMs float64) {
	globalManager.viewLatency.WithLabelValues(view).Observe(latencyMs)
}

// RecordExport increments the exports counter.
func RecordExport() {
	globalManager.exports.Inc()
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheLookups.WithLabelValues("hit").Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheLookups.WithLabelValues("miss").Inc()
}

// RecordCacheError counts a failed cache operation.
func RecordCacheError(op string) {
	globalManager.cacheErrors.WithLabelValues(op).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
