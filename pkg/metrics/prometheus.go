// Package metrics provides Prometheus metrics for the mailboard dashboard service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the dashboard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ingestion
	datasetsIngested  prometheus.Counter
	rowsIngested      prometheus.Counter
	rowsDropped       *prometheus.CounterVec
	loadErrors        prometheus.Counter
	ingestionLatency  prometheus.Histogram
	ingestionChunks   prometheus.Counter
	uploadBytes       prometheus.Histogram
	cachedDatasets    prometheus.Gauge
	cacheLookups      *prometheus.CounterVec
	activeSessions    prometheus.Gauge
	filterLatency     prometheus.Histogram
	filteredRows      prometheus.Histogram
	emptyResults      prometheus.Counter
	insightRuns       *prometheus.CounterVec
	insightLatency    *prometheus.HistogramVec
	chartsRendered    *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "mailboard",
		subsystem:        "dashboard",
		histogramBuckets: prometheus.DefBuckets,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels, Buckets: buckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	latencyMs := []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

	m.datasetsIngested = m.counter("datasets_ingested_total", "Total number of uploaded files normalized successfully")
	m.rowsIngested = m.counter("rows_ingested_total", "Total number of normalized event rows produced by ingestion")
	m.rowsDropped = m.counterVec("rows_dropped_total", "Rows dropped during ingestion by reason", "reason")
	m.loadErrors = m.counter("load_errors_total", "Total number of uploads rejected with a load error")
	m.ingestionLatency = m.histogram("ingestion_latency_milliseconds", "Time spent parsing and normalizing an upload", latencyMs)
	m.ingestionChunks = m.counter("ingestion_chunks_total", "Number of bounded row chunks normalized")
	m.uploadBytes = m.histogram("upload_size_bytes", "Size of accepted uploads in bytes",
		prometheus.ExponentialBuckets(1024, 4, 11))
	m.cachedDatasets = m.gauge("cached_datasets", "Number of normalized tables held in the dataset cache")
	m.cacheLookups = m.counterVec("cache_lookups_total", "Dataset cache lookups by outcome", "outcome")
	m.activeSessions = m.gauge("active_sessions", "Number of display sessions known to the memory session store")

	m.filterLatency = m.histogram("filter_latency_milliseconds", "Time spent applying a filter selection", latencyMs)
	m.filteredRows = m.histogram("filtered_rows", "Row count of working subsets produced by the filter engine",
		prometheus.ExponentialBuckets(1, 10, 8))
	m.emptyResults = m.counter("empty_results_total", "Filter or grouping results that contained no rows")

	m.insightRuns = m.counterVec("insight_runs_total", "Insight provider invocations by provider and outcome", "provider", "outcome")
	m.insightLatency = m.histogramVec("insight_latency_milliseconds", "Insight fit+predict latency by provider", latencyMs, "provider")
	m.chartsRendered = m.counterVec("charts_rendered_total", "Charts rendered by kind", "kind")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests", "endpoint", "method", "status_code")
	m.httpDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint, method and type", "endpoint", "method", "error_type")
	m.errorsByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Ingestion.

// RecordDatasetIngested records a successful normalization of an upload.
func RecordDatasetIngested(rows int, sizeBytes int64, latencyMs float64) {
	globalManager.datasetsIngested.Inc()
	globalManager.rowsIngested.Add(float64(rows))
	globalManager.uploadBytes.Observe(float64(sizeBytes))
	globalManager.ingestionLatency.Observe(latencyMs)
}

// RecordRowsDropped counts rows dropped during ingestion, e.g. "blank" or "bounced".
func RecordRowsDropped(reason string, n int) {
	if n <= 0 {
		return
	}
	globalManager.rowsDropped.WithLabelValues(reason).Add(float64(n))
}

// RecordIngestionChunk counts one normalized chunk.
func RecordIngestionChunk() {
	globalManager.ingestionChunks.Inc()
}

// RecordLoadError increments the load error counter.
func RecordLoadError() {
	globalManager.loadErrors.Inc()
}

// RecordCacheLookup records a dataset cache lookup; outcome is "hit" or "miss".
func RecordCacheLookup(outcome string) {
	globalManager.cacheLookups.WithLabelValues(outcome).Inc()
}

// UpdateCachedDatasets sets the number of cached tables.
func UpdateCachedDatasets(n int) {
	globalManager.cachedDatasets.Set(float64(n))
}

// UpdateActiveSessions sets the number of known sessions.
func UpdateActiveSessions(n int) {
	globalManager.activeSessions.Set(float64(n))
}

// Filtering and aggregation.

// RecordFilter records one filter application.
func RecordFilter(rows int, latencyMs float64) {
	globalManager.filterLatency.Observe(latencyMs)
	globalManager.filteredRows.Observe(float64(rows))
	if rows == 0 {
		globalManager.emptyResults.Inc()
	}
}

// RecordEmptyResult counts an empty grouping result.
func RecordEmptyResult() {
	globalManager.emptyResults.Inc()
}

// Insights and charts.

// RecordInsightRun records a provider invocation; outcome is "ok", "insufficient_data" or "error".
func RecordInsightRun(provider, outcome string, latencyMs float64) {
	globalManager.insightRuns.WithLabelValues(provider, outcome).Inc()
	globalManager.insightLatency.WithLabelValues(provider).Observe(latencyMs)
}

// RecordChartRendered counts a rendered chart of the given kind.
func RecordChartRendered(kind string) {
	globalManager.chartsRendered.WithLabelValues(kind).Inc()
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// RefreshInterval is how often polled gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration {
	return m.refreshInterval
}

// RefreshInterval reports the global manager's gauge refresh period.
func RefreshInterval() time.Duration {
	return globalManager.RefreshInterval()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
