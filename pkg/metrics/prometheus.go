// Package metrics provides Prometheus metrics for the lineup service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the lineup service.
type Manager struct {
	namespace   string
	constLabels prometheus.Labels
	registry    prometheus.Registerer

	// Generation Metrics - one run of plan, enumerate, score and rank
	generations          prometheus.Counter
	generationLatency    prometheus.Histogram
	partitionsEnumerated prometheus.Counter
	plansPerRun          prometheus.Gauge
	lineupsReturned      prometheus.Gauge
	runHistorySize       prometheus.Gauge

	// Roster Metrics
	rosterSize   prometheus.Gauge
	synergyPairs prometheus.Gauge

	// Worker Metrics - branch processing
	branchesProcessed prometheus.Counter
	branchLatency     prometheus.Histogram
	workerActiveCount prometheus.Gauge

	// Diversity Metrics
	distanceComputations *prometheus.CounterVec

	// Store Metrics - roster and synergy persistence
	storeOperations *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
	storeLatency    *prometheus.HistogramVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Default metric name parts: lineup_engine_<name>.
const (
	defaultNamespace = "lineup"
	subsystem        = "engine"
)

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init replaces the global metrics with a manager built from opts on a fresh
// registry, which GetRegistry returns afterwards. Call it at startup before
// any metric is recorded.
func Init(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(registry)}, opts...)...)
	customRegistry = registry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: defaultNamespace,
		registry:  prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Generation Metrics
	m.generations = auto.NewCounter(m.counterOpts(
		"generations_total",
		"Total number of completed lineup generation runs",
	))
	m.generationLatency = auto.NewHistogram(m.histogramOpts(
		"generation_latency_milliseconds",
		"Histogram of generation run latency in milliseconds",
		[]float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 60000},
	))
	m.partitionsEnumerated = auto.NewCounter(m.counterOpts(
		"partitions_enumerated_total",
		"Total number of partitions scored across all runs",
	))
	m.plansPerRun = auto.NewGauge(m.gaugeOpts(
		"plans_per_run",
		"Number of team-size plans in the last run",
	))
	m.lineupsReturned = auto.NewGauge(m.gaugeOpts(
		"lineups_returned",
		"Number of lineups returned by the last run",
	))
	m.runHistorySize = auto.NewGauge(m.gaugeOpts(
		"run_history_size",
		"Number of generation runs kept for comparison",
	))

	// Roster Metrics
	m.rosterSize = auto.NewGauge(m.gaugeOpts(
		"roster_size",
		"Current number of registered players",
	))
	m.synergyPairs = auto.NewGauge(m.gaugeOpts(
		"synergy_pairs",
		"Current number of non-zero synergy pairs",
	))

	// Worker Metrics
	m.branchesProcessed = auto.NewCounter(m.counterOpts(
		"branches_processed_total",
		"Total number of enumeration branches processed by workers",
	))
	m.branchLatency = auto.NewHistogram(m.histogramOpts(
		"branch_latency_milliseconds",
		"Histogram of branch processing latency in milliseconds",
		prometheus.DefBuckets,
	))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts(
		"worker_active_count",
		"Number of workers currently enumerating",
	))

	// Diversity Metrics
	m.distanceComputations = auto.NewCounterVec(
		m.counterOpts("distance_computations_total", "Total number of lineup distance computations by algorithm"),
		[]string{"algorithm"},
	)

	// Store Metrics
	m.storeOperations = auto.NewCounterVec(
		m.counterOpts("store_operations_total", "Total number of store operations"),
		[]string{"store", "operation"},
	)
	m.storeErrors = auto.NewCounterVec(
		m.counterOpts("store_errors_total", "Total number of failed store operations"),
		[]string{"store", "operation"},
	)
	m.storeLatency = auto.NewHistogramVec(
		m.histogramOpts("store_latency_milliseconds", "Store operation latency in milliseconds", prometheus.DefBuckets),
		[]string{"store", "operation"},
	)

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", prometheus.DefBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	// Enhanced Error Metrics
	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that resulted in errors", prometheus.DefBuckets),
		[]string{"component", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts(
		"system_memory_usage_bytes",
		"System memory usage in bytes",
	))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts(
		"system_goroutine_count",
		"Number of goroutines",
	))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds",
		"GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	))
}

// Generation Metrics Functions.

// RecordGeneration increments the completed generations counter.
func RecordGeneration() {
	globalManager.generations.Inc()
}

// RecordGenerationLatency records generation latency in milliseconds.
func RecordGenerationLatency(latencyMs float64) {
	globalManager.generationLatency.Observe(latencyMs)
}

// AddPartitionsEnumerated adds n scored partitions.
func AddPartitionsEnumerated(n uint64) {
	globalManager.partitionsEnumerated.Add(float64(n))
}

// UpdatePlansPerRun sets the number of plans in the last run.
func UpdatePlansPerRun(count int) {
	globalManager.plansPerRun.Set(float64(count))
}

// UpdateLineupsReturned sets the number of lineups returned by the last run.
func UpdateLineupsReturned(count int) {
	globalManager.lineupsReturned.Set(float64(count))
}

// UpdateRunHistorySize sets the number of runs kept in history.
func UpdateRunHistorySize(count int) {
	globalManager.runHistorySize.Set(float64(count))
}

// UpdateRosterSize sets the number of registered players.
func UpdateRosterSize(count int) {
	globalManager.rosterSize.Set(float64(count))
}

// UpdateSynergyPairs sets the number of non-zero synergy pairs.
func UpdateSynergyPairs(count int) {
	globalManager.synergyPairs.Set(float64(count))
}

// Worker Metrics Functions.

// RecordBranchProcessed increments the processed branches counter.
func RecordBranchProcessed() {
	globalManager.branchesProcessed.Inc()
}

// RecordBranchLatency records branch processing latency in milliseconds.
func RecordBranchLatency(latencyMs float64) {
	globalManager.branchLatency.Observe(latencyMs)
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordDistance increments the distance counter for an algorithm.
func RecordDistance(algorithm string) {
	globalManager.distanceComputations.WithLabelValues(algorithm).Inc()
}

// Store Metrics Functions.

// RecordStoreOperation increments the operation counter for a store.
func RecordStoreOperation(store, operation string) {
	globalManager.storeOperations.WithLabelValues(store, operation).Inc()
}

// RecordStoreError increments the error counter for a store operation.
func RecordStoreError(store, operation string) {
	globalManager.storeErrors.WithLabelValues(store, operation).Inc()
}

// RecordStoreLatency records store operation latency in milliseconds.
func RecordStoreLatency(store, operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(store, operation).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Enhanced Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

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

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
