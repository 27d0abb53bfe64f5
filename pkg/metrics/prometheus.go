// Package metrics provides Prometheus metrics for the fairway scoring engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Engine
	computations       *prometheus.CounterVec
	computationErrors  *prometheus.CounterVec
	computationLatency *prometheus.HistogramVec
	matchupsScored     *prometheus.CounterVec
	baselineFallbacks  *prometheus.CounterVec
	bulkLatency        *prometheus.HistogramVec

	// Cache
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	cacheErrors  *prometheus.CounterVec
	breakerState *prometheus.GaugeVec

	// Recompute pipeline
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	jobsEnqueued       prometheus.Counter
	jobsCoalesced      prometheus.Counter
	jobsRejected       prometheus.Counter
	jobsProcessed      prometheus.Counter
	jobErrors          prometheus.Counter
	jobLatency         prometheus.Histogram
	workerCount        prometheus.Gauge
	pendingRecomputes  prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager; collectors register on the
// configured registry (prometheus.DefaultRegisterer unless overridden).
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fairway",
		subsystem:        "engine",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.computations = m.counterVec("computations_total",
		"Average and handicap computations by kind and method", "kind", "method")
	m.computationErrors = m.counterVec("computation_errors_total",
		"Failed computations by kind and error class", "kind", "reason")
	m.computationLatency = m.histogramVec("computation_latency_milliseconds",
		"Per-player computation latency in milliseconds", "kind")
	m.matchupsScored = m.counterVec("matchups_scored_total",
		"Matchups scored by outcome class", "outcome")
	m.baselineFallbacks = m.counterVec("baseline_fallbacks_total",
		"Session baselines resolved below the session tier", "kind", "tier")
	m.bulkLatency = m.histogramVec("bulk_latency_milliseconds",
		"Latency of season-wide bulk operations in milliseconds", "operation")

	m.cacheHits = m.counterVec("cache_hits_total", "Cache hits by backend", "backend")
	m.cacheMisses = m.counterVec("cache_misses_total", "Cache misses by backend", "backend")
	m.cacheErrors = m.counterVec("cache_errors_total", "Cache backend errors by operation", "backend", "op")
	m.breakerState = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "breaker_state",
		Help:        "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		ConstLabels: m.constLabels,
	}, []string{"name"})

	m.queueSize = m.gauge("recompute_queue_size", "Jobs waiting in the recompute queue")
	m.queueCapacity = m.gauge("recompute_queue_capacity", "Capacity of the recompute queue")
	m.jobsEnqueued = m.counter("recompute_jobs_enqueued_total", "Recompute jobs accepted by the queue")
	m.jobsCoalesced = m.counter("recompute_jobs_coalesced_total", "Recompute requests folded into a pending job")
	m.jobsRejected = m.counter("recompute_jobs_rejected_total", "Recompute jobs rejected by a full or closed queue")
	m.jobsProcessed = m.counter("recompute_jobs_processed_total", "Recompute jobs completed by workers")
	m.jobErrors = m.counter("recompute_job_errors_total", "Recompute jobs that failed")
	m.jobLatency = promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "recompute_job_latency_milliseconds",
		Help:        "Recompute job latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})
	m.workerCount = m.gauge("worker_count", "Running recompute workers")
	m.pendingRecomputes = m.gauge("pending_recomputes", "Distinct (player, season) recomputes pending")

	m.httpRequests = m.counterVec("http_requests_total",
		"HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.errorsByEndpoint = m.counterVec("http_errors_total",
		"HTTP error responses by endpoint and class", "endpoint", "method", "error_type")
}

// Engine metrics.

// RecordComputation counts one average or handicap computation.
func RecordComputation(kind, method string) {
	globalManager.computations.WithLabelValues(kind, method).Inc()
}

// RecordComputationError counts a failed computation.
func RecordComputationError(kind, reason string) {
	globalManager.computationErrors.WithLabelValues(kind, reason).Inc()
}

// RecordComputationLatency observes a per-player computation latency.
func RecordComputationLatency(kind string, latencyMs float64) {
	globalManager.computationLatency.WithLabelValues(kind).Observe(latencyMs)
}

// RecordMatchupScored counts a scored matchup ("played", "absence", "empty").
func RecordMatchupScored(outcome string) {
	globalManager.matchupsScored.WithLabelValues(outcome).Inc()
}

// RecordBaselineFallback counts a baseline resolved through the season or global tier.
func RecordBaselineFallback(kind, tier string) {
	globalManager.baselineFallbacks.WithLabelValues(kind, tier).Inc()
}

// RecordBulkLatency observes a season-wide operation.
func RecordBulkLatency(operation string, latencyMs float64) {
	globalManager.bulkLatency.WithLabelValues(operation).Observe(latencyMs)
}

// Cache metrics.

func RecordCacheHit(backend string)  { globalManager.cacheHits.WithLabelValues(backend).Inc() }
func RecordCacheMiss(backend string) { globalManager.cacheMisses.WithLabelValues(backend).Inc() }

// RecordCacheError counts a backend failure that was degraded to a miss or no-op.
func RecordCacheError(backend, op string) {
	globalManager.cacheErrors.WithLabelValues(backend, op).Inc()
}

// UpdateBreakerState publishes a breaker state as 0/1/2.
func UpdateBreakerState(name string, state int) {
	globalManager.breakerState.WithLabelValues(name).Set(float64(state))
}

// Recompute pipeline metrics.

func UpdateQueueSize(size int)         { globalManager.queueSize.Set(float64(size)) }
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }
func RecordJobEnqueued()               { globalManager.jobsEnqueued.Inc() }
func RecordJobCoalesced()              { globalManager.jobsCoalesced.Inc() }
func RecordJobRejected()               { globalManager.jobsRejected.Inc() }
func RecordJobProcessed()              { globalManager.jobsProcessed.Inc() }
func RecordJobError()                  { globalManager.jobErrors.Inc() }
func UpdateWorkerCount(count int)      { globalManager.workerCount.Set(float64(count)) }
func UpdatePendingRecomputes(n int)    { globalManager.pendingRecomputes.Set(float64(n)) }

// RecordJobLatency observes how long a worker spent on one job.
func RecordJobLatency(latencyMs float64) {
	globalManager.jobLatency.Observe(latencyMs)
}

// HTTP metrics.

// RecordHTTPRequest counts a request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes request latency in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint counts an error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
