// Package metrics provides Prometheus metrics for the quietweek service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Schedule and budget metrics
	eventsTracked   prometheus.Gauge
	eventsSynced    prometheus.Counter
	syncRuns        prometheus.Counter
	syncErrors      prometheus.Counter
	optimizerRuns   prometheus.Counter
	optimizerTimeMs prometheus.Histogram
	proposedMoves   prometheus.Counter
	appliedMoves    prometheus.Counter

	// Vital-sign ingestion metrics
	readingsProcessed prometheus.Counter
	readingsDropped   prometheus.Counter
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	workerCount       prometheus.Gauge
	activeSessions    prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseMs      prometheus.Histogram
}

// Global metrics manager and its registry.
var globalManager *Manager                    //nolint:gochecknoglobals // singleton metrics manager
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "quietweek",
		subsystem:        "schedule",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.eventsTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_tracked",
		Help:      "Current number of events held in the store",
	})

	m.eventsSynced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_synced_total",
		Help:      "Total number of events imported or refreshed by calendar sync",
	})

	m.syncRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_runs_total",
		Help:      "Total number of calendar sync runs",
	})

	m.syncErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_errors_total",
		Help:      "Total number of calendar sync failures",
	})

	m.optimizerRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "optimizer_runs_total",
		Help:      "Total number of week optimization runs",
	})

	m.optimizerTimeMs = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "optimizer_duration_milliseconds",
		Help:      "Week optimization run duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.proposedMoves = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "proposed_moves_total",
		Help:      "Total number of schedule changes proposed by the optimizer",
	})

	m.appliedMoves = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "applied_moves_total",
		Help:      "Total number of proposed schedule changes applied",
	})

	m.readingsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "readings_processed_total",
		Help:      "Total number of vital-sign readings processed by workers",
	})

	m.readingsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "readings_dropped_total",
		Help:      "Total number of readings rejected due to queue backpressure",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reading_queue_size",
		Help:      "Current number of readings waiting in the ingestion queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reading_queue_capacity",
		Help:      "Configured capacity of the ingestion queue",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of running session workers",
	})

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_sessions",
		Help:      "Number of vital-sign sessions currently open",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Current allocated heap memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutine_count",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseMs = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_milliseconds",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers recording on the global manager.

func UpdateEventsTracked(count int) { globalManager.eventsTracked.Set(float64(count)) }

func RecordEventsSynced(count int) { globalManager.eventsSynced.Add(float64(count)) }

func RecordSyncRun() { globalManager.syncRuns.Inc() }

func RecordSyncError() { globalManager.syncErrors.Inc() }

func RecordOptimizerRun(durationMs float64) {
	globalManager.optimizerRuns.Inc()
	globalManager.optimizerTimeMs.Observe(durationMs)
}

func RecordProposedMoves(count int) { globalManager.proposedMoves.Add(float64(count)) }

func RecordAppliedMoves(count int) { globalManager.appliedMoves.Add(float64(count)) }

func RecordReadingProcessed() { globalManager.readingsProcessed.Inc() }

func RecordReadingDropped() { globalManager.readingsDropped.Inc() }

func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

func UpdateActiveSessions(count int) { globalManager.activeSessions.Set(float64(count)) }

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseMs.Observe(pauseMs) }

// GetRegistry exposes the registry backing the global manager, for the
// /metrics handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
