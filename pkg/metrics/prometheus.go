// Package metrics provides Prometheus metrics for the appointment optimizer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Slot search metrics
	slotQueries       *prometheus.CounterVec
	slotQueryDuration prometheus.Histogram

	// Rebalance metrics
	rebalances *prometheus.CounterVec

	// Snapshot cache metrics
	snapshotCacheHits   prometheus.Counter
	snapshotCacheMisses prometheus.Counter

	// Upstream reporting API metrics
	lookerRequests        *prometheus.CounterVec
	lookerRequestDuration *prometheus.HistogramVec
}

// Option configures a Manager.
type Option func(*Manager)

// WithPrometheusRegistry registers all collectors on the given registry
// instead of the default one.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		m.registry = registry
	}
}

// WithNamespace overrides the metric namespace.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		m.namespace = namespace
	}
}

// Global metrics manager instance.
var globalManager *Manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry()

func init() {
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "appointment",
		subsystem:        "optimizer",
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

	m.slotQueries = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "slot_queries_total",
			Help:      "Total number of slot searches by location and outcome",
		},
		[]string{"location", "outcome"},
	)

	m.slotQueryDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "slot_query_duration_seconds",
		Help:      "Slot search duration in seconds, snapshot fetch included",
		Buckets:   m.histogramBuckets,
	})

	m.rebalances = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "rebalances_total",
			Help:      "Total number of rebalance plans by location and outcome",
		},
		[]string{"location", "outcome"},
	)

	m.snapshotCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_cache_hits_total",
		Help:      "Total number of schedule snapshots served from cache",
	})

	m.snapshotCacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_cache_misses_total",
		Help:      "Total number of schedule snapshots fetched upstream",
	})

	m.lookerRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "looker_requests_total",
			Help:      "Total number of Looker API calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	m.lookerRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "looker_request_duration_seconds",
			Help:      "Looker API call duration in seconds by operation",
			Buckets:   m.histogramBuckets,
		},
		[]string{"operation"},
	)
}

// RecordSlotQuery counts one slot search.
func RecordSlotQuery(location, outcome string) {
	globalManager.slotQueries.WithLabelValues(location, outcome).Inc()
}

// RecordSlotQueryDuration records how long a slot search took.
func RecordSlotQueryDuration(seconds float64) {
	globalManager.slotQueryDuration.Observe(seconds)
}

// RecordRebalance counts one rebalance plan.
func RecordRebalance(location, outcome string) {
	globalManager.rebalances.WithLabelValues(location, outcome).Inc()
}

// RecordSnapshotCacheHit increments the snapshot cache hit counter.
func RecordSnapshotCacheHit() {
	globalManager.snapshotCacheHits.Inc()
}

// RecordSnapshotCacheMiss increments the snapshot cache miss counter.
func RecordSnapshotCacheMiss() {
	globalManager.snapshotCacheMisses.Inc()
}

// RecordLookerRequest counts one upstream API call.
func RecordLookerRequest(operation, outcome string) {
	globalManager.lookerRequests.WithLabelValues(operation, outcome).Inc()
}

// RecordLookerRequestDuration records how long an upstream API call took.
func RecordLookerRequestDuration(operation string, seconds float64) {
	globalManager.lookerRequestDuration.WithLabelValues(operation).Observe(seconds)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
