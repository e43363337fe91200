package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// FetchTotal counts places fetches by filter and outcome (ok, error, timeout)
	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "where",
			Name:      "fetch_total",
			Help:      "Total number of places fetch attempts",
		},
		[]string{"filter", "outcome"},
	)

	// FetchDuration observes places fetch latency
	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "where",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of places fetches including normalization",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
		[]string{"filter"},
	)

	// CacheOperations counts snapshot cache loads and saves
	CacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "where",
			Name:      "cache_operations_total",
			Help:      "Total number of snapshot cache operations",
		},
		[]string{"op", "outcome"},
	)

	// StateTransitions counts entries into each reconciliation phase
	StateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "where",
			Name:      "state_transitions_total",
			Help:      "Total number of reconciliation phase entries",
		},
		[]string{"phase"},
	)

	// Failures counts classified failures
	Failures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "where",
			Name:      "failures_total",
			Help:      "Total number of failures by taxonomy kind",
		},
		[]string{"kind"},
	)

	// ResultsPublished is the size of the currently published result set
	ResultsPublished = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "where",
			Name:      "results_published",
			Help:      "Number of results in the currently published set",
		},
	)

	// DroppedRecords counts external records rejected by the normalizer
	DroppedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "where",
			Name:      "normalizer_dropped_total",
			Help:      "Total number of external place records dropped during normalization",
		},
		[]string{"reason"},
	)

	// WSClients is the number of connected websocket clients
	WSClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "where",
			Name:      "ws_clients",
			Help:      "Number of connected websocket clients",
		},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry
// This function is idempotent and can be called multiple times safely
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(FetchTotal)
		prometheus.DefaultRegisterer.Register(FetchDuration)
		prometheus.DefaultRegisterer.Register(CacheOperations)
		prometheus.DefaultRegisterer.Register(StateTransitions)
		prometheus.DefaultRegisterer.Register(Failures)
		prometheus.DefaultRegisterer.Register(ResultsPublished)
		prometheus.DefaultRegisterer.Register(DroppedRecords)
		prometheus.DefaultRegisterer.Register(WSClients)
	})
}
