// Package metrics exposes Prometheus collectors for caches, circuit breakers,
// source searches and HTTP traffic.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/davidbz/searchmesh/internal/resilience"
)

const namespace = "searchmesh"

var (
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by result",
		},
		[]string{"cache", "result"}, // hit / miss / semantic_hit / semantic_miss
	)

	CacheEvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_evictions_total",
			Help:      "Entries removed from a cache",
		},
		[]string{"cache", "reason"}, // expired / capacity
	)

	CacheEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Live entries per cache",
		},
		[]string{"cache"},
	)

	CacheMemoryBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_memory_bytes",
			Help:      "Estimated memory held per cache",
		},
		[]string{"cache"},
	)

	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"breaker"},
	)

	BreakerTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_transitions_total",
			Help:      "Circuit breaker state transitions",
		},
		[]string{"breaker", "from", "to"},
	)

	SourceSearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_searches_total",
			Help:      "Per-source searches by outcome status",
		},
		[]string{"source", "status"},
	)

	SourceSearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_search_duration_seconds",
			Help:      "Per-source search duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)
)

var registerOnce sync.Once

// Register registers every collector with the default registry. Safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			CacheLookupsTotal,
			CacheEvictionsTotal,
			CacheEntries,
			CacheMemoryBytes,
			BreakerState,
			BreakerTransitionsTotal,
			SourceSearchesTotal,
			SourceSearchDuration,
			httpRequestDuration,
			httpRequestsTotal,
		)
	})
}

// CacheRecorder feeds cache events into the cache collectors.
type CacheRecorder struct{}

// NewCacheRecorder creates a cache metrics sink (DI constructor).
func NewCacheRecorder() *CacheRecorder {
	return &CacheRecorder{}
}

// Lookup counts a cache lookup.
func (CacheRecorder) Lookup(cache, result string) {
	CacheLookupsTotal.WithLabelValues(cache, result).Inc()
}

// Evicted counts removed entries.
func (CacheRecorder) Evicted(cache, reason string, n int) {
	CacheEvictionsTotal.WithLabelValues(cache, reason).Add(float64(n))
}

// Usage sets the size gauges.
func (CacheRecorder) Usage(cache string, entries int, bytes int64) {
	CacheEntries.WithLabelValues(cache).Set(float64(entries))
	CacheMemoryBytes.WithLabelValues(cache).Set(float64(bytes))
}

// ObserveBreaker records a breaker transition.
func ObserveBreaker(name string, from, to resilience.State) {
	BreakerState.WithLabelValues(name).Set(float64(to))
	BreakerTransitionsTotal.WithLabelValues(name, from.String(), to.String()).Inc()
}

// ObserveSourceSearch records the outcome of one source search.
func ObserveSourceSearch(source, status string, elapsed time.Duration) {
	SourceSearchesTotal.WithLabelValues(source, status).Inc()
	SourceSearchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}
