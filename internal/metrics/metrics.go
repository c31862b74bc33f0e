// Package metrics provides Prometheus metrics for the search engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Search metrics
	SearchesTotal  *prometheus.CounterVec
	SearchDuration *prometheus.HistogramVec

	// Cache metrics
	CacheRequestsTotal      *prometheus.CounterVec
	CacheInvalidationsTotal prometheus.Counter
}

// New creates the collectors and registers them with reg.
// Tests pass a fresh prometheus.NewRegistry() so instances stay isolated.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagboard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tagboard_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	m.SearchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagboard_searches_total",
			Help: "Total number of search operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	m.SearchDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tagboard_search_duration_seconds",
			Help:    "Duration of search operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	m.CacheRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagboard_cache_requests_total",
			Help: "Total number of cache lookups by tier and result",
		},
		[]string{"tier", "result"},
	)

	m.CacheInvalidationsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "tagboard_cache_invalidations_total",
			Help: "Total number of full cache invalidations",
		},
	)

	return m
}

// CacheHit records a cache hit for tier.
func (m *Metrics) CacheHit(tier string) {
	if m == nil {
		return
	}
	m.CacheRequestsTotal.WithLabelValues(tier, "hit").Inc()
}

// CacheMiss records a cache miss for tier.
func (m *Metrics) CacheMiss(tier string) {
	if m == nil {
		return
	}
	m.CacheRequestsTotal.WithLabelValues(tier, "miss").Inc()
}

// CacheInvalidated records a full invalidation of every tier.
func (m *Metrics) CacheInvalidated() {
	if m == nil {
		return
	}
	m.CacheInvalidationsTotal.Inc()
}

// RecordSearch records one search operation with its outcome.
func (m *Metrics) RecordSearch(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(operation, outcome).Inc()
	m.SearchDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request. route is the matched route pattern, not the raw path.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
