// Package metrics defines the Prometheus collectors of the service.
package metrics

import (
	"sync" // One-time registration

	"github.com/prometheus/client_golang/prometheus"          // Prometheus collectors
	"github.com/prometheus/client_golang/prometheus/promhttp" // Exposition handler
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	// Caches
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by cache and result",
		},
		[]string{"cache", "result"}, // networth|symbol, hit|miss|error
	)
	CacheInvalidations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "networth_cache_invalidated_keys_total",
			Help: "Net worth cache entries removed by invalidation",
		},
	)

	// Price provider
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_provider_requests_total",
			Help: "Requests sent to the price provider",
		},
		[]string{"endpoint", "result"}, // coins_list|simple_price, ok|error
	)

	registerOnce sync.Once
)

// Handler serves the /metrics endpoint
var Handler = promhttp.Handler

// Init registers all collectors with the default registry; safe to call more than once
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal) // Panics on duplicate registration
		prometheus.MustRegister(RequestLatency)
		prometheus.MustRegister(CacheLookups)
		prometheus.MustRegister(CacheInvalidations)
		prometheus.MustRegister(ProviderRequests)
	})
}
