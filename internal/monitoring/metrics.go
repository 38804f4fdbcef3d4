// Package monitoring exposes prometheus metrics for the audit service.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuditsTotal counts audits by outcome: success, cached, aborted,
	// busy, failed.
	AuditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audits_total",
			Help: "Total number of page audits by outcome.",
		},
		[]string{"status"},
	)

	AuditDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "audit_duration_seconds",
			Help:    "Duration of full page audits.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_cache_hits_total",
			Help: "Analysis cache hits.",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_cache_misses_total",
			Help: "Analysis cache misses.",
		},
	)

	AnalysesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "analyses_in_flight",
			Help: "Number of analyses currently running.",
		},
	)

	IncrementalAnalyses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "incremental_analyses_total",
			Help: "Incremental re-analyses triggered by document changes.",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
