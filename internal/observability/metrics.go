package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases, SLO breaches.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// Apollo API call rate by status label. Watch for: error vs success ratio.
	ApolloAPICallsTotal *prometheus.CounterVec

	// Apollo API latency per call. Upstream timeout is 30s; p99 near it means timeout risk.
	ApolloAPIDuration *prometheus.HistogramVec

	// Apollo errors by category (see client.CategorizeError). Watch for: auth failures, quota exhaustion.
	ApolloAPIErrorsTotal *prometheus.CounterVec

	// Enrichment outcomes by result code (success, not_found, rate_limit, auth_error, api_error).
	EnrichmentsTotal *prometheus.CounterVec

	// People per bulk request (1..10). Watch for: callers always sending 1 (should use /enrich).
	BulkEnrichmentSize prometheus.Histogram
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	ApolloAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apolloApiCallsTotal",
			Help: "Total number of Apollo API calls",
		},
		[]string{"status"},
	)
	ApolloAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "apolloApiDurationSeconds",
			Help:    "Apollo API latency in seconds (per call)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"status"},
	)
	ApolloAPIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apolloApiErrorsTotal",
			Help: "Apollo API errors by category",
		},
		[]string{"category"},
	)
	EnrichmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichmentsTotal",
			Help: "Enrichment results by outcome code",
		},
		[]string{"outcome"},
	)
	BulkEnrichmentSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bulkEnrichmentSize",
			Help:    "Number of people per bulk enrichment request",
			Buckets: []float64{1, 2, 3, 5, 7, 10},
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		ApolloAPICallsTotal, ApolloAPIDuration, ApolloAPIErrorsTotal,
		EnrichmentsTotal, BulkEnrichmentSize,
	)
}

// RecordEnrichmentOutcome records the result code of one enrichment.
func RecordEnrichmentOutcome(outcome string) {
	EnrichmentsTotal.WithLabelValues(outcome).Inc()
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
