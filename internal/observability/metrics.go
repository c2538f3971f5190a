package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce     sync.Once
	aiRequestsTotal  *prometheus.CounterVec
	aiLatencySeconds *prometheus.HistogramVec
	aiErrorsTotal    *prometheus.CounterVec
	aiAttemptsTotal  *prometheus.CounterVec
	aiAttemptSeconds *prometheus.HistogramVec
	aiResultsTotal   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used for AI observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		aiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI API requests served.",
		}, []string{"method", "route", "status"})

		aiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ai_latency_seconds",
			Help:    "Latency distribution for AI API requests.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"method", "route"})

		aiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_errors_total",
			Help: "Total number of error responses returned by AI endpoints.",
		}, []string{"method", "route", "status"})

		aiAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_provider_attempts_total",
			Help: "Provider attempts made by the dispatcher, by outcome.",
		}, []string{"operation", "provider", "outcome"})

		aiAttemptSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ai_provider_attempt_seconds",
			Help:    "Elapsed time of provider attempts, including validation.",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
		}, []string{"operation", "provider"})

		aiResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_results_total",
			Help: "Orchestrated results by source (cache, provider, fallback).",
		}, []string{"operation", "source"})

		prometheus.MustRegister(aiRequestsTotal, aiLatencySeconds, aiErrorsTotal, aiAttemptsTotal, aiAttemptSeconds, aiResultsTotal)
	})
}

// AIRequests exposes the counter for AI requests.
func AIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return aiRequestsTotal
}

// AILatency exposes the latency histogram for AI requests.
func AILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return aiLatencySeconds
}

// AIErrors exposes the counter for AI error responses.
func AIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return aiErrorsTotal
}

// ProviderAttempts exposes the per-attempt outcome counter.
func ProviderAttempts() *prometheus.CounterVec {
	RegisterMetrics()
	return aiAttemptsTotal
}

// ProviderAttemptLatency exposes the per-attempt latency histogram.
func ProviderAttemptLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return aiAttemptSeconds
}

// Results exposes the result provenance counter.
func Results() *prometheus.CounterVec {
	RegisterMetrics()
	return aiResultsTotal
}
