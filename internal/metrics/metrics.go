// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Provider call outcomes
const (
	OutcomeOK          = "ok"
	OutcomeFallback    = "fallback"
	OutcomeUnparsable  = "unparsable"
	OutcomeFailed      = "error"
	providerLabelValue = "anthropic"
)

var (
	registerMetricsOnce sync.Once

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codecritic_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codecritic_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codecritic_provider_calls_total",
			Help: "Total review provider calls",
		},
		[]string{"provider", "outcome"},
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codecritic_provider_latency_seconds",
			Help:    "Review provider call latency",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"provider"},
	)

	ProviderTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codecritic_provider_tokens_total",
			Help: "Total tokens reported by the review provider",
		},
		[]string{"provider", "model", "type"},
	)

	ReviewsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "codecritic_reviews_created_total",
			Help: "Total reviews persisted",
		},
	)
)

// InitMetrics registers the collectors with the default registry. Safe to call more than once.
func InitMetrics() {
	registerMetricsOnce.Do(func() {
		prometheus.MustRegister(HTTPRequests, HTTPLatency, ProviderCalls, ProviderLatency, ProviderTokens, ReviewsCreated)
	})
}

// Handler returns the /metrics handler
func Handler() http.Handler {
	InitMetrics()
	return promhttp.Handler()
}

// ObserveHTTPRequest records one served request
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveProviderCall records one call to the review provider
func ObserveProviderCall(outcome string, elapsed time.Duration) {
	ProviderCalls.WithLabelValues(providerLabelValue, outcome).Inc()
	ProviderLatency.WithLabelValues(providerLabelValue).Observe(elapsed.Seconds())
}

// ObserveProviderTokens records token usage reported by the provider
func ObserveProviderTokens(model string, input, output int) {
	ProviderTokens.WithLabelValues(providerLabelValue, model, "input").Add(float64(input))
	ProviderTokens.WithLabelValues(providerLabelValue, model, "output").Add(float64(output))
}
