// Package metrics exposes the Prometheus instrumentation for the HTTP
// surface and the checkout pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors used across the application.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	httpInFlight  prometheus.Gauge
	commitResults *prometheus.CounterVec
	repairs       *prometheus.CounterVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storeflow_http_requests_total",
			Help: "HTTP requests by method, route, and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storeflow_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storeflow_http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		}),
		commitResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storeflow_checkout_commits_total",
			Help: "Checkout commit attempts by terminal state.",
		}, []string{"state"}),
		repairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storeflow_reconciler_repairs_total",
			Help: "Reconciler repair attempts by result.",
		}, []string{"result"}),
	}

	registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.httpInFlight,
		m.commitResults,
		m.repairs,
	)
	return m
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one completed request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncrementInFlight marks a request as started.
func (m *Metrics) IncrementInFlight() { m.httpInFlight.Inc() }

// DecrementInFlight marks a request as finished.
func (m *Metrics) DecrementInFlight() { m.httpInFlight.Dec() }

// RecordCommitOutcome records the terminal state of a checkout commit.
func (m *Metrics) RecordCommitOutcome(state string) {
	m.commitResults.WithLabelValues(state).Inc()
}

// RecordRepair records one reconciler repair attempt.
func (m *Metrics) RecordRepair(ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	m.repairs.WithLabelValues(result).Inc()
}
