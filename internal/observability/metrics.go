package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "carbon_intensity"

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec   // labels: method, route, status
	HTTPRequestDuration *prometheus.HistogramVec // labels: method, route

	// Store writes by operation={create,update,remove,import} and
	// outcome={ok,duplicate,not_found,error}.
	RecordWrites *prometheus.CounterVec

	// Change events by sink={sse,kafka} and outcome={ok,error,dropped}.
	EventsPublished *prometheus.CounterVec
}

func newCollectors() *Metrics {
	return &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
		RecordWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_writes_total",
			Help:      "Intensity record writes by operation and outcome.",
		}, []string{"operation", "outcome"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Change events delivered to sinks by outcome.",
		}, []string{"sink", "outcome"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newCollectors()
	prometheus.MustRegister(
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.RecordWrites,
		m.EventsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as
// many as they like.
func NewMetricsForTesting() *Metrics {
	return newCollectors()
}

// RecordWrite counts one store write. Safe on a nil receiver.
func (m *Metrics) RecordWrite(operation, outcome string) {
	if m == nil {
		return
	}
	m.RecordWrites.WithLabelValues(operation, outcome).Inc()
}

// RecordWriteN counts n store writes with the same outcome. Safe on a nil receiver.
func (m *Metrics) RecordWriteN(operation, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RecordWrites.WithLabelValues(operation, outcome).Add(float64(n))
}

// EventPublished counts one delivery attempt to a sink. Safe on a nil receiver.
func (m *Metrics) EventPublished(sink, outcome string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(sink, outcome).Inc()
}
