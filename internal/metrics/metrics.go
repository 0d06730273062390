// Package metrics exposes Prometheus counters for the review server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus collectors for servecut.
type Metrics struct {
	registry      *prometheus.Registry
	requestsTotal prometheus.Counter
	errorsTotal   prometheus.Counter
	clipsServed   prometheus.Counter
}

// New creates and registers the servecut metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "servecut_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "servecut_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	clipsServed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "servecut_clips_served_total",
		Help: "Total number of clip playback requests served",
	})

	registry.MustRegister(requestsTotal, errorsTotal, clipsServed)

	return &Metrics{
		registry:      registry,
		requestsTotal: requestsTotal,
		errorsTotal:   errorsTotal,
		clipsServed:   clipsServed,
	}
}

// IncRequests counts one received request.
func (m *Metrics) IncRequests() { m.requestsTotal.Inc() }

// IncErrors counts one error response.
func (m *Metrics) IncErrors() { m.errorsTotal.Inc() }

// IncClipsServed counts one clip playback.
func (m *Metrics) IncClipsServed() { m.clipsServed.Inc() }

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
