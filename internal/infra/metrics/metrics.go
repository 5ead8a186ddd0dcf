// Package metrics exposes Prometheus instrumentation for the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth outcomes recorded by RecordAuth.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Recorder is what the delivery layer needs from the collector.
type Recorder interface {
	RecordRequest(method, route string, status int, latency time.Duration)
	RecordAuth(operation, outcome string)
}

// Collector holds the farmchain metrics on its own registry.
type Collector struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	authOutcomes    *prometheus.CounterVec
}

// NewCollector builds a registry with the process and Go collectors plus the
// farmchain ones.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return newCollector(reg)
}

func newCollector(reg *prometheus.Registry) *Collector {
	c := &Collector{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "farmchain_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "farmchain_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "farmchain_auth_attempts_total",
			Help: "Registration, login and gate decisions by outcome.",
		}, []string{"operation", "outcome"}),
	}

	reg.MustRegister(c.requests, c.requestDuration, c.authOutcomes)

	return c
}

func (c *Collector) RecordRequest(method, route string, status int, latency time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(latency.Seconds())
}

func (c *Collector) RecordAuth(operation, outcome string) {
	c.authOutcomes.WithLabelValues(operation, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Gatherer exposes the registry for tests and embedding.
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}
