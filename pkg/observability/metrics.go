package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Business metrics
	ThoughtsAccepted prometheus.Counter
	ThoughtsRejected *prometheus.CounterVec
	EchoesStored     prometheus.Counter
	EchoesReturned   *prometheus.CounterVec
	Heartbeats       prometheus.Counter

	// Store metrics
	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec
}

// NewCollector creates a new metrics collector with the given namespace.
// Each collector owns its registry, so tests can create as many as they need.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ThoughtsAccepted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "thoughts_accepted_total",
				Help:      "Total number of thoughts released into the void",
			},
		),
		ThoughtsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "thoughts_rejected_total",
				Help:      "Total number of rejected thought submissions",
			},
			[]string{"reason"},
		),
		EchoesStored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "echoes_stored_total",
				Help:      "Total number of thoughts kept as echoes",
			},
		),
		EchoesReturned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "echoes_returned_total",
				Help:      "Total number of echoes handed back to submitters",
			},
			[]string{"source"},
		),
		Heartbeats: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "heartbeats_total",
				Help:      "Total number of presence heartbeats",
			},
		),
		StoreOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of key-value store operations",
			},
			[]string{"operation", "status"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Key-value store operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.ThoughtsAccepted,
		c.ThoughtsRejected,
		c.EchoesStored,
		c.EchoesReturned,
		c.Heartbeats,
		c.StoreOperations,
		c.StoreDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Handler serves the collector's metrics in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordHTTPRequest records an HTTP request metric
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordStoreOperation records a store operation metric
func (c *Collector) RecordStoreOperation(operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.StoreOperations.WithLabelValues(operation, status).Inc()
	c.StoreDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordThoughtAccepted increments the accepted thoughts counter
func (c *Collector) RecordThoughtAccepted() {
	c.ThoughtsAccepted.Inc()
}

// RecordThoughtRejected increments the rejected thoughts counter for reason
func (c *Collector) RecordThoughtRejected(reason string) {
	c.ThoughtsRejected.WithLabelValues(reason).Inc()
}

// RecordEchoStored increments the stored echoes counter
func (c *Collector) RecordEchoStored() {
	c.EchoesStored.Inc()
}

// RecordEchoReturned increments the returned echoes counter. source is
// "buffer" or "seed".
func (c *Collector) RecordEchoReturned(source string) {
	c.EchoesReturned.WithLabelValues(source).Inc()
}

// RecordHeartbeat increments the heartbeat counter
func (c *Collector) RecordHeartbeat() {
	c.Heartbeats.Inc()
}
