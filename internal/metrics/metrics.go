// Package metrics holds the Prometheus collectors for the HTTP pipeline.
// Each Metrics owns its registry so servers (and tests) do not share state.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "storefront"

// UnmatchedRoute labels requests that matched no registered route.
const UnmatchedRoute = "unmatched"

// Metrics records request, error and authentication outcomes.
type Metrics struct {
	registry *prometheus.Registry

	inFlight     prometheus.Gauge
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	errors       *prometheus.CounterVec
	authFailures *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Error responses by error code.",
		}, []string{"code"}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "auth",
			Name:      "failures_total",
			Help:      "Rejected bearer credentials by reason.",
		}, []string{"reason"}),
	}

	m.registry.MustRegister(
		m.inFlight,
		m.requests,
		m.duration,
		m.errors,
		m.authFailures,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the registry backing this instance.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the registered metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartRequest marks a request in flight and returns the func that ends it.
func (m *Metrics) StartRequest() func() {
	m.inFlight.Inc()
	return m.inFlight.Dec
}

// ObserveRequest records a completed request. route is the matched path
// template, never the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = UnmatchedRoute
	}
	method = strings.ToUpper(method)
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveError counts an error response by its wire code.
func (m *Metrics) ObserveError(code string) {
	m.errors.WithLabelValues(code).Inc()
}

// ObserveAuthFailure counts a rejected credential.
func (m *Metrics) ObserveAuthFailure(reason string) {
	m.authFailures.WithLabelValues(reason).Inc()
}
