// Package metrics exposes Prometheus counters for HTTP traffic, upstream
// calls and the size of the loaded collections.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registered collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	upstream     *prometheus.CounterVec
	collection   *prometheus.GaugeVec
}

// New registers the pregled collectors, plus the Go and process collectors,
// on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the pregled collectors on reg and serves them
// from gatherer.
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pregled_http_requests_total",
		Help: "Counts HTTP requests by method and status.",
	}, []string{"method", "status"})

	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pregled_http_request_duration_seconds",
		Help:    "HTTP request latency by method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	upstream := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pregled_upstream_requests_total",
		Help: "Counts calls to the catalog and user services by outcome.",
	}, []string{"service", "outcome"})

	collection := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pregled_collection_items",
		Help: "Number of items in the last successfully loaded collection.",
	}, []string{"collection"})

	reg.MustRegister(httpRequests, httpDuration, upstream, collection)

	return &Metrics{
		gatherer:     gatherer,
		httpRequests: httpRequests,
		httpDuration: httpDuration,
		upstream:     upstream,
		collection:   collection,
	}
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveUpstream records one call to an upstream service.
func (m *Metrics) ObserveUpstream(service, outcome string) {
	if m == nil {
		return
	}
	m.upstream.WithLabelValues(service, outcome).Inc()
}

// SetCollectionSize records the size of a freshly loaded collection.
func (m *Metrics) SetCollectionSize(collection string, n int) {
	if m == nil {
		return
	}
	m.collection.WithLabelValues(collection).Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
