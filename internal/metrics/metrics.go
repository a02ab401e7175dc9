// Package metrics defines the Prometheus counters exported at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router outcomes.
const (
	OutcomeMatched     = "matched"
	OutcomePassThrough = "pass_through"
	OutcomeError       = "error"
)

// Listing results.
const (
	ResultOK              = "ok"
	ResultUnknownCategory = "unknown_category"
	ResultError           = "error"
	ResultHit             = "hit"
	ResultMiss            = "miss"
)

// Metrics groups the application counters. The zero value is not usable;
// build one with New. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	routerRequests  *prometheus.CounterVec
	listingRequests *prometheus.CounterVec
	fragmentCache   *prometheus.CounterVec
}

// New creates a registry with the Go and process collectors plus the
// application counters.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		routerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "legal_updates_router_requests_total",
			Help: "Requests seen by the permalink router, by outcome.",
		}, []string{"outcome"}),
		listingRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "legal_updates_listing_requests_total",
			Help: "Category listing requests, by result.",
		}, []string{"result"}),
		fragmentCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "legal_updates_fragment_cache_total",
			Help: "Listing fragment cache lookups, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.routerRequests, m.listingRequests, m.fragmentCache)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RouterRequest counts one permalink router decision.
func (m *Metrics) RouterRequest(outcome string) {
	if m != nil {
		m.routerRequests.WithLabelValues(outcome).Inc()
	}
}

// ListingRequest counts one listing request.
func (m *Metrics) ListingRequest(result string) {
	if m != nil {
		m.listingRequests.WithLabelValues(result).Inc()
	}
}

// FragmentCache counts one fragment cache lookup.
func (m *Metrics) FragmentCache(hit bool) {
	if m == nil {
		return
	}
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	m.fragmentCache.WithLabelValues(result).Inc()
}
