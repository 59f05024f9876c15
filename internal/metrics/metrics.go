package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns the service's Prometheus collectors behind a private
// registry, so tests can build isolated instances.
type Registry struct {
	reg *prometheus.Registry

	Requests       prometheus.Counter
	RequestLatency prometheus.Histogram
	ItemsListed    prometheus.Counter
	WarnedItems    prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	requests := prometheus.NewCounter(prometheus.CounterOpts{Name: "racketops_requests_total"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "racketops_request_latency_seconds",
		Buckets: prometheus.DefBuckets,
	})
	listed := prometheus.NewCounter(prometheus.CounterOpts{Name: "racketops_items_listed_total"})
	warned := prometheus.NewCounter(prometheus.CounterOpts{Name: "racketops_warned_items_total"})

	r.MustRegister(requests, latency, listed, warned)

	return &Registry{
		reg:            r,
		Requests:       requests,
		RequestLatency: latency,
		ItemsListed:    listed,
		WarnedItems:    warned,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// Middleware counts requests and observes handler latency.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, req)
		r.Requests.Inc()
		r.RequestLatency.Observe(time.Since(start).Seconds())
	})
}
