// Package metrics collects and exposes Prometheus metrics for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service metrics. A nil *Collector records nothing.
type Collector struct {
	logins        *prometheus.CounterVec
	graphConnects *prometheus.CounterVec
	uploads       *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewCollector builds a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "selkie_auth_logins_total",
			Help: "Login attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		graphConnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "selkie_graph_connect_attempts_total",
			Help: "Graph store connection attempts by outcome.",
		}, []string{"outcome"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "selkie_uploads_total",
			Help: "Content uploads by kind and outcome.",
		}, []string{"kind", "outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "selkie_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(c.logins, c.graphConnects, c.uploads, c.httpDuration)
	return c
}

func (c *Collector) RecordLogin(method, outcome string) {
	if c == nil {
		return
	}
	c.logins.WithLabelValues(method, outcome).Inc()
}

func (c *Collector) RecordGraphConnect(success bool) {
	if c == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.graphConnects.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordUpload(kind string, err error) {
	if c == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	c.uploads.WithLabelValues(kind, outcome).Inc()
}

func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
