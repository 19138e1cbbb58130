// Package metrics owns the process Prometheus registry and the /metrics handler
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry wraps a private prometheus registry and a metric namespace
type Registry struct {
	ns  string
	reg *prometheus.Registry
}

// New returns a registry preloaded with the Go runtime and process collectors
func New(namespace string) *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{ns: namespace, reg: reg}
}

// Nop returns a registry without runtime collectors, for tests and CLIs
func Nop() *Registry {
	return &Registry{ns: "test", reg: prometheus.NewRegistry()}
}

// CounterVec registers a labelled counter under the registry namespace and subsystem
func (r *Registry) CounterVec(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.ns,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	r.reg.MustRegister(c)
	return c
}

// GaugeFunc registers a gauge whose value is read from fn at scrape time
func (r *Registry) GaugeFunc(subsystem, name, help string, fn func() float64) {
	r.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: r.ns,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, fn))
}

// Gatherer exposes the underlying registry for scraping in tests
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
