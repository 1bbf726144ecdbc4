// Package metrics exposes prometheus instrumentation for the realtime layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors for the SSE broadcaster. Each instance owns
// its registry so tests can construct them freely.
type Metrics struct {
	registry *prometheus.Registry

	// Subscribers tracks currently connected event-stream subscribers.
	Subscribers prometheus.Gauge
	// EventsBroadcast counts broadcast events by event name.
	EventsBroadcast *prometheus.CounterVec
	// DroppedEvents counts events dropped because a subscriber buffer was full.
	DroppedEvents prometheus.Counter
	// DeliveryFailures counts subscriber stream writes that failed.
	DeliveryFailures prometheus.Counter
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sse_subscribers",
			Help: "Number of currently connected SSE subscribers.",
		}),
		EventsBroadcast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sse_events_broadcast_total",
			Help: "Total events broadcast, by event name.",
		}, []string{"event"}),
		DroppedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sse_events_dropped_total",
			Help: "Total events dropped for slow subscribers.",
		}),
		DeliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sse_delivery_failures_total",
			Help: "Total subscriber stream writes that failed.",
		}),
	}
	reg.MustRegister(
		m.Subscribers,
		m.EventsBroadcast,
		m.DroppedEvents,
		m.DeliveryFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
