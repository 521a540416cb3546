// Package metrics exposes supervisor events as Prometheus metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evo-cloud/ambience"
)

// Collector counts events and tracks the last reported state of every
// container. Its Observe method is an ambience.EventSink.
type Collector struct {
	registry *prometheus.Registry

	events *prometheus.CounterVec
	state  *prometheus.GaugeVec

	mu   sync.Mutex
	last map[string]ambience.State
}

// New creates a Collector registered on its own registry
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ambience_events_total",
				Help: "Events reported by container supervisors",
			},
			[]string{"container", "kind"},
		),
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ambience_container_state",
				Help: "1 for the last state reported by a container, 0 otherwise",
			},
			[]string{"container", "state"},
		),
		last: make(map[string]ambience.State),
	}

	c.registry.MustRegister(c.events)
	c.registry.MustRegister(c.state)
	return c
}

// Observe records one event
func (c *Collector) Observe(e ambience.Event) {
	c.events.WithLabelValues(e.ID, e.Kind.String()).Inc()
	if e.Kind != ambience.EventState {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.last[e.ID]; ok && prev != e.State {
		c.state.WithLabelValues(e.ID, string(prev)).Set(0)
	}
	c.state.WithLabelValues(e.ID, string(e.State)).Set(1)
	c.last[e.ID] = e.State
}

// Forget drops all series of a container
func (c *Collector) Forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.last, id)
	c.events.DeletePartialMatch(prometheus.Labels{"container": id})
	c.state.DeletePartialMatch(prometheus.Labels{"container": id})
}

// Registry returns the registry the metrics live in
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler serving the metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
