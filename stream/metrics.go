package stream

import (
	// External Packages
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors for one connection manager.
type Metrics struct {
	Connected     prometheus.Gauge
	ConnectsTotal prometheus.Counter
	Reconnects    prometheus.Counter
	EventsTotal   prometheus.Counter
	ParseFailures prometheus.Counter
}

// NewMetrics builds and registers the connection collectors under the given
// namespace. A nil registerer yields unregistered (test-only) collectors.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connected",
			Help:      "1 when the websocket connection is open.",
		}),
		ConnectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_connects_total",
			Help:      "Successful websocket connects.",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_reconnect_attempts_total",
			Help:      "Scheduled automatic reconnect attempts.",
		}),
		EventsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_events_total",
			Help:      "Inbound frames parsed and delivered.",
		}),
		ParseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_parse_failures_total",
			Help:      "Inbound frames dropped because they failed to parse.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Connected, m.ConnectsTotal, m.Reconnects, m.EventsTotal, m.ParseFailures)
	}
	return m
}
