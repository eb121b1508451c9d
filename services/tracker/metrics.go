package tracker

import (
	// External Packages
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	FetchesTotal  prometheus.Counter
	FetchFailures prometheus.Counter
	StaleFetches  prometheus.Counter
	EventsApplied prometheus.Counter
	EventsDropped prometheus.Counter
}

func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Transaction page fetches issued.",
		}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Fetches that failed or returned a non-success envelope.",
		}),
		StaleFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_fetch_results_total",
			Help:      "Fetch completions discarded because a newer fetch superseded them.",
		}),
		EventsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_applied_total",
			Help:      "Real-time events merged into the working set.",
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Real-time events rejected by validation.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.FetchesTotal, m.FetchFailures, m.StaleFetches, m.EventsApplied, m.EventsDropped)
	}
	return m
}
