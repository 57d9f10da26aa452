// Package metrics exposes Prometheus counters and gauges for csync channel
// and select activity, wired the way the teaching service wires its HTTP
// metrics middleware: one struct of collectors, registered once, updated
// inline by the code paths it observes.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every collector csync components report to.
type Metrics struct {
	ChannelPutsTotal    *prometheus.CounterVec
	ChannelTakesTotal   *prometheus.CounterVec
	ChannelClosesTotal  *prometheus.CounterVec
	SelectOutcomesTotal *prometheus.CounterVec
	ActiveTasks         prometheus.Gauge
}

// New builds a Metrics and registers its collectors against reg. Pass
// prometheus.DefaultRegisterer to expose them on the global registry, or a
// prometheus.NewRegistry() for an isolated one (as csyncdemo and this
// package's tests do).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ChannelPutsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "csync",
			Name:      "channel_puts_total",
			Help:      "Number of values successfully put onto a channel, by kind.",
		}, []string{"kind"}),
		ChannelTakesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "csync",
			Name:      "channel_takes_total",
			Help:      "Number of values successfully taken from a channel, by kind.",
		}, []string{"kind"}),
		ChannelClosesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "csync",
			Name:      "channel_closes_total",
			Help:      "Number of channels closed, by kind.",
		}, []string{"kind"}),
		SelectOutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "csync",
			Name:      "select_outcomes_total",
			Help:      "Select engine outcomes: preferred, fallback, data, or timeout.",
		}, []string{"outcome"}),
		ActiveTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "csync",
			Name:      "active_tasks",
			Help:      "Number of tasks currently tracked by a task registry.",
		}),
	}

	reg.MustRegister(
		m.ChannelPutsTotal,
		m.ChannelTakesTotal,
		m.ChannelClosesTotal,
		m.SelectOutcomesTotal,
		m.ActiveTasks,
	)

	return m
}
