package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	TabsOpened       prometheus.Counter
	TabsClosed       *prometheus.CounterVec
	ItemsRejected    *prometheus.CounterVec
	StockWarnings    prometheus.Counter
	SweepTransitions *prometheus.CounterVec
	TicketsAdvanced  *prometheus.CounterVec
	EventsPublished  *prometheus.CounterVec
	HubConnections   prometheus.Gauge
}

// New registers every collector on reg. Pass prometheus.DefaultRegisterer in
// the server and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TabsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "tabs_opened_total",
			Help:      "Tabs opened on a table.",
		}),
		TabsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "tabs_closed_total",
			Help:      "Tabs closed, by final state.",
		}, []string{"state"}),
		ItemsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "line_items_rejected_total",
			Help:      "Line items refused by the stock gate, by reason.",
		}, []string{"reason"}),
		StockWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "line_items_warned_total",
			Help:      "Line items accepted with an insufficient stock warning.",
		}),
		SweepTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "reservation_sweep_transitions_total",
			Help:      "Reservation transitions applied by the sweep.",
		}, []string{"status"}),
		TicketsAdvanced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "kitchen_tickets_advanced_total",
			Help:      "Kitchen ticket transitions, by target status.",
		}, []string{"status"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "events_published_total",
			Help:      "Domain events handed to publishers, by outcome.",
		}, []string{"outcome"}),
		HubConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pos",
			Name:      "hub_connections",
			Help:      "Live websocket connections.",
		}),
	}

	reg.MustRegister(
		m.TabsOpened,
		m.TabsClosed,
		m.ItemsRejected,
		m.StockWarnings,
		m.SweepTransitions,
		m.TicketsAdvanced,
		m.EventsPublished,
		m.HubConnections,
	)
	return m
}

// NewUnregistered is for components built without a server, such as tests
// and one-shot CLI commands.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}
