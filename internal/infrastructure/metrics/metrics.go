package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics of the drawer service.
type Metrics struct {
	// Ledger metrics
	EntriesCreated     prometheus.Counter
	EntriesCompensated prometheus.Counter
	DrawerBalance      prometheus.Gauge

	// Sale metrics
	SalesCreated prometheus.Counter
	SalesRemoved prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics against the given registerer.
// Tests pass a private registry to avoid duplicate registration panics.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EntriesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "tillbook_entries_created_total",
			Help: "Total number of ledger entries appended",
		}),
		EntriesCompensated: factory.NewCounter(prometheus.CounterOpts{
			Name: "tillbook_entries_compensated_total",
			Help: "Total number of ledger entries deleted by compensation",
		}),
		DrawerBalance: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tillbook_drawer_balance",
			Help: "Current cash drawer balance",
		}),
		SalesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "tillbook_sales_created_total",
			Help: "Total number of sales recorded",
		}),
		SalesRemoved: factory.NewCounter(prometheus.CounterOpts{
			Name: "tillbook_sales_removed_total",
			Help: "Total number of sales removed",
		}),
	}
}
