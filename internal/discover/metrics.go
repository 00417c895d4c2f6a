package discover

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the discover module.
type Metrics struct {
	DevicesCreated  prometheus.Counter
	DevicesUpdated  prometheus.Counter
	TargetsSkipped  prometheus.Counter
	ReconcileErrors prometheus.Counter
	RunDuration     prometheus.Histogram
}

// NewMetrics registers the discover instruments with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DevicesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "netseed_devices_created_total",
			Help: "Devices created in the inventory by reconciliation runs.",
		}),
		DevicesUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "netseed_devices_updated_total",
			Help: "Existing devices refreshed by reconciliation runs.",
		}),
		TargetsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "netseed_targets_skipped_total",
			Help: "Targets scanned without simulated SNMP data.",
		}),
		ReconcileErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "netseed_reconcile_errors_total",
			Help: "Failed inventory operations recorded during runs.",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "netseed_run_duration_seconds",
			Help:    "Wall-clock duration of reconciliation runs.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
