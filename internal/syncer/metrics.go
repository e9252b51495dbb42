package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	snapshots     *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
	writeFailures *prometheus.CounterVec
	subscriptions prometheus.Gauge
}

// newMetrics creates the metrics of one coordinator. With a nil registerer,
// the metrics are not registered anywhere.
func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)

	return &metrics{
		snapshots: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_sync_snapshots_total",
				Help: "How many pushed snapshots were applied to the state, partitioned by collection.",
			},
			[]string{"kind"},
		),
		fetchFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_sync_fetch_failures_total",
				Help: "How many collection fetches failed, partitioned by collection.",
			},
			[]string{"kind"},
		),
		writeFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_sync_write_failures_total",
				Help: "How many remote writes failed, partitioned by collection and operation.",
			},
			[]string{"kind", "op"},
		),
		subscriptions: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracker_sync_subscriptions",
				Help: "Number of open push subscriptions.",
			},
		),
	}
}
