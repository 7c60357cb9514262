package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the sync core.
type Metrics struct {
	// Snapshot metrics
	SnapshotDeliveries *prometheus.CounterVec
	SnapshotSize       *prometheus.GaugeVec
	SnapshotLoading    *prometheus.GaugeVec
	SnapshotErrored    *prometheus.GaugeVec

	// Derived view metrics, fed from the snapshot on every delivery
	TotalsIncome  *prometheus.GaugeVec
	TotalsExpense *prometheus.GaugeVec
	TotalsBalance *prometheus.GaugeVec

	// Subscription metrics
	SubscriptionsOpened  prometheus.Counter
	SubscriptionsClosed  prometheus.Counter
	SubscriptionRestarts *prometheus.CounterVec
	ActiveSubscriptions  prometheus.Gauge

	// Mutation metrics
	MutationsTotal  *prometheus.CounterVec
	MutationErrors  *prometheus.CounterVec
	MutationLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		// Snapshot metrics
		SnapshotDeliveries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finmirror_snapshot_deliveries_total",
				Help: "Total snapshot deliveries by outcome",
			},
			[]string{"collection", "outcome"},
		),
		SnapshotSize: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finmirror_snapshot_records",
				Help: "Number of records in the current snapshot",
			},
			[]string{"collection"},
		),
		SnapshotLoading: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finmirror_snapshot_loading",
				Help: "Whether the snapshot is still awaiting its first delivery",
			},
			[]string{"collection"},
		),
		SnapshotErrored: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finmirror_snapshot_errored",
				Help: "Whether the latest delivery for the snapshot was an error",
			},
			[]string{"collection"},
		),

		// Derived view metrics
		TotalsIncome: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finmirror_totals_income",
				Help: "Income total over the current snapshot",
			},
			[]string{"collection"},
		),
		TotalsExpense: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finmirror_totals_expense",
				Help: "Expense total over the current snapshot",
			},
			[]string{"collection"},
		),
		TotalsBalance: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finmirror_totals_balance",
				Help: "Balance over the current snapshot",
			},
			[]string{"collection"},
		),

		// Subscription metrics
		SubscriptionsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finmirror_subscriptions_opened_total",
			Help: "Total subscriptions opened",
		}),
		SubscriptionsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finmirror_subscriptions_closed_total",
			Help: "Total subscriptions closed",
		}),
		SubscriptionRestarts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finmirror_subscription_restarts_total",
				Help: "Total subscription stream reconnects",
			},
			[]string{"collection"},
		),
		ActiveSubscriptions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "finmirror_active_subscriptions",
			Help: "Current number of live subscriptions",
		}),

		// Mutation metrics
		MutationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finmirror_mutations_total",
				Help: "Total mutations by operation",
			},
			[]string{"operation"},
		),
		MutationErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finmirror_mutation_errors_total",
				Help: "Total mutation errors by operation",
			},
			[]string{"operation"},
		),
		MutationLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finmirror_mutation_duration_seconds",
				Help:    "Mutation round trip duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}
