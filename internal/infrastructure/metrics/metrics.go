package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ledger's Prometheus metrics.
type Metrics struct {
	// Order metrics
	OrdersPlaced   prometheus.Counter
	OrdersApproved prometheus.Counter
	OrdersDeleted  prometheus.Counter

	// Deposit metrics
	DepositsRequested prometheus.Counter
	DepositsApproved  prometheus.Counter
	DepositsRejected  prometheus.Counter

	// Ledger metrics
	AutoDeductions  prometheus.Counter
	DeductedAmount  prometheus.Counter
	LockTimeouts    prometheus.Counter
	StoreSelfHeals  *prometheus.CounterVec
	StoreWriteFails *prometheus.CounterVec
}

// New creates all Prometheus metrics registered on reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		OrdersPlaced: factory.NewCounter(prometheus.CounterOpts{
			Name: "diamond_orders_placed_total",
			Help: "Total number of diamond orders placed",
		}),
		OrdersApproved: factory.NewCounter(prometheus.CounterOpts{
			Name: "diamond_orders_approved_total",
			Help: "Total number of diamond orders approved",
		}),
		OrdersDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "diamond_orders_deleted_total",
			Help: "Total number of diamond orders cancelled or revoked",
		}),
		DepositsRequested: factory.NewCounter(prometheus.CounterOpts{
			Name: "deposits_requested_total",
			Help: "Total number of deposit requests",
		}),
		DepositsApproved: factory.NewCounter(prometheus.CounterOpts{
			Name: "deposits_approved_total",
			Help: "Total number of deposits approved",
		}),
		DepositsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "deposits_rejected_total",
			Help: "Total number of deposits rejected",
		}),
		AutoDeductions: factory.NewCounter(prometheus.CounterOpts{
			Name: "auto_deductions_total",
			Help: "Total number of auto-deduction passes that deducted anything",
		}),
		DeductedAmount: factory.NewCounter(prometheus.CounterOpts{
			Name: "auto_deducted_amount_total",
			Help: "Total currency amount auto-deducted from balances",
		}),
		LockTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_lock_timeouts_total",
			Help: "Total number of per-user lock acquisition timeouts",
		}),
		StoreSelfHeals: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "store_self_heals_total",
			Help: "Times a JSON store was reset to its default shape",
		}, []string{"store"}),
		StoreWriteFails: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "store_write_failures_total",
			Help: "JSON store write failures after retries",
		}, []string{"store"}),
	}
}
