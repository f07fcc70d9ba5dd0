package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the payment collectors.
type Metrics struct {
	PaymentsApplied      *prometheus.CounterVec
	PaymentsRejected     *prometheus.CounterVec
	PaymentAmount        *prometheus.CounterVec
	IntegrityCorrections prometheus.Counter
	SaveConflicts        prometheus.Counter
}

// New registers the collectors on reg. Passing nil registers nowhere,
// which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PaymentsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_payments_applied_total",
			Help: "Payments applied to bills, by method.",
		}, []string{"method"}),
		PaymentsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_payments_rejected_total",
			Help: "Payment requests rejected, by reason.",
		}, []string{"reason"}),
		PaymentAmount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_payment_amount_cents_total",
			Help: "Money applied to bills in minor units, by method.",
		}, []string{"method"}),
		IntegrityCorrections: factory.NewCounter(prometheus.CounterOpts{
			Name: "pos_bill_integrity_corrections_total",
			Help: "Bills whose stored paid amount disagreed with their ledger.",
		}),
		SaveConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "pos_bill_save_conflicts_total",
			Help: "Bill saves retried after a concurrent write.",
		}),
	}
}

// Reasons used for PaymentsRejected.
const (
	ReasonValidation  = "validation"
	ReasonOverpayment = "overpayment"
	ReasonStale       = "stale"
	ReasonClosed      = "closed"
)
