package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	labelKind    = "kind"
	labelPayment = "payment"
	labelReason  = "reason"

	PaymentFree    = "free"
	PaymentBalance = "balance"

	ReasonAlreadySpinning   = "already_spinning"
	ReasonInsufficientFunds = "insufficient_funds"
	ReasonNoSession         = "no_session"
	ReasonError             = "error"
)

// Metric names follow prizedraw_<name>
var (
	spinsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prizedraw_spins_total",
		Help: "Completed spins by prize kind and payment method",
	}, []string{labelKind, labelPayment})

	spinRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prizedraw_spin_rejections_total",
		Help: "Spin requests rejected before a prize was awarded",
	}, []string{labelReason})

	spinCharge = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prizedraw_spin_charge_total",
		Help: "Total balance deducted for paid spins",
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "prizedraw_active_sessions",
		Help: "Spin sessions currently held in memory",
	})
)

// RecordSpin counts a completed spin and the balance it charged
func RecordSpin(kind string, usedFreeSpin bool, charge int64) {
	payment := PaymentBalance
	if usedFreeSpin {
		payment = PaymentFree
	}
	spinsTotal.WithLabelValues(kind, payment).Inc()
	if charge > 0 {
		spinCharge.Add(float64(charge))
	}
}

// RecordRejection counts a spin that was refused
func RecordRejection(reason string) {
	spinRejections.WithLabelValues(reason).Inc()
}

// SetActiveSessions reports the current number of in-memory sessions
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
