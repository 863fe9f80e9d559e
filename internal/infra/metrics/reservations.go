package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		reservationsCreatedTotal,
		reservationsRejectedTotal,
		reservationsCancelledTotal,
		admissionTxSeconds,
	)
}

var (
	reservationsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservations_created_total",
			Help: "Confirmed reservations by session kind.",
		},
		[]string{"kind"}, // 'presencial', 'virtual'
	)

	reservationsRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservations_rejected_total",
			Help: "Admission rejections by session kind and reason.",
		},
		[]string{"kind", "reason"},
	)

	reservationsCancelledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservations_cancelled_total",
			Help: "Cancelled reservations by session kind.",
		},
		[]string{"kind"},
	)

	admissionTxSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "admission_tx_seconds",
			Help:    "Duration of admission transactions, including lock waits.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)
)

func IncReservationCreated(kind string) {
	reservationsCreatedTotal.WithLabelValues(kind).Inc()
}

func IncReservationRejected(kind, reason string) {
	reservationsRejectedTotal.WithLabelValues(kind, reason).Inc()
}

func IncReservationCancelled(kind string) {
	reservationsCancelledTotal.WithLabelValues(kind).Inc()
}

func ObserveAdmissionTx(seconds float64) {
	admissionTxSeconds.Observe(seconds)
}
