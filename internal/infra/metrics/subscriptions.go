package metrics

import (
	"community-booking/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		subscriptionsTotal,
		creditsRemainingTotal,
		pendingEnrollmentsExpired,
	)
}

var (
	subscriptionsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "subscriptions_total",
			Help: "Current number of subscriptions by state.",
		},
		[]string{"state"}, // 'frozen', 'active', 'pending_plan', 'pending_payment'
	)

	creditsRemainingTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "credits_remaining_total",
			Help: "Sum of available credits across all credit records.",
		},
	)

	pendingEnrollmentsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pending_enrollments_expired_total",
			Help: "Pending enrollments flagged as expired by the sweep worker.",
		},
	)
)

func SetSubscriptionsTotal(counts map[model.SubscriptionState]int) {
	states := []model.SubscriptionState{
		model.SubscriptionStateFrozen,
		model.SubscriptionStateActive,
		model.SubscriptionStatePendingPlan,
		model.SubscriptionStatePendingPayment,
	}
	for _, state := range states {
		subscriptionsTotal.WithLabelValues(state.String()).Set(float64(counts[state]))
	}
}

func SetCreditsRemaining(total int64) {
	creditsRemainingTotal.Set(float64(total))
}

func AddPendingEnrollmentsExpired(n int) {
	pendingEnrollmentsExpired.Add(float64(n))
}
