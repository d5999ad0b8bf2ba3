package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		updatesHandledTotal,
		usersRegisteredTotal,
		purchasesAppliedTotal,
		rewardsGrantedTotal,
		qrDecodeFailuresTotal,
		rateLimitTriggeredTotal,
	)
}

var (
	updatesHandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_handled_total",
			Help: "Inbound updates handled, by input kind and role.",
		},
		[]string{"kind", "role"},
	)

	usersRegisteredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_users_registered_total",
			Help: "Total number of new customer profiles created.",
		},
	)

	purchasesAppliedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_purchases_applied_total",
			Help: "Purchase counter changes, by direction.",
		},
		[]string{"direction"},
	)

	rewardsGrantedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_rewards_granted_total",
			Help: "Free drinks granted (counter wrapped at threshold).",
		},
	)

	qrDecodeFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_qr_decode_failures_total",
			Help: "Photos from which no valid QR payload could be read.",
		},
	)

	rateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_rate_limit_triggered_total",
			Help: "Total number of times users have been rate-limited.",
		},
	)
)

func IncUpdateHandled(kind, role string) {
	updatesHandledTotal.WithLabelValues(kind, role).Inc()
}

func IncUsersRegistered() {
	usersRegisteredTotal.Inc()
}

func IncPurchaseApplied(direction string) {
	purchasesAppliedTotal.WithLabelValues(direction).Inc()
}

func IncRewardGranted() {
	rewardsGrantedTotal.Inc()
}

func IncQRDecodeFailure() {
	qrDecodeFailuresTotal.Inc()
}

func IncRateLimitTriggered() {
	rateLimitTriggeredTotal.Inc()
}
