package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		broadcastMessagesTotal,
		broadcastRetractionsTotal,
	)
}

var (
	broadcastMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_broadcast_messages_total",
			Help: "Broadcast deliveries, by outcome.",
		},
		[]string{"outcome"},
	)

	broadcastRetractionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_broadcast_retractions_total",
			Help: "Broadcast messages deleted by bulk retraction.",
		},
	)
)

func AddBroadcastSent(n int) {
	broadcastMessagesTotal.WithLabelValues("sent").Add(float64(n))
}

func AddBroadcastFailed(n int) {
	broadcastMessagesTotal.WithLabelValues("failed").Add(float64(n))
}

func AddBroadcastRetracted(n int) {
	broadcastRetractionsTotal.Add(float64(n))
}
