package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ActiveConnections tracks websocket sessions currently in the Active state.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_ws_active_connections",
		Help: "Number of open websocket chat sessions.",
	})

	// MessagesPersisted counts messages successfully written to the store.
	MessagesPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_persisted_total",
		Help: "Total chat messages persisted.",
	})

	// BroadcastFanout counts per-recipient deliveries attempted by the hub.
	BroadcastFanout = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_broadcast_fanout_total",
		Help: "Total per-recipient broadcast deliveries.",
	})

	// EventsRejected counts inbound events rejected with an error payload.
	EventsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_events_rejected_total",
		Help: "Total inbound websocket events rejected.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
