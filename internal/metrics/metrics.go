package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Feed metrics
	FramesReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rektbot_feed_frames_received_total",
			Help: "Total number of raw frames received from the feed connection",
		},
	)

	FeedReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rektbot_feed_reconnects_total",
			Help: "Total number of feed reconnection attempts",
		},
	)

	// Pipeline metrics
	EventsNormalized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rektbot_events_normalized_total",
			Help: "Total number of liquidation events normalized from the feed",
		},
	)

	MalformedFrames = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rektbot_malformed_frames_total",
			Help: "Total number of feed frames dropped as malformed",
		},
	)

	// Dispatch metrics
	NotificationsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rektbot_notifications_sent_total",
			Help: "Total number of notifications delivered to subscribers",
		},
	)

	NotificationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rektbot_notification_failures_total",
			Help: "Total number of notification deliveries that failed",
		},
	)
)

func init() {
	prometheus.MustRegister(
		FramesReceived,
		FeedReconnects,
		EventsNormalized,
		MalformedFrames,
		NotificationsSent,
		NotificationFailures,
	)
}

// Handler returns the HTTP handler exposing all registered metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
