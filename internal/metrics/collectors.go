package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autoreply_cycles_total",
		Help: "Reply cycles by outcome (ok or the failure classification).",
	}, []string{"outcome"})

	repliesPosted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autoreply_replies_posted_total",
		Help: "Automated replies posted.",
	})

	commentsDeferred = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autoreply_comments_deferred_total",
		Help: "Comments seen while the engagement gate was charging.",
	})

	descriptionUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autoreply_description_updates_total",
		Help: "Description rewrites by resulting gate state.",
	}, []string{"state"})

	ledgerSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "autoreply_ledger_size",
		Help: "Comments recorded as answered.",
	})

	platformCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autoreply_platform_calls_total",
		Help: "YouTube API calls by operation and result.",
	}, []string{"operation", "result"})

	notificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autoreply_notifications_total",
		Help: "Webhook notifications by location and result.",
	}, []string{"location", "result"})

	apiLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "autoreply_http_request_duration_seconds",
		Help:    "Outbound HTTP latency by target, method, path and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"target", "method", "path", "status"})
)

// CycleFinished counts a completed or failed cycle.
func CycleFinished(outcome string) {
	cyclesTotal.WithLabelValues(outcome).Inc()
}

// ReplyPosted counts one posted reply.
func ReplyPosted() {
	repliesPosted.Inc()
}

// CommentDeferred counts one comment skipped by the closed gate.
func CommentDeferred() {
	commentsDeferred.Inc()
}

// DescriptionUpdated counts a description rewrite.
func DescriptionUpdated(gateOpen bool) {
	state := "charging"
	if gateOpen {
		state = "open"
	}
	descriptionUpdates.WithLabelValues(state).Inc()
}

// SetLedgerSize publishes the ledger length.
func SetLedgerSize(n int) {
	ledgerSize.Set(float64(n))
}

// PlatformCall counts a YouTube API call. result is "ok" or an error class.
func PlatformCall(operation, result string) {
	platformCalls.WithLabelValues(operation, result).Inc()
}

// NotificationSent counts a webhook delivery attempt.
func NotificationSent(location string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	notificationsSent.WithLabelValues(location, result).Inc()
}

// LedgerSizeGauge exposes the ledger gauge for status readers.
func LedgerSizeGauge() prometheus.Gauge {
	return ledgerSize
}
