package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsDispatched counts dispatcher invocations by final status
	// (success|skipped|failed|already_sent|no_recipient).
	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderalert_notifications_dispatched_total",
			Help: "Total number of notification dispatch attempts by final status",
		},
		[]string{"status"},
	)

	// EmailSendAttempts counts individual email transport attempts by result.
	EmailSendAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderalert_email_send_attempts_total",
			Help: "Total number of email send attempts",
		},
		[]string{"result"},
	)

	// PendingPromoted counts pending-queue entries handled during sweeps.
	PendingPromoted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderalert_pending_promoted_total",
			Help: "Pending notifications handled by the promotion sweep",
		},
		[]string{"outcome"},
	)

	// SubscriptionsExpired counts customers unsubscribed by the expiry sweep.
	SubscriptionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tenderalert_subscriptions_expired_total",
			Help: "Customers unsubscribed by the expiry sweep",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tenderalert_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
