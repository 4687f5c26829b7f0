package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationOperations counts inbox operations by outcome (ok|not_found|denied|invalid|error).
	NotificationOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bellcenter_notification_operations_total",
			Help: "Total number of notification inbox operations",
		},
		[]string{"operation", "result"},
	)

	// NotificationsMarkedRead counts rows transitioned to read by bulk operations.
	NotificationsMarkedRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bellcenter_notifications_bulk_read_total",
			Help: "Rows transitioned to read by bulk-read requests",
		},
	)

	// UnreadNotifications tracks unread, visible notifications across all users.
	UnreadNotifications = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bellcenter_unread_notifications",
			Help: "Number of unread, non-hidden user notifications",
		},
	)

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bellcenter_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"path"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bellcenter_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
