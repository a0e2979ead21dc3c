package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Total number of notifications delivered to the gateway",
	}, []string{"kind"})

	NotificationsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_skipped_total",
		Help: "Total number of rows that produced no notification",
	}, []string{"reason"})

	NotificationSendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notification_send_failures_total",
		Help: "Total number of gateway send failures",
	})

	EventProcessingFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "event_processing_failures_total",
		Help: "Total number of row-processing failures",
	}, []string{"table"})

	PollCyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "poll_cycles_total",
		Help: "Total number of polling cycles executed",
	})

	PollFetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poll_fetch_failures_total",
		Help: "Total number of failed polling fetches",
	}, []string{"table"})

	IngestMode = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ingest_mode",
		Help: "Current ingestion mode (0=subscribing, 1=live, 2=polling)",
	})

	CursorPersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cursor_persist_failures_total",
		Help: "Total number of failed cursor state writes",
	})

	BalanceQueryLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "balance_query_latency_seconds",
		Help:    "Latency of customer balance computations",
		Buckets: prometheus.DefBuckets,
	})

	RemindersSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminders_sent_total",
		Help: "Total number of debt reminders sent",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
