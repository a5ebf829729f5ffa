package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "vacation_bot"

	BotSubsystem      = "bot"
	ReminderSubsystem = "reminder"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of outgoing HTTP requests",
		},
		[]string{"service", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Outgoing HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method"},
	)
)

// Бот метрики.
var (
	UserMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "user_messages_total",
			Help:      "Total number of user events processed",
		},
		[]string{"message_type"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "uploads_total",
			Help:      "Total number of roster uploads by outcome",
		},
		[]string{"status"},
	)

	UploadedRecords = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "uploaded_records_total",
			Help:      "Total number of vacation records extracted from uploads",
		},
	)

	RowErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "row_errors_total",
			Help:      "Total number of roster rows skipped because of conversion errors",
		},
	)
)

// Метрики напоминаний.
var (
	RemindersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ReminderSubsystem,
			Name:      "sent_total",
			Help:      "Total number of reminder deliveries by channel and status",
		},
		[]string{"channel", "status"},
	)

	ScanRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ReminderSubsystem,
			Name:      "scan_runs_total",
			Help:      "Total number of scan-and-send passes",
		},
		[]string{"status"},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: ReminderSubsystem,
			Name:      "scan_duration_seconds",
			Help:      "Scan-and-send pass duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)
)

func RecordHTTPRequest(service, method string, statusCode int, duration time.Duration) {
	status := "success"
	if statusCode == 0 || statusCode >= 400 {
		status = "error"
	}

	HTTPRequestsTotal.WithLabelValues(service, method, status).Inc()
	HTTPRequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

func RecordUserMessage(messageType string) {
	UserMessagesTotal.WithLabelValues(messageType).Inc()
}

func RecordUpload(status string, records, rowErrors int) {
	UploadsTotal.WithLabelValues(status).Inc()
	UploadedRecords.Add(float64(records))
	RowErrorsTotal.Add(float64(rowErrors))
}

func RecordReminder(channel, status string) {
	RemindersTotal.WithLabelValues(channel, status).Inc()
}

func RecordScan(status string, duration time.Duration) {
	ScanRunsTotal.WithLabelValues(status).Inc()
	ScanDuration.Observe(duration.Seconds())
}
