package metrics_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-vacation-bot/internal/common/metrics"
)

func TestRecordHTTPRequest(t *testing.T) {
	// Arrange
	service := "test-downloader"
	initial := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(service, "GET", "success"))

	// Act
	metrics.RecordHTTPRequest(service, "GET", 200, 100*time.Millisecond)
	metrics.RecordHTTPRequest(service, "GET", 503, 100*time.Millisecond)
	metrics.RecordHTTPRequest(service, "GET", 0, time.Second)

	// Assert
	assert.Equal(t, initial+1, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(service, "GET", "success")))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(service, "GET", "error")))
}

func TestRecordUpload(t *testing.T) {
	// Arrange
	initialRecords := testutil.ToFloat64(metrics.UploadedRecords)
	initialErrors := testutil.ToFloat64(metrics.RowErrorsTotal)

	// Act
	metrics.RecordUpload("success_test", 12, 2)

	// Assert
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.UploadsTotal.WithLabelValues("success_test")))
	assert.Equal(t, initialRecords+12, testutil.ToFloat64(metrics.UploadedRecords))
	assert.Equal(t, initialErrors+2, testutil.ToFloat64(metrics.RowErrorsTotal))
}

func TestRecordReminderAndScan(t *testing.T) {
	metrics.RecordReminder("telegram_test", "success")
	metrics.RecordReminder("telegram_test", "success")
	metrics.RecordScan("ok_test", 50*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.RemindersTotal.WithLabelValues("telegram_test", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ScanRunsTotal.WithLabelValues("ok_test")))
}

func TestMultipleMessageTypes(t *testing.T) {
	messageTypes := []string{"command_test", "file_test", "callback_test"}

	for i, messageType := range messageTypes {
		initial := testutil.ToFloat64(metrics.UserMessagesTotal.WithLabelValues(messageType))

		metrics.RecordUserMessage(messageType)

		final := testutil.ToFloat64(metrics.UserMessagesTotal.WithLabelValues(messageType))
		assert.Equal(t, initial+1, final, "Iteration %d", i)
	}
}

func TestMetricsExist(t *testing.T) {
	metrics.RecordUserMessage("exists_test")
	metrics.RecordUpload("exists_test", 0, 0)
	metrics.RecordReminder("exists_test", "success")
	metrics.RecordScan("exists_test", time.Millisecond)
	metrics.RecordHTTPRequest("exists_test", "GET", 200, time.Millisecond)

	metricFamilies, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	metricNames := make(map[string]bool)
	for _, mf := range metricFamilies {
		metricNames[mf.GetName()] = true
	}

	expectedMetrics := []string{
		"vacation_bot_http_requests_total",
		"vacation_bot_http_request_duration_seconds",
		"vacation_bot_bot_user_messages_total",
		"vacation_bot_bot_uploads_total",
		"vacation_bot_bot_uploaded_records_total",
		"vacation_bot_bot_row_errors_total",
		"vacation_bot_reminder_sent_total",
		"vacation_bot_reminder_scan_runs_total",
		"vacation_bot_reminder_scan_duration_seconds",
	}

	for _, metricName := range expectedMetrics {
		assert.True(t, metricNames[metricName], "Метрика %s должна быть зарегистрирована", metricName)
	}
}

func TestServer_ServesHealthAndMetrics(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := metrics.NewServer(port, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)

	go func() {
		errCh <- server.Start(ctx)
	}()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	resp, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "vacation_bot_")

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("сервер метрик не остановился")
	}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name   string
		method string
		status int
		body   string
	}{
		{name: "get", method: http.MethodGet, status: http.StatusOK, body: "OK"},
		{name: "head", method: http.MethodHead, status: http.StatusOK, body: "OK"},
		{name: "post", method: http.MethodPost, status: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			metrics.HealthHandler(rec, httptest.NewRequest(tt.method, "/health", http.NoBody))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}
