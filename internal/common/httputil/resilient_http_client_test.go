package httputil_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-vacation-bot/internal/common/httputil"
	"github.com/central-university-dev/go-vacation-bot/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCircuitBreaker_FastFailure(t *testing.T) {
	var requestCount int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := &config.Config{
		DownloadTimeout:            1 * time.Second,
		RetryCount:                 1,
		RetryBackoff:               50 * time.Millisecond,
		RetryableStatusCodes:       []int{500, 502, 503, 504},
		CBSlidingWindowSize:        1,
		CBMinimumRequiredCalls:     1,
		CBFailureRateThreshold:     100,
		CBPermittedCallsInHalfOpen: 1,
		CBWaitDurationInOpenState:  2 * time.Second,
	}

	client := httputil.CreateResilientHTTPClient(cfg, discardLogger(), "test_service")

	_, err := client.R().Get(server.URL + "/file.xlsx")
	require.Error(t, err)

	initialRequestCount := atomic.LoadInt32(&requestCount)

	start := time.Now()
	_, err = client.R().Get(server.URL + "/file.xlsx")
	duration := time.Since(start)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open", "Ошибка должна указывать на открытый circuit breaker")
	assert.Less(t, duration, 200*time.Millisecond, "Circuit breaker должен отвечать быстро")
	assert.Equal(t, initialRequestCount, atomic.LoadInt32(&requestCount),
		"Circuit breaker должен предотвратить дополнительные запросы к серверу")
}

func TestRetryWithBackoff(t *testing.T) {
	var requestCount int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&requestCount, 1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("xlsx-bytes"))
	}))
	defer server.Close()

	cfg := &config.Config{
		DownloadTimeout:            5 * time.Second,
		RetryCount:                 3,
		RetryBackoff:               50 * time.Millisecond,
		RetryableStatusCodes:       []int{500, 502, 503, 504},
		CBSlidingWindowSize:        100,
		CBMinimumRequiredCalls:     10,
		CBFailureRateThreshold:     90,
		CBPermittedCallsInHalfOpen: 3,
		CBWaitDurationInOpenState:  10 * time.Second,
	}

	client := httputil.CreateResilientHTTPClient(cfg, discardLogger(), "test_service")

	resp, err := client.R().Get(server.URL + "/file.xlsx")

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "xlsx-bytes", string(resp.Body()))
	assert.Equal(t, int32(3), atomic.LoadInt32(&requestCount), "Должно быть 3 запроса: 2 неудачных + 1 успешный")
}

func TestNonRetryableStatus(t *testing.T) {
	var requestCount int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cfg := &config.Config{
		DownloadTimeout:            5 * time.Second,
		RetryCount:                 3,
		RetryBackoff:               50 * time.Millisecond,
		RetryableStatusCodes:       []int{500, 502, 503, 504},
		CBSlidingWindowSize:        100,
		CBMinimumRequiredCalls:     10,
		CBFailureRateThreshold:     90,
		CBPermittedCallsInHalfOpen: 3,
		CBWaitDurationInOpenState:  10 * time.Second,
	}

	client := httputil.CreateResilientHTTPClient(cfg, discardLogger(), "test_service")

	resp, err := client.R().Get(server.URL + "/missing.xlsx")

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	assert.Equal(t, int32(1), atomic.LoadInt32(&requestCount), "Должен быть только 1 запрос, retry не должен произойти")
}

func TestPlainClient_TimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := httputil.CreatePlainHTTPClient(50*time.Millisecond, discardLogger(), "plain_test")

	_, err := client.R().Get(server.URL)
	assert.Error(t, err)
}
