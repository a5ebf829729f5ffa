package httputil

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/central-university-dev/go-vacation-bot/internal/common/metrics"
	"github.com/central-university-dev/go-vacation-bot/internal/config"
	customerrors "github.com/central-university-dev/go-vacation-bot/internal/domain/errors"
)

// CreateResilientHTTPClient returns a resty client with retries on RETRYABLE_STATUS_CODES
// and a circuit breaker in front of the transport. 5xx responses count as breaker failures.
func CreateResilientHTTPClient(cfg *config.Config, logger *slog.Logger, serviceName string) *resty.Client {
	client := resty.New()

	client.SetTimeout(cfg.DownloadTimeout)

	client.SetRetryCount(cfg.RetryCount)
	client.SetRetryWaitTime(cfg.RetryBackoff)
	client.SetRetryMaxWaitTime(cfg.RetryBackoff * 5)

	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return !errors.Is(err, gobreaker.ErrOpenState)
		}

		for _, status := range cfg.RetryableStatusCodes {
			if r.StatusCode() == status {
				return true
			}
		}

		return false
	})

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        serviceName + "_circuit_breaker",
		MaxRequests: uint32(cfg.CBPermittedCallsInHalfOpen), //nolint:gosec // G115: Значение из конфига
		Interval:    time.Duration(cfg.CBSlidingWindowSize) * time.Second,
		Timeout:     cfg.CBWaitDurationInOpenState,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= uint32(cfg.CBMinimumRequiredCalls) && //nolint:gosec // G115: Значение из конфига
				failureRatio >= float64(cfg.CBFailureRateThreshold)/100.0
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("Состояние circuit breaker изменилось",
					"name", name,
					"from", from.String(),
					"to", to.String(),
				)
			}
		},
	})

	client.SetTransport(&CircuitBreakerTransport{
		breaker:     breaker,
		transport:   http.DefaultTransport,
		logger:      logger,
		serviceName: serviceName,
	})

	instrument(client, logger, serviceName)

	return client
}

// CreatePlainHTTPClient returns a resty client with only a timeout: no retries, no breaker.
func CreatePlainHTTPClient(timeout time.Duration, logger *slog.Logger, serviceName string) *resty.Client {
	client := resty.New()
	client.SetTimeout(timeout)

	instrument(client, logger, serviceName)

	return client
}

func instrument(client *resty.Client, logger *slog.Logger, serviceName string) {
	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		metrics.RecordHTTPRequest(serviceName, resp.Request.Method, resp.StatusCode(), resp.Time())

		if logger != nil && resp.Request.Attempt > 1 {
			logger.Info("HTTP client retry attempt",
				"service", serviceName,
				"url", resp.Request.URL,
				"attempt", resp.Request.Attempt,
				"status", resp.StatusCode(),
			)
		}

		return nil
	})

	client.OnError(func(req *resty.Request, _ error) {
		metrics.RecordHTTPRequest(serviceName, req.Method, 0, time.Since(req.Time))
	})
}

type CircuitBreakerTransport struct {
	breaker     *gobreaker.CircuitBreaker
	transport   http.RoundTripper
	logger      *slog.Logger
	serviceName string
}

func (t *CircuitBreakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	result, err := t.breaker.Execute(func() (interface{}, error) {
		resp, err := t.transport.RoundTrip(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, &customerrors.HTTPError{StatusCode: resp.StatusCode}
		}

		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) && t.logger != nil {
			t.logger.Warn("Circuit breaker is open",
				"service", t.serviceName,
				"url", req.URL.String(),
			)
		}

		return nil, err
	}

	return result.(*http.Response), nil
}
