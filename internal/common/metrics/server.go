package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Server serves Prometheus metrics on /metrics and a liveness probe on /health.
//
// /health answers 200 OK for as long as the bot process accepts HTTP
// connections. It does not check Telegram polling, the reminder scheduler or
// the storage backend; those report failures through their own counters.
// The server stops when the context passed to Start is cancelled.
type Server struct {
	server *http.Server
	logger *slog.Logger
	port   int
}

func NewServer(port int, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", HealthHandler)

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
		logger: logger,
		port:   port,
	}
}

// HealthHandler reports process liveness only.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)

		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Start blocks until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Запуск HTTP-сервера бота",
		"port", s.port,
		"endpoints", []string{"/metrics", "/health"},
	)

	stopped := make(chan struct{})

	go func() {
		defer close(stopped)

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Ошибка при остановке HTTP-сервера бота", "error", err)
			return
		}

		s.logger.Info("HTTP-сервер бота остановлен")
	}()

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ошибка запуска HTTP-сервера бота: %w", err)
	}

	<-stopped

	return nil
}
