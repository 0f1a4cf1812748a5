package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"morning-post/pkg/config"
	"morning-post/pkg/guard"
)

// healthResponse is the body of the /health liveness probe.
type healthResponse struct {
	Status string `json:"status"`
}

// guardHealthResponse reports the guard state of every external service.
type guardHealthResponse struct {
	Healthy  bool          `json:"healthy"`
	Services []guardStatus `json:"services"`
}

// guardStatus is the guard state of a single external service.
type guardStatus struct {
	Service             string `json:"service"`
	State               string `json:"state"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
	RequestsInWindow    int    `json:"requests_in_window"`
}

// runMetricsServer serves the Prometheus scrape endpoint and health probes
// until the context is cancelled.
//
// Endpoints:
//   - GET /metrics - Prometheus metrics
//   - GET /health - liveness probe, always 200 OK
//   - GET /health/guards - per-service guard state, 503 while any circuit is open
//
// Environment variables:
//   - METRICS_PORT: port to listen on (default: 9090)
func runMetricsServer(ctx context.Context, logger *slog.Logger, registry *guard.Registry) error {
	port := config.GetEnvInt("METRICS_PORT", 9090)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(healthResponse{Status: "healthy"})
	})
	mux.HandleFunc("/health/guards", guardHealthHandler(registry))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
			return err
		}
		logger.Info("metrics server stopped")
		return nil

	case err := <-errChan:
		return err
	}
}

// guardHealthHandler reports all guard states. Any open circuit marks the
// response unhealthy so an operator can see which dependency is down.
func guardHealthHandler(registry *guard.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		stats := registry.Stats()

		services := make([]guardStatus, 0, len(stats))
		healthy := true
		for _, s := range stats {
			services = append(services, guardStatus{
				Service:             s.Service,
				State:               s.State,
				ConsecutiveFailures: s.ConsecutiveFailures,
				RequestsInWindow:    s.RequestsInWindow,
			})
			if s.State == "open" {
				healthy = false
			}
		}

		statusCode := http.StatusOK
		if !healthy {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(guardHealthResponse{
			Healthy:  healthy,
			Services: services,
		})
	}
}
