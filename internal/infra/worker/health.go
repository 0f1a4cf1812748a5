package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthServer exposes liveness and readiness probes for the bot process.
//
// Endpoints:
//   - /health: liveness probe, always 200 OK
//   - /health/ready: readiness probe, 200 when ready, 503 before
//     initialization completes or during shutdown
type HealthServer struct {
	logger *slog.Logger
	ready  atomic.Bool
	server *http.Server
}

// healthResponse is the JSON body of both probe endpoints.
type healthResponse struct {
	Status string `json:"status"`
}

// NewHealthServer creates a probe server listening on addr (e.g. ":9091").
// It starts in the not-ready state; call SetReady(true) once wiring is
// complete.
func NewHealthServer(addr string, logger *slog.Logger) *HealthServer {
	h := &HealthServer{logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleLiveness)
	mux.HandleFunc("/health/ready", h.handleReadiness)

	h.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return h
}

// Start serves probes until ctx is cancelled or the listener fails. On
// cancellation it drains in-flight requests for up to 5 seconds and returns
// http.ErrServerClosed.
func (h *HealthServer) Start(ctx context.Context) error {
	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			h.logger.Info("health server shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.server.Shutdown(shutdownCtx); err != nil {
				h.logger.Error("health server shutdown failed", slog.Any("error", err))
			}
		case <-stopped:
		}
	}()

	h.logger.Info("health server listening", slog.String("addr", h.server.Addr))
	err := h.server.ListenAndServe()
	close(stopped)
	return err
}

// SetReady sets the state reported by /health/ready.
func (h *HealthServer) SetReady(ready bool) {
	h.ready.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	h.writeStatus(w, http.StatusOK, "ok")
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if !h.ready.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	h.writeStatus(w, http.StatusOK, "ok")
}

func (h *HealthServer) writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(healthResponse{Status: status}); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}
