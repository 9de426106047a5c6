package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger reports whether a backing dependency is reachable. Both store
// backends implement it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer provides HTTP health check endpoints.
type HealthServer struct {
	port     int
	workerID string
	backend  string
	store    Pinger
	logger   *zap.Logger
	server   *http.Server
}

// NewHealthServer creates a new health server reporting on the given store.
// workerID and backend identify the reporting worker in responses.
func NewHealthServer(port int, workerID, backend string, store Pinger, logger *zap.Logger) *HealthServer {
	return &HealthServer{
		port:     port,
		workerID: workerID,
		backend:  backend,
		store:    store,
		logger:   logger,
	}
}

// Start starts the health check server.
func (hs *HealthServer) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", hs.handleHealth)
	mux.HandleFunc("/ready", hs.handleReady)

	hs.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", hs.port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	hs.logger.Info("starting health server", zap.Int("port", hs.port))

	go func() {
		if err := hs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			hs.logger.Error("health server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the health check server.
func (hs *HealthServer) Stop() error {
	if hs.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hs.logger.Info("stopping health server")
	return hs.server.Shutdown(ctx)
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status   string            `json:"status"`
	WorkerID string            `json:"worker_id,omitempty"`
	Backend  string            `json:"backend,omitempty"`
	Checks   map[string]string `json:"checks,omitempty"`
}

// handleHealth handles the /health endpoint.
func (hs *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string)

	if err := hs.store.Ping(ctx); err != nil {
		checks["store"] = fmt.Sprintf("unhealthy: %v", err)
		hs.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   "unhealthy",
			WorkerID: hs.workerID,
			Backend:  hs.backend,
			Checks:   checks,
		})
		return
	}
	checks["store"] = "healthy"

	hs.respondJSON(w, http.StatusOK, HealthResponse{
		Status:   "healthy",
		WorkerID: hs.workerID,
		Backend:  hs.backend,
		Checks:   checks,
	})
}

// handleReady handles the /ready endpoint.
func (hs *HealthServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := hs.store.Ping(ctx); err != nil {
		hs.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   "not ready",
			WorkerID: hs.workerID,
			Backend:  hs.backend,
		})
		return
	}

	hs.respondJSON(w, http.StatusOK, HealthResponse{
		Status:   "ready",
		WorkerID: hs.workerID,
		Backend:  hs.backend,
	})
}

// respondJSON writes a JSON response.
func (hs *HealthServer) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		hs.logger.Error("failed to encode response", zap.Error(err))
	}
}
