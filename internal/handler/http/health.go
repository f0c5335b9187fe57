package http

import (
	"Launchpad-Backend/internal/repository"
	"Launchpad-Backend/internal/worker"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Version версия сборки, задается через -ldflags
var Version = "dev"

// JobStatsFunc отдает состояние фоновых задач
type JobStatsFunc func() map[string]worker.JobStats

// HealthHandler обработчик health checks
type HealthHandler struct {
	storage   repository.Storage
	jobs      JobStatsFunc
	startedAt time.Time
	log       *zap.Logger
}

// NewHealthHandler создает новый health handler. jobs может быть nil.
func NewHealthHandler(storage repository.Storage, jobs JobStatsFunc, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		storage:   storage,
		jobs:      jobs,
		startedAt: time.Now(),
		log:       log,
	}
}

// HealthResponse структура ответа health check
type HealthResponse struct {
	Status         string                     `json:"status"`
	Timestamp      time.Time                  `json:"timestamp"`
	Version        string                     `json:"version"`
	DatabaseStatus string                     `json:"database_status"`
	Uptime         string                     `json:"uptime,omitempty"`
	Jobs           map[string]worker.JobStats `json:"jobs,omitempty"`
}

// Health основной health check endpoint
//
//	@Summary		Health check
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	HealthResponse
//	@Router			/health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	dbStatus := "healthy"
	statusCode := http.StatusOK

	if err := h.storage.Ping(ctx); err != nil {
		h.log.Error("database health check failed", zap.Error(err))
		status = "unhealthy"
		dbStatus = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:         status,
		Timestamp:      time.Now(),
		Version:        Version,
		DatabaseStatus: dbStatus,
		Uptime:         time.Since(h.startedAt).Round(time.Second).String(),
	}
	if h.jobs != nil {
		response.Jobs = h.jobs()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("failed to encode health response", zap.Error(err))
	}
}

// Ready проверка готовности к приему трафика
//
//	@Summary		Readiness probe
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}
//	@Failure		503	{object}	map[string]interface{}
//	@Router			/ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ready"
	statusCode := http.StatusOK
	if err := h.storage.Ping(ctx); err != nil {
		h.log.Warn("readiness check failed", zap.Error(err))
		status = "not ready"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    status,
		"timestamp": time.Now(),
	}); err != nil {
		h.log.Error("failed to encode ready response", zap.Error(err))
	}
}
