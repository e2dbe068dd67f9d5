package handler

import (
	"net/http"
	"time"

	"dogwalker-be/internal/container"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	container *container.Container
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container) *HealthHandler {
	return &HealthHandler{container: container}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()
	ctx := r.Context()

	response := HealthResponse{
		Status:     "healthy",
		Timestamp:  time.Now().UTC(),
		Service:    "dogwalker-be",
		Components: map[string]string{},
	}

	if err := h.container.KV.Health(ctx); err != nil {
		log.WithError(err).Error("KV health check failed")
		response.Status = "degraded"
		response.Components["kv"] = "unhealthy"
	} else {
		response.Components["kv"] = "healthy"
	}

	if h.container.DB != nil {
		if err := h.container.DB.Health(ctx); err != nil {
			log.WithError(err).Error("Database health check failed")
			response.Status = "degraded"
			response.Components["database"] = "unhealthy"
		} else {
			response.Components["database"] = "healthy"
		}
	}

	status := http.StatusOK
	if response.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, response, log)
}
