package api

import (
	"net/http"
	"time"

	"github.com/timewise/timewise/internal/api/respond"
)

// HealthHandler serves the aggregated service health.
type HealthHandler struct {
	isHealthy  func() bool
	components func() map[string]bool
}

// NewHealthHandler reports unhealthy until bound to a checker.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{isHealthy: func() bool { return false }}
}

// Bind attaches the service health function and an optional per-component view.
func (h *HealthHandler) Bind(isHealthy func() bool, components func() map[string]bool) {
	h.isHealthy = isHealthy
	h.components = components
}

type healthResponse struct {
	Status     string          `json:"status"`
	Timestamp  string          `json:"timestamp"`
	Components map[string]bool `json:"components,omitempty"`
}

// CheckHealth handles GET /api/health.
// Always returns 200; the body says healthy or unhealthy.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "unhealthy", Timestamp: time.Now().Format(time.RFC3339)}
	if h.isHealthy() {
		resp.Status = "healthy"
	}
	if h.components != nil {
		resp.Components = h.components()
	}
	respond.WriteJSON(w, http.StatusOK, resp)
}
