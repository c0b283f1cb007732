package handlers

import (
	"context"
	"net/http"
	"time"
)

// AvailabilityProber reports whether the ML service is reachable.
type AvailabilityProber interface {
	IsAvailable(ctx context.Context) bool
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	prober AvailabilityProber
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(prober AvailabilityProber) *HealthHandler {
	return &HealthHandler{prober: prober}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall status: "healthy" or "degraded"
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// ServeHTTP reports liveness plus the ML service's reachability. The API
// itself stays healthy when the ML service is down: uploads and keyword
// search keep working, only enrichment degrades.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]string{"api": "ok"}
	status := "healthy"

	if h.prober.IsAvailable(ctx) {
		checks["ml_service"] = "ok"
	} else {
		checks["ml_service"] = "unreachable"
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}
