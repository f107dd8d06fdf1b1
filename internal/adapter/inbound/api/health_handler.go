package api

import (
	"net/http"
	"strconv"
	"time"

	"javasegment/internal/application/common/slogger"
	"javasegment/internal/application/dto"
	"javasegment/internal/port/inbound"
)

// HealthCheckDurationHeader carries how long the dependency checks took, in milliseconds.
const HealthCheckDurationHeader = "X-Health-Check-Duration"

// HealthHandler serves GET /health.
type HealthHandler struct {
	healthService inbound.HealthService
	errorHandler  ErrorHandler
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(healthService inbound.HealthService, errorHandler ErrorHandler) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
		errorHandler:  errorHandler,
	}
}

// GetHealth answers 503 when the service is unhealthy so load balancers take it
// out of rotation; degraded still answers 200.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	response, err := h.healthService.GetHealth(r.Context())
	if err != nil {
		h.errorHandler.HandleServiceError(w, r, err)
		return
	}

	elapsed := float64(time.Since(start).Microseconds()) / 1000
	w.Header().Set(HealthCheckDurationHeader, strconv.FormatFloat(elapsed, 'f', 2, 64)+"ms")
	w.Header().Set("Cache-Control", "no-store")

	status := http.StatusOK
	if response.Status == string(dto.HealthStatusUnhealthy) {
		status = http.StatusServiceUnavailable
	}

	if err := WriteJSON(w, status, response); err != nil {
		slogger.Error(r.Context(), "Failed to encode health response", slogger.Field("error", err.Error()))
		http.Error(w, "health check response encoding failed", http.StatusInternalServerError)
	}
}
