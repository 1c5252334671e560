package api

import (
	"fmt"
	"net/http"
	"time"

	"userapi/internal/application/dto"
	"userapi/internal/port/inbound"
)

const nanosecondsToMilliseconds = 1e6

// HealthHandler handles HTTP requests for health check operations.
type HealthHandler struct {
	healthService inbound.HealthService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(healthService inbound.HealthService) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

// GetHealth handles GET /health. An unhealthy service answers 503.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) error {
	start := time.Now()

	response, err := h.healthService.GetHealth(r.Context())
	if err != nil {
		return err
	}

	w.Header().Set("X-Health-Check-Duration",
		fmt.Sprintf("%.2fms", float64(time.Since(start).Nanoseconds())/nanosecondsToMilliseconds))

	statusCode := http.StatusOK
	if response.Status == dto.HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	return WriteSuccess(w, statusCode, response)
}
