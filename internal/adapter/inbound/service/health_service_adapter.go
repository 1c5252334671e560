package service

import (
	"context"
	"time"

	"userapi/internal/application/dto"
	"userapi/internal/port/inbound"
	"userapi/internal/port/outbound"
)

const databaseHealthTimeout = 2 * time.Second

// HealthServiceAdapter reports the state of the database and the event connection.
type HealthServiceAdapter struct {
	database outbound.DatabaseHealth
	events   outbound.EventPublisherHealth
	version  string
}

var _ inbound.HealthService = (*HealthServiceAdapter)(nil)

// NewHealthServiceAdapter creates a HealthServiceAdapter. events may be nil when messaging is disabled.
func NewHealthServiceAdapter(
	database outbound.DatabaseHealth,
	events outbound.EventPublisherHealth,
	version string,
) *HealthServiceAdapter {
	return &HealthServiceAdapter{database: database, events: events, version: version}
}

// GetHealth checks every dependency. A down database makes the service unhealthy; a down
// event connection only degrades it.
func (h *HealthServiceAdapter) GetHealth(ctx context.Context) (*dto.HealthResponse, error) {
	response := &dto.HealthResponse{
		Status:    dto.HealthStatusHealthy,
		Timestamp: time.Now(),
		Version:   h.version,
		Database:  dto.ConnectionUp,
		Events:    dto.ConnectionDisabled,
	}

	checkCtx, cancel := context.WithTimeout(ctx, databaseHealthTimeout)
	defer cancel()

	if h.database == nil || !h.database.IsHealthy(checkCtx) {
		response.Database = dto.ConnectionDown
		response.Status = dto.HealthStatusUnhealthy
	}

	if h.events != nil {
		response.Events = dto.ConnectionUp
		if !h.events.IsConnected() {
			response.Events = dto.ConnectionDown
			if response.Status == dto.HealthStatusHealthy {
				response.Status = dto.HealthStatusDegraded
			}
		}
	}

	return response, nil
}
