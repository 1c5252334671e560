package dto

import "time"

// HealthStatus is the overall state reported by GET /health.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ConnectionState is the state of one backing connection.
type ConnectionState string

const (
	ConnectionUp       ConnectionState = "up"
	ConnectionDown     ConnectionState = "down"
	ConnectionDisabled ConnectionState = "disabled"
)

// HealthResponse is the data of GET /health. Only a down database makes the service unhealthy.
type HealthResponse struct {
	Status    HealthStatus    `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Version   string          `json:"version"`
	Database  ConnectionState `json:"database"`
	Events    ConnectionState `json:"events"`
}
