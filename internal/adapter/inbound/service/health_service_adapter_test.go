package service

import (
	"context"
	"testing"

	"userapi/internal/application/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDatabase struct{ healthy bool }

func (s stubDatabase) IsHealthy(context.Context) bool { return s.healthy }

type stubEvents struct{ connected bool }

func (s stubEvents) IsConnected() bool { return s.connected }

func TestHealthServiceAdapter_GetHealth(t *testing.T) {
	tests := []struct {
		name           string
		database       stubDatabase
		events         *stubEvents
		expectedStatus dto.HealthStatus
		expectedDB     dto.ConnectionState
		expectedEvents dto.ConnectionState
	}{
		{
			name:           "all_up",
			database:       stubDatabase{healthy: true},
			events:         &stubEvents{connected: true},
			expectedStatus: dto.HealthStatusHealthy,
			expectedDB:     dto.ConnectionUp,
			expectedEvents: dto.ConnectionUp,
		},
		{
			name:           "messaging_disabled",
			database:       stubDatabase{healthy: true},
			expectedStatus: dto.HealthStatusHealthy,
			expectedDB:     dto.ConnectionUp,
			expectedEvents: dto.ConnectionDisabled,
		},
		{
			name:           "nats_down_degrades",
			database:       stubDatabase{healthy: true},
			events:         &stubEvents{connected: false},
			expectedStatus: dto.HealthStatusDegraded,
			expectedDB:     dto.ConnectionUp,
			expectedEvents: dto.ConnectionDown,
		},
		{
			name:           "database_down_is_unhealthy",
			database:       stubDatabase{healthy: false},
			events:         &stubEvents{connected: false},
			expectedStatus: dto.HealthStatusUnhealthy,
			expectedDB:     dto.ConnectionDown,
			expectedEvents: dto.ConnectionDown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var adapter *HealthServiceAdapter
			if tt.events == nil {
				adapter = NewHealthServiceAdapter(tt.database, nil, "1.0.0")
			} else {
				adapter = NewHealthServiceAdapter(tt.database, *tt.events, "1.0.0")
			}

			response, err := adapter.GetHealth(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, response.Status)
			assert.Equal(t, tt.expectedDB, response.Database)
			assert.Equal(t, tt.expectedEvents, response.Events)
			assert.Equal(t, "1.0.0", response.Version)
		})
	}
}

func TestHealthServiceAdapter_NilDatabaseIsUnhealthy(t *testing.T) {
	response, err := NewHealthServiceAdapter(nil, nil, "dev").GetHealth(context.Background())

	require.NoError(t, err)
	assert.Equal(t, dto.HealthStatusUnhealthy, response.Status)
	assert.Equal(t, dto.ConnectionDown, response.Database)
}
