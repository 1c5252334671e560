package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"userapi/internal/application/dto"
	"userapi/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testAPIConfig() config.APIConfig {
	return config.APIConfig{
		Host:         "127.0.0.1",
		Port:         "0",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		MaxBodyBytes: 1024,
	}
}

func TestServerBuilder_Validation(t *testing.T) {
	errorHandler := NewDefaultErrorHandler(config.EnvironmentProduction, nil, nil)

	tests := []struct {
		name    string
		builder *ServerBuilder
		wantErr string
	}{
		{
			name:    "missing health service",
			builder: NewServerBuilder(testAPIConfig()).WithUserService(&MockUserService{}).WithErrorHandler(errorHandler),
			wantErr: "health service is required",
		},
		{
			name:    "missing user service",
			builder: NewServerBuilder(testAPIConfig()).WithHealthService(&MockHealthService{}).WithErrorHandler(errorHandler),
			wantErr: "user service is required",
		},
		{
			name:    "missing error handler",
			builder: NewServerBuilder(testAPIConfig()).WithHealthService(&MockHealthService{}).WithUserService(&MockUserService{}),
			wantErr: "error handler is required",
		},
		{
			name: "invalid port",
			builder: NewServerBuilder(config.APIConfig{Port: "99999"}).
				WithHealthService(&MockHealthService{}).
				WithUserService(&MockUserService{}).
				WithErrorHandler(errorHandler),
			wantErr: "invalid port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := tt.builder.Build()
			require.Error(t, err)
			assert.Nil(t, server)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func buildTestServer(t *testing.T, health *MockHealthService) *Server {
	t.Helper()
	server, err := NewServerBuilder(testAPIConfig()).
		WithHealthService(health).
		WithUserService(&MockUserService{}).
		WithErrorHandler(NewDefaultErrorHandler(config.EnvironmentProduction, nil, nil)).
		WithDefaultMiddleware().
		Build()
	require.NoError(t, err)
	return server
}

func TestServer_HandlerHasMiddlewareAndRoutes(t *testing.T) {
	server := buildTestServer(t, &MockHealthService{})

	assert.Equal(t, 5, server.RouteCount())
	assert.True(t, server.HasRoute("GET /health"))

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_Lifecycle(t *testing.T) {
	health := &MockHealthService{}
	health.On("GetHealth", mock.Anything).
		Return(&dto.HealthResponse{Status: dto.HealthStatusHealthy, Timestamp: time.Now()}, nil)
	server := buildTestServer(t, health)

	require.NoError(t, server.Start(context.Background()))
	assert.True(t, server.IsRunning())
	assert.Error(t, server.Start(context.Background()), "second start must fail")

	resp, err := http.Get(fmt.Sprintf("http://%s/health", server.Address()))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "success", body["status"])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))
	assert.False(t, server.IsRunning())
	require.NoError(t, server.Shutdown(ctx), "shutdown of a stopped server is a no-op")

	select {
	case err := <-server.Err():
		t.Fatalf("unexpected serve error: %v", err)
	default:
	}
}

func TestServer_StartWithCancelledContext(t *testing.T) {
	server := buildTestServer(t, &MockHealthService{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, server.Start(ctx), context.Canceled)
	assert.False(t, server.IsRunning())
}

func TestServer_Close(t *testing.T) {
	server := buildTestServer(t, &MockHealthService{})
	require.NoError(t, server.Start(context.Background()))

	require.NoError(t, server.Close())
	assert.False(t, server.IsRunning())
}
