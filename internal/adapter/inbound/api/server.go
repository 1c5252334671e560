package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"userapi/internal/application/common/logging"
	"userapi/internal/config"
	"userapi/internal/port/inbound"
)

// Server represents the HTTP API server.
type Server struct {
	config        config.APIConfig
	httpServer    *http.Server
	routeRegistry *RouteRegistry
	listener      net.Listener
	serveErr      chan error
	isRunning     bool
	mu            sync.RWMutex
}

// ServerBuilder provides a fluent interface for building Server instances.
type ServerBuilder struct {
	config        config.APIConfig
	healthService inbound.HealthService
	userService   inbound.UserService
	errorHandler  ErrorHandler
	logger        logging.ApplicationLogger
	middleware    []MiddlewareFunc
}

// NewServerBuilder creates a new ServerBuilder.
func NewServerBuilder(cfg config.APIConfig) *ServerBuilder {
	return &ServerBuilder{
		config:     cfg,
		middleware: make([]MiddlewareFunc, 0),
	}
}

// WithHealthService sets the health service.
func (b *ServerBuilder) WithHealthService(service inbound.HealthService) *ServerBuilder {
	b.healthService = service
	return b
}

// WithUserService sets the user service.
func (b *ServerBuilder) WithUserService(service inbound.UserService) *ServerBuilder {
	b.userService = service
	return b
}

// WithErrorHandler sets the error handler every route reports to.
func (b *ServerBuilder) WithErrorHandler(handler ErrorHandler) *ServerBuilder {
	b.errorHandler = handler
	return b
}

// WithLogger sets the logger used by the boundary and request logging.
func (b *ServerBuilder) WithLogger(logger logging.ApplicationLogger) *ServerBuilder {
	b.logger = logger
	return b
}

// WithMiddleware adds middleware to the chain.
func (b *ServerBuilder) WithMiddleware(middleware MiddlewareFunc) *ServerBuilder {
	b.middleware = append(b.middleware, middleware)
	return b
}

// WithDefaultMiddleware adds the standard middleware chain.
func (b *ServerBuilder) WithDefaultMiddleware() *ServerBuilder {
	logger := b.logger
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return b.
		WithMiddleware(NewLoggingMiddleware(logger)).
		WithMiddleware(NewSecurityHeadersMiddleware()).
		WithMiddleware(NewCORSMiddleware())
}

// Build creates the Server instance.
func (b *ServerBuilder) Build() (*Server, error) {
	if err := b.validate(); err != nil {
		return nil, fmt.Errorf("server builder validation failed: %w", err)
	}
	if err := validateServerConfig(b.config); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = logging.NewNoopLogger()
	}

	boundary := NewBoundary(b.errorHandler, logger)
	registry := NewRouteRegistry(boundary)
	registry.RegisterAPIRoutes(
		NewHealthHandler(b.healthService),
		NewUserHandler(b.userService, boundary, b.config.MaxBodyBytes),
	)

	handler := Chain(registry.BuildServeMux(), b.middleware...)

	return &Server{
		config:        b.config,
		httpServer:    b.createHTTPServer(handler),
		routeRegistry: registry,
		serveErr:      make(chan error, 1),
	}, nil
}

func (b *ServerBuilder) validate() error {
	if b.healthService == nil {
		return errors.New("health service is required")
	}
	if b.userService == nil {
		return errors.New("user service is required")
	}
	if b.errorHandler == nil {
		return errors.New("error handler is required")
	}
	return nil
}

func (b *ServerBuilder) createHTTPServer(handler http.Handler) *http.Server {
	host := b.config.Host
	if host == "" {
		host = "0.0.0.0"
	}
	return &http.Server{
		Addr:         net.JoinHostPort(host, b.config.Port),
		Handler:      handler,
		ReadTimeout:  b.config.ReadTimeout,
		WriteTimeout: b.config.WriteTimeout,
	}
}

// Start opens the listening socket and serves in the background. A serve failure after
// startup is delivered on Err.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return errors.New("server is already running")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener
	s.isRunning = true

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
			s.serveErr <- err
		}
	}()

	return nil
}

// Err delivers a failure of the serve loop.
func (s *Server) Err() <-chan error {
	return s.serveErr
}

// Shutdown stops accepting connections and waits for in-flight requests to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}
	s.isRunning = false
	return s.httpServer.Shutdown(ctx)
}

// Close closes the listener and every connection immediately.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isRunning = false
	return s.httpServer.Close()
}

// Address returns the address the server listens on once started.
func (s *Server) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// HasRoute checks if a specific route is registered.
func (s *Server) HasRoute(pattern string) bool {
	return s.routeRegistry.HasRoute(pattern)
}

// RouteCount returns the number of registered routes.
func (s *Server) RouteCount() int {
	return s.routeRegistry.RouteCount()
}

func validateServerConfig(cfg config.APIConfig) error {
	if cfg.Port != "" && cfg.Port != "0" {
		if port, err := strconv.Atoi(cfg.Port); err != nil || port < 0 || port > 65535 {
			return errors.New("invalid port")
		}
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 {
		return errors.New("invalid timeout")
	}
	return nil
}
