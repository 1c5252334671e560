package api

import (
	"fmt"
	"net/http"
	"strings"

	"userapi/internal/domain/errors/domain"
)

// RouteRegistry manages HTTP route registration using Go 1.22+ ServeMux patterns.
// Every route is wrapped by the registry's Boundary; raw handlers cannot be registered.
type RouteRegistry struct {
	boundary *Boundary
	routes   map[string]struct{}
	patterns []string
	mux      *http.ServeMux
}

// NewRouteRegistry creates a new RouteRegistry whose routes run inside boundary.
func NewRouteRegistry(boundary *Boundary) *RouteRegistry {
	if boundary == nil {
		panic("boundary cannot be nil")
	}
	return &RouteRegistry{
		boundary: boundary,
		routes:   make(map[string]struct{}),
		patterns: make([]string, 0),
		mux:      http.NewServeMux(),
	}
}

// RegisterAPIRoutes registers all API routes and the catch-all.
func (r *RouteRegistry) RegisterAPIRoutes(healthHandler *HealthHandler, userHandler *UserHandler) {
	routes := []struct {
		pattern string
		handler HandlerFunc
	}{
		{"GET /health", healthHandler.GetHealth},
		{"GET /api/users/{id}", userHandler.GetUser},
		{"POST /api/users", userHandler.CreateUser},
		{"POST /api/users/{id}/posts", userHandler.CreatePost},
		{"DELETE /api/users/{id}", userHandler.DeleteUser},
	}

	for _, route := range routes {
		if err := r.Handle(route.pattern, route.handler); err != nil {
			panic(fmt.Errorf("failed to register route %q: %w", route.pattern, err))
		}
	}

	r.mux.Handle("/", r.boundary.Wrap(NotFound))
}

// Handle registers h for pattern behind the boundary.
func (r *RouteRegistry) Handle(pattern string, h HandlerFunc) error {
	if err := validatePattern(pattern); err != nil {
		return err
	}
	if err := r.checkRouteConflict(pattern); err != nil {
		return err
	}

	r.mux.Handle(pattern, r.boundary.Wrap(h))
	r.routes[pattern] = struct{}{}
	r.patterns = append(r.patterns, pattern)
	return nil
}

// NotFound rejects any request no route matched.
func NotFound(_ http.ResponseWriter, r *http.Request) error {
	return domain.New(fmt.Sprintf("Can't find %s on this server", r.URL.RequestURI()), http.StatusNotFound)
}

// BuildServeMux returns the configured ServeMux.
func (r *RouteRegistry) BuildServeMux() *http.ServeMux {
	return r.mux
}

// HasRoute checks if a route pattern is registered.
func (r *RouteRegistry) HasRoute(pattern string) bool {
	_, exists := r.routes[pattern]
	return exists
}

// RouteCount returns the number of registered routes, excluding the catch-all.
func (r *RouteRegistry) RouteCount() int {
	return len(r.routes)
}

// GetPatterns returns all registered route patterns.
func (r *RouteRegistry) GetPatterns() []string {
	return r.patterns
}

var validMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true,
}

func validatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("route pattern cannot be empty")
	}

	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		return fmt.Errorf("invalid route pattern '%s': must have format 'METHOD /path'", pattern)
	}
	if !validMethods[method] {
		return fmt.Errorf("invalid HTTP method '%s' in pattern '%s'", method, pattern)
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("path '%s' in pattern '%s' must start with '/'", path, pattern)
	}
	if strings.Contains(path, "//") {
		return fmt.Errorf("path '%s' in pattern '%s' contains double slashes", path, pattern)
	}
	if strings.Count(path, "{") != strings.Count(path, "}") {
		return fmt.Errorf("invalid parameter syntax in pattern '%s'", pattern)
	}
	return nil
}

func (r *RouteRegistry) checkRouteConflict(newPattern string) error {
	newMethod, newPath, _ := strings.Cut(newPattern, " ")
	for _, existing := range r.patterns {
		method, path, _ := strings.Cut(existing, " ")
		if method == newMethod && normalizePath(path) == normalizePath(newPath) {
			return fmt.Errorf("route conflict detected: pattern '%s' conflicts with existing pattern '%s'",
				newPattern, existing)
		}
	}
	return nil
}

// normalizePath replaces every {param} segment with a placeholder.
func normalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			segments[i] = "{param}"
		}
	}
	return strings.Join(segments, "/")
}
