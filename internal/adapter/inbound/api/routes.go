package api

import (
	"fmt"
	"net/http"
	"strings"
)

// Route patterns served by the API.
const (
	RouteHealth   = "GET /health"
	RouteSegments = "POST /api/v1/segments"
	RouteReports  = "POST /api/v1/reports"
)

var validMethods = map[string]bool{
	http.MethodGet: true, http.MethodPost: true, http.MethodPut: true, http.MethodDelete: true,
	http.MethodPatch: true, http.MethodHead: true, http.MethodOptions: true,
}

// RouteRegistry manages HTTP route registration using Go 1.22+ ServeMux patterns.
type RouteRegistry struct {
	routes   map[string]http.Handler
	patterns []string
	mux      *http.ServeMux
}

// NewRouteRegistry creates a new RouteRegistry.
func NewRouteRegistry() *RouteRegistry {
	return &RouteRegistry{
		routes:   make(map[string]http.Handler),
		patterns: make([]string, 0),
		mux:      http.NewServeMux(),
	}
}

// RegisterAPIRoutes registers the health, segmentation and report endpoints. A nil
// report handler leaves the report route out, for deployments without an engine.
func (r *RouteRegistry) RegisterAPIRoutes(health *HealthHandler, segments *SegmentHandler, reports *ReportHandler) error {
	if err := r.RegisterRoute(RouteHealth, http.HandlerFunc(health.GetHealth)); err != nil {
		return fmt.Errorf("failed to register health route: %w", err)
	}
	if err := r.RegisterRoute(RouteSegments, http.HandlerFunc(segments.CreateSegments)); err != nil {
		return fmt.Errorf("failed to register segments route: %w", err)
	}
	if reports == nil {
		return nil
	}
	if err := r.RegisterRoute(RouteReports, http.HandlerFunc(reports.CreateReport)); err != nil {
		return fmt.Errorf("failed to register reports route: %w", err)
	}
	return nil
}

// RegisterRoute registers a single route with the given pattern and handler.
func (r *RouteRegistry) RegisterRoute(pattern string, handler http.Handler) error {
	if err := validatePattern(pattern); err != nil {
		return err
	}
	if _, exists := r.routes[pattern]; exists {
		return fmt.Errorf("route conflict detected: pattern '%s' is already registered", pattern)
	}

	r.mux.Handle(pattern, handler)
	r.routes[pattern] = handler
	r.patterns = append(r.patterns, pattern)
	return nil
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

// RouteCount returns the number of registered routes.
func (r *RouteRegistry) RouteCount() int {
	return len(r.routes)
}

// GetPatterns returns all registered route patterns in registration order.
func (r *RouteRegistry) GetPatterns() []string {
	return r.patterns
}

// validatePattern accepts "METHOD /path" patterns without path parameters.
func validatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("route pattern cannot be empty")
	}

	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		return fmt.Errorf("invalid route pattern '%s': must have format 'METHOD /path'", pattern)
	}
	method, path = strings.TrimSpace(method), strings.TrimSpace(path)

	if !validMethods[strings.ToUpper(method)] {
		return fmt.Errorf("invalid HTTP method '%s' in pattern '%s'", method, pattern)
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("path '%s' in pattern '%s' must start with '/'", path, pattern)
	}
	if strings.Contains(path, "//") {
		return fmt.Errorf("path '%s' in pattern '%s' contains double slashes", path, pattern)
	}
	return nil
}
