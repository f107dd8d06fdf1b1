package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"javasegment/internal/adapter/inbound/api/middleware"
	"javasegment/internal/application/common/slogger"
	"javasegment/internal/config"
	"javasegment/internal/port/inbound"
)

// Server represents the HTTP API server.
type Server struct {
	config          *config.Config
	httpServer      *http.Server
	routeRegistry   *RouteRegistry
	listener        net.Listener
	isRunning       bool
	mu              sync.RWMutex
	middlewareCount int
}

// ServerBuilder provides a fluent interface for building Server instances.
type ServerBuilder struct {
	config         *config.Config
	healthService  inbound.HealthService
	segmentService inbound.SegmentationService
	reportService  inbound.ReportService
	errorHandler   ErrorHandler
	middleware     []MiddlewareFunc
}

// NewServerBuilder creates a new ServerBuilder.
func NewServerBuilder(config *config.Config) *ServerBuilder {
	return &ServerBuilder{
		config:     config,
		middleware: make([]MiddlewareFunc, 0),
	}
}

// WithHealthService sets the health service.
func (b *ServerBuilder) WithHealthService(service inbound.HealthService) *ServerBuilder {
	b.healthService = service
	return b
}

// WithSegmentationService sets the segmentation service.
func (b *ServerBuilder) WithSegmentationService(service inbound.SegmentationService) *ServerBuilder {
	b.segmentService = service
	return b
}

// WithReportService sets the report service. Without one the report route is not served.
func (b *ServerBuilder) WithReportService(service inbound.ReportService) *ServerBuilder {
	b.reportService = service
	return b
}

// WithErrorHandler sets the error handler.
func (b *ServerBuilder) WithErrorHandler(handler ErrorHandler) *ServerBuilder {
	b.errorHandler = handler
	return b
}

// WithMiddleware adds middleware to the chain. The first one added runs outermost.
func (b *ServerBuilder) WithMiddleware(middleware MiddlewareFunc) *ServerBuilder {
	b.middleware = append(b.middleware, middleware)
	return b
}

// WithDefaultMiddleware adds the standard middleware chain. Request logging is
// skipped when the API config turns it off; correlation IDs are kept either way.
func (b *ServerBuilder) WithDefaultMiddleware() *ServerBuilder {
	loggingConfig := middleware.DefaultLoggingConfig()
	if b.config != nil {
		loggingConfig.Enabled = b.config.API.LoggingEnabled()
	}
	return b.
		WithMiddleware(middleware.NewStructuredLoggingMiddleware(loggingConfig)).
		WithMiddleware(NewCORSMiddleware(DefaultCORSConfig())).
		WithMiddleware(NewErrorHandlingMiddleware())
}

// Build creates the Server instance.
func (b *ServerBuilder) Build() (*Server, error) {
	if err := b.validate(); err != nil {
		return nil, fmt.Errorf("server builder validation failed: %w", err)
	}
	if err := validateServerConfig(b.config); err != nil {
		return nil, err
	}

	registry := NewRouteRegistry()
	maxSource := b.config.API.MaxSourceBytes

	var reportHandler *ReportHandler
	if b.reportService != nil {
		reportHandler = NewReportHandler(b.reportService, b.errorHandler, maxSource)
	}
	if err := registry.RegisterAPIRoutes(
		NewHealthHandler(b.healthService, b.errorHandler),
		NewSegmentHandler(b.segmentService, b.errorHandler, maxSource),
		reportHandler,
	); err != nil {
		return nil, fmt.Errorf("failed to build server: %w", err)
	}

	handler := NewMiddlewareChain(b.middleware...)(registry.BuildServeMux())

	host := b.config.API.Host
	if host == "" {
		host = "0.0.0.0"
	}

	return &Server{
		config: b.config,
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(host, b.config.API.Port),
			Handler:           handler,
			ReadTimeout:       b.config.API.ReadTimeout,
			ReadHeaderTimeout: b.config.API.ReadTimeout,
			WriteTimeout:      b.config.API.WriteTimeout,
		},
		routeRegistry:   registry,
		middlewareCount: len(b.middleware),
	}, nil
}

func (b *ServerBuilder) validate() error {
	if b.config == nil {
		return errors.New("config is required")
	}
	if b.healthService == nil {
		return errors.New("health service is required")
	}
	if b.segmentService == nil {
		return errors.New("segmentation service is required")
	}
	if b.errorHandler == nil {
		return errors.New("error handler is required")
	}
	return nil
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return errors.New("server is already running")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener

	// Port 0 resolves to a real port once bound.
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.httpServer.Addr = net.JoinHostPort(s.Host(), strconv.Itoa(tcpAddr.Port))
	}
	s.isRunning = true

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.ErrorNoCtx("HTTP server stopped", slogger.Field("error", err.Error()))
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}
	}()

	slogger.Info(ctx, "HTTP server listening", slogger.Field("address", s.httpServer.Addr))
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}
	s.isRunning = false
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server's listening address.
func (s *Server) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.httpServer.Addr
}

// Host returns the server's host.
func (s *Server) Host() string {
	if s.config.API.Host == "" {
		return "0.0.0.0"
	}
	return s.config.API.Host
}

// ReadTimeout returns the server's read timeout.
func (s *Server) ReadTimeout() time.Duration {
	return s.config.API.ReadTimeout
}

// WriteTimeout returns the server's write timeout.
func (s *Server) WriteTimeout() time.Duration {
	return s.config.API.WriteTimeout
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

// MiddlewareCount returns the number of registered middleware.
func (s *Server) MiddlewareCount() int {
	return s.middlewareCount
}

// HasRoute checks if a specific route is registered.
func (s *Server) HasRoute(pattern string) bool {
	return s.routeRegistry.HasRoute(pattern)
}

// RouteCount returns the number of registered routes.
func (s *Server) RouteCount() int {
	return s.routeRegistry.RouteCount()
}

func validateServerConfig(config *config.Config) error {
	if config.API.Port != "" && config.API.Port != "0" {
		if port, err := strconv.Atoi(config.API.Port); err != nil || port < 0 || port > 65535 {
			return fmt.Errorf("invalid port %q", config.API.Port)
		}
	}
	if config.API.ReadTimeout < 0 || config.API.WriteTimeout < 0 {
		return errors.New("invalid timeout")
	}
	return nil
}
