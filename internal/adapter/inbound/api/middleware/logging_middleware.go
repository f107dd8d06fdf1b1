// Package middleware holds HTTP middleware that needs request-scoped logging context.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"javasegment/internal/adapter/inbound/api/netutil"
	"javasegment/internal/application/common/logging"
	"javasegment/internal/application/common/slogger"

	"github.com/google/uuid"
)

// CorrelationIDHeader carries the correlation ID in both directions.
const CorrelationIDHeader = "X-Correlation-ID"

const maxCorrelationIDLength = 200

// LoggingConfig tunes the request logging middleware.
type LoggingConfig struct {
	// Enabled turns the completion log off without dropping correlation IDs.
	Enabled              bool
	SlowRequestThreshold time.Duration
	SensitiveHeaders     []string
	ExcludePaths         []string
}

// DefaultLoggingConfig logs every request except health checks.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Enabled:              true,
		SlowRequestThreshold: 5 * time.Second,
		SensitiveHeaders:     []string{"Authorization", "Cookie"},
		ExcludePaths:         []string{"/health"},
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// NewStructuredLoggingMiddleware stores a correlation ID and the client IP in the
// request context, echoes the ID back, and logs the completed request. A valid
// incoming X-Correlation-ID is kept; anything else is replaced with a UUID.
func NewStructuredLoggingMiddleware(config LoggingConfig) func(http.Handler) http.Handler {
	excluded := make(map[string]bool, len(config.ExcludePaths))
	for _, path := range config.ExcludePaths {
		excluded[path] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			correlationID := r.Header.Get(CorrelationIDHeader)
			if !isValidCorrelationID(correlationID) {
				correlationID = uuid.New().String()
			}
			clientIP := netutil.ClientIP(r)

			ctx := logging.WithCorrelationID(r.Context(), correlationID)
			ctx = logging.WithClientIP(ctx, clientIP)
			r = r.WithContext(ctx)
			w.Header().Set(CorrelationIDHeader, correlationID)

			if !config.Enabled || excluded[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			rw := newResponseWriter(w)
			start := time.Now()
			next.ServeHTTP(rw, r)
			logRequest(config, r, rw, clientIP, time.Since(start))
		})
	}
}

func logRequest(config LoggingConfig, r *http.Request, rw *responseWriter, clientIP string, duration time.Duration) {
	fields := slogger.Fields{
		"method":        r.Method,
		"path":          r.URL.Path,
		"status":        rw.statusCode,
		"duration_ms":   float64(duration.Nanoseconds()) / 1e6,
		"request_size":  r.ContentLength,
		"response_size": rw.size,
		"client_ip":     clientIP,
	}
	if r.URL.RawQuery != "" {
		fields["query"] = r.URL.RawQuery
	}
	if userAgent := r.Header.Get("User-Agent"); userAgent != "" {
		fields["user_agent"] = userAgent
	}
	for _, header := range config.SensitiveHeaders {
		if r.Header.Get(header) != "" {
			fields[strings.ToLower(header)+"_present"] = true
		}
	}

	ctx := r.Context()
	switch {
	case rw.statusCode >= http.StatusInternalServerError:
		slogger.Error(ctx, "HTTP request failed", fields)
	case rw.statusCode >= http.StatusBadRequest:
		slogger.Warn(ctx, "HTTP request rejected", fields)
	case config.SlowRequestThreshold > 0 && duration > config.SlowRequestThreshold:
		fields["slow"] = true
		slogger.Warn(ctx, "HTTP request completed slowly", fields)
	default:
		slogger.Info(ctx, "HTTP request completed", fields)
	}
}

func isValidCorrelationID(s string) bool {
	if s == "" || len(s) > maxCorrelationIDLength {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '-' && r != '_' {
			return false
		}
	}
	return true
}
