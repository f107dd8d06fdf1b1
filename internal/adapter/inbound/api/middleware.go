package api

import (
	"net/http"
	"strings"

	"javasegment/internal/application/common/logging"
	"javasegment/internal/application/common/slogger"
	"javasegment/internal/application/dto"
)

// MiddlewareFunc defines the middleware function signature.
type MiddlewareFunc func(http.Handler) http.Handler

// CORSConfig holds CORS middleware configuration.
type CORSConfig struct {
	AllowedOrigin  string
	AllowedMethods []string
	AllowedHeaders []string
}

// DefaultCORSConfig allows any origin to call the JSON endpoints.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigin:  "*",
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Correlation-ID"},
	}
}

// NewCORSMiddleware adds CORS headers and answers preflight requests.
func NewCORSMiddleware(config CORSConfig) MiddlewareFunc {
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", config.AllowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", methods)
			w.Header().Set("Access-Control-Allow-Headers", headers)

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewErrorHandlingMiddleware turns a handler panic into a JSON 500.
func NewErrorHandlingMiddleware() MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					slogger.Error(r.Context(), "Panic recovered in HTTP handler", slogger.Fields{
						"method": r.Method,
						"path":   r.URL.Path,
						"panic":  recovered,
					})
					response := dto.NewErrorResponse(dto.ErrorCodeInternalError, "Internal server error", nil).
						WithCorrelationID(logging.GetCorrelationIDFromContext(r.Context()))
					_ = WriteJSON(w, http.StatusInternalServerError, response)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// NewMiddlewareChain composes middlewares so the first one listed runs outermost.
func NewMiddlewareChain(middlewares ...MiddlewareFunc) MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		handler := next
		for i := len(middlewares) - 1; i >= 0; i-- {
			handler = middlewares[i](handler)
		}
		return handler
	}
}
