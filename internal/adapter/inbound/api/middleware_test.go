package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"javasegment/internal/application/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORSMiddleware(t *testing.T) {
	called := false
	handler := NewCORSMiddleware(DefaultCORSConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("preflight short-circuits", func(t *testing.T) {
		called = false
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodOptions, "/api/v1/segments", nil))

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.False(t, called)
		assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, OPTIONS", recorder.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "86400", recorder.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("regular request passes through", func(t *testing.T) {
		called = false
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/segments", nil))

		assert.True(t, called)
		assert.Contains(t, recorder.Header().Get("Access-Control-Allow-Headers"), "X-Correlation-ID")
	})
}

func TestErrorHandlingMiddleware_RecoversPanic(t *testing.T) {
	handler := NewErrorHandlingMiddleware()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("unbalanced braces")
	}))
	recorder := httptest.NewRecorder()

	require.NotPanics(t, func() {
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/segments", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	response := decodeError(t, recorder)
	assert.Equal(t, string(dto.ErrorCodeInternalError), response.Error)
	assert.NotContains(t, recorder.Body.String(), "unbalanced braces")
	assert.Empty(t, response.CorrelationID)
}

func TestMiddlewareChain_Order(t *testing.T) {
	var order []string
	tag := func(name string) MiddlewareFunc {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := NewMiddlewareChain(tag("first"), tag("second"), tag("third"))(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"first", "second", "third", "handler"}, order)
}
