package reportclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"javasegment/internal/application/common/retry"
	"javasegment/internal/config"
	"javasegment/internal/domain/errors/domain"
	"javasegment/internal/port/outbound"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, maxRetries int) (*Client, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(config.ReportConfig{
		BaseURL:  server.URL + "/",
		Endpoint: "/v1/report",
		APIKey:   "secret",
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)
	client.retry = retry.NewRetryExecutor(&retry.RetryConfig{
		MaxRetries:    maxRetries,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
		BackoffFactor: 1,
	}, retry.RetryableCheckerFunc(isRetryable))
	return client, &calls
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(config.ReportConfig{})
	require.Error(t, err)
}

func TestClient_GenerateReport(t *testing.T) {
	payload := outbound.ReportPayload{ProjectID: "p1", ProjectName: "demo", Path: "A.java", Content: "void m() {}"}

	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/report", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, map[string]string{
			"projectId":   "p1",
			"projectName": "demo",
			"path":        "A.java",
			"content":     "void m() {}",
		}, got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"report":"looks fine"}`))
	}, 0)

	result, err := client.GenerateReport(context.Background(), payload)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"report": "looks fine"}, result)
	assert.Equal(t, int32(1), *calls)
}

func TestClient_PlainTextResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("  plain report\n"))
	}, 0)

	result, err := client.GenerateReport(context.Background(), outbound.ReportPayload{})

	require.NoError(t, err)
	assert.Equal(t, "plain report", result)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var attempt int32
	client, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&attempt, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"rawReport":"ok"}`))
	}, 3)

	result, err := client.GenerateReport(context.Background(), outbound.ReportPayload{})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"rawReport": "ok"}, result)
	assert.Equal(t, int32(3), *calls)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantCode      string
		wantRetryable bool
		wantCalls     int32
		wantMessage   string
	}{
		{"bad request", http.StatusBadRequest, `{"message":"content missing"}`, "invalid_request", false, 1, "content missing"},
		{"unauthorized", http.StatusUnauthorized, ``, "unauthorized", false, 1, "HTTP 401"},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, "rate_limit_exceeded", true, 3, "slow down"},
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, "server_error", true, 3, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, 2)

			result, err := client.GenerateReport(context.Background(), outbound.ReportPayload{})

			require.Error(t, err)
			assert.Nil(t, result)
			var reportErr *outbound.ReportError
			require.True(t, errors.As(err, &reportErr))
			assert.Equal(t, tt.wantCode, reportErr.Code)
			assert.Equal(t, tt.status, reportErr.StatusCode)
			assert.Equal(t, tt.wantRetryable, reportErr.Retryable)
			assert.Contains(t, reportErr.Message, tt.wantMessage)
			assert.Equal(t, tt.wantCalls, *calls)
			assert.ErrorIs(t, err, domain.ErrReportGeneration)
			assert.Equal(t, tt.wantRetryable, errors.Is(err, domain.ErrReportUnavailable))
		})
	}
}

func TestHandleNetworkError(t *testing.T) {
	canceled := HandleNetworkError(context.Canceled)
	assert.Equal(t, "request_canceled", canceled.Code)
	assert.False(t, canceled.Retryable)

	refused := HandleNetworkError(errors.New("dial tcp 127.0.0.1:1: connect: connection refused"))
	assert.Equal(t, "connection_refused", refused.Code)
	assert.True(t, refused.Retryable)
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "http://h/api/report", joinURL("http://h/api/", "/report"))
	assert.Equal(t, "http://h", joinURL("http://h/", ""))
}
