// Package reportclient calls the external report engine over HTTP.
package reportclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"javasegment/internal/application/common/retry"
	"javasegment/internal/application/common/slogger"
	"javasegment/internal/config"
	"javasegment/internal/port/outbound"
)

const (
	defaultTimeout  = 2 * time.Minute
	maxResponseSize = 8 << 20
)

// Client posts one segment payload at a time to the report engine.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	retry      *retry.RetryExecutor
}

// NewClient creates a Client from the report configuration.
func NewClient(cfg config.ReportConfig) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("report base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        joinURL(cfg.BaseURL, cfg.Endpoint),
		apiKey:     cfg.APIKey,
		retry:      retry.NewRetryExecutor(cfg.Retry(), retry.RetryableCheckerFunc(isRetryable)),
	}, nil
}

// GenerateReport implements outbound.ReportGenerator. A JSON response is decoded into
// a generic value; any other body is returned as a string.
func (c *Client) GenerateReport(ctx context.Context, payload outbound.ReportPayload) (any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report payload: %w", err)
	}

	var result any
	err = c.retry.Execute(ctx, func(ctx context.Context) error {
		var callErr error
		result, callErr = c.post(ctx, body)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, body []byte) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &outbound.ReportError{Code: "invalid_request", Type: "validation", Message: err.Error(), Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, HandleNetworkError(err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slogger.Warn(ctx, "Failed to close report response body", slogger.Field("error", closeErr.Error()))
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, HandleNetworkError(err)
	}

	slogger.Debug(ctx, "Report engine responded", slogger.Fields{
		"status_code": resp.StatusCode,
		"bytes":       len(data),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, HandleHTTPError(resp, data)
	}
	return DecodeResult(data), nil
}

// DecodeResult decodes a JSON body, falling back to the trimmed text.
func DecodeResult(data []byte) any {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err == nil {
		return decoded
	}
	return strings.TrimSpace(string(data))
}

func isRetryable(err error) bool {
	var reportErr *outbound.ReportError
	if errors.As(err, &reportErr) {
		return reportErr.Retryable
	}
	return false
}

func joinURL(base, endpoint string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	endpoint = strings.TrimLeft(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return base
	}
	return base + "/" + endpoint
}
