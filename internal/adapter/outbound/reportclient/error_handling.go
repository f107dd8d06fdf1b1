package reportclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"javasegment/internal/port/outbound"
)

// errorBody covers the error shapes report engines commonly return.
type errorBody struct {
	Message string `json:"message"`
	Error   any    `json:"error"`
}

func apiMessage(data []byte) string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	switch v := body.Error.(type) {
	case string:
		return v
	case map[string]any:
		if msg, ok := v["message"].(string); ok {
			return msg
		}
	}
	return ""
}

// HandleHTTPError converts a non-2xx response into a ReportError.
func HandleHTTPError(resp *http.Response, data []byte) *outbound.ReportError {
	detail := apiMessage(data)
	withDetail := func(message string) string {
		if detail != "" {
			return message + ": " + detail
		}
		return message
	}

	status := resp.StatusCode
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &outbound.ReportError{
			Code:       "unauthorized",
			Type:       "auth",
			Message:    withDetail(fmt.Sprintf("Report engine rejected credentials (HTTP %d)", status)),
			StatusCode: status,
		}
	case status == http.StatusTooManyRequests:
		message := fmt.Sprintf("Rate limit exceeded (HTTP %d)", status)
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			message += ", retry after " + retryAfter + " seconds"
		}
		return &outbound.ReportError{
			Code:       "rate_limit_exceeded",
			Type:       "quota",
			Message:    withDetail(message),
			StatusCode: status,
			Retryable:  true,
		}
	case status >= 500:
		return &outbound.ReportError{
			Code:       "server_error",
			Type:       "server",
			Message:    withDetail(fmt.Sprintf("Server error (HTTP %d)", status)),
			StatusCode: status,
			Retryable:  true,
		}
	case status >= 400:
		return &outbound.ReportError{
			Code:       "invalid_request",
			Type:       "validation",
			Message:    withDetail(fmt.Sprintf("Bad request (HTTP %d)", status)),
			StatusCode: status,
		}
	default:
		return &outbound.ReportError{
			Code:       "http_error",
			Type:       "server",
			Message:    withDetail("Unexpected HTTP status: " + resp.Status),
			StatusCode: status,
		}
	}
}

// HandleNetworkError converts a transport failure into a ReportError.
func HandleNetworkError(err error) *outbound.ReportError {
	if errors.Is(err, context.Canceled) {
		return &outbound.ReportError{Code: "request_canceled", Type: "network", Message: "request was canceled", Cause: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &outbound.ReportError{Code: "timeout", Type: "network", Message: "request timed out", Retryable: true, Cause: err}
	}
	if strings.Contains(err.Error(), "connection refused") {
		return &outbound.ReportError{Code: "connection_refused", Type: "network", Message: "connection refused", Retryable: true, Cause: err}
	}
	return &outbound.ReportError{Code: "network_error", Type: "network", Message: "network failure", Retryable: true, Cause: err}
}
