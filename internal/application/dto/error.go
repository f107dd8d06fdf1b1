package dto

import "time"

// ErrorResponse is the body of every non-2xx API response. CorrelationID echoes
// the X-Correlation-ID of the request so a client report can be matched to logs.
type ErrorResponse struct {
	Error         string      `json:"error"`
	Message       string      `json:"message"`
	Details       interface{} `json:"details,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Timestamp     time.Time   `json:"timestamp,omitempty"`
}

// ErrorCode is the machine-readable error field of an ErrorResponse.
type ErrorCode string

const (
	ErrorCodeInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrorCodeSourceTooLarge    ErrorCode = "SOURCE_TOO_LARGE"
	ErrorCodeReportUnavailable ErrorCode = "REPORT_UNAVAILABLE"
	ErrorCodeReportFailed      ErrorCode = "REPORT_FAILED"
	ErrorCodeInternalError     ErrorCode = "INTERNAL_ERROR"
)

// NewErrorResponse creates a new error response.
func NewErrorResponse(code ErrorCode, message string, details interface{}) ErrorResponse {
	return ErrorResponse{
		Error:     string(code),
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// WithCorrelationID returns a copy of the response tagged with id.
func (e ErrorResponse) WithCorrelationID(id string) ErrorResponse {
	e.CorrelationID = id
	return e
}

// ValidationError names the request field that was rejected.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ValidationErrorDetails is the details payload of a validation failure.
type ValidationErrorDetails struct {
	Errors []ValidationError `json:"errors"`
}
