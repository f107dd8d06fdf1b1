// Package outbound defines the ports the application uses to reach external systems.
package outbound

import (
	"context"

	"javasegment/internal/domain/errors/domain"
)

// ReportPayload is the body sent to the report engine for one segment.
type ReportPayload struct {
	ProjectID   string `json:"projectId"`
	ProjectName string `json:"projectName"`
	Path        string `json:"path"`
	Content     string `json:"content"`
}

// ReportGenerator asks the external report engine to analyze one segment. The result
// is the decoded response body: usually a map, sometimes a bare string.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, payload ReportPayload) (any, error)
}

// ReportError describes a failed report engine call.
type ReportError struct {
	Code       string `json:"code"`
	Type       string `json:"type"` // auth, quota, validation, server, network
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
	Retryable  bool   `json:"retryable"`
	Cause      error  `json:"-"`
}

// Error implements the error interface.
func (e *ReportError) Error() string {
	if e.Cause != nil {
		return "report engine error (" + e.Type + "/" + e.Code + "): " + e.Message + ": " + e.Cause.Error()
	}
	return "report engine error (" + e.Type + "/" + e.Code + "): " + e.Message
}

// Unwrap returns the underlying cause error.
func (e *ReportError) Unwrap() error {
	return e.Cause
}

// Is matches domain.ErrReportUnavailable for transient failures and
// domain.ErrReportGeneration for every report engine failure.
func (e *ReportError) Is(target error) bool {
	switch target {
	case domain.ErrReportGeneration:
		return true
	case domain.ErrReportUnavailable:
		return e.Retryable
	}
	return false
}
