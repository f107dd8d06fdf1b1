package common

import (
	"fmt"
	"strings"

	"javasegment/internal/application/dto"
	"javasegment/internal/domain/errors/domain"
)

const maxIdentifierLength = 255

// ValidationError reports one invalid request field. It wraps domain.ErrInvalidInput
// unless a more specific sentinel is attached.
type ValidationError struct {
	Field   string
	Message string
	Value   string
	cause   error
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("validation error on field '%s': %s (value: %s)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match the underlying domain error.
func (e ValidationError) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	return domain.ErrInvalidInput
}

// ToDTO converts the error into its API representation.
func (e ValidationError) ToDTO() dto.ValidationError {
	return dto.ValidationError{Field: e.Field, Message: e.Message, Value: e.Value}
}

// ValidateSource enforces the size limit; maxBytes <= 0 disables it. Content is
// not checked: the segmenter works on bytes and returns no segments for anything
// it cannot read as Java.
func ValidateSource(source string, maxBytes int) error {
	if maxBytes > 0 && len(source) > maxBytes {
		return ValidationError{
			Field:   "source",
			Message: fmt.Sprintf("exceeds %d bytes", maxBytes),
			cause:   domain.ErrSourceTooLarge,
		}
	}
	return nil
}

// ValidateSegmentRequest checks a segmentation request. Path is a label only and
// is never validated.
func ValidateSegmentRequest(req dto.SegmentRequest, maxBytes int) error {
	return ValidateSource(req.Source, maxBytes)
}

// ValidateReportRequest checks a report request. Project fields are optional but
// bounded, and the source must not be blank.
func ValidateReportRequest(req dto.ReportRequest, maxBytes int) error {
	if strings.TrimSpace(req.Source) == "" {
		return ValidationError{Field: "source", Message: "is required", cause: domain.ErrEmptySource}
	}
	for field, value := range map[string]string{"projectId": req.ProjectID, "projectName": req.ProjectName} {
		if len(value) > maxIdentifierLength {
			return NewValidationError(field, "exceeds maximum length")
		}
	}
	return ValidateSource(req.Source, maxBytes)
}
