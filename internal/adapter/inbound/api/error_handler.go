// Package api exposes segmentation and reporting over HTTP.
//
// Service errors are mapped onto status codes through their domain sentinels, so an
// oversized source answers with the cause instead of a generic internal error:
//
//	{"error": "SOURCE_TOO_LARGE", "message": "validation error on field 'source': exceeds 1048576 bytes", "correlation_id": "..."}
package api

import (
	"errors"
	"net/http"

	"javasegment/internal/application/common"
	"javasegment/internal/application/common/logging"
	"javasegment/internal/application/common/slogger"
	"javasegment/internal/application/dto"
	"javasegment/internal/domain/errors/domain"
)

// ErrorHandler defines methods for handling HTTP errors.
type ErrorHandler interface {
	HandleValidationError(w http.ResponseWriter, r *http.Request, err error)
	HandleServiceError(w http.ResponseWriter, r *http.Request, err error)
}

// ErrorHandlingConfig describes the response written for one domain error.
type ErrorHandlingConfig struct {
	Sentinel        error
	LogMessage      string
	ErrorType       string
	HTTPStatus      int
	ErrorCode       dto.ErrorCode
	ResponseMessage string
	UseDetailedMsg  bool
}

// DefaultErrorHandler implements ErrorHandler with standard HTTP error responses.
type DefaultErrorHandler struct {
	errorConfigs []ErrorHandlingConfig
}

// NewDefaultErrorHandler creates a DefaultErrorHandler. Configurations are matched
// in order; a report engine error that is retryable matches both report
// sentinels, so the unavailable entry comes first.
func NewDefaultErrorHandler() ErrorHandler {
	return &DefaultErrorHandler{
		errorConfigs: []ErrorHandlingConfig{
			{
				Sentinel:       domain.ErrSourceTooLarge,
				LogMessage:     "Rejected oversized source",
				ErrorType:      "source_too_large",
				HTTPStatus:     http.StatusRequestEntityTooLarge,
				ErrorCode:      dto.ErrorCodeSourceTooLarge,
				UseDetailedMsg: true,
			},
			{
				Sentinel:       domain.ErrEmptySource,
				LogMessage:     "Rejected empty source",
				ErrorType:      "empty_source",
				HTTPStatus:     http.StatusBadRequest,
				ErrorCode:      dto.ErrorCodeInvalidRequest,
				UseDetailedMsg: true,
			},
			{
				Sentinel:       domain.ErrInvalidInput,
				LogMessage:     "Invalid request",
				ErrorType:      "invalid_input",
				HTTPStatus:     http.StatusBadRequest,
				ErrorCode:      dto.ErrorCodeInvalidRequest,
				UseDetailedMsg: true,
			},
			{
				Sentinel:        domain.ErrReportUnavailable,
				LogMessage:      "Report engine unavailable",
				ErrorType:       "report_unavailable",
				HTTPStatus:      http.StatusServiceUnavailable,
				ErrorCode:       dto.ErrorCodeReportUnavailable,
				ResponseMessage: "Report engine is unavailable",
			},
			{
				Sentinel:        domain.ErrReportGeneration,
				LogMessage:      "Report generation failed",
				ErrorType:       "report_generation",
				HTTPStatus:      http.StatusBadGateway,
				ErrorCode:       dto.ErrorCodeReportFailed,
				ResponseMessage: "Report engine returned an error",
			},
			{
				Sentinel:        domain.ErrPersistence,
				LogMessage:      "Report persistence failed",
				ErrorType:       "persistence",
				HTTPStatus:      http.StatusInternalServerError,
				ErrorCode:       dto.ErrorCodeInternalError,
				ResponseMessage: "Failed to store report",
			},
		},
	}
}

// HandleValidationError writes a 400 response carrying the offending field.
// Validation errors with a more specific sentinel are routed to its status code.
func (h *DefaultErrorHandler) HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr common.ValidationError
	if !errors.As(err, &validationErr) {
		h.HandleServiceError(w, r, err)
		return
	}

	config := h.findConfig(err)
	if config == nil || config.Sentinel == domain.ErrInvalidInput {
		h.logError(r, "Request validation failed", "validation", err)
		details := dto.ValidationErrorDetails{Errors: []dto.ValidationError{validationErr.ToDTO()}}
		response := dto.NewErrorResponse(dto.ErrorCodeInvalidRequest, validationErr.Error(), details)
		h.writeErrorResponse(w, r, http.StatusBadRequest, response)
		return
	}
	h.handleErrorWithConfig(w, r, err, *config)
}

// HandleServiceError maps err onto the first matching configuration, falling back
// to a 500 that never leaks the underlying message.
func (h *DefaultErrorHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr common.ValidationError
	if errors.As(err, &validationErr) {
		h.HandleValidationError(w, r, err)
		return
	}

	if config := h.findConfig(err); config != nil {
		h.handleErrorWithConfig(w, r, err, *config)
		return
	}

	h.logError(r, "Internal server error", "internal", err)
	response := dto.NewErrorResponse(dto.ErrorCodeInternalError, "An internal error occurred", nil)
	h.writeErrorResponse(w, r, http.StatusInternalServerError, response)
}

func (h *DefaultErrorHandler) findConfig(err error) *ErrorHandlingConfig {
	for i := range h.errorConfigs {
		if errors.Is(err, h.errorConfigs[i].Sentinel) {
			return &h.errorConfigs[i]
		}
	}
	return nil
}

func (h *DefaultErrorHandler) logError(r *http.Request, message, errorType string, err error) {
	slogger.Error(r.Context(), message, slogger.Fields{
		"error": err.Error(),
		"path":  r.URL.Path,
		"type":  errorType,
	})
}

func (h *DefaultErrorHandler) handleErrorWithConfig(w http.ResponseWriter, r *http.Request, err error, config ErrorHandlingConfig) {
	h.logError(r, config.LogMessage, config.ErrorType, err)

	message := config.ResponseMessage
	if config.UseDetailedMsg {
		message = err.Error()
	}

	var details interface{}
	var validationErr common.ValidationError
	if errors.As(err, &validationErr) {
		details = dto.ValidationErrorDetails{Errors: []dto.ValidationError{validationErr.ToDTO()}}
	}

	h.writeErrorResponse(w, r, config.HTTPStatus, dto.NewErrorResponse(config.ErrorCode, message, details))
}

func (h *DefaultErrorHandler) writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, response dto.ErrorResponse) {
	response = response.WithCorrelationID(logging.GetCorrelationIDFromContext(r.Context()))
	if err := WriteJSON(w, status, response); err != nil {
		slogger.Error(r.Context(), "Failed to write error response", slogger.Field("error", err.Error()))
	}
}
