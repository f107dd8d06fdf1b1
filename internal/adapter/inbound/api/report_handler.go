package api

import (
	"net/http"

	"javasegment/internal/application/common/slogger"
	"javasegment/internal/application/dto"
	"javasegment/internal/port/inbound"
)

// ReportHandler serves per-method reports of a single Java file.
type ReportHandler struct {
	reports        inbound.ReportService
	errorHandler   ErrorHandler
	maxSourceBytes int
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(reports inbound.ReportService, errorHandler ErrorHandler, maxSourceBytes int) *ReportHandler {
	return &ReportHandler{
		reports:        reports,
		errorHandler:   errorHandler,
		maxSourceBytes: maxSourceBytes,
	}
}

// CreateReport handles POST /api/v1/reports. Per-segment engine failures are part
// of a 200 response; only request and persistence failures are errors here.
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var request dto.ReportRequest
	if err := decodeJSONBody(w, r, &request, h.maxSourceBytes); err != nil {
		h.errorHandler.HandleValidationError(w, r, err)
		return
	}

	response, err := h.reports.GenerateReport(r.Context(), request)
	if err != nil {
		h.errorHandler.HandleServiceError(w, r, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		slogger.Error(r.Context(), "Failed to write report response", slogger.Fields{
			"error":  err.Error(),
			"run_id": response.RunID.String(),
		})
	}
}
