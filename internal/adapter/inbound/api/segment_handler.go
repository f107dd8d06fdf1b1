package api

import (
	"net/http"

	"javasegment/internal/application/common/slogger"
	"javasegment/internal/application/dto"
	"javasegment/internal/port/inbound"
)

// SegmentHandler serves method segmentation of a single Java file.
type SegmentHandler struct {
	segmenter      inbound.SegmentationService
	errorHandler   ErrorHandler
	maxSourceBytes int
}

// NewSegmentHandler creates a SegmentHandler.
func NewSegmentHandler(segmenter inbound.SegmentationService, errorHandler ErrorHandler, maxSourceBytes int) *SegmentHandler {
	return &SegmentHandler{
		segmenter:      segmenter,
		errorHandler:   errorHandler,
		maxSourceBytes: maxSourceBytes,
	}
}

// CreateSegments handles POST /api/v1/segments.
func (h *SegmentHandler) CreateSegments(w http.ResponseWriter, r *http.Request) {
	var request dto.SegmentRequest
	if err := decodeJSONBody(w, r, &request, h.maxSourceBytes); err != nil {
		h.errorHandler.HandleValidationError(w, r, err)
		return
	}

	response, err := h.segmenter.Segment(r.Context(), request)
	if err != nil {
		h.errorHandler.HandleServiceError(w, r, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		slogger.Error(r.Context(), "Failed to write segment response", slogger.Field("error", err.Error()))
	}
}
