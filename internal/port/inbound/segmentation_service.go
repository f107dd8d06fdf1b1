// Package inbound defines the inbound ports (interfaces) for the application layer.
// These ports represent the entry points into the application's core business logic.
package inbound

import (
	"context"

	"javasegment/internal/application/dto"
)

// SegmentationService splits one Java source file into method segments.
type SegmentationService interface {
	Segment(ctx context.Context, request dto.SegmentRequest) (*dto.SegmentResponse, error)
}

// SegmenterStatusProvider exposes the segmenter configuration and cache counters.
type SegmenterStatusProvider interface {
	Status() dto.SegmenterStatus
}

// ReportService segments a file and collects one report per segment from the report engine.
type ReportService interface {
	GenerateReport(ctx context.Context, request dto.ReportRequest) (*dto.ReportResponse, error)
}

// HealthService defines the inbound port for health check operations.
type HealthService interface {
	GetHealth(ctx context.Context) (*dto.HealthResponse, error)
}
