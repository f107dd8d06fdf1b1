package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SegmentReportEvent announces that one segment has been reported on.
type SegmentReportEvent struct {
	RunID      uuid.UUID `json:"run_id"`
	ProjectID  string    `json:"project_id"`
	Path       string    `json:"path"`
	Label      string    `json:"label"`
	Index      int       `json:"index"`
	Total      int       `json:"total"`
	StartLine  int       `json:"start_line"`
	EndLine    int       `json:"end_line"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SegmentEventPublisher publishes segment report events.
type SegmentEventPublisher interface {
	PublishSegmentReport(ctx context.Context, event SegmentReportEvent) error
	Ping(ctx context.Context) error
}
