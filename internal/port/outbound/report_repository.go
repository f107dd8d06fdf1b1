package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReportRunEntry is the stored outcome for one segment.
type ReportRunEntry struct {
	Index     int
	Label     string
	Signature string
	StartLine int
	EndLine   int
	Status    string
	Report    string
	Error     string
}

// ReportRun is one report request over one file.
type ReportRun struct {
	RunID       uuid.UUID
	ProjectID   string
	ProjectName string
	Path        string
	Entries     []ReportRunEntry
	CreatedAt   time.Time
}

// ReportRepository persists report runs.
type ReportRepository interface {
	SaveReportRun(ctx context.Context, run ReportRun) error
	Ping(ctx context.Context) error
}
