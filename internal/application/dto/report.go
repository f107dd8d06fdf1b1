package dto

import (
	"time"

	"github.com/google/uuid"
)

// ReportRequest asks for a per-method report of one Java source file.
type ReportRequest struct {
	ProjectID   string `json:"projectId"`
	ProjectName string `json:"projectName"`
	Path        string `json:"path"`
	Source      string `json:"source"`
}

// ReportBlockStatus tells whether the report engine answered for a segment.
type ReportBlockStatus string

const (
	ReportBlockStatusOK     ReportBlockStatus = "ok"
	ReportBlockStatusFailed ReportBlockStatus = "failed"
)

// ReportBlock is the report produced for one segment.
type ReportBlock struct {
	Index     int               `json:"index"               yaml:"index"`
	Label     string            `json:"label"               yaml:"label"`
	Heading   string            `json:"heading"             yaml:"heading"`
	StartLine int               `json:"startLine"           yaml:"startLine"`
	EndLine   int               `json:"endLine"             yaml:"endLine"`
	Status    ReportBlockStatus `json:"status"              yaml:"status"`
	Report    string            `json:"report"              yaml:"report"`
	Error     string            `json:"error,omitempty"     yaml:"error,omitempty"`
	Duration  time.Duration     `json:"durationNs,omitempty" yaml:"durationNs,omitempty"`
}

// ReportResponse is the combined report of one file.
type ReportResponse struct {
	RunID          uuid.UUID     `json:"runId"          yaml:"runId"`
	ProjectID      string        `json:"projectId"      yaml:"projectId"`
	ProjectName    string        `json:"projectName"    yaml:"projectName"`
	Path           string        `json:"path"           yaml:"path"`
	Total          int           `json:"total"          yaml:"total"`
	Failed         int           `json:"failed"         yaml:"failed"`
	Blocks         []ReportBlock `json:"blocks"         yaml:"blocks"`
	CombinedReport string        `json:"combinedReport" yaml:"combinedReport"`
	CreatedAt      time.Time     `json:"createdAt"      yaml:"createdAt"`
}
