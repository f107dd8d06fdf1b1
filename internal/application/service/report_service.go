package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"javasegment/internal/application/common"
	"javasegment/internal/application/common/logging"
	"javasegment/internal/application/common/slogger"
	"javasegment/internal/application/dto"
	"javasegment/internal/domain/errors/domain"
	"javasegment/internal/domain/valueobject"
	"javasegment/internal/port/inbound"
	"javasegment/internal/port/outbound"

	"github.com/google/uuid"
)

// ReportTable is the table name recorded in audit entries for saved report runs.
const ReportTable = "segment_reports"

// ReportServiceConfig tunes report generation.
type ReportServiceConfig struct {
	// SendRawText sends each segment's unsanitized text to the report engine.
	SendRawText    bool
	MaxSourceBytes int
}

// ReportService sends a file's segments to the report engine one at a time and
// combines the answers. A failed segment is reported inline and never aborts the
// rest of the file.
type ReportService struct {
	segmenter  inbound.SegmentationService
	generator  outbound.ReportGenerator
	repository outbound.ReportRepository
	publisher  outbound.SegmentEventPublisher
	audit      outbound.AuditLogger
	metrics    *SegmentMetrics
	config     ReportServiceConfig
	now        func() time.Time
}

// ReportServiceDeps groups the collaborators of ReportService. Repository,
// Publisher, Audit and Metrics are optional.
type ReportServiceDeps struct {
	Segmenter  inbound.SegmentationService
	Generator  outbound.ReportGenerator
	Repository outbound.ReportRepository
	Publisher  outbound.SegmentEventPublisher
	Audit      outbound.AuditLogger
	Metrics    *SegmentMetrics
}

// NewReportService creates a ReportService.
func NewReportService(deps ReportServiceDeps, config ReportServiceConfig) (*ReportService, error) {
	if deps.Segmenter == nil {
		return nil, errors.New("segmentation service is required")
	}
	if deps.Generator == nil {
		return nil, errors.New("report generator is required")
	}
	return &ReportService{
		segmenter:  deps.Segmenter,
		generator:  deps.Generator,
		repository: deps.Repository,
		publisher:  deps.Publisher,
		audit:      deps.Audit,
		metrics:    deps.Metrics,
		config:     config,
		now:        time.Now,
	}, nil
}

// GenerateReport segments the request source and collects one report per segment,
// strictly in segment order with one call in flight.
func (s *ReportService) GenerateReport(ctx context.Context, request dto.ReportRequest) (*dto.ReportResponse, error) {
	if err := common.ValidateReportRequest(request, s.config.MaxSourceBytes); err != nil {
		return nil, err
	}

	segmented, err := s.segmenter.Segment(ctx, dto.SegmentRequest{Source: request.Source, Path: request.Path})
	if err != nil {
		return nil, common.WrapServiceError(common.OpSegmentSource, err)
	}

	response := &dto.ReportResponse{
		RunID:       uuid.New(),
		ProjectID:   request.ProjectID,
		ProjectName: request.ProjectName,
		Path:        request.Path,
		Total:       segmented.Total,
		Blocks:      make([]dto.ReportBlock, 0, len(segmented.Segments)),
		CreatedAt:   s.now().UTC(),
	}

	if len(segmented.Segments) == 0 {
		slogger.Info(ctx, "No Java report blocks generated", slogger.Field("path", request.Path))
		return response, nil
	}

	for _, segment := range segmented.Segments {
		if err := ctx.Err(); err != nil {
			return nil, common.WrapServiceError(common.OpGenerateReport, err)
		}

		block := s.reportSegment(ctx, request, segment)
		if block.Status == dto.ReportBlockStatusFailed {
			response.Failed++
		}
		response.Blocks = append(response.Blocks, block)
		s.publish(ctx, response, segment, block)
	}

	response.CombinedReport = CombineReportBlocks(response.Blocks)
	slogger.Info(ctx, "Aggregated report blocks", slogger.Fields{
		"path":   request.Path,
		"run_id": response.RunID.String(),
		"blocks": len(response.Blocks),
		"failed": response.Failed,
	})

	if err := s.persist(ctx, response); err != nil {
		return nil, err
	}
	return response, nil
}

func (s *ReportService) reportSegment(ctx context.Context, request dto.ReportRequest, segment valueobject.Segment) dto.ReportBlock {
	content := segment.Text()
	if s.config.SendRawText {
		content = segment.RawText()
	}

	block := dto.ReportBlock{
		Index:     segment.Index(),
		Label:     segment.Label(),
		Heading:   BuildReportHeading(segment.ClassName(), segment.MethodSignature()),
		StartLine: segment.StartLine(),
		EndLine:   segment.EndLine(),
		Status:    dto.ReportBlockStatusOK,
	}

	start := time.Now()
	result, err := s.generator.GenerateReport(ctx, outbound.ReportPayload{
		ProjectID:   request.ProjectID,
		ProjectName: request.ProjectName,
		Path:        request.Path,
		Content:     content,
	})
	block.Duration = time.Since(start)
	s.metrics.RecordReportCall(ctx, err != nil, block.Duration)

	if err != nil {
		block.Status = dto.ReportBlockStatusFailed
		block.Error = err.Error()
		block.Report = "Error: " + err.Error()
		slogger.Warn(ctx, "Report engine call failed", slogger.Fields{
			"label": segment.Label(),
			"error": err.Error(),
		})
		return block
	}

	block.Report = ExtractReportText(result)
	return block
}

func (s *ReportService) publish(ctx context.Context, response *dto.ReportResponse, segment valueobject.Segment, block dto.ReportBlock) {
	if s.publisher == nil {
		return
	}
	event := outbound.SegmentReportEvent{
		RunID:      response.RunID,
		ProjectID:  response.ProjectID,
		Path:       response.Path,
		Label:      block.Label,
		Index:      segment.Index(),
		Total:      segment.Total(),
		StartLine:  block.StartLine,
		EndLine:    block.EndLine,
		Status:     string(block.Status),
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishSegmentReport(ctx, event); err != nil {
		slogger.Warn(ctx, "Failed to publish segment report event", slogger.Fields{
			"label": block.Label,
			"error": err.Error(),
		})
	}
}

func (s *ReportService) persist(ctx context.Context, response *dto.ReportResponse) error {
	if s.repository == nil {
		return nil
	}

	run := outbound.ReportRun{
		RunID:       response.RunID,
		ProjectID:   response.ProjectID,
		ProjectName: response.ProjectName,
		Path:        response.Path,
		Entries:     make([]outbound.ReportRunEntry, 0, len(response.Blocks)),
		CreatedAt:   response.CreatedAt,
	}
	labels := make([]string, 0, len(response.Blocks))
	for _, block := range response.Blocks {
		run.Entries = append(run.Entries, outbound.ReportRunEntry{
			Index:     block.Index,
			Label:     block.Label,
			Signature: block.Heading,
			StartLine: block.StartLine,
			EndLine:   block.EndLine,
			Status:    string(block.Status),
			Report:    block.Report,
			Error:     block.Error,
		})
		labels = append(labels, block.Label)
	}

	if err := s.repository.SaveReportRun(ctx, run); err != nil {
		return common.WrapServiceError(common.OpSaveReportRun, fmt.Errorf("%w: %w", domain.ErrPersistence, err))
	}

	if s.audit != nil {
		s.audit.LogMutation(ctx, outbound.AuditEntry{
			IP:     logging.GetClientIPFromContext(ctx),
			Action: "INSERT",
			Table:  ReportTable,
			Data:   labels,
		})
	}
	return nil
}

// ExtractReportText picks the report body out of a report engine result: the
// "report" string, else "rawReport", else "analysis.result", else the result itself
// when it is a string. Anything else yields "".
func ExtractReportText(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any:
		if report, ok := v["report"].(string); ok {
			return report
		}
		if raw, ok := v["rawReport"].(string); ok {
			return raw
		}
		if analysis, ok := v["analysis"].(map[string]any); ok {
			if text, ok := analysis["result"].(string); ok {
				return text
			}
		}
	}
	return ""
}

// BuildReportHeading returns the label that precedes a segment's report.
func BuildReportHeading(className, signature string) string {
	if className == "" {
		className = valueobject.UnknownClassName
	}
	if signature == "" {
		signature = valueobject.AnonymousMember
	}
	return "【" + className + "::" + signature + "】"
}

// CombineReportBlocks joins every block as heading, newline, report, separated by a
// blank line, and trims the result.
func CombineReportBlocks(blocks []dto.ReportBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		parts = append(parts, block.Heading+"\n"+block.Report)
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}
