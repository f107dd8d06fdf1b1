package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"javasegment/internal/application/common"
	"javasegment/internal/application/common/slogger"
	"javasegment/internal/application/dto"
	"javasegment/internal/domain/service/segmentation"
	"javasegment/internal/domain/valueobject"
	"javasegment/internal/port/outbound"
)

// SegmentationServiceConfig tunes the segmentation entry point.
type SegmentationServiceConfig struct {
	Options        segmentation.Options
	MaxSourceBytes int
}

// SegmentationService is the application entry point for splitting a source file
// into method segments. Results are memoized when a cache is configured.
type SegmentationService struct {
	config  SegmentationServiceConfig
	cache   outbound.SegmentCache
	metrics *SegmentMetrics
}

// NewSegmentationService creates a SegmentationService. cache and metrics may be nil.
func NewSegmentationService(
	config SegmentationServiceConfig,
	cache outbound.SegmentCache,
	metrics *SegmentMetrics,
) *SegmentationService {
	if config.Options.ScanMode == "" {
		config.Options.ScanMode = segmentation.ScanModeLiteralAware
	}
	return &SegmentationService{
		config:  config,
		cache:   cache,
		metrics: metrics,
	}
}

// Segment validates the request and returns the file's segments in source order.
// Path only labels log output. The only errors are validation failures and a
// cancelled context; source that yields no methods produces an empty response.
func (s *SegmentationService) Segment(ctx context.Context, request dto.SegmentRequest) (*dto.SegmentResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := common.ValidateSegmentRequest(request, s.config.MaxSourceBytes); err != nil {
		return nil, err
	}

	start := time.Now()
	key := s.cacheKey(request.Source)

	segments, hit := s.lookup(ctx, key)
	if !hit {
		segments = segmentation.BuildSegmentsWithOptions(request.Source, s.config.Options)
		if s.cache != nil {
			s.cache.Add(key, segments)
		}
	}

	duration := time.Since(start)
	s.metrics.RecordSegmentation(ctx, string(s.config.Options.ScanMode), hit, len(segments), duration)
	s.logSegments(ctx, request.Path, hit, segments, duration)

	response := dto.NewSegmentResponse(request.Path, segments)
	return &response, nil
}

// Status describes the active options and, when caching, the cache counters.
func (s *SegmentationService) Status() dto.SegmenterStatus {
	status := dto.SegmenterStatus{
		ScanMode:     string(s.config.Options.ScanMode),
		SanitizeText: s.config.Options.SanitizeText,
	}
	if s.cache != nil {
		stats := s.cache.Stats()
		status.Cache = dto.NewCacheStatus(stats.Items, stats.Hits, stats.Misses, stats.Evictions)
	}
	return status
}

func (s *SegmentationService) lookup(ctx context.Context, key string) ([]valueobject.Segment, bool) {
	if s.cache == nil {
		return nil, false
	}
	segments, ok := s.cache.Get(key)
	s.metrics.RecordCacheLookup(ctx, ok)
	if !ok {
		return nil, false
	}
	// Hand out a copy so callers cannot reorder the cached slice.
	out := make([]valueobject.Segment, len(segments))
	copy(out, segments)
	return out, true
}

// cacheKey covers the source and every option that changes the output.
func (s *SegmentationService) cacheKey(source string) string {
	h := sha256.New()
	h.Write([]byte(s.config.Options.ScanMode))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatBool(s.config.Options.SanitizeText)))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

func (s *SegmentationService) logSegments(ctx context.Context, path string, cacheHit bool, segments []valueobject.Segment, duration time.Duration) {
	for _, seg := range segments {
		slogger.Debug(ctx, "Java segment extracted", slogger.Fields{
			"path":       path,
			"label":      seg.Label(),
			"class":      seg.ClassName(),
			"index":      seg.Index(),
			"total":      seg.Total(),
			"start_line": seg.StartLine(),
			"end_line":   seg.EndLine(),
		})
	}
	slogger.Info(ctx, "Source segmented", slogger.Fields{
		"path":        path,
		"segments":    len(segments),
		"scan_mode":   string(s.config.Options.ScanMode),
		"cache_hit":   cacheHit,
		"duration_ms": duration.Milliseconds(),
	})
}
