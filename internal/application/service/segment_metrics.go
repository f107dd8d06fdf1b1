package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names following OpenTelemetry semantic conventions.
const (
	FilesSegmentedCounterName     = "javasegment_files_segmented_total"
	SegmentsProducedCounterName   = "javasegment_segments_produced_total"
	SegmentationDurationName      = "javasegment_segmentation_duration_seconds"
	ReportCallsCounterName        = "javasegment_report_calls_total"
	ReportCallDurationName        = "javasegment_report_call_duration_seconds"
	SegmentCacheLookupCounterName = "javasegment_segment_cache_lookups_total"
)

// Common attribute keys for consistent labeling.
const (
	AttrResult   = "result"    // ok, failed
	AttrCacheHit = "cache_hit" // true, false
	AttrScanMode = "scan_mode" // literal_aware, raw
)

// SegmentMetrics records segmentation and report engine activity.
type SegmentMetrics struct {
	filesSegmented       metric.Int64Counter
	segmentsProduced     metric.Int64Counter
	segmentationDuration metric.Float64Histogram
	reportCalls          metric.Int64Counter
	reportCallDuration   metric.Float64Histogram
	cacheLookups         metric.Int64Counter
}

// NewSegmentMetrics creates metrics on the global meter provider.
func NewSegmentMetrics() (*SegmentMetrics, error) {
	return NewSegmentMetricsWithProvider(otel.GetMeterProvider())
}

// NewSegmentMetricsWithProvider creates metrics on a specific meter provider.
func NewSegmentMetricsWithProvider(provider metric.MeterProvider) (*SegmentMetrics, error) {
	meter := provider.Meter("javasegment/service", metric.WithInstrumentationVersion("1.0.0"))

	filesSegmented, err := meter.Int64Counter(
		FilesSegmentedCounterName,
		metric.WithDescription("Total number of source files segmented"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	segmentsProduced, err := meter.Int64Counter(
		SegmentsProducedCounterName,
		metric.WithDescription("Total number of method segments produced"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	segmentationDuration, err := meter.Float64Histogram(
		SegmentationDurationName,
		metric.WithDescription("Duration of one file segmentation in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1),
	)
	if err != nil {
		return nil, err
	}

	reportCalls, err := meter.Int64Counter(
		ReportCallsCounterName,
		metric.WithDescription("Total number of report engine calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	reportCallDuration, err := meter.Float64Histogram(
		ReportCallDurationName,
		metric.WithDescription("Duration of report engine calls in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter(
		SegmentCacheLookupCounterName,
		metric.WithDescription("Total number of segmentation cache lookups"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	return &SegmentMetrics{
		filesSegmented:       filesSegmented,
		segmentsProduced:     segmentsProduced,
		segmentationDuration: segmentationDuration,
		reportCalls:          reportCalls,
		reportCallDuration:   reportCallDuration,
		cacheLookups:         cacheLookups,
	}, nil
}

// RecordSegmentation records one segmented file, whether or not it was served from cache.
func (m *SegmentMetrics) RecordSegmentation(ctx context.Context, scanMode string, cacheHit bool, segments int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(AttrScanMode, scanMode),
		attribute.Bool(AttrCacheHit, cacheHit),
	)
	m.filesSegmented.Add(ctx, 1, attrs)
	m.segmentsProduced.Add(ctx, int64(segments), attrs)
	m.segmentationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCacheLookup records a cache hit or miss.
func (m *SegmentMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool(AttrCacheHit, hit)))
}

// RecordReportCall records one report engine call.
func (m *SegmentMetrics) RecordReportCall(ctx context.Context, failed bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if failed {
		result = "failed"
	}
	attrs := metric.WithAttributes(attribute.String(AttrResult, result))
	m.reportCalls.Add(ctx, 1, attrs)
	m.reportCallDuration.Record(ctx, duration.Seconds(), attrs)
}
