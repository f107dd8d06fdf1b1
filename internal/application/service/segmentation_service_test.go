package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"javasegment/internal/application/dto"
	"javasegment/internal/domain/errors/domain"
	"javasegment/internal/domain/service/segmentation"
	"javasegment/internal/domain/valueobject"
	"javasegment/internal/port/outbound"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoMethodSource = "public class A {\n  void a() {\n  }\n  void b() {\n  }\n}\n"

type mapCache struct {
	mu      sync.Mutex
	entries map[string][]valueobject.Segment
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]valueobject.Segment)}
}

func (c *mapCache) Get(key string) ([]valueobject.Segment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	segments, ok := c.entries[key]
	return segments, ok
}

func (c *mapCache) Add(key string, segments []valueobject.Segment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = segments
}

func (c *mapCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *mapCache) Stats() outbound.SegmentCacheStats {
	return outbound.SegmentCacheStats{Items: c.Len()}
}

func TestSegmentationService_Segment(t *testing.T) {
	svc := NewSegmentationService(SegmentationServiceConfig{Options: segmentation.DefaultOptions()}, nil, nil)

	resp, err := svc.Segment(context.Background(), dto.SegmentRequest{Source: twoMethodSource, Path: "src/A.java"})

	require.NoError(t, err)
	assert.Equal(t, "src/A.java", resp.Path)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "A::a", resp.Segments[0].Label())
	assert.Equal(t, "A::b", resp.Segments[1].Label())
	assert.Equal(t, 2, resp.Segments[1].Index())
}

func TestSegmentationService_Errors(t *testing.T) {
	svc := NewSegmentationService(SegmentationServiceConfig{MaxSourceBytes: 16}, nil, nil)

	tests := []struct {
		name    string
		ctx     func() context.Context
		request dto.SegmentRequest
		wantErr error
	}{
		{
			name:    "source too large",
			ctx:     context.Background,
			request: dto.SegmentRequest{Source: strings.Repeat("x", 17)},
			wantErr: domain.ErrSourceTooLarge,
		},
		{
			name: "cancelled context",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			request: dto.SegmentRequest{Source: "class A {}"},
			wantErr: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Segment(tt.ctx(), tt.request)

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Nil(t, resp)
		})
	}
}

func TestSegmentationService_PathOnlyLabels(t *testing.T) {
	svc := NewSegmentationService(SegmentationServiceConfig{}, nil, nil)

	for _, path := range []string{"", "A.java", "A.txt", "snippet"} {
		t.Run(path, func(t *testing.T) {
			resp, err := svc.Segment(context.Background(), dto.SegmentRequest{Source: twoMethodSource, Path: path})

			require.NoError(t, err)
			assert.Equal(t, path, resp.Path)
			require.Equal(t, 2, resp.Total)
			assert.Equal(t, "A::a", resp.Segments[0].Label())
		})
	}
}

func TestSegmentationService_InvalidUTF8IsSegmented(t *testing.T) {
	svc := NewSegmentationService(SegmentationServiceConfig{}, nil, nil)
	source := "public class A {\n  void a() { String s = \"\xff\"; }\n  void b() {\n  }\n}\n"

	resp, err := svc.Segment(context.Background(), dto.SegmentRequest{Source: source})

	require.NoError(t, err)
	require.Equal(t, 2, resp.Total)
	assert.Contains(t, resp.Segments[0].RawText(), "\xff")
	assert.Equal(t, 2, resp.Segments[0].StartLine())
}

func TestSegmentationService_EmptySourceIsNotAnError(t *testing.T) {
	svc := NewSegmentationService(SegmentationServiceConfig{}, nil, nil)

	resp, err := svc.Segment(context.Background(), dto.SegmentRequest{Source: "   "})

	require.NoError(t, err)
	assert.Equal(t, 0, resp.Total)
	assert.NotNil(t, resp.Segments)
}

func TestSegmentationService_Cache(t *testing.T) {
	cache := newMapCache()
	metrics, reader := newTestMetrics(t)
	svc := NewSegmentationService(SegmentationServiceConfig{Options: segmentation.DefaultOptions()}, cache, metrics)
	ctx := context.Background()

	first, err := svc.Segment(ctx, dto.SegmentRequest{Source: twoMethodSource})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	first.Segments[0], first.Segments[1] = first.Segments[1], first.Segments[0]

	second, err := svc.Segment(ctx, dto.SegmentRequest{Source: twoMethodSource})
	require.NoError(t, err)
	assert.Equal(t, "A::a", second.Segments[0].Label())
	assert.Equal(t, 1, cache.Len())

	sums := collectSums(t, reader)
	hits := map[bool]int64{}
	for _, dp := range sums[SegmentCacheLookupCounterName].DataPoints {
		value, _ := dp.Attributes.Value(AttrCacheHit)
		hits[value.AsBool()] = dp.Value
	}
	assert.Equal(t, map[bool]int64{false: 1, true: 1}, hits)

	segmented := map[bool]int64{}
	for _, dp := range sums[FilesSegmentedCounterName].DataPoints {
		value, _ := dp.Attributes.Value(AttrCacheHit)
		segmented[value.AsBool()] = dp.Value
	}
	assert.Equal(t, map[bool]int64{false: 1, true: 1}, segmented)

	produced := int64(0)
	for _, dp := range sums[SegmentsProducedCounterName].DataPoints {
		produced += dp.Value
	}
	assert.Equal(t, int64(4), produced)
}

func TestSegmentationService_CacheKeyCoversOptions(t *testing.T) {
	cache := newMapCache()
	ctx := context.Background()

	aware := NewSegmentationService(SegmentationServiceConfig{Options: segmentation.DefaultOptions()}, cache, nil)
	raw := NewSegmentationService(SegmentationServiceConfig{
		Options: segmentation.Options{ScanMode: segmentation.ScanModeRaw, SanitizeText: true},
	}, cache, nil)

	_, err := aware.Segment(ctx, dto.SegmentRequest{Source: twoMethodSource})
	require.NoError(t, err)
	_, err = raw.Segment(ctx, dto.SegmentRequest{Source: twoMethodSource})
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Len())
}

func TestSegmentationService_Status(t *testing.T) {
	t.Run("without cache", func(t *testing.T) {
		svc := NewSegmentationService(SegmentationServiceConfig{}, nil, nil)

		status := svc.Status()

		assert.Equal(t, string(segmentation.ScanModeLiteralAware), status.ScanMode)
		assert.Nil(t, status.Cache)
	})

	t.Run("with cache", func(t *testing.T) {
		cache := newMapCache()
		svc := NewSegmentationService(SegmentationServiceConfig{
			Options: segmentation.Options{ScanMode: segmentation.ScanModeRaw, SanitizeText: true},
		}, cache, nil)
		_, err := svc.Segment(context.Background(), dto.SegmentRequest{Source: twoMethodSource})
		require.NoError(t, err)

		status := svc.Status()

		assert.Equal(t, "raw", status.ScanMode)
		assert.True(t, status.SanitizeText)
		require.NotNil(t, status.Cache)
		assert.Equal(t, 1, status.Cache.Entries)
	})
}
