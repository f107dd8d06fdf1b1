package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"javasegment/internal/application/dto"
	"javasegment/internal/port/outbound"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepository struct {
	err   error
	pings int
}

func (s *stubRepository) SaveReportRun(context.Context, outbound.ReportRun) error { return nil }

func (s *stubRepository) Ping(context.Context) error {
	s.pings++
	return s.err
}

type stubPublisher struct {
	err   error
	pings int
}

func (s *stubPublisher) PublishSegmentReport(context.Context, outbound.SegmentReportEvent) error {
	return nil
}

func (s *stubPublisher) Ping(context.Context) error {
	s.pings++
	return s.err
}

func TestHealthServiceAdapter_GetHealth(t *testing.T) {
	down := errors.New("connection refused")

	tests := []struct {
		name       string
		repository outbound.ReportRepository
		publisher  outbound.SegmentEventPublisher
		wantStatus dto.HealthStatus
		wantDB     dto.DependencyStatusValue
		wantNATS   dto.DependencyStatusValue
	}{
		{
			name:       "nothing configured",
			wantStatus: dto.HealthStatusHealthy,
			wantDB:     dto.DependencyStatusDisabled,
			wantNATS:   dto.DependencyStatusDisabled,
		},
		{
			name:       "all healthy",
			repository: &stubRepository{},
			publisher:  &stubPublisher{},
			wantStatus: dto.HealthStatusHealthy,
			wantDB:     dto.DependencyStatusHealthy,
			wantNATS:   dto.DependencyStatusHealthy,
		},
		{
			name:       "database down",
			repository: &stubRepository{err: down},
			publisher:  &stubPublisher{},
			wantStatus: dto.HealthStatusDegraded,
			wantDB:     dto.DependencyStatusUnhealthy,
			wantNATS:   dto.DependencyStatusHealthy,
		},
		{
			name:       "both down",
			repository: &stubRepository{err: down},
			publisher:  &stubPublisher{err: down},
			wantStatus: dto.HealthStatusUnhealthy,
			wantDB:     dto.DependencyStatusUnhealthy,
			wantNATS:   dto.DependencyStatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewHealthServiceAdapter(tt.repository, tt.publisher, "v1.0.0")

			resp, err := svc.GetHealth(context.Background())

			require.NoError(t, err)
			assert.Equal(t, string(tt.wantStatus), resp.Status)
			assert.Equal(t, "v1.0.0", resp.Version)
			assert.Equal(t, string(tt.wantDB), resp.Dependencies["database"].Status)
			assert.Equal(t, string(tt.wantNATS), resp.Dependencies["nats"].Status)
		})
	}
}

func TestHealthServiceAdapter_UnhealthyMessage(t *testing.T) {
	svc := NewHealthServiceAdapter(&stubRepository{err: errors.New("boom")}, nil, "dev")

	resp, err := svc.GetHealth(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Database connection failed: boom", resp.Dependencies["database"].Message)
	assert.NotEmpty(t, resp.Dependencies["database"].ResponseTime)
}

func TestHealthServiceAdapter_CachesNATSProbe(t *testing.T) {
	publisher := &stubPublisher{}
	svc := NewHealthServiceAdapter(nil, publisher, "dev").(*HealthServiceAdapter)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	_, err := svc.GetHealth(context.Background())
	require.NoError(t, err)
	_, err = svc.GetHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, publisher.pings)

	clock = clock.Add(healthCacheTTL)
	_, err = svc.GetHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, publisher.pings)
}

type stubSegmenter struct{}

func (stubSegmenter) Status() dto.SegmenterStatus {
	return dto.SegmenterStatus{ScanMode: "literal_aware", Cache: dto.NewCacheStatus(2, 3, 1, 0)}
}

func TestHealthServiceAdapter_SegmenterStatus(t *testing.T) {
	without, err := NewHealthServiceAdapter(nil, nil, "dev").GetHealth(context.Background())
	require.NoError(t, err)
	assert.Nil(t, without.Segmenter)

	with, err := NewHealthServiceAdapter(nil, nil, "dev", WithSegmenterStatus(stubSegmenter{})).GetHealth(context.Background())
	require.NoError(t, err)
	require.NotNil(t, with.Segmenter)
	assert.Equal(t, "literal_aware", with.Segmenter.ScanMode)
	require.NotNil(t, with.Segmenter.Cache)
	assert.InDelta(t, 0.75, with.Segmenter.Cache.HitRatio, 1e-9)
}
