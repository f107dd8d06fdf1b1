package service

import (
	"context"
	"sync"
	"time"

	"javasegment/internal/application/dto"
	"javasegment/internal/port/inbound"
	"javasegment/internal/port/outbound"
)

const (
	healthCacheTTL     = 5 * time.Second
	dependencyTimeout  = 1 * time.Second
	databaseDependency = "database"
	natsDependency     = "nats"
)

// pinger is the health check shared by the repository and the event publisher.
type pinger interface {
	Ping(ctx context.Context) error
}

type cacheEntry struct {
	status    dto.DependencyStatus
	timestamp time.Time
}

// HealthServiceAdapter reports on the optional database and NATS dependencies.
// A dependency that is not configured is listed as disabled and does not affect
// the overall status.
type HealthServiceAdapter struct {
	repository outbound.ReportRepository
	publisher  outbound.SegmentEventPublisher
	segmenter  inbound.SegmenterStatusProvider
	version    string

	cacheMutex sync.Mutex
	natsCache  *cacheEntry
	now        func() time.Time
}

// HealthOption configures a HealthServiceAdapter.
type HealthOption func(*HealthServiceAdapter)

// WithSegmenterStatus adds the segmenter section to health responses.
func WithSegmenterStatus(provider inbound.SegmenterStatusProvider) HealthOption {
	return func(h *HealthServiceAdapter) {
		h.segmenter = provider
	}
}

// NewHealthServiceAdapter creates a HealthServiceAdapter. repository and publisher may be nil.
func NewHealthServiceAdapter(
	repository outbound.ReportRepository,
	publisher outbound.SegmentEventPublisher,
	version string,
	opts ...HealthOption,
) inbound.HealthService {
	h := &HealthServiceAdapter{
		repository: repository,
		publisher:  publisher,
		version:    version,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GetHealth checks every configured dependency. One failing dependency degrades the
// service, two make it unhealthy.
func (h *HealthServiceAdapter) GetHealth(ctx context.Context) (*dto.HealthResponse, error) {
	response := &dto.HealthResponse{
		Status:       string(dto.HealthStatusHealthy),
		Timestamp:    h.now(),
		Version:      h.version,
		Dependencies: make(map[string]dto.DependencyStatus, 2),
	}
	if h.segmenter != nil {
		status := h.segmenter.Status()
		response.Segmenter = &status
	}

	if h.repository == nil {
		response.Dependencies[databaseDependency] = disabledStatus()
	} else {
		response.Dependencies[databaseDependency] = h.checkDependency(ctx, h.repository, "Database connection failed")
	}

	if h.publisher == nil {
		response.Dependencies[natsDependency] = disabledStatus()
	} else {
		response.Dependencies[natsDependency] = h.natsStatus(ctx)
	}

	unhealthy := 0
	for _, dep := range response.Dependencies {
		if dep.Status == string(dto.DependencyStatusUnhealthy) {
			unhealthy++
		}
	}
	switch {
	case unhealthy >= 2:
		response.Status = string(dto.HealthStatusUnhealthy)
	case unhealthy == 1:
		response.Status = string(dto.HealthStatusDegraded)
	}
	return response, nil
}

// natsStatus caches the publisher check briefly; a JetStream round trip is the
// expensive part of a health check.
func (h *HealthServiceAdapter) natsStatus(ctx context.Context) dto.DependencyStatus {
	h.cacheMutex.Lock()
	defer h.cacheMutex.Unlock()

	if h.natsCache != nil && h.now().Sub(h.natsCache.timestamp) < healthCacheTTL {
		return h.natsCache.status
	}
	status := h.checkDependency(ctx, h.publisher, "NATS connection failed")
	h.natsCache = &cacheEntry{status: status, timestamp: h.now()}
	return status
}

func (h *HealthServiceAdapter) checkDependency(ctx context.Context, dep pinger, failure string) dto.DependencyStatus {
	ctx, cancel := context.WithTimeout(ctx, dependencyTimeout)
	defer cancel()

	start := time.Now()
	err := dep.Ping(ctx)
	elapsed := time.Since(start)

	if err != nil {
		return dto.DependencyStatus{
			Status:       string(dto.DependencyStatusUnhealthy),
			Message:      failure + ": " + err.Error(),
			ResponseTime: elapsed.String(),
		}
	}
	return dto.DependencyStatus{
		Status:       string(dto.DependencyStatusHealthy),
		ResponseTime: elapsed.String(),
	}
}

func disabledStatus() dto.DependencyStatus {
	return dto.DependencyStatus{Status: string(dto.DependencyStatusDisabled)}
}
