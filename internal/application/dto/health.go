package dto

import "time"

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Version      string                      `json:"version"`
	Segmenter    *SegmenterStatus            `json:"segmenter,omitempty"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// DependencyStatus is the check result for one external dependency.
type DependencyStatus struct {
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	ResponseTime string `json:"response_time,omitempty"`
}

// SegmenterStatus describes how the segmenter is configured.
type SegmenterStatus struct {
	ScanMode     string       `json:"scan_mode"`
	SanitizeText bool         `json:"sanitize_text"`
	Cache        *CacheStatus `json:"cache,omitempty"`
}

// CacheStatus reports segmentation cache usage.
type CacheStatus struct {
	Entries   int     `json:"entries"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRatio  float64 `json:"hit_ratio"`
}

// NewCacheStatus builds a CacheStatus; the hit ratio is 0 before the first lookup.
func NewCacheStatus(entries int, hits, misses, evictions int64) *CacheStatus {
	status := &CacheStatus{Entries: entries, Hits: hits, Misses: misses, Evictions: evictions}
	if lookups := hits + misses; lookups > 0 {
		status.HitRatio = float64(hits) / float64(lookups)
	}
	return status
}

// HealthStatus is the overall service status.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// DependencyStatusValue is the status of a single dependency.
type DependencyStatusValue string

const (
	DependencyStatusHealthy   DependencyStatusValue = "healthy"
	DependencyStatusUnhealthy DependencyStatusValue = "unhealthy"
	DependencyStatusDisabled  DependencyStatusValue = "disabled"
)
