package outbound

import "javasegment/internal/domain/valueobject"

// SegmentCache memoizes segmentation results by content key.
type SegmentCache interface {
	Get(key string) ([]valueobject.Segment, bool)
	Add(key string, segments []valueobject.Segment)
	Len() int
	Stats() SegmentCacheStats
}

// SegmentCacheStats is a snapshot of cache counters.
type SegmentCacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Items     int
}
