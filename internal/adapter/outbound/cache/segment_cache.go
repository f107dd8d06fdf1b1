// Package cache memoizes segmentation results in memory.
package cache

import (
	"errors"
	"sync/atomic"

	"javasegment/internal/domain/valueobject"
	"javasegment/internal/port/outbound"

	lru "github.com/hashicorp/golang-lru/v2"
)

var _ outbound.SegmentCache = (*SegmentCache)(nil)

// SegmentCache is a fixed-size LRU of segment lists keyed by content hash.
type SegmentCache struct {
	entries   *lru.Cache[string, []valueobject.Segment]
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// NewSegmentCache creates a cache holding at most size files.
func NewSegmentCache(size int) (*SegmentCache, error) {
	if size <= 0 {
		return nil, errors.New("cache size must be positive")
	}
	c := &SegmentCache{}
	entries, err := lru.NewWithEvict[string, []valueobject.Segment](size, func(string, []valueobject.Segment) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

// Get returns the cached segments for key.
func (c *SegmentCache) Get(key string) ([]valueobject.Segment, bool) {
	segments, ok := c.entries.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return segments, ok
}

// Add stores a private copy of segments under key.
func (c *SegmentCache) Add(key string, segments []valueobject.Segment) {
	stored := make([]valueobject.Segment, len(segments))
	copy(stored, segments)
	c.entries.Add(key, stored)
}

// Len returns the number of cached files.
func (c *SegmentCache) Len() int {
	return c.entries.Len()
}

// Purge drops every entry.
func (c *SegmentCache) Purge() {
	c.entries.Purge()
}

// Stats returns a snapshot of the cache counters.
func (c *SegmentCache) Stats() outbound.SegmentCacheStats {
	return outbound.SegmentCacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Items:     c.entries.Len(),
	}
}
