package memory

import (
	"math"
	"slices"
	"time"
)

// makeRoomLocked evicts entries until an item of incoming bytes fits. Once a limit
// is hit the cache drains to its low-water mark so eviction does not run on every Set.
// Expired entries go first, then the least accessed, oldest access breaking ties.
func (c *Cache[V]) makeRoomLocked(incoming int64, now time.Time) {
	countFull := c.count >= c.maxEntries
	memoryFull := c.memoryUsed+incoming > c.cfg.MaxMemoryBytes
	if !countFull && !memoryFull {
		return
	}

	targetCount := int(math.Floor(lowWaterRatio * float64(c.maxEntries)))
	targetMemory := int64(lowWaterRatio * float64(c.cfg.MaxMemoryBytes))

	satisfied := func() bool {
		if c.count == 0 {
			return true
		}
		if countFull && c.count > targetCount {
			return false
		}
		if memoryFull && c.memoryUsed+incoming > targetMemory {
			return false
		}
		return true
	}

	expired := c.sweepExpiredLocked(now)
	if expired > 0 {
		c.expirations += int64(expired)
		c.recordEviction("expired", expired)
	}
	if satisfied() {
		return
	}

	candidates := make([]*entry[V], 0, c.count)
	for _, ns := range c.namespaces {
		for _, e := range ns {
			candidates = append(candidates, e)
		}
	}
	slices.SortFunc(candidates, compareColdest[V])

	evicted := 0
	for _, e := range candidates {
		if satisfied() {
			break
		}
		c.removeLocked(e)
		evicted++
	}

	c.evictions += int64(evicted)
	c.recordEviction("capacity", evicted)
}

// compareColdest orders entries by ascending access count, then oldest access.
func compareColdest[V any](a, b *entry[V]) int {
	if a.accessCount != b.accessCount {
		return a.accessCount - b.accessCount
	}
	return a.lastAccessAt.Compare(b.lastAccessAt)
}

// sweepExpiredLocked removes every expired entry and returns how many were removed.
func (c *Cache[V]) sweepExpiredLocked(now time.Time) int {
	removed := 0
	for _, ns := range c.namespaces {
		for _, e := range ns {
			if e.expired(now, c.baseTTL) {
				c.removeLocked(e)
				removed++
			}
		}
	}
	return removed
}
