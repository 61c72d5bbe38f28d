package memory

import "time"

// maxFrequencyBoost is the access count at which the TTL extension saturates.
const maxFrequencyBoost = 10

type entry[V any] struct {
	namespace    string
	key          string
	value        V
	embedding    []float64
	createdAt    time.Time
	lastAccessAt time.Time
	accessCount  int
	ttl          time.Duration // zero follows the cache base TTL
	sizeBytes    int64
}

// EffectiveTTL extends ttl by up to 2x for frequently accessed entries:
// ttl * (1 + min(accessCount, 10)/10).
func EffectiveTTL(ttl time.Duration, accessCount int) time.Duration {
	boost := min(max(accessCount, 0), maxFrequencyBoost)
	return time.Duration(float64(ttl) * (1 + float64(boost)/maxFrequencyBoost))
}

func (e *entry[V]) effectiveTTL(baseTTL time.Duration) time.Duration {
	ttl := e.ttl
	if ttl <= 0 {
		ttl = baseTTL
	}
	return EffectiveTTL(ttl, e.accessCount)
}

func (e *entry[V]) expired(now time.Time, baseTTL time.Duration) bool {
	return now.Sub(e.lastAccessAt) > e.effectiveTTL(baseTTL)
}

func (e *entry[V]) touch(now time.Time) {
	e.lastAccessAt = now
	e.accessCount++
}
