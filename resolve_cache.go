package barrier

import "github.com/gogpu/barrier/internal/cache"

// ResolveCache memoizes Resolve. Transitions repeat heavily within a
// frame, and resolution is a pure function of the transition, so cached
// results never go stale.
//
// ResolveCache is safe for concurrent use.
type ResolveCache struct {
	memo *cache.Memo[transitionKey, Resolution]
}

// CacheStats is a snapshot of ResolveCache counters.
type CacheStats struct {
	Entries   int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns the fraction of lookups served from the cache.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// NewResolveCache creates a cache holding about capacity resolutions.
// If capacity <= 0 a default is used.
func NewResolveCache(capacity int) *ResolveCache {
	perShard := 0
	if capacity > 0 {
		perShard = (capacity + cache.ShardCount - 1) / cache.ShardCount
	}
	return &ResolveCache{memo: cache.NewMemo[transitionKey, Resolution](perShard, transitionKey.hash)}
}

// Resolve returns Resolve(t), computing it at most once per distinct
// transition while it stays cached.
func (c *ResolveCache) Resolve(t Transition) Resolution {
	k := t.key()
	return c.memo.GetOrCompute(k, k.resolve)
}

// Clear drops every cached resolution.
func (c *ResolveCache) Clear() {
	c.memo.Clear()
}

// Stats returns the current counters.
func (c *ResolveCache) Stats() CacheStats {
	s := c.memo.Stats()
	return CacheStats{
		Entries:   s.Len,
		Capacity:  s.Capacity,
		Hits:      s.Hits,
		Misses:    s.Misses,
		Evictions: s.Evictions,
	}
}
