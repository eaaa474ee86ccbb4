package cache

import (
	"sync"
	"sync/atomic"
)

const (
	// ShardCount is the number of independently locked shards.
	// Must be a power of 2.
	ShardCount = 8

	// DefaultCapacity is the default number of entries per shard.
	DefaultCapacity = 64

	shardMask = ShardCount - 1
)

// Hasher computes the shard-selection hash of a key.
type Hasher[K any] func(K) uint64

// Stats is a snapshot of a Memo's counters.
type Stats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Memo caches the results of a pure function of K.
type Memo[K comparable, V any] struct {
	shards   [ShardCount]memoShard[K, V]
	hasher   Hasher[K]
	capacity int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type memoShard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*memoEntry[K, V]
	lru     lruList[K]
}

type memoEntry[K comparable, V any] struct {
	value V
	node  *lruNode[K]
}

// NewMemo creates a memo holding up to capacity entries per shard.
// If capacity <= 0, DefaultCapacity is used.
func NewMemo[K comparable, V any](capacity int, hasher Hasher[K]) *Memo[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	m := &Memo[K, V]{hasher: hasher, capacity: capacity}
	for i := range m.shards {
		m.shards[i].entries = make(map[K]*memoEntry[K, V], capacity)
	}
	return m
}

func (m *Memo[K, V]) shard(key K) *memoShard[K, V] {
	return &m.shards[m.hasher(key)&shardMask]
}

// Get returns the memoized value for key, if present.
func (m *Memo[K, V]) Get(key K) (V, bool) {
	s := m.shard(key)
	s.mu.Lock()
	e, ok := s.entries[key]
	if ok {
		s.lru.moveToFront(e.node)
	}
	s.mu.Unlock()

	if !ok {
		m.misses.Add(1)
		var zero V
		return zero, false
	}
	m.hits.Add(1)
	return e.value, true
}

// GetOrCompute returns the memoized value for key, computing and storing
// it on a miss. compute runs outside the shard lock, so two goroutines
// missing on the same key may both call it; the first stored value wins.
func (m *Memo[K, V]) GetOrCompute(key K, compute func() V) V {
	if v, ok := m.Get(key); ok {
		return v
	}
	v := compute()

	s := m.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		s.lru.moveToFront(e.node)
		return e.value
	}
	for s.lru.len >= m.capacity {
		old, ok := s.lru.popBack()
		if !ok {
			break
		}
		delete(s.entries, old)
		m.evictions.Add(1)
	}
	s.entries[key] = &memoEntry[K, V]{value: v, node: s.lru.pushFront(key)}
	return v
}

// Len returns the number of memoized entries.
func (m *Memo[K, V]) Len() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

// Clear drops every entry. Counters are kept.
func (m *Memo[K, V]) Clear() {
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		s.entries = make(map[K]*memoEntry[K, V], m.capacity)
		s.lru = lruList[K]{}
		s.mu.Unlock()
	}
}

// Stats returns a snapshot of the counters.
func (m *Memo[K, V]) Stats() Stats {
	return Stats{
		Len:       m.Len(),
		Capacity:  m.capacity * ShardCount,
		Hits:      m.hits.Load(),
		Misses:    m.misses.Load(),
		Evictions: m.evictions.Load(),
	}
}
