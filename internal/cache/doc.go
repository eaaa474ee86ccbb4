// Package cache memoizes pure computations keyed by small comparable
// values.
//
// Memo is a sharded LRU: the key's hash picks one of the shards, each
// guarded by its own mutex, and every shard evicts its least recently
// used entry once it is full.
//
//	m := cache.NewMemo[key, result](128, key.hash)
//	r := m.GetOrCompute(k, func() result { return compute(k) })
//
// Hit, miss and eviction counters are atomic, so Stats never blocks the
// lookup path.
//
// Memo is safe for concurrent use and must not be copied after creation.
package cache
