package barrier

import "github.com/gogpu/barrier/internal/parallel"

// BatchResolver resolves many batches at once on a worker pool. It suits
// recorders that plan every barrier of a frame before encoding.
//
// ResolveAll is safe for concurrent use. Call Close once no ResolveAll
// is in flight.
type BatchResolver struct {
	pool  *parallel.Pool
	cache *ResolveCache
}

// NewBatchResolver starts a resolver with the given number of workers
// (GOMAXPROCS if workers <= 0). A nil cache resolves without memoization.
func NewBatchResolver(workers int, c *ResolveCache) *BatchResolver {
	return &BatchResolver{pool: parallel.NewPool(workers), cache: c}
}

// ResolveAll returns the merged resolution of every batch, in input order.
// The results equal calling Resolve on each batch in turn.
func (r *BatchResolver) ResolveAll(batches []BarrierBatch) []Resolution {
	out := make([]Resolution, len(batches))
	resolve := Resolve
	if r.cache != nil {
		resolve = r.cache.Resolve
	}
	r.pool.Run(len(batches), func(i int) {
		out[i] = batches[i].resolveWith(resolve)
	})
	return out
}

// Workers returns the size of the worker pool.
func (r *BatchResolver) Workers() int { return r.pool.Workers() }

// Close stops the workers. ResolveAll keeps working afterwards on the
// calling goroutine.
func (r *BatchResolver) Close() { r.pool.Close() }
