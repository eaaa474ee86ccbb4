package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// chunk is the half-open index range [lo, hi) of one Run call.
type chunk struct {
	lo, hi int
	fn     func(i int)
	wg     *sync.WaitGroup
}

func (c chunk) run() {
	defer c.wg.Done()
	for i := c.lo; i < c.hi; i++ {
		c.fn(i)
	}
}

// Pool is a fixed set of worker goroutines.
//
// Run is safe for concurrent use.
type Pool struct {
	queues []chan chunk
	done   chan struct{}
	wg     sync.WaitGroup
	closed atomic.Bool
}

// NewPool starts a pool with the given number of workers.
// If workers <= 0, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		queues: make([]chan chunk, workers),
		done:   make(chan struct{}),
	}
	depth := max(8, workers*4)
	for i := range p.queues {
		p.queues[i] = make(chan chunk, depth)
	}
	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

// Workers returns the number of workers.
func (p *Pool) Workers() int { return len(p.queues) }

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case c := <-own:
			c.run()
			continue
		case <-p.done:
			return
		default:
		}
		if c, ok := p.steal(id); ok {
			c.run()
			continue
		}
		select {
		case c := <-own:
			c.run()
		case <-p.done:
			return
		}
	}
}

func (p *Pool) steal(id int) (chunk, bool) {
	for i := 1; i < len(p.queues); i++ {
		select {
		case c := <-p.queues[(id+i)%len(p.queues)]:
			return c, true
		default:
		}
	}
	return chunk{}, false
}

// Run calls fn(i) for every i in [0, n) and returns when all calls are
// done. Calls run concurrently and in no particular order. After Close,
// Run executes fn on the calling goroutine.
func (p *Pool) Run(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if p.closed.Load() {
		for i := range n {
			fn(i)
		}
		return
	}

	size := max(1, n/(len(p.queues)*4))
	var wg sync.WaitGroup
	for lo, q := 0, 0; lo < n; lo, q = lo+size, q+1 {
		c := chunk{lo: lo, hi: min(lo+size, n), fn: fn, wg: &wg}
		wg.Add(1)
		select {
		case p.queues[q%len(p.queues)] <- c:
		case <-p.done:
			c.run()
		}
	}
	wg.Wait()
}

// Close stops the workers after they finish queued work. It is safe to
// call more than once but must not run concurrently with Run.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	close(p.done)
	p.wg.Wait()
	for _, q := range p.queues {
		for {
			select {
			case c := <-q:
				c.run()
				continue
			default:
			}
			break
		}
	}
}
