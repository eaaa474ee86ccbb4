package barrier

import "log/slog"

// Option configures an Emitter during creation.
//
// Example:
//
//	s := pm4.NewStream(pm4.ShaderGraphics)
//	e := barrier.NewEmitter(s,
//	    barrier.WithCaps(barrier.Caps{PWS: true}),
//	    barrier.WithResolveCache(barrier.NewResolveCache(0)),
//	)
type Option func(*emitterOptions)

type emitterOptions struct {
	caps      Caps
	fenceAddr uint64
	cache     *ResolveCache
	logger    *slog.Logger
}

func defaultOptions() emitterOptions {
	return emitterOptions{caps: DefaultCaps()}
}

// WithCaps sets the engine and device capabilities packets are encoded
// for. The default is DefaultCaps().
func WithCaps(c Caps) Option {
	return func(o *emitterOptions) {
		o.caps = c
	}
}

// WithFenceMemory sets the GPU address of a 32-bit fence used for
// end-of-pipe waits on devices without PWS. The emitter clears it before
// its first fenced release, so streams recorded by different emitters
// may share one fence as long as they do not execute concurrently.
// The address must be 4-byte aligned.
func WithFenceMemory(addr uint64) Option {
	return func(o *emitterOptions) {
		o.fenceAddr = addr
	}
}

// WithResolveCache memoizes transition resolution through c. A cache may
// be shared between emitters.
func WithResolveCache(c *ResolveCache) Option {
	return func(o *emitterOptions) {
		o.cache = c
	}
}

// WithLogger overrides the package logger for one emitter.
func WithLogger(l *slog.Logger) Option {
	return func(o *emitterOptions) {
		o.logger = l
	}
}
