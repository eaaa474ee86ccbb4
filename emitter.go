package barrier

import (
	"log/slog"

	"github.com/gogpu/barrier/pm4"
)

// EmitterStats counts what an Emitter has produced.
type EmitterStats struct {
	// Batches is the number of batches that produced packets.
	Batches uint64
	// Elided is the number of batches that needed no packets.
	Elided  uint64
	Packets uint64
	Dwords  uint64
}

// Emitter turns barrier batches into packets on one command stream.
//
// Emitter is NOT safe for concurrent use. Use one per stream.
type Emitter struct {
	stream *pm4.Stream
	caps   Caps
	cache  *ResolveCache
	logger *slog.Logger

	fenceAddr    uint64
	fenceValue   uint32
	fenceCleared bool

	stats EmitterStats
}

// NewEmitter creates an emitter appending to stream. The stream must be
// encoded for the engine described by the caps option.
func NewEmitter(stream *pm4.Stream, opts ...Option) *Emitter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if stream.ShaderType() != o.caps.shaderType() {
		panic(errInvalid("stream encodes %v packets but the emitter targets a %v engine",
			stream.ShaderType(), o.caps.Engine))
	}
	if o.fenceAddr%4 != 0 {
		panic(errInvalid("fence address 0x%x is not dword aligned", o.fenceAddr))
	}
	return &Emitter{
		stream:    stream,
		caps:      o.caps,
		cache:     o.cache,
		logger:    o.logger,
		fenceAddr: o.fenceAddr,
	}
}

// Caps returns the capabilities the emitter encodes for.
func (e *Emitter) Caps() Caps { return e.caps }

// Stream returns the stream packets are appended to.
func (e *Emitter) Stream() *pm4.Stream { return e.stream }

// Stats returns the emission counters.
func (e *Emitter) Stats() EmitterStats { return e.stats }

// fenceClear is the value fence memory holds before the first fenced
// release. Release values skip it, including after wrapping.
const fenceClear = 0

// FenceValue returns the last value a release wrote to fence memory, or
// 0 before the first fenced release.
func (e *Emitter) FenceValue() uint32 { return e.fenceValue }

func (e *Emitter) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return Logger()
}

// ResolveAndEmit resolves every transition in b, merges the results and
// appends the packets for the merged resolution. It returns the merged
// resolution.
//
// A transition the engine cannot execute panics with ErrUnsupported.
func (e *Emitter) ResolveAndEmit(b BarrierBatch) Resolution {
	for _, t := range b.Transitions {
		e.validate(t)
	}
	resolve := Resolve
	if e.cache != nil {
		resolve = e.cache.Resolve
	}
	r := b.resolveWith(resolve)
	e.Emit(r, b.Reason)
	return r
}

func (e *Emitter) validate(t Transition) {
	if e.caps.Engine != EngineCompute {
		return
	}
	if RoutesThroughRenderBackend(t.SrcAccess) || RoutesThroughRenderBackend(t.DstAccess) {
		panic(errUnsupported("render-backend access in %v", t))
	}
	if s := (t.SrcStage | t.DstStage) & StageGraphics; s != 0 {
		panic(errUnsupported("graphics stages %v in %v", s, t))
	}
}

// Emit appends the packets for an already resolved barrier.
//
// The sequence is at most: the release (EVENT_WRITE or RELEASE_MEM), the
// wait (PWS ACQUIRE_MEM or WAIT_REG_MEM), a cache ACQUIRE_MEM and a
// PFP_SYNC_ME. The first memory wait is preceded by a WRITE_DATA that
// clears the fence. A NoSync resolution appends nothing.
//
// Without PWS, shader-stage events are waited on with a partial flush
// when no fence memory is configured. End-of-pipe events need one or
// the other and panic with ErrInvalidSync.
func (e *Emitter) Emit(r Resolution, reason Reason) {
	if r.IsNoSync() {
		e.stats.Elided++
		e.log().Debug("barrier: elided", "reason", reason)
		return
	}

	startDwords := e.stream.Len()
	startPackets := e.stream.Packets()

	plan := PlanWait(r, e.caps)
	if plan.Kind == WaitMemory && e.fenceAddr == 0 {
		if _, ok := r.Events.Event.partialFlush(); ok {
			plan.Kind = WaitPartialFlush
		}
	}
	engine := plan.Point.engine()
	pfpSync := r.PfpSync
	acquireGcr := r.Acquire.Glx.gcr()

	switch {
	case r.Events.Event == EventNone:
		// Nothing to wait for: the release cache actions run in the
		// acquire packet.
		acquireGcr |= r.Release.Glx.gcr()
	case plan.Kind == WaitPartialFlush, r.Events.Event == EventVsPartialFlush:
		// The partial flush stalls the micro engine until it completes,
		// so the cache work and any prefetch-parser wait follow it there.
		flush, _ := r.Events.Event.partialFlush()
		e.stream.EventWrite(pm4.EventWriteInfo{Event: flush})
		acquireGcr |= r.Release.Glx.gcr()
		if engine == pm4.EnginePfp {
			engine = pm4.EngineMe
			pfpSync = true
		}
	default:
		e.release(r, plan)
	}

	switch plan.Kind {
	case WaitPws:
		e.stream.AcquireMemPws(pm4.AcquireMemPwsInfo{
			Stage:   plan.Point.pwsStage(),
			Counter: plan.Counter,
			Count:   plan.EventsAgo,
			Gcr:     acquireGcr,
		})
		acquireGcr = 0
	case WaitMemory:
		e.stream.WaitRegMem(pm4.WaitRegMemInfo{
			Engine:    engine,
			Function:  pm4.CompareEqual,
			Address:   e.fenceAddr,
			Reference: e.fenceValue,
			Mask:      0xffffffff,
		})
	}

	if acquireGcr != 0 {
		e.stream.AcquireMem(pm4.AcquireMemInfo{Engine: engine, Gcr: acquireGcr})
	}
	if pfpSync && e.caps.Engine == EngineUniversal {
		e.stream.PfpSyncMe()
	}

	dwords := e.stream.Len() - startDwords
	packets := e.stream.Packets() - startPackets
	e.stats.Batches++
	e.stats.Dwords += uint64(dwords)
	e.stats.Packets += uint64(packets)

	e.log().Debug("barrier: emitted",
		"reason", reason,
		"event", r.Events.Event,
		"point", plan.Point,
		"wait", plan.Kind,
		"release", r.Release,
		"acquire", r.Acquire,
		"dwords", dwords)
}

// release appends the RELEASE_MEM for an end-of-pipe or end-of-shader
// event. A PWS wait consumes the event through its counter and a memory
// wait through the next fence value. Releases nobody waits on write no
// data: an unawaited write could land after a later one and overwrite it.
func (e *Emitter) release(r Resolution, plan WaitPlan) {
	info := pm4.ReleaseMemInfo{
		Event: r.Events.Event.hardware(),
		Gcr:   r.Release.Glx.gcr(),
	}
	switch plan.Kind {
	case WaitPws:
		info.Pws = true
	case WaitMemory:
		if e.fenceAddr == 0 {
			panic(errInvalid("waiting for %v without PWS requires fence memory", r.Events.Event))
		}
		e.clearFence()
		info.DataSel = pm4.DataSend32
		info.Address = e.fenceAddr
		info.Data = uint64(e.nextFence())
	}
	e.stream.ReleaseMem(info)
}

// clearFence writes fenceClear to fence memory once, before the first
// fenced release, so a value left by an earlier stream or uninitialized
// memory never satisfies a wait. The prefetch parser performs the write
// on universal engines because it runs ahead of every wait.
func (e *Emitter) clearFence() {
	if e.fenceCleared {
		return
	}
	engine := pm4.EngineMe
	if e.caps.Engine == EngineUniversal {
		engine = pm4.EnginePfp
	}
	e.stream.WriteData(pm4.WriteDataInfo{Engine: engine, Address: e.fenceAddr, Data: fenceClear})
	e.fenceCleared = true
}

// nextFence advances the fence sequence. Every wait is satisfied before
// the next release is issued, so only the latest value can be in memory
// and an equality test against it cannot pass early, even after wrap.
func (e *Emitter) nextFence() uint32 {
	e.fenceValue++
	if e.fenceValue == fenceClear {
		e.fenceValue++
	}
	return e.fenceValue
}
