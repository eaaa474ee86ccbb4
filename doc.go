// Package barrier computes and encodes GPU cache and pipeline
// synchronization for resource transitions.
//
// A Transition names the access and pipeline stages that produced a
// resource and the access and stages that will consume it. Resolve turns
// it into a Resolution: the caches to write back before the producer is
// considered done, the caches to invalidate before the consumer starts,
// the pipeline event that retires the producer and the earliest point
// in the consumer's pipeline that has to wait.
//
// Resolutions of a BarrierBatch are merged into one barrier, and an
// Emitter encodes it as PM4 packets on a [pm4.Stream]:
//
//	s := pm4.NewStream(pm4.ShaderGraphics)
//	e := barrier.NewEmitter(s, barrier.WithCaps(barrier.Caps{PWS: true}))
//
//	var b barrier.BarrierBatch
//	b.Add(barrier.Transition{
//	    SrcAccess: barrier.AccessColorTargetWrite,
//	    SrcStage:  barrier.StageColorTarget,
//	    DstAccess: barrier.AccessShaderRead,
//	    DstStage:  barrier.StagePixel,
//	})
//	e.ResolveAndEmit(b)
//
// Resolution is a pure function of the transition, so it can be shared
// and memoized with a ResolveCache. Emitters are bound to one stream and
// are not safe for concurrent use.
//
// Requests the hardware cannot honor, such as render-backend work on a
// compute engine, panic with an error wrapping ErrInvalidSync or
// ErrUnsupported.
package barrier
