package barrier

import "fmt"

// Transition describes one resource changing from a producing usage to
// a consuming usage.
type Transition struct {
	SrcAccess AccessMask
	SrcStage  StageMask
	DstAccess AccessMask
	DstStage  StageMask
	// Layout is the image layout, or nil for buffers and global memory.
	Layout SubresourceLayout
}

func (t Transition) String() string {
	return fmt.Sprintf("%v@%v -> %v@%v", t.SrcAccess, t.SrcStage, t.DstAccess, t.DstStage)
}

// Resolution is what a transition, or a merged batch of transitions,
// requires from the hardware.
type Resolution struct {
	Release CacheSyncOps
	Acquire CacheSyncOps
	Events  ReleaseEvents
	Point   AcquirePoint
	// PfpSync is set when the prefetch parser itself consumes the data.
	PfpSync bool
}

// NoSync is the resolution of a transition that needs no packets at all.
// It is also the identity of Merge.
var NoSync = Resolution{Point: AcquireEndOfPipe}

// IsNoSync reports whether r needs no packets.
func (r Resolution) IsNoSync() bool {
	return r == NoSync
}

func (r Resolution) String() string {
	if r.IsNoSync() {
		return "NoSync"
	}
	return fmt.Sprintf("release=%v event=%v acquire=%v point=%v pfp=%v",
		r.Release, r.Events.Event, r.Acquire, r.Point, r.PfpSync)
}

// Merge combines resolutions: cache actions are ORed, the event is the
// join of all events and the acquire point is the strongest.
func Merge(rs ...Resolution) Resolution {
	out := NoSync
	for _, r := range rs {
		out = Resolution{
			Release: out.Release.Union(r.Release),
			Acquire: out.Acquire.Union(r.Acquire),
			Events:  out.Events.Merge(r.Events),
			Point:   out.Point.Strongest(r.Point),
			PfpSync: out.PfpSync || r.PfpSync,
		}
	}
	return out
}

// Resolve computes the synchronization t requires. It is a pure function
// of the transition.
func Resolve(t Transition) Resolution {
	return t.key().resolve()
}

// transitionKey is everything Resolve depends on. The layout is reduced
// to whether metadata caches apply, which keeps the key comparable.
type transitionKey struct {
	src, dst           AccessMask
	srcStage, dstStage StageMask
	metadata           bool
}

func (t Transition) key() transitionKey {
	return transitionKey{
		src:      t.SrcAccess,
		dst:      t.DstAccess,
		srcStage: t.SrcStage,
		dstStage: t.DstStage,
		metadata: metadataApplies(t.Layout),
	}
}

// hash mixes the key for cache sharding.
func (k transitionKey) hash() uint64 {
	a := uint64(k.src)<<32 | uint64(k.dst)
	b := uint64(k.srcStage)<<32 | uint64(k.dstStage)<<1
	if k.metadata {
		b |= 1
	}
	return mix64(a) ^ mix64(b+0x9e3779b97f4a7c15)
}

// mix64 is the splitmix64 finalizer.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

func (k transitionKey) resolve() Resolution {
	srcWrites := k.src.Writes()
	gpuProduced := !k.srcStage.IsEmpty()
	dstReads := CachesTouchedByRead(k.dst)

	// Reads after reads never conflict.
	if srcWrites.IsEmpty() && k.dst.Writes().IsEmpty() {
		return NoSync
	}

	// Release: get GPU-produced data out of the caches that the consumer
	// cannot see. GL0 and GL1 are write-through, so only GL2 and the
	// render backends can hold dirty lines.
	var release CacheSyncOps
	if gpuProduced && !srcWrites.IsEmpty() {
		if CachesTouchedByWrite(srcWrites)&RoleGl2 != 0 && BypassesGL2(k.dst) {
			release.Glx |= SyncGl2Wb
		}
		// RB caches are only coherent with themselves: flush them after
		// RB writes, and invalidate them before RB reads of new data.
		if RoutesThroughRenderBackend(srcWrites) || dstReads&RoleRb != 0 {
			release.RbCache = true
		}
	}
	// CPU and presentation consumers observe memory, so they need the
	// producing work retired, not just issued.
	if gpuProduced && k.dst&(AccessCPU|AccessPresent) != 0 {
		release.Timestamp = true
	}

	// Acquire: drop stale copies from every cache the consumer reads
	// through. Without a write nothing can be stale.
	var acquire CacheSyncOps
	if !srcWrites.IsEmpty() {
		if dstReads&RoleGlv != 0 {
			acquire.Glx |= SyncGlvInv
		}
		if dstReads&RoleGlk != 0 {
			acquire.Glx |= SyncGlkInv
		}
		if dstReads&RoleGli != 0 {
			acquire.Glx |= SyncGliInv
		}
		if BypassesGL2(srcWrites) && dstReads&RoleGl2 != 0 {
			acquire.Glx |= SyncGl2Inv
		}
		if k.metadata && dstReads&RoleGlv != 0 {
			acquire.Glx |= SyncGlmInv
		}
	}

	need := workOf(k.srcStage)
	if release.RbCache {
		need |= workPipe | workRbFlush
	}
	if release.Timestamp {
		need |= workPipe
	}
	events := newReleaseEvents(need)

	point := SelectAcquirePoint(k.dstStage, k.dst)

	if release.IsEmpty() && acquire.IsEmpty() &&
		(events.Event == EventNone || point == AcquireEndOfPipe) {
		return NoSync
	}

	return Resolution{
		Release: release,
		Acquire: acquire,
		Events:  events,
		Point:   point,
		PfpSync: k.dst&AccessIndirectArgs != 0 || k.dstStage&StageIndirectArgs != 0,
	}
}
