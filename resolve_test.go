package barrier

import (
	"errors"
	"testing"
)

// recoverPanic runs fn and returns the recovered panic value.
func recoverPanic(t *testing.T, fn func()) (v any) {
	t.Helper()
	defer func() { v = recover() }()
	fn()
	return nil
}

// panicErr asserts that fn panics with an error matching target.
func panicErr(t *testing.T, target error, fn func()) {
	t.Helper()
	v := recoverPanic(t, fn)
	if v == nil {
		t.Fatalf("expected panic wrapping %v", target)
	}
	err, ok := v.(error)
	if !ok || !errors.Is(err, target) {
		t.Fatalf("panic = %v, want error wrapping %v", v, target)
	}
}

type testLayout struct {
	bpe    uint32
	tiling TilingMode
}

func (l testLayout) BytesPerElement() uint32 { return l.bpe }
func (l testLayout) Tiling() TilingMode      { return l.tiling }

func TestResolveColorTargetToShaderRead(t *testing.T) {
	r := Resolve(Transition{
		SrcAccess: AccessColorTargetWrite,
		SrcStage:  StageColorTarget,
		DstAccess: AccessShaderRead,
		DstStage:  StagePixel,
	})

	if !r.Release.RbCache {
		t.Error("release must flush render-backend caches")
	}
	if !r.Events.Event.IsEndOfPipe() {
		t.Errorf("event = %v, want an end-of-pipe event", r.Events.Event)
	}
	if !r.Events.SyncRenderBackend {
		t.Error("SyncRenderBackend not set")
	}
	if r.Acquire.Glx&SyncGlvInv == 0 {
		t.Errorf("acquire = %v, want GlvInv", r.Acquire)
	}
	if r.Point > AcquirePreDepth || r.Point == AcquireFrontEngineEarly {
		t.Errorf("point = %v, want PreDepth or FrontEngineMain", r.Point)
	}
	if r.PfpSync {
		t.Error("PfpSync set for a pixel shader read")
	}
}

func TestResolveComputeToCompute(t *testing.T) {
	r := Resolve(Transition{
		SrcAccess: AccessShaderWrite,
		SrcStage:  StageCompute,
		DstAccess: AccessShaderRead,
		DstStage:  StageCompute,
	})

	want := CacheSyncOps{Glx: SyncGlvInv}
	if r.Acquire != want {
		t.Errorf("acquire = %v, want %v", r.Acquire, want)
	}
	if !r.Release.IsEmpty() {
		t.Errorf("release = %v, want empty", r.Release)
	}
	if r.Release.RbCache || r.Events.SyncRenderBackend {
		t.Error("compute to compute must not touch render-backend caches")
	}
	if r.Events.Event != EventCsDone {
		t.Errorf("event = %v, want CsDone", r.Events.Event)
	}
	if r.Point != AcquireFrontEngineMain {
		t.Errorf("point = %v, want FrontEngineMain", r.Point)
	}
}

func TestResolveHostUpload(t *testing.T) {
	r := Resolve(Transition{
		SrcAccess: AccessCPU,
		DstAccess: AccessShaderRead,
		DstStage:  StageVertex,
	})

	if !r.Release.IsEmpty() {
		t.Errorf("release = %v, want empty", r.Release)
	}
	if r.Events.Event != EventNone {
		t.Errorf("event = %v, want None", r.Events.Event)
	}
	want := SyncGlvInv | SyncGl2Inv
	if r.Acquire.Glx != want {
		t.Errorf("acquire = %v, want %v", r.Acquire.Glx, want)
	}
	if r.IsNoSync() {
		t.Error("upload must not be elided")
	}
}

func TestResolveNoOpElision(t *testing.T) {
	tests := []struct {
		name string
		t    Transition
	}{
		{"empty", Transition{}},
		{"gpu write without producer to host", Transition{SrcAccess: AccessShaderWrite, DstAccess: AccessCPU}},
		{"host write to nothing", Transition{SrcAccess: AccessCPU}},
		{"read after read", Transition{
			SrcAccess: AccessShaderRead, SrcStage: StagePixel,
			DstAccess: AccessShaderRead | AccessConstantRead, DstStage: StageCompute,
		}},
		{"present after read", Transition{
			SrcAccess: AccessCopySrc, SrcStage: StageBlt,
			DstAccess: AccessPresent,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if r := Resolve(tt.t); !r.IsNoSync() {
				t.Errorf("Resolve(%v) = %v, want NoSync", tt.t, r)
			}
		})
	}
}

func TestResolveWriteAfterRead(t *testing.T) {
	r := Resolve(Transition{
		SrcAccess: AccessShaderRead,
		SrcStage:  StagePixel,
		DstAccess: AccessColorTargetWrite,
		DstStage:  StageColorTarget,
	})
	if r.IsNoSync() {
		t.Fatal("write after read needs an execution dependency")
	}
	if !r.Acquire.IsEmpty() {
		t.Errorf("acquire = %v, want empty", r.Acquire)
	}
	if r.Events.Event != EventPsDone {
		t.Errorf("event = %v, want PsDone", r.Events.Event)
	}
}

func TestResolveHostReadback(t *testing.T) {
	r := Resolve(Transition{
		SrcAccess: AccessShaderWrite,
		SrcStage:  StageCompute,
		DstAccess: AccessCPU,
	})
	want := CacheSyncOps{Glx: SyncGl2Wb, Timestamp: true}
	if r.Release != want {
		t.Errorf("release = %v, want %v", r.Release, want)
	}
	if !r.Acquire.IsEmpty() {
		t.Errorf("acquire = %v, want empty", r.Acquire)
	}
	if r.Events.Event != EventBottomOfPipe {
		t.Errorf("event = %v, want BottomOfPipe", r.Events.Event)
	}
	if r.Point != AcquireEndOfPipe {
		t.Errorf("point = %v, want EndOfPipe", r.Point)
	}
}

func TestResolveQueueAtomicInvalidatesGL2(t *testing.T) {
	r := Resolve(Transition{
		SrcAccess: AccessQueueAtomic,
		SrcStage:  StageCompute,
		DstAccess: AccessShaderRead,
		DstStage:  StageCompute,
	})
	if r.Acquire.Glx != SyncGlvInv|SyncGl2Inv {
		t.Errorf("acquire = %v, want GlvInv|Gl2Inv", r.Acquire.Glx)
	}
}

func TestResolveIndirectArgs(t *testing.T) {
	r := Resolve(Transition{
		SrcAccess: AccessShaderWrite,
		SrcStage:  StageCompute,
		DstAccess: AccessIndirectArgs,
		DstStage:  StageIndirectArgs,
	})
	if r.Point != AcquireFrontEngineEarly {
		t.Errorf("point = %v, want FrontEngineEarly", r.Point)
	}
	if !r.PfpSync {
		t.Error("PfpSync not set for indirect arguments")
	}
	if r.Events.Event != EventCsDone {
		t.Errorf("event = %v, want CsDone", r.Events.Event)
	}
}

func TestResolveMetadataInvalidation(t *testing.T) {
	base := Transition{
		SrcAccess: AccessColorTargetWrite,
		SrcStage:  StageColorTarget,
		DstAccess: AccessShaderRead,
		DstStage:  StagePixel,
	}
	tests := []struct {
		name   string
		layout SubresourceLayout
		want   bool
	}{
		{"buffer", nil, false},
		{"linear", testLayout{4, TilingLinear}, false},
		{"swizzled", testLayout{4, TilingSwizzled}, false},
		{"compressed", testLayout{4, TilingSwizzledCompressed}, true},
		{"compressed 64bpp", testLayout{8, TilingSwizzledCompressed}, true},
		{"compressed 128bpp", testLayout{16, TilingSwizzledCompressed}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := base
			tr.Layout = tt.layout
			r := Resolve(tr)
			if got := r.Acquire.Glx&SyncGlmInv != 0; got != tt.want {
				t.Errorf("GlmInv = %v, want %v (acquire %v)", got, tt.want, r.Acquire)
			}
		})
	}
}

func TestResolveUnknownAccessIsConservative(t *testing.T) {
	unknown := AccessMask(1 << 30)
	r := Resolve(Transition{
		SrcAccess: unknown,
		SrcStage:  StageCompute,
		DstAccess: unknown,
		DstStage:  StageCompute,
	})
	want := SyncGlvInv | SyncGlkInv | SyncGliInv
	if r.Acquire.Glx&want != want {
		t.Errorf("acquire = %v, want at least %v", r.Acquire.Glx, want)
	}
	if !r.Release.RbCache {
		t.Error("unknown access must flush render-backend caches")
	}
	if r.Events.Event != EventCacheFlushInvTs {
		t.Errorf("event = %v, want CacheFlushInvTs", r.Events.Event)
	}
}

func TestMergeIdentity(t *testing.T) {
	r := Resolve(Transition{
		SrcAccess: AccessColorTargetWrite,
		SrcStage:  StageColorTarget,
		DstAccess: AccessShaderRead,
		DstStage:  StagePixel,
	})
	if got := Merge(NoSync, r); got != r {
		t.Errorf("Merge(NoSync, r) = %v, want %v", got, r)
	}
	if got := Merge(); got != NoSync {
		t.Errorf("Merge() = %v, want NoSync", got)
	}
}

func TestBatchMergesOneWait(t *testing.T) {
	var b BarrierBatch
	b.Add(Transition{
		SrcAccess: AccessColorTargetWrite, SrcStage: StageColorTarget,
		DstAccess: AccessShaderRead, DstStage: StagePixel,
	}).Add(Transition{
		SrcAccess: AccessShaderWrite, SrcStage: StageCompute,
		DstAccess: AccessShaderRead, DstStage: StageCompute,
	})

	r := b.Resolve()
	if r.Events.Event != EventCacheFlushInvTs {
		t.Errorf("event = %v, want CacheFlushInvTs", r.Events.Event)
	}
	if r.Point != AcquireFrontEngineMain {
		t.Errorf("point = %v, want FrontEngineMain", r.Point)
	}
	if r.Acquire.Glx != SyncGlvInv {
		t.Errorf("acquire = %v, want GlvInv", r.Acquire.Glx)
	}
}

func TestResolveCache(t *testing.T) {
	c := NewResolveCache(32)
	tr := Transition{
		SrcAccess: AccessShaderWrite,
		SrcStage:  StageCompute,
		DstAccess: AccessShaderRead,
		DstStage:  StagePixel,
	}

	for i := 0; i < 3; i++ {
		if got, want := c.Resolve(tr), Resolve(tr); got != want {
			t.Fatalf("cached %v != direct %v", got, want)
		}
	}
	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Entries != 1 {
		t.Errorf("stats = %+v, want 2 hits, 1 miss, 1 entry", s)
	}
	if s.Capacity < 32 {
		t.Errorf("Capacity = %d, want >= 32", s.Capacity)
	}

	// Layouts with the same metadata answer share an entry.
	tr.Layout = testLayout{4, TilingLinear}
	c.Resolve(tr)
	if got := c.Stats().Entries; got != 1 {
		t.Errorf("Entries = %d, want 1", got)
	}

	c.Clear()
	if got := c.Stats().Entries; got != 0 {
		t.Errorf("Entries after Clear = %d, want 0", got)
	}
}

func TestTransitionString(t *testing.T) {
	tr := Transition{
		SrcAccess: AccessShaderWrite,
		SrcStage:  StageCompute,
		DstAccess: AccessShaderRead | AccessConstantRead,
		DstStage:  StagePixel,
	}
	want := "ShaderWrite@Compute -> ShaderRead|ConstantRead@Pixel"
	if got := tr.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := NoSync.String(); got != "NoSync" {
		t.Errorf("NoSync.String() = %q", got)
	}
}
