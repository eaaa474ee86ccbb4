package barrier

import (
	"math/rand"
	"testing"
)

const propertyIterations = 5000

func randomAccess(rng *rand.Rand) AccessMask {
	return AccessMask(rng.Uint32()) & accessDefined & AccessMask(rng.Uint32())
}

func randomStages(rng *rand.Rand) StageMask {
	return StageMask(rng.Uint32()) & stageDefined & StageMask(rng.Uint32())
}

func randomTransition(rng *rand.Rand) Transition {
	t := Transition{
		SrcAccess: randomAccess(rng),
		SrcStage:  randomStages(rng),
		DstAccess: randomAccess(rng),
		DstStage:  randomStages(rng),
	}
	if rng.Intn(4) == 0 {
		t.Layout = testLayout{4, TilingSwizzledCompressed}
	}
	return t
}

// grow returns a transition whose masks are supersets of t's.
func grow(rng *rand.Rand, t Transition) Transition {
	t.SrcAccess |= randomAccess(rng)
	t.SrcStage |= randomStages(rng)
	t.DstAccess |= randomAccess(rng)
	t.DstStage |= randomStages(rng)
	return t
}

func TestResolveMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < propertyIterations; i++ {
		sub := randomTransition(rng)
		sup := grow(rng, sub)
		rs, rp := Resolve(sub), Resolve(sup)

		if !rp.Release.Contains(rs.Release) {
			t.Fatalf("release shrank: %v -> %v gives %v then %v", sub, sup, rs.Release, rp.Release)
		}
		if !rp.Acquire.Contains(rs.Acquire) {
			t.Fatalf("acquire shrank: %v -> %v gives %v then %v", sub, sup, rs.Acquire, rp.Acquire)
		}
		if !rp.Events.Event.Covers(rs.Events.Event) {
			t.Fatalf("event weakened: %v -> %v gives %v then %v", sub, sup, rs.Events.Event, rp.Events.Event)
		}
		if rp.Point > rs.Point {
			t.Fatalf("acquire point moved later: %v -> %v gives %v then %v", sub, sup, rs.Point, rp.Point)
		}
		if rs.PfpSync && !rp.PfpSync {
			t.Fatalf("PfpSync dropped: %v -> %v", sub, sup)
		}
	}
}

func TestResolveIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	c := NewResolveCache(0)
	for i := 0; i < propertyIterations; i++ {
		tr := randomTransition(rng)
		a, b := Resolve(tr), Resolve(tr)
		if a != b {
			t.Fatalf("Resolve(%v) not idempotent: %v vs %v", tr, a, b)
		}
		if got := c.Resolve(tr); got != a {
			t.Fatalf("cached Resolve(%v) = %v, want %v", tr, got, a)
		}
	}
}

func TestBatchUnion(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < propertyIterations; i++ {
		a, b := randomTransition(rng), randomTransition(rng)
		ra, rb := Resolve(a), Resolve(b)

		var batch BarrierBatch
		batch.Add(a).Add(b)
		got := batch.Resolve()

		if want := ra.Release.Union(rb.Release); got.Release != want {
			t.Fatalf("release = %v, want %v", got.Release, want)
		}
		if want := ra.Acquire.Union(rb.Acquire); got.Acquire != want {
			t.Fatalf("acquire = %v, want %v", got.Acquire, want)
		}
		if want := ra.Events.Event.Join(rb.Events.Event); got.Events.Event != want {
			t.Fatalf("event = %v, want %v", got.Events.Event, want)
		}
		if want := ra.Point.Strongest(rb.Point); got.Point != want {
			t.Fatalf("point = %v, want %v", got.Point, want)
		}

		// Order does not matter.
		var rev BarrierBatch
		rev.Add(b).Add(a)
		if r := rev.Resolve(); r != got {
			t.Fatalf("batch order changed the result: %v vs %v", r, got)
		}
	}
}

func TestNoOpElisionProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < propertyIterations; i++ {
		tr := Transition{
			SrcAccess: randomAccess(rng),
			DstAccess: randomAccess(rng) & bypassGL2,
		}
		if r := Resolve(tr); !r.IsNoSync() {
			t.Fatalf("Resolve(%v) = %v, want NoSync", tr, r)
		}
	}
}

func BenchmarkResolve(b *testing.B) {
	tr := Transition{
		SrcAccess: AccessColorTargetWrite,
		SrcStage:  StageColorTarget,
		DstAccess: AccessShaderRead,
		DstStage:  StagePixel,
	}
	for i := 0; i < b.N; i++ {
		_ = Resolve(tr)
	}
}

func BenchmarkResolveCached(b *testing.B) {
	c := NewResolveCache(0)
	tr := Transition{
		SrcAccess: AccessColorTargetWrite,
		SrcStage:  StageColorTarget,
		DstAccess: AccessShaderRead,
		DstStage:  StagePixel,
	}
	for i := 0; i < b.N; i++ {
		_ = c.Resolve(tr)
	}
}
