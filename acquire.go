package barrier

import (
	"fmt"

	"github.com/gogpu/barrier/pm4"
)

// AcquirePoint is where in the pipeline a consumer's wait happens,
// in pipeline order. An earlier point blocks more work and is always
// correct; a point later than the first consuming stage is a bug.
//
// There is deliberately no pre-shader or pre-pixel-shader point: on some
// parts late events leak past waits placed there.
type AcquirePoint uint8

// Acquire points.
const (
	// AcquireFrontEngineEarly waits in the prefetch parser.
	AcquireFrontEngineEarly AcquirePoint = iota
	// AcquireFrontEngineMain waits in the micro engine before any work
	// of the next command is launched.
	AcquireFrontEngineMain
	// AcquirePreDepth lets geometry work run and waits before depth
	// testing, pixel shading and color output.
	AcquirePreDepth
	// AcquireEndOfPipe means nothing in the pipeline consumes the data.
	AcquireEndOfPipe

	numAcquirePoints
)

var acquirePointNames = [numAcquirePoints]string{"FrontEngineEarly", "FrontEngineMain", "PreDepth", "EndOfPipe"}

func (p AcquirePoint) String() string {
	if p < numAcquirePoints {
		return acquirePointNames[p]
	}
	return fmt.Sprintf("AcquirePoint(%d)", uint8(p))
}

// Strongest returns the earlier of p and o, which satisfies both.
// "Strongest" means earliest in pipeline order: the point that blocks the
// most work wins when two waits are merged, not the latest one.
func (p AcquirePoint) Strongest(o AcquirePoint) AcquirePoint {
	return min(p, o)
}

// stageAcquire is the latest legal wait point for each consuming stage.
var stageAcquire = [numStages]AcquirePoint{
	0:  AcquireFrontEngineEarly, // TopOfPipe
	1:  AcquireFrontEngineEarly, // IndirectArgs
	2:  AcquireFrontEngineMain,  // IndexFetch
	3:  AcquireFrontEngineMain,  // Vertex
	4:  AcquireFrontEngineMain,  // Hull
	5:  AcquireFrontEngineMain,  // Domain
	6:  AcquireFrontEngineMain,  // Geometry
	7:  AcquirePreDepth,         // Pixel
	8:  AcquireFrontEngineMain,  // Compute
	9:  AcquirePreDepth,         // ColorTarget
	10: AcquirePreDepth,         // DepthTarget
	11: AcquireEndOfPipe,        // BottomOfPipe
	12: AcquireFrontEngineMain,  // Blt
}

// SelectAcquirePoint returns the latest point that still precedes every
// consumer in dstStage. Indirect arguments are read by the prefetch
// parser, so they pull the point all the way to the front.
func SelectAcquirePoint(dstStage StageMask, dstAccess AccessMask) AcquirePoint {
	p := AcquireEndOfPipe
	forEachBit(uint32(dstStage), func(i int) {
		if i >= numStages {
			p = AcquireFrontEngineEarly
			return
		}
		p = p.Strongest(stageAcquire[i])
	})
	if dstAccess&AccessIndirectArgs != 0 {
		p = AcquireFrontEngineEarly
	}
	return p
}

// WaitKind is how a wait is carried out on the hardware.
type WaitKind uint8

// Wait kinds.
const (
	// WaitNone emits no wait.
	WaitNone WaitKind = iota
	// WaitPartialFlush relies on a synchronous partial-flush event.
	WaitPartialFlush
	// WaitPws waits on a pixel-wait-sync counter.
	WaitPws
	// WaitMemory polls a fence written by RELEASE_MEM.
	WaitMemory
)

var waitKindNames = [...]string{"None", "PartialFlush", "PWS", "Memory"}

func (k WaitKind) String() string {
	if int(k) < len(waitKindNames) {
		return waitKindNames[k]
	}
	return fmt.Sprintf("WaitKind(%d)", uint8(k))
}

// WaitPlan is the acquire strategy for one resolution on one engine.
type WaitPlan struct {
	Kind WaitKind
	// Point is the effective acquire point after engine restrictions.
	Point AcquirePoint
	// Counter and EventsAgo are set for WaitPws.
	Counter   pm4.PwsCounter
	EventsAgo uint8
}

// PlanWait picks the wait mechanism for r on an engine with caps.
//
// Without PWS there is no way to stall at PreDepth, so it degrades to a
// micro-engine wait. Compute engines have no prefetch parser and wait in
// their own micro engine.
func PlanWait(r Resolution, caps Caps) WaitPlan {
	point := r.Point
	if caps.Engine == EngineCompute && point == AcquireFrontEngineEarly {
		point = AcquireFrontEngineMain
	}
	if !caps.pwsUsable() && point == AcquirePreDepth {
		point = AcquireFrontEngineMain
	}

	plan := WaitPlan{Point: point}
	switch {
	case r.Events.Event == EventNone, point == AcquireEndOfPipe:
		plan.Kind = WaitNone
	case r.Events.Event == EventVsPartialFlush:
		plan.Kind = WaitPartialFlush
	case caps.pwsUsable():
		plan.Kind = WaitPws
		plan.Counter = r.Events.Event.pwsCounter()
		// The release is emitted right before the wait, so it is the
		// most recent event on its counter.
		plan.EventsAgo = 0
	default:
		plan.Kind = WaitMemory
	}
	return plan
}

// pwsStage maps an acquire point to the PWS stall location.
func (p AcquirePoint) pwsStage() pm4.PwsStage {
	switch p {
	case AcquireFrontEngineEarly:
		return pm4.PwsStageCpPfp
	case AcquireFrontEngineMain:
		return pm4.PwsStageCpMe
	case AcquirePreDepth:
		return pm4.PwsStagePreDepth
	}
	panic(errInvalid("acquire point %v has no PWS stage", p))
}

// engine maps an acquire point to the front-end that executes the wait.
func (p AcquirePoint) engine() pm4.EngineSel {
	if p == AcquireFrontEngineEarly {
		return pm4.EnginePfp
	}
	return pm4.EngineMe
}
