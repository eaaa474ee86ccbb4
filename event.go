package barrier

import (
	"fmt"

	"github.com/gogpu/barrier/pm4"
)

// ReleaseEvent is a pipeline-completion event a release waits for.
// Values are in precedence order: a later event is more expensive.
type ReleaseEvent uint8

// Release events.
const (
	// EventNone means no GPU work has to complete.
	EventNone ReleaseEvent = iota
	// EventVsPartialFlush waits for geometry shader stages.
	EventVsPartialFlush
	// EventPsDone waits for pixel shaders (and the geometry work before them).
	EventPsDone
	// EventCsDone waits for compute shaders.
	EventCsDone
	// EventBottomOfPipe waits for the whole pipeline.
	EventBottomOfPipe
	// EventCacheFlushInvTs waits for the whole pipeline and flushes and
	// invalidates the render-backend caches.
	EventCacheFlushInvTs

	numReleaseEvents
)

var releaseEventNames = [numReleaseEvents]string{
	"None", "VsPartialFlush", "PsDone", "CsDone", "BottomOfPipe", "CacheFlushInvTs",
}

func (e ReleaseEvent) String() string {
	if e < numReleaseEvents {
		return releaseEventNames[e]
	}
	return fmt.Sprintf("ReleaseEvent(%d)", uint8(e))
}

// workClass is a set of outstanding work an event can wait for.
type workClass uint8

const (
	workPreRaster workClass = 1 << iota // vertex, hull, domain, geometry
	workPixel                           // pixel shaders
	workCompute                         // compute shaders
	workPipe                            // fixed function back end, CP and DMA
	workRbFlush                         // render-backend cache flush
)

// eventCoverage is the precedence table: the work each event retires.
var eventCoverage = [numReleaseEvents]workClass{
	EventNone:            0,
	EventVsPartialFlush:  workPreRaster,
	EventPsDone:          workPreRaster | workPixel,
	EventCsDone:          workCompute,
	EventBottomOfPipe:    workPreRaster | workPixel | workCompute | workPipe,
	EventCacheFlushInvTs: workPreRaster | workPixel | workCompute | workPipe | workRbFlush,
}

// stageWork is the work a producing stage may still have in flight.
var stageWork = [numStages]workClass{
	0:  0,             // TopOfPipe
	1:  0,             // IndirectArgs, consumed in order by the CP
	2:  workPreRaster, // IndexFetch
	3:  workPreRaster, // Vertex
	4:  workPreRaster, // Hull
	5:  workPreRaster, // Domain
	6:  workPreRaster, // Geometry
	7:  workPixel,     // Pixel
	8:  workCompute,   // Compute
	9:  workPipe,      // ColorTarget
	10: workPipe,      // DepthTarget
	11: workPipe,      // BottomOfPipe
	12: workPipe,      // Blt
}

// eventFor returns the cheapest event whose coverage includes need.
func eventFor(need workClass) ReleaseEvent {
	for e := EventNone; e < numReleaseEvents; e++ {
		if eventCoverage[e]&need == need {
			return e
		}
	}
	return EventCacheFlushInvTs
}

func workOf(s StageMask) workClass {
	var w workClass
	forEachBit(uint32(s), func(i int) {
		if i >= numStages {
			w |= workPipe
			return
		}
		w |= stageWork[i]
	})
	return w
}

// Join returns the cheapest event that covers both e and o. PsDone and
// CsDone do not cover each other; their join is BottomOfPipe.
func (e ReleaseEvent) Join(o ReleaseEvent) ReleaseEvent {
	return eventFor(eventCoverage[e] | eventCoverage[o])
}

// Covers reports whether waiting for e also retires everything o waits for.
func (e ReleaseEvent) Covers(o ReleaseEvent) bool {
	return eventCoverage[e]&eventCoverage[o] == eventCoverage[o]
}

// IsEndOfPipe reports whether e is an end-of-pipe timestamp event.
func (e ReleaseEvent) IsEndOfPipe() bool {
	return e == EventBottomOfPipe || e == EventCacheFlushInvTs
}

// stageSpecific reports whether e waits for one shader stage rather
// than the whole pipe.
func (e ReleaseEvent) stageSpecific() bool {
	return e == EventVsPartialFlush || e == EventPsDone || e == EventCsDone
}

// partialFlush returns the blocking EVENT_WRITE that waits for the same
// work as a stage-specific event. It lets an engine without PWS or fence
// memory wait for shader work.
func (e ReleaseEvent) partialFlush() (pm4.EventType, bool) {
	switch e {
	case EventVsPartialFlush:
		return pm4.EventVsPartialFlush, true
	case EventPsDone:
		return pm4.EventPsPartialFlush, true
	case EventCsDone:
		return pm4.EventCsPartialFlush, true
	}
	return 0, false
}

// hardware returns the VGT event that implements e.
func (e ReleaseEvent) hardware() pm4.EventType {
	switch e {
	case EventVsPartialFlush:
		return pm4.EventVsPartialFlush
	case EventPsDone:
		return pm4.EventPsDone
	case EventCsDone:
		return pm4.EventCsDone
	case EventBottomOfPipe:
		return pm4.EventBottomOfPipeTs
	case EventCacheFlushInvTs:
		return pm4.EventCacheFlushAndInvTs
	}
	panic(errInvalid("no hardware event for %v", e))
}

// pwsCounter returns the PWS counter e increments.
func (e ReleaseEvent) pwsCounter() pm4.PwsCounter {
	switch e {
	case EventPsDone:
		return pm4.PwsCounterPixel
	case EventCsDone:
		return pm4.PwsCounterCompute
	default:
		return pm4.PwsCounterTimestamp
	}
}

// ReleaseEvents is the event side of a release.
type ReleaseEvents struct {
	Event                ReleaseEvent
	WaitForSpecificStage bool
	SyncRenderBackend    bool
}

// newReleaseEvents selects the event for need and fills the derived flags.
func newReleaseEvents(need workClass) ReleaseEvents {
	e := eventFor(need)
	return ReleaseEvents{
		Event:                e,
		WaitForSpecificStage: e.stageSpecific(),
		SyncRenderBackend:    need&workRbFlush != 0,
	}
}

// SelectEvent returns the single event that retires all work produced
// by the stages in producedBy. An empty mask selects EventNone: nothing
// on the GPU produced the data and no release is needed.
func SelectEvent(producedBy StageMask) ReleaseEvents {
	return newReleaseEvents(workOf(producedBy))
}

// Merge combines two releases into one that satisfies both.
func (r ReleaseEvents) Merge(o ReleaseEvents) ReleaseEvents {
	e := r.Event.Join(o.Event)
	return ReleaseEvents{
		Event:                e,
		WaitForSpecificStage: e.stageSpecific(),
		SyncRenderBackend:    r.SyncRenderBackend || o.SyncRenderBackend,
	}
}
