package barrier

import (
	"testing"

	"github.com/gogpu/barrier/pm4"
)

func TestSelectEvent(t *testing.T) {
	tests := []struct {
		stages   StageMask
		want     ReleaseEvent
		specific bool
	}{
		{0, EventNone, false},
		{StageTopOfPipe, EventNone, false},
		{StageIndirectArgs, EventNone, false},
		{StageVertex, EventVsPartialFlush, true},
		{StagePreRaster | StageIndexFetch, EventVsPartialFlush, true},
		{StagePixel, EventPsDone, true},
		{StageVertex | StagePixel, EventPsDone, true},
		{StageCompute, EventCsDone, true},
		{StagePixel | StageCompute, EventBottomOfPipe, false},
		{StageVertex | StageCompute, EventBottomOfPipe, false},
		{StageColorTarget, EventBottomOfPipe, false},
		{StageBlt, EventBottomOfPipe, false},
		{StageBottomOfPipe, EventBottomOfPipe, false},
		{StageMask(1 << 25), EventBottomOfPipe, false},
	}
	for _, tt := range tests {
		t.Run(tt.stages.String(), func(t *testing.T) {
			got := SelectEvent(tt.stages)
			if got.Event != tt.want {
				t.Errorf("SelectEvent(%v) = %v, want %v", tt.stages, got.Event, tt.want)
			}
			if got.WaitForSpecificStage != tt.specific {
				t.Errorf("WaitForSpecificStage = %v, want %v", got.WaitForSpecificStage, tt.specific)
			}
			if got.SyncRenderBackend {
				t.Error("SelectEvent never requests render-backend sync")
			}
		})
	}
}

func TestEventJoin(t *testing.T) {
	tests := []struct {
		a, b, want ReleaseEvent
	}{
		{EventNone, EventNone, EventNone},
		{EventNone, EventCsDone, EventCsDone},
		{EventVsPartialFlush, EventPsDone, EventPsDone},
		{EventPsDone, EventCsDone, EventBottomOfPipe},
		{EventVsPartialFlush, EventCsDone, EventBottomOfPipe},
		{EventCsDone, EventBottomOfPipe, EventBottomOfPipe},
		{EventBottomOfPipe, EventCacheFlushInvTs, EventCacheFlushInvTs},
	}
	for _, tt := range tests {
		if got := tt.a.Join(tt.b); got != tt.want {
			t.Errorf("%v.Join(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := tt.b.Join(tt.a); got != tt.want {
			t.Errorf("%v.Join(%v) = %v, want %v", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestEventLattice(t *testing.T) {
	for a := EventNone; a < numReleaseEvents; a++ {
		if !a.Covers(EventNone) {
			t.Errorf("%v does not cover None", a)
		}
		if !EventCacheFlushInvTs.Covers(a) {
			t.Errorf("CacheFlushInvTs does not cover %v", a)
		}
		if a.Join(a) != a {
			t.Errorf("%v.Join(%v) != %v", a, a, a)
		}
		for b := EventNone; b < numReleaseEvents; b++ {
			j := a.Join(b)
			if !j.Covers(a) || !j.Covers(b) {
				t.Errorf("%v.Join(%v) = %v does not cover both", a, b, j)
			}
		}
	}
	if EventPsDone.Covers(EventCsDone) || EventCsDone.Covers(EventPsDone) {
		t.Error("PsDone and CsDone must be incomparable")
	}
}

func TestEventHardware(t *testing.T) {
	tests := []struct {
		e    ReleaseEvent
		want pm4.EventType
	}{
		{EventVsPartialFlush, pm4.EventVsPartialFlush},
		{EventPsDone, pm4.EventPsDone},
		{EventCsDone, pm4.EventCsDone},
		{EventBottomOfPipe, pm4.EventBottomOfPipeTs},
		{EventCacheFlushInvTs, pm4.EventCacheFlushAndInvTs},
	}
	for _, tt := range tests {
		if got := tt.e.hardware(); got != tt.want {
			t.Errorf("%v.hardware() = %v, want %v", tt.e, got, tt.want)
		}
	}
	panicErr(t, ErrInvalidSync, func() { EventNone.hardware() })
}

func TestReleaseEventsMerge(t *testing.T) {
	a := ReleaseEvents{Event: EventPsDone, WaitForSpecificStage: true}
	b := ReleaseEvents{Event: EventCsDone, WaitForSpecificStage: true}
	got := a.Merge(b)
	want := ReleaseEvents{Event: EventBottomOfPipe}
	if got != want {
		t.Errorf("Merge = %+v, want %+v", got, want)
	}

	rb := ReleaseEvents{Event: EventCacheFlushInvTs, SyncRenderBackend: true}
	if got := a.Merge(rb); !got.SyncRenderBackend || got.Event != EventCacheFlushInvTs {
		t.Errorf("Merge with RB = %+v", got)
	}
}

func TestReleaseEventString(t *testing.T) {
	if got := EventCacheFlushInvTs.String(); got != "CacheFlushInvTs" {
		t.Errorf("String() = %q", got)
	}
	if got := ReleaseEvent(42).String(); got != "ReleaseEvent(42)" {
		t.Errorf("String() = %q", got)
	}
}

func TestEventPartialFlush(t *testing.T) {
	tests := []struct {
		e    ReleaseEvent
		want pm4.EventType
		ok   bool
	}{
		{EventNone, 0, false},
		{EventVsPartialFlush, pm4.EventVsPartialFlush, true},
		{EventPsDone, pm4.EventPsPartialFlush, true},
		{EventCsDone, pm4.EventCsPartialFlush, true},
		{EventBottomOfPipe, 0, false},
		{EventCacheFlushInvTs, 0, false},
	}
	for _, tt := range tests {
		got, ok := tt.e.partialFlush()
		if got != tt.want || ok != tt.ok {
			t.Errorf("%v.partialFlush() = %v, %v, want %v, %v", tt.e, got, ok, tt.want, tt.ok)
		}
		if ok && pm4.IsReleasable(got) {
			t.Errorf("%v maps to releasable %v", tt.e, got)
		}
	}
}
