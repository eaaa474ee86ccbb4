package pm4

import "fmt"

// EventType is a VGT pipeline event.
type EventType uint8

// Pipeline events used by barriers.
const (
	EventCsPartialFlush     EventType = 0x07
	EventVsPartialFlush     EventType = 0x0F
	EventPsPartialFlush     EventType = 0x10
	EventCacheFlushAndInvTs EventType = 0x14
	EventBottomOfPipeTs     EventType = 0x28
	EventCsDone             EventType = 0x2F
	EventPsDone             EventType = 0x30
)

var eventNames = map[EventType]string{
	EventCsPartialFlush:     "CS_PARTIAL_FLUSH",
	EventVsPartialFlush:     "VS_PARTIAL_FLUSH",
	EventPsPartialFlush:     "PS_PARTIAL_FLUSH",
	EventCacheFlushAndInvTs: "CACHE_FLUSH_AND_INV_TS_EVENT",
	EventBottomOfPipeTs:     "BOTTOM_OF_PIPE_TS",
	EventCsDone:             "CS_DONE",
	EventPsDone:             "PS_DONE",
}

// String returns the hardware name of the event.
func (e EventType) String() string {
	if s, ok := eventNames[e]; ok {
		return s
	}
	return fmt.Sprintf("EVENT(0x%02x)", uint8(e))
}

// EventIndex classifies an event for the command processor.
type EventIndex uint8

// Event index values.
const (
	EventIndexOther        EventIndex = 0
	EventIndexPartialFlush EventIndex = 4
	EventIndexEndOfPipe    EventIndex = 5
	EventIndexEndOfShader  EventIndex = 6
)

// IndexOf returns the event index the CP expects for e.
func IndexOf(e EventType) EventIndex {
	switch e {
	case EventCsPartialFlush, EventVsPartialFlush, EventPsPartialFlush:
		return EventIndexPartialFlush
	case EventCacheFlushAndInvTs, EventBottomOfPipeTs:
		return EventIndexEndOfPipe
	case EventCsDone, EventPsDone:
		return EventIndexEndOfShader
	default:
		return EventIndexOther
	}
}

// IsReleasable reports whether e may be carried by RELEASE_MEM, i.e. it
// is an end-of-pipe or end-of-shader event.
func IsReleasable(e EventType) bool {
	idx := IndexOf(e)
	return idx == EventIndexEndOfPipe || idx == EventIndexEndOfShader
}
