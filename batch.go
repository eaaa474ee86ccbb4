package barrier

// BarrierBatch is a set of transitions that share one synchronization
// point. Order does not affect the merged result.
type BarrierBatch struct {
	Transitions []Transition
	Reason      Reason
}

// Reason labels a batch in logs. It never affects the packets.
type Reason string

// Common reasons.
const (
	ReasonUnknown      Reason = ""
	ReasonRenderPass   Reason = "render-pass"
	ReasonDispatch     Reason = "dispatch"
	ReasonCopy         Reason = "copy"
	ReasonPresent      Reason = "present"
	ReasonHostReadback Reason = "host-readback"
)

// Add appends a transition and returns the batch for chaining.
func (b *BarrierBatch) Add(t Transition) *BarrierBatch {
	b.Transitions = append(b.Transitions, t)
	return b
}

// Resolve merges the resolutions of every transition in the batch.
func (b BarrierBatch) Resolve() Resolution {
	return b.resolveWith(Resolve)
}

func (b BarrierBatch) resolveWith(resolve func(Transition) Resolution) Resolution {
	out := NoSync
	for _, t := range b.Transitions {
		out = Merge(out, resolve(t))
	}
	return out
}
