package barrier

import (
	"math/bits"
	"strconv"
	"strings"
)

// AccessMask is a set of logical access kinds.
type AccessMask uint32

// Access kinds.
const (
	AccessShaderRead        AccessMask = 1 << iota // vector memory reads from any shader stage
	AccessShaderWrite                              // vector memory writes and atomics
	AccessConstantRead                             // scalar (constant/uniform) reads
	AccessInstructionRead                          // shader code fetch
	AccessColorTargetRead                          // blending / load of color attachments
	AccessColorTargetWrite                         // color attachment writes
	AccessDepthStencilRead                         // depth/stencil tests
	AccessDepthStencilWrite                        // depth/stencil writes
	AccessCopySrc                                  // copy source
	AccessCopyDst                                  // copy destination
	AccessIndirectArgs                             // indirect draw/dispatch arguments
	AccessIndexData                                // index buffer fetch
	AccessQueueAtomic                              // queue-local atomics, bypassing GL2
	AccessTimestamp                                // timestamp and query writes
	AccessCPU                                      // host reads and writes
	AccessPresent                                  // presentation engine reads
	AccessStreamOut                                // stream-out buffers and filled sizes
	AccessBltSrc                                   // internal blit source
	AccessBltDst                                   // internal blit destination
)

// numAccessKinds is the number of defined access bits.
const numAccessKinds = 19

// accessReadKinds lists the kinds that read memory.
const accessReadKinds = AccessShaderRead | AccessConstantRead | AccessInstructionRead |
	AccessColorTargetRead | AccessDepthStencilRead | AccessCopySrc | AccessIndirectArgs |
	AccessIndexData | AccessQueueAtomic | AccessTimestamp | AccessCPU | AccessPresent |
	AccessStreamOut | AccessBltSrc

// accessWriteKinds lists the kinds that write memory.
const accessWriteKinds = AccessShaderWrite | AccessColorTargetWrite | AccessDepthStencilWrite |
	AccessCopyDst | AccessQueueAtomic | AccessTimestamp | AccessCPU | AccessStreamOut | AccessBltDst

// accessDefined covers every defined bit. Anything outside it is treated
// as an unknown access that must be synchronized conservatively.
const accessDefined AccessMask = 1<<numAccessKinds - 1

var accessNames = [numAccessKinds]string{
	"ShaderRead", "ShaderWrite", "ConstantRead", "InstructionRead",
	"ColorTargetRead", "ColorTargetWrite", "DepthStencilRead", "DepthStencilWrite",
	"CopySrc", "CopyDst", "IndirectArgs", "IndexData", "QueueAtomic", "Timestamp",
	"CPU", "Present", "StreamOut", "BltSrc", "BltDst",
}

// Union returns a ∪ o.
func (a AccessMask) Union(o AccessMask) AccessMask { return a | o }

// Intersect returns a ∩ o.
func (a AccessMask) Intersect(o AccessMask) AccessMask { return a & o }

// Contains reports whether every bit of o is set in a.
func (a AccessMask) Contains(o AccessMask) bool { return a&o == o }

// IsEmpty reports whether no access is set.
func (a AccessMask) IsEmpty() bool { return a == 0 }

// Reads returns the read part of a. Unknown bits count as reads.
func (a AccessMask) Reads() AccessMask { return a & (accessReadKinds | ^accessDefined) }

// Writes returns the write part of a. Unknown bits count as writes.
func (a AccessMask) Writes() AccessMask { return a & (accessWriteKinds | ^accessDefined) }

// String returns the set kinds joined with '|', or "None".
func (a AccessMask) String() string {
	return maskString(uint32(a), accessNames[:])
}

// StageMask is a set of logical pipeline stages.
//
// Stages are only partially ordered: vertex and pixel work of different
// draws run concurrently. Ordering decisions go through per-stage tables
// and never compare bit values.
type StageMask uint32

// Pipeline stages.
const (
	StageTopOfPipe    StageMask = 1 << iota
	StageIndirectArgs           // argument fetch by the prefetch parser
	StageIndexFetch
	StageVertex
	StageHull
	StageDomain
	StageGeometry
	StagePixel
	StageCompute
	StageColorTarget
	StageDepthTarget
	StageBottomOfPipe
	StageBlt
)

const numStages = 13

const stageDefined StageMask = 1<<numStages - 1

// StageGraphics holds every stage that only exists on a graphics engine.
const StageGraphics = StageIndexFetch | StageVertex | StageHull | StageDomain |
	StageGeometry | StagePixel | StageColorTarget | StageDepthTarget

// StagePreRaster holds the geometry-processing shader stages.
const StagePreRaster = StageVertex | StageHull | StageDomain | StageGeometry

var stageNames = [numStages]string{
	"TopOfPipe", "IndirectArgs", "IndexFetch", "Vertex", "Hull", "Domain",
	"Geometry", "Pixel", "Compute", "ColorTarget", "DepthTarget", "BottomOfPipe", "Blt",
}

// Union returns s ∪ o.
func (s StageMask) Union(o StageMask) StageMask { return s | o }

// Intersect returns s ∩ o.
func (s StageMask) Intersect(o StageMask) StageMask { return s & o }

// Contains reports whether every bit of o is set in s.
func (s StageMask) Contains(o StageMask) bool { return s&o == o }

// IsEmpty reports whether no stage is set.
func (s StageMask) IsEmpty() bool { return s == 0 }

// String returns the set stages joined with '|', or "None".
func (s StageMask) String() string {
	return maskString(uint32(s), stageNames[:])
}

// forEachBit calls fn with the index of every set bit, lowest first.
func forEachBit(m uint32, fn func(i int)) {
	for m != 0 {
		i := bits.TrailingZeros32(m)
		fn(i)
		m &= m - 1
	}
}

func maskString(m uint32, names []string) string {
	if m == 0 {
		return "None"
	}
	var parts []string
	forEachBit(m, func(i int) {
		if i < len(names) {
			parts = append(parts, names[i])
		} else {
			parts = append(parts, "bit"+strconv.Itoa(i))
		}
	})
	return strings.Join(parts, "|")
}
