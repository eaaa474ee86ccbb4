package barrier

import "strings"

// GlxRoleSet is a set of cache levels an access is routed through.
type GlxRoleSet uint8

// Cache roles.
const (
	RoleGlv GlxRoleSet = 1 << iota // vector L0 (and the GL1 behind it)
	RoleGlk                        // scalar L0
	RoleGli                        // instruction L0
	RoleGl2                        // GL2
	RoleRb                         // render-backend color/depth caches
)

// roleAll is the conservative answer for an access nobody classified.
const roleAll = RoleGlv | RoleGlk | RoleGli | RoleGl2 | RoleRb

// String returns the roles joined with '|', or "None".
func (r GlxRoleSet) String() string {
	if r == 0 {
		return "None"
	}
	var parts []string
	for i, name := range []string{"GLV", "GLK", "GLI", "GL2", "RB"} {
		if r&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

// bypassGL2 lists accesses that go straight to memory. They are never
// cached, so producing data for them needs a GL2 write-back and
// consuming their data needs a GL2 invalidate.
const bypassGL2 = AccessCPU | AccessPresent | AccessQueueAtomic

// readRoles maps each read kind to the caches a read may hit.
var readRoles = [numAccessKinds]GlxRoleSet{
	0:  RoleGlv | RoleGl2, // ShaderRead
	2:  RoleGlk | RoleGl2, // ConstantRead
	3:  RoleGli | RoleGl2, // InstructionRead
	4:  RoleRb | RoleGl2,  // ColorTargetRead
	6:  RoleRb | RoleGl2,  // DepthStencilRead
	8:  RoleGlv | RoleGl2, // CopySrc
	10: RoleGl2,           // IndirectArgs, fetched by the CP through GL2
	11: RoleGl2,           // IndexData
	13: RoleGl2,           // Timestamp
	16: RoleGl2,           // StreamOut
	17: RoleGlv | RoleGl2, // BltSrc
}

// writeRoles maps each write kind to the caches that may hold its dirty
// data. GL0 is write-through; it is listed so a writer's own stale
// lines are known to exist.
var writeRoles = [numAccessKinds]GlxRoleSet{
	1:  RoleGlv | RoleGl2,          // ShaderWrite
	5:  RoleRb | RoleGl2,           // ColorTargetWrite
	7:  RoleRb | RoleGl2,           // DepthStencilWrite
	9:  RoleGlv | RoleGl2,          // CopyDst
	13: RoleGl2,                    // Timestamp
	16: RoleGl2,                    // StreamOut
	18: RoleRb | RoleGlv | RoleGl2, // BltDst, may run on the graphics pipe
}

func classify(a, kinds AccessMask, table *[numAccessKinds]GlxRoleSet) GlxRoleSet {
	var roles GlxRoleSet
	forEachBit(uint32(a&kinds), func(i int) {
		bit := AccessMask(1) << i
		switch {
		case i >= numAccessKinds:
			roles |= roleAll
		case bit&bypassGL2 != 0:
		case table[i] == 0:
			// A kind without an entry is synchronized as if it hit everything.
			roles |= roleAll
		default:
			roles |= table[i]
		}
	})
	return roles
}

// CachesTouchedByRead returns the caches the reads in a are routed
// through.
func CachesTouchedByRead(a AccessMask) GlxRoleSet {
	return classify(a, accessReadKinds|^accessDefined, &readRoles)
}

// CachesTouchedByWrite returns the caches that may hold data written by
// the writes in a.
func CachesTouchedByWrite(a AccessMask) GlxRoleSet {
	return classify(a, accessWriteKinds|^accessDefined, &writeRoles)
}

// RoutesThroughRenderBackend reports whether any access in a goes
// through the render-backend caches.
func RoutesThroughRenderBackend(a AccessMask) bool {
	return (CachesTouchedByRead(a)|CachesTouchedByWrite(a))&RoleRb != 0
}

// BypassesGL2 reports whether any access in a goes straight to memory.
func BypassesGL2(a AccessMask) bool {
	return a&bypassGL2 != 0
}
