package barrier

import (
	"testing"

	"github.com/gogpu/barrier/pm4"
)

func TestClassifierTablesComplete(t *testing.T) {
	for i := 0; i < numAccessKinds; i++ {
		a := AccessMask(1) << i
		if a&bypassGL2 != 0 {
			continue
		}
		if a&accessReadKinds != 0 && readRoles[i] == 0 {
			t.Errorf("read kind %v has no role entry", a)
		}
		if a&accessWriteKinds != 0 && writeRoles[i] == 0 {
			t.Errorf("write kind %v has no role entry", a)
		}
		if a&(accessReadKinds|accessWriteKinds) == 0 {
			t.Errorf("kind %v is neither a read nor a write", a)
		}
	}
}

func TestCachesTouched(t *testing.T) {
	tests := []struct {
		name  string
		a     AccessMask
		read  GlxRoleSet
		write GlxRoleSet
	}{
		{"shader read", AccessShaderRead, RoleGlv | RoleGl2, 0},
		{"shader write", AccessShaderWrite, 0, RoleGlv | RoleGl2},
		{"constant", AccessConstantRead, RoleGlk | RoleGl2, 0},
		{"instruction", AccessInstructionRead, RoleGli | RoleGl2, 0},
		{"color target", AccessColorTargetRead | AccessColorTargetWrite, RoleRb | RoleGl2, RoleRb | RoleGl2},
		{"indirect", AccessIndirectArgs, RoleGl2, 0},
		{"cpu", AccessCPU, 0, 0},
		{"present", AccessPresent, 0, 0},
		{"queue atomic", AccessQueueAtomic, 0, 0},
		{"unknown", AccessMask(1 << 31), roleAll, roleAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CachesTouchedByRead(tt.a); got != tt.read {
				t.Errorf("CachesTouchedByRead = %v, want %v", got, tt.read)
			}
			if got := CachesTouchedByWrite(tt.a); got != tt.write {
				t.Errorf("CachesTouchedByWrite = %v, want %v", got, tt.write)
			}
		})
	}
}

func TestRoutesThroughRenderBackend(t *testing.T) {
	tests := []struct {
		a    AccessMask
		want bool
	}{
		{AccessColorTargetWrite, true},
		{AccessDepthStencilRead, true},
		{AccessBltDst, true},
		{AccessShaderRead | AccessShaderWrite, false},
		{AccessCopySrc | AccessCopyDst, false},
		{AccessCPU, false},
		{AccessMask(1 << 29), true},
	}
	for _, tt := range tests {
		if got := RoutesThroughRenderBackend(tt.a); got != tt.want {
			t.Errorf("RoutesThroughRenderBackend(%v) = %v, want %v", tt.a, got, tt.want)
		}
	}
}

func TestAccessMaskReadsWrites(t *testing.T) {
	a := AccessShaderRead | AccessShaderWrite | AccessCPU
	if got := a.Reads(); got != AccessShaderRead|AccessCPU {
		t.Errorf("Reads() = %v", got)
	}
	if got := a.Writes(); got != AccessShaderWrite|AccessCPU {
		t.Errorf("Writes() = %v", got)
	}
	unknown := AccessMask(1 << 27)
	if unknown.Reads() != unknown || unknown.Writes() != unknown {
		t.Error("unknown bits must count as both read and write")
	}
	if !a.Contains(AccessCPU) || a.Contains(AccessPresent) {
		t.Error("Contains mismatch")
	}
	if a.Intersect(AccessPresent) != 0 || !a.Intersect(AccessPresent).IsEmpty() {
		t.Error("Intersect mismatch")
	}
}

func TestMaskStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{AccessMask(0).String(), "None"},
		{(AccessCopySrc | AccessBltDst).String(), "CopySrc|BltDst"},
		{AccessMask(1 << 20).String(), "bit20"},
		{(StageVertex | StagePixel).String(), "Vertex|Pixel"},
		{(SyncGlvInv | SyncGl2Wb).String(), "Gl2Wb|GlvInv"},
		{(RoleGlv | RoleRb).String(), "GLV|RB"},
		{GlxRoleSet(0).String(), "None"},
		{CacheSyncOps{Glx: SyncGl2Wb, RbCache: true, Timestamp: true}.String(), "Gl2Wb+RB+TS"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestSyncGlxGcr(t *testing.T) {
	tests := []struct {
		f    SyncGlxFlags
		want pm4.GcrOps
	}{
		{0, 0},
		{SyncGlvInv, pm4.GcrGlvInv | pm4.GcrGl1Inv},
		{SyncGl2Wb | SyncGl2Inv, pm4.GcrGl2Wb | pm4.GcrGl2Inv},
		{SyncGlkInv | SyncGliInv, pm4.GcrGlkInv | pm4.GcrGliInv},
		{SyncGlmInv, pm4.GcrGlmInv},
	}
	for _, tt := range tests {
		if got := tt.f.gcr(); got != tt.want {
			t.Errorf("%v.gcr() = %v, want %v", tt.f, got, tt.want)
		}
	}
}

func TestCacheSyncOpsUnion(t *testing.T) {
	a := CacheSyncOps{Glx: SyncGlvInv}
	b := CacheSyncOps{Glx: SyncGl2Wb, RbCache: true}
	u := a.Union(b)
	if !u.Contains(a) || !u.Contains(b) {
		t.Errorf("%v does not contain its inputs", u)
	}
	if a.Contains(b) {
		t.Errorf("%v should not contain %v", a, b)
	}
	if !(CacheSyncOps{}).IsEmpty() || u.IsEmpty() {
		t.Error("IsEmpty mismatch")
	}
}
