package pm4

import (
	"strings"

	"github.com/pkg/errors"
)

// GcrOps is a set of global cache-control actions. The same set is
// encoded differently by RELEASE_MEM and ACQUIRE_MEM.
type GcrOps uint16

// Cache-control actions.
const (
	GcrGl2Inv GcrOps = 1 << iota // invalidate GL2
	GcrGl2Wb                     // write back GL2
	GcrGlvInv                    // invalidate vector L0
	GcrGl1Inv                    // invalidate GL1
	GcrGlkInv                    // invalidate scalar L0
	GcrGlkWb                     // write back scalar L0
	GcrGliInv                    // invalidate instruction L0
	GcrGlmInv                    // invalidate metadata cache
	GcrGlmWb                     // write back metadata cache
)

var gcrNames = []struct {
	op   GcrOps
	name string
}{
	{GcrGl2Inv, "GL2_INV"},
	{GcrGl2Wb, "GL2_WB"},
	{GcrGlvInv, "GLV_INV"},
	{GcrGl1Inv, "GL1_INV"},
	{GcrGlkInv, "GLK_INV"},
	{GcrGlkWb, "GLK_WB"},
	{GcrGliInv, "GLI_INV"},
	{GcrGlmInv, "GLM_INV"},
	{GcrGlmWb, "GLM_WB"},
}

// String returns the ops joined with '|', or "NONE".
func (g GcrOps) String() string {
	if g == 0 {
		return "NONE"
	}
	var parts []string
	for _, n := range gcrNames {
		if g&n.op != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Release-side GCR_CNTL, 13 bits inside RELEASE_MEM dword 1.
var (
	relGlmWb  = field{0, 1}
	relGlmInv = field{1, 1}
	relGlvInv = field{2, 1}
	relGl1Inv = field{3, 1}
	relGl2Inv = field{8, 1}
	relGl2Wb  = field{9, 1}
)

// releaseCapable lists the actions RELEASE_MEM can perform. Scalar and
// instruction caches can only be touched by ACQUIRE_MEM.
const releaseCapable = GcrGl2Inv | GcrGl2Wb | GcrGlvInv | GcrGl1Inv | GcrGlmInv | GcrGlmWb

// ReleaseGcrCntl encodes g for RELEASE_MEM. Actions that the release
// path cannot carry panic.
func ReleaseGcrCntl(g GcrOps) uint32 {
	if g&^releaseCapable != 0 {
		panic(errors.Wrapf(ErrFieldOverflow, "RELEASE_MEM cannot encode %v", g&^releaseCapable))
	}
	return relGlmWb.setBool(g&GcrGlmWb != 0) |
		relGlmInv.setBool(g&GcrGlmInv != 0) |
		relGlvInv.setBool(g&GcrGlvInv != 0) |
		relGl1Inv.setBool(g&GcrGl1Inv != 0) |
		relGl2Inv.setBool(g&GcrGl2Inv != 0) |
		relGl2Wb.setBool(g&GcrGl2Wb != 0)
}

func decodeReleaseGcr(v uint32) GcrOps {
	var g GcrOps
	g |= flagIf(relGlmWb.getBool(v), GcrGlmWb)
	g |= flagIf(relGlmInv.getBool(v), GcrGlmInv)
	g |= flagIf(relGlvInv.getBool(v), GcrGlvInv)
	g |= flagIf(relGl1Inv.getBool(v), GcrGl1Inv)
	g |= flagIf(relGl2Inv.getBool(v), GcrGl2Inv)
	g |= flagIf(relGl2Wb.getBool(v), GcrGl2Wb)
	return g
}

// Acquire-side GCR_CNTL, 19 bits in ACQUIRE_MEM dword 7.
var (
	acqGliInv = field{0, 2}
	acqGlmWb  = field{4, 1}
	acqGlmInv = field{5, 1}
	acqGlkWb  = field{6, 1}
	acqGlkInv = field{7, 1}
	acqGlvInv = field{8, 1}
	acqGl1Inv = field{9, 1}
	acqGl2Inv = field{14, 1}
	acqGl2Wb  = field{15, 1}
)

// gliInvAll is the GLI_INV encoding that invalidates the whole cache.
const gliInvAll = 1

// AcquireGcrCntl encodes g for ACQUIRE_MEM.
func AcquireGcrCntl(g GcrOps) uint32 {
	var gli uint32
	if g&GcrGliInv != 0 {
		gli = gliInvAll
	}
	return acqGliInv.set(gli) |
		acqGlmWb.setBool(g&GcrGlmWb != 0) |
		acqGlmInv.setBool(g&GcrGlmInv != 0) |
		acqGlkWb.setBool(g&GcrGlkWb != 0) |
		acqGlkInv.setBool(g&GcrGlkInv != 0) |
		acqGlvInv.setBool(g&GcrGlvInv != 0) |
		acqGl1Inv.setBool(g&GcrGl1Inv != 0) |
		acqGl2Inv.setBool(g&GcrGl2Inv != 0) |
		acqGl2Wb.setBool(g&GcrGl2Wb != 0)
}

func decodeAcquireGcr(v uint32) GcrOps {
	var g GcrOps
	g |= flagIf(acqGliInv.get(v) != 0, GcrGliInv)
	g |= flagIf(acqGlmWb.getBool(v), GcrGlmWb)
	g |= flagIf(acqGlmInv.getBool(v), GcrGlmInv)
	g |= flagIf(acqGlkWb.getBool(v), GcrGlkWb)
	g |= flagIf(acqGlkInv.getBool(v), GcrGlkInv)
	g |= flagIf(acqGlvInv.getBool(v), GcrGlvInv)
	g |= flagIf(acqGl1Inv.getBool(v), GcrGl1Inv)
	g |= flagIf(acqGl2Inv.getBool(v), GcrGl2Inv)
	g |= flagIf(acqGl2Wb.getBool(v), GcrGl2Wb)
	return g
}

func flagIf(b bool, g GcrOps) GcrOps {
	if b {
		return g
	}
	return 0
}
