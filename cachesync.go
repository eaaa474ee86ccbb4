package barrier

import (
	"strings"

	"github.com/gogpu/barrier/pm4"
)

// SyncGlxFlags is a set of global cache actions.
type SyncGlxFlags uint8

// Cache actions.
const (
	SyncGl2Inv SyncGlxFlags = 1 << iota // invalidate GL2
	SyncGl2Wb                           // write back GL2
	SyncGlvInv                          // invalidate vector L0 (and GL1)
	SyncGlkInv                          // invalidate scalar L0
	SyncGliInv                          // invalidate instruction L0
	SyncGlmInv                          // invalidate metadata cache
)

var glxNames = []string{"Gl2Inv", "Gl2Wb", "GlvInv", "GlkInv", "GliInv", "GlmInv"}

// String returns the set actions joined with '|', or "None".
func (f SyncGlxFlags) String() string {
	return maskString(uint32(f), glxNames)
}

// gcr converts f to packet cache-control ops. GL1 is a read-only cache
// shared by a shader array and is always invalidated with GLV.
func (f SyncGlxFlags) gcr() pm4.GcrOps {
	var g pm4.GcrOps
	if f&SyncGl2Inv != 0 {
		g |= pm4.GcrGl2Inv
	}
	if f&SyncGl2Wb != 0 {
		g |= pm4.GcrGl2Wb
	}
	if f&SyncGlvInv != 0 {
		g |= pm4.GcrGlvInv | pm4.GcrGl1Inv
	}
	if f&SyncGlkInv != 0 {
		g |= pm4.GcrGlkInv
	}
	if f&SyncGliInv != 0 {
		g |= pm4.GcrGliInv
	}
	if f&SyncGlmInv != 0 {
		g |= pm4.GcrGlmInv
	}
	return g
}

// CacheSyncOps is one side of a barrier: cache actions plus the
// render-backend and timestamp requirements. RbCache and Timestamp only
// take effect alongside an end-of-pipe event.
type CacheSyncOps struct {
	Glx       SyncGlxFlags
	RbCache   bool
	Timestamp bool
}

// Union returns the pointwise OR of c and o.
func (c CacheSyncOps) Union(o CacheSyncOps) CacheSyncOps {
	return CacheSyncOps{
		Glx:       c.Glx | o.Glx,
		RbCache:   c.RbCache || o.RbCache,
		Timestamp: c.Timestamp || o.Timestamp,
	}
}

// Contains reports whether c requires at least everything o requires.
func (c CacheSyncOps) Contains(o CacheSyncOps) bool {
	return c.Glx&o.Glx == o.Glx &&
		(c.RbCache || !o.RbCache) &&
		(c.Timestamp || !o.Timestamp)
}

// IsEmpty reports whether no action is required.
func (c CacheSyncOps) IsEmpty() bool {
	return c == CacheSyncOps{}
}

func (c CacheSyncOps) String() string {
	var b strings.Builder
	b.WriteString(c.Glx.String())
	if c.RbCache {
		b.WriteString("+RB")
	}
	if c.Timestamp {
		b.WriteString("+TS")
	}
	return b.String()
}
