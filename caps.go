package barrier

import "github.com/gogpu/barrier/pm4"

// EngineType is the kind of command-processor front-end a stream feeds.
type EngineType uint8

const (
	// EngineUniversal is a graphics engine with a prefetch parser (PFP)
	// ahead of its micro engine (ME).
	EngineUniversal EngineType = iota
	// EngineCompute is a compute micro engine (MEC) without graphics
	// stages or render backends.
	EngineCompute
)

func (e EngineType) String() string {
	if e == EngineCompute {
		return "compute"
	}
	return "universal"
}

// Caps describes the engine a barrier is encoded for.
type Caps struct {
	Engine EngineType
	// PWS reports pixel-wait-sync support on the device.
	PWS bool
}

// DefaultCaps returns a universal engine without PWS.
func DefaultCaps() Caps {
	return Caps{Engine: EngineUniversal}
}

// pwsUsable reports whether counter-based waits can be used. Only the
// graphics front-end implements them.
func (c Caps) pwsUsable() bool {
	return c.PWS && c.Engine == EngineUniversal
}

func (c Caps) shaderType() pm4.ShaderType {
	if c.Engine == EngineCompute {
		return pm4.ShaderCompute
	}
	return pm4.ShaderGraphics
}
