package pm4

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrFieldOverflow is the panic value cause when a value does not fit
// the field it is written to.
var ErrFieldOverflow = errors.New("pm4: value overflows packet field")

// ErrSizeMismatch is the panic value cause when a builder writes a
// different number of dwords than its packet size constant.
var ErrSizeMismatch = errors.New("pm4: packet size mismatch")

// Opcode is a PM4 type-3 opcode.
type Opcode uint8

// Type-3 opcodes emitted by this package.
const (
	OpNop        Opcode = 0x10
	OpWriteData  Opcode = 0x37
	OpWaitRegMem Opcode = 0x3C
	OpPfpSyncMe  Opcode = 0x42
	OpEventWrite Opcode = 0x46
	OpReleaseMem Opcode = 0x49
	OpAcquireMem Opcode = 0x58
)

// String returns the packet mnemonic.
func (op Opcode) String() string {
	switch op {
	case OpNop:
		return "NOP"
	case OpWriteData:
		return "WRITE_DATA"
	case OpWaitRegMem:
		return "WAIT_REG_MEM"
	case OpPfpSyncMe:
		return "PFP_SYNC_ME"
	case OpEventWrite:
		return "EVENT_WRITE"
	case OpReleaseMem:
		return "RELEASE_MEM"
	case OpAcquireMem:
		return "ACQUIRE_MEM"
	default:
		return fmt.Sprintf("OP(0x%02x)", uint8(op))
	}
}

// ShaderType selects which pipe a packet is aimed at.
type ShaderType uint8

const (
	// ShaderGraphics marks packets for the graphics (PFP/ME) front-end.
	ShaderGraphics ShaderType = 0
	// ShaderCompute marks packets for a compute (MEC) front-end.
	ShaderCompute ShaderType = 1
)

// String returns "gfx" or "compute".
func (s ShaderType) String() string {
	if s == ShaderCompute {
		return "compute"
	}
	return "gfx"
}

// field describes a bit range inside one dword.
type field struct {
	shift uint32
	width uint32
}

func (f field) mask() uint32 {
	if f.width >= 32 {
		return 0xffffffff
	}
	return (1 << f.width) - 1
}

// set packs v into the field. Values wider than the field panic.
func (f field) set(v uint32) uint32 {
	if v&^f.mask() != 0 {
		panic(errors.Wrapf(ErrFieldOverflow, "0x%x exceeds %d bits at bit %d", v, f.width, f.shift))
	}
	return v << f.shift
}

// setBool packs a single-bit flag.
func (f field) setBool(b bool) uint32 {
	if !b {
		return 0
	}
	return f.set(1)
}

func (f field) get(dw uint32) uint32 {
	return (dw >> f.shift) & f.mask()
}

func (f field) getBool(dw uint32) bool {
	return f.get(dw) != 0
}

// ┏━━┯━━┳━━━━━━━━━━━━━━━━━━━━━━━━━━━┳━━━━━━━━━━━━━━━┳━━━━━━━━━━━┯━━┯━━┓
// ┃ type ┃           count            ┃    opcode     ┃  reserved ┃st│pr┃
// ┃31│30 ┃29                        16┃15            8┃7         2┃ 1│ 0┃
// ┗━━┷━━┻━━━━━━━━━━━━━━━━━━━━━━━━━━━┻━━━━━━━━━━━━━━━┻━━━━━━━━━━━┷━━┷━━┛
var (
	hdrPredicate  = field{0, 1}
	hdrShaderType = field{1, 1}
	hdrOpcode     = field{8, 8}
	hdrCount      = field{16, 14}
	hdrType       = field{30, 2}
)

const packetType3 = 3

// Header builds a type-3 header for a packet of size dwords (header
// included). The count field stores the body length minus one.
func Header(op Opcode, size int, st ShaderType) uint32 {
	if size < 2 {
		panic(errors.Wrapf(ErrSizeMismatch, "%v: packet must be at least 2 dwords, got %d", op, size))
	}
	return hdrType.set(packetType3) |
		hdrCount.set(uint32(size-2)) |
		hdrOpcode.set(uint32(op)) |
		hdrShaderType.set(uint32(st))
}

// headerInfo is a decoded header.
type headerInfo struct {
	typ        uint32
	opcode     Opcode
	size       int
	shaderType ShaderType
	predicate  bool
}

func decodeHeader(dw uint32) headerInfo {
	return headerInfo{
		typ:        hdrType.get(dw),
		opcode:     Opcode(hdrOpcode.get(dw)),
		size:       int(hdrCount.get(dw)) + 2,
		shaderType: ShaderType(hdrShaderType.get(dw)),
		predicate:  hdrPredicate.getBool(dw),
	}
}

// lo32 and hi32 split a GPU virtual address.
func lo32(v uint64) uint32 { return uint32(v) }
func hi32(v uint64) uint32 { return uint32(v >> 32) }
