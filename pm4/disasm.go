package pm4

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Disassembly errors.
var (
	// ErrNotType3 is returned for a header that is not a type-3 packet.
	ErrNotType3 = errors.New("pm4: not a type-3 packet")

	// ErrTruncated is returned when a packet runs past the end of the stream.
	ErrTruncated = errors.New("pm4: truncated packet")

	// ErrUnaligned is returned when a byte stream is not a whole number of dwords.
	ErrUnaligned = errors.New("pm4: stream length is not a multiple of 4")
)

// Packet is one decoded packet. Fields that do not apply to the opcode
// are left zero.
type Packet struct {
	Offset     int // dword offset of the header
	Opcode     Opcode
	ShaderType ShaderType
	Dwords     []uint32 // header and body

	Event      EventType
	Gcr        GcrOps
	Pws        bool
	PwsStage   PwsStage
	PwsCounter PwsCounter
	PwsCount   uint8
	Engine     EngineSel
	DataSel    DataSel
	Address    uint64
	Data       uint64
	Function   CompareFunc
	Reference  uint32
}

// Size returns the packet length in dwords.
func (p Packet) Size() int { return len(p.Dwords) }

// String renders the packet in a compact one-line form.
func (p Packet) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%04d %-12s", p.Offset, p.Opcode)
	switch p.Opcode {
	case OpEventWrite:
		fmt.Fprintf(&b, " event=%v", p.Event)
	case OpReleaseMem:
		fmt.Fprintf(&b, " event=%v gcr=%v", p.Event, p.Gcr)
		if p.Pws {
			b.WriteString(" pws")
		} else if p.DataSel != DataNone {
			fmt.Fprintf(&b, " addr=0x%x data=%d", p.Address, p.Data)
		}
	case OpAcquireMem:
		if p.Pws {
			fmt.Fprintf(&b, " pws stage=%v counter=%v count=%d", p.PwsStage, p.PwsCounter, p.PwsCount)
		} else {
			fmt.Fprintf(&b, " engine=%v", p.Engine)
		}
		fmt.Fprintf(&b, " gcr=%v", p.Gcr)
	case OpWaitRegMem:
		fmt.Fprintf(&b, " engine=%v addr=0x%x func=%d ref=%d", p.Engine, p.Address, p.Function, p.Reference)
	case OpWriteData:
		fmt.Fprintf(&b, " engine=%v addr=0x%x data=%d", p.Engine, p.Address, p.Data)
	}
	if p.ShaderType == ShaderCompute {
		b.WriteString(" [compute]")
	}
	return b.String()
}

// DisassembleBytes decodes a little-endian byte stream.
func DisassembleBytes(data []byte) ([]Packet, error) {
	if len(data)%4 != 0 {
		return nil, ErrUnaligned
	}
	dwords := make([]uint32, len(data)/4)
	for i := range dwords {
		dwords[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return Disassemble(dwords)
}

// Disassemble decodes every packet in dwords.
func Disassemble(dwords []uint32) ([]Packet, error) {
	var packets []Packet
	for off := 0; off < len(dwords); {
		h := decodeHeader(dwords[off])
		if h.typ != packetType3 {
			return nil, fmt.Errorf("dword %d (0x%08x): %w", off, dwords[off], ErrNotType3)
		}
		if off+h.size > len(dwords) {
			return nil, fmt.Errorf("%v at dword %d needs %d dwords: %w", h.opcode, off, h.size, ErrTruncated)
		}
		p := Packet{
			Offset:     off,
			Opcode:     h.opcode,
			ShaderType: h.shaderType,
			Dwords:     dwords[off : off+h.size],
		}
		decodeBody(&p)
		packets = append(packets, p)
		off += h.size
	}
	return packets, nil
}

func decodeBody(p *Packet) {
	d := p.Dwords
	switch p.Opcode {
	case OpEventWrite:
		if len(d) >= EventWriteSizeDwords {
			p.Event = EventType(evType.get(d[1]))
		}
	case OpReleaseMem:
		if len(d) < ReleaseMemSizeDwords {
			return
		}
		p.Event = EventType(evType.get(d[1]))
		p.Gcr = decodeReleaseGcr(relGcrCntl.get(d[1]))
		p.Pws = relPwsEna.getBool(d[1])
		p.DataSel = DataSel(relDataSel.get(d[2]))
		p.Address = uint64(d[3]) | uint64(d[4])<<32
		p.Data = uint64(d[5]) | uint64(d[6])<<32
	case OpAcquireMem:
		if len(d) < AcquireMemSizeDwords {
			return
		}
		p.Pws = acqPwsEna.getBool(d[1])
		if p.Pws {
			p.PwsStage = PwsStage(acqPwsStage.get(d[1]))
			p.PwsCounter = PwsCounter(acqPwsCounter.get(d[1]))
			p.PwsCount = uint8(acqPwsCount.get(d[1]))
		} else {
			p.Engine = EngineSel(acqEngineSel.get(d[1]))
		}
		p.Gcr = decodeAcquireGcr(acqGcrCntl.get(d[7]))
	case OpWaitRegMem:
		if len(d) < WaitRegMemSizeDwords {
			return
		}
		p.Function = CompareFunc(wrmFunction.get(d[1]))
		p.Engine = EngineSel(wrmEngine.get(d[1]))
		p.Address = uint64(d[2]) | uint64(d[3])<<32
		p.Reference = d[4]
	case OpWriteData:
		if len(d) < WriteDataSizeDwords {
			return
		}
		p.Engine = EngineSel(wdEngineSel.get(d[1]))
		p.Address = uint64(d[2]) | uint64(d[3])<<32
		p.Data = uint64(d[4])
	}
}

// Listing renders packets one per line.
func Listing(packets []Packet) string {
	var b strings.Builder
	for _, p := range packets {
		b.WriteString(p.String())
		b.WriteByte('\n')
	}
	return b.String()
}
