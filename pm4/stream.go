package pm4

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Stream accumulates packets for one command-processor engine.
//
// Stream is NOT safe for concurrent use.
type Stream struct {
	shaderType ShaderType
	dwords     []uint32
	packets    int
}

// NewStream creates an empty stream whose packets target st.
func NewStream(st ShaderType) *Stream {
	return &Stream{shaderType: st, dwords: make([]uint32, 0, 64)}
}

// ShaderType returns the engine type the stream encodes for.
func (s *Stream) ShaderType() ShaderType {
	return s.shaderType
}

// Emit reserves size dwords, runs build over them and appends the
// result. A builder that reports a different count is a programming
// error and panics.
func (s *Stream) Emit(size int, build func(st ShaderType, dst []uint32) int) {
	start := len(s.dwords)
	s.dwords = append(s.dwords, make([]uint32, size)...)
	n := build(s.shaderType, s.dwords[start:start+size])
	if n != size {
		panic(errors.Wrapf(ErrSizeMismatch, "builder wrote %d dwords, expected %d", n, size))
	}
	s.packets++
}

// EventWrite appends an EVENT_WRITE.
func (s *Stream) EventWrite(info EventWriteInfo) {
	s.Emit(EventWriteSizeDwords, func(st ShaderType, dst []uint32) int {
		return BuildEventWrite(st, info, dst)
	})
}

// ReleaseMem appends a RELEASE_MEM.
func (s *Stream) ReleaseMem(info ReleaseMemInfo) {
	s.Emit(ReleaseMemSizeDwords, func(st ShaderType, dst []uint32) int {
		return BuildReleaseMem(st, info, dst)
	})
}

// AcquireMem appends a non-PWS ACQUIRE_MEM.
func (s *Stream) AcquireMem(info AcquireMemInfo) {
	s.Emit(AcquireMemSizeDwords, func(st ShaderType, dst []uint32) int {
		return BuildAcquireMem(st, info, dst)
	})
}

// AcquireMemPws appends a PWS ACQUIRE_MEM.
func (s *Stream) AcquireMemPws(info AcquireMemPwsInfo) {
	s.Emit(AcquireMemPwsSizeDwords, func(st ShaderType, dst []uint32) int {
		return BuildAcquireMemPws(st, info, dst)
	})
}

// WaitRegMem appends a WAIT_REG_MEM.
func (s *Stream) WaitRegMem(info WaitRegMemInfo) {
	s.Emit(WaitRegMemSizeDwords, func(st ShaderType, dst []uint32) int {
		return BuildWaitRegMem(st, info, dst)
	})
}

// WriteData appends a WRITE_DATA.
func (s *Stream) WriteData(info WriteDataInfo) {
	s.Emit(WriteDataSizeDwords, func(st ShaderType, dst []uint32) int {
		return BuildWriteData(st, info, dst)
	})
}

// PfpSyncMe appends a PFP_SYNC_ME.
func (s *Stream) PfpSyncMe() {
	s.Emit(PfpSyncMeSizeDwords, BuildPfpSyncMe)
}

// Nop appends a NOP of size dwords.
func (s *Stream) Nop(size int) {
	s.Emit(size, func(st ShaderType, dst []uint32) int {
		return BuildNop(st, size, dst)
	})
}

// Len returns the number of dwords written.
func (s *Stream) Len() int {
	return len(s.dwords)
}

// Packets returns the number of packets written.
func (s *Stream) Packets() int {
	return s.packets
}

// Dwords returns the encoded stream. The slice aliases internal storage
// and is valid until the next write or Reset.
func (s *Stream) Dwords() []uint32 {
	return s.dwords
}

// Bytes returns a little-endian copy of the stream, as consumed by the
// command processor.
func (s *Stream) Bytes() []byte {
	out := make([]byte, 0, len(s.dwords)*4)
	for _, dw := range s.dwords {
		out = binary.LittleEndian.AppendUint32(out, dw)
	}
	return out
}

// Reset discards all packets, keeping the allocation.
func (s *Stream) Reset() {
	s.dwords = s.dwords[:0]
	s.packets = 0
}
