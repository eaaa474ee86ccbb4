package pm4

import (
	"fmt"

	"github.com/pkg/errors"
)

// Packet sizes in dwords, header included.
const (
	EventWriteSizeDwords    = 2
	ReleaseMemSizeDwords    = 8
	AcquireMemSizeDwords    = 8
	AcquireMemPwsSizeDwords = 8
	WaitRegMemSizeDwords    = 7
	PfpSyncMeSizeDwords     = 2
	WriteDataSizeDwords     = 5
)

// DefaultPollInterval is the poll interval, in CP clocks, baked into
// every wait packet.
const DefaultPollInterval = 0x10

// EngineSel picks the front-end that executes a wait or acquire.
type EngineSel uint8

const (
	// EngineMe executes on the micro engine.
	EngineMe EngineSel = 0
	// EnginePfp executes on the prefetch parser.
	EnginePfp EngineSel = 1
)

func (e EngineSel) String() string {
	if e == EnginePfp {
		return "PFP"
	}
	return "ME"
}

// DataSel selects what RELEASE_MEM writes to its destination. Fences
// are 32-bit, so only the low dword of Data is ever sent.
type DataSel uint8

// RELEASE_MEM data selections.
const (
	DataNone   DataSel = 0
	DataSend32 DataSel = 1
)

// PwsStage is the pipeline point a PWS acquire stalls.
//
// PreShader and PrePixelShader are part of the packet ABI but the barrier
// engine never selects them: late events can leak past those points on
// some parts. Value 2 (PRE_COLOR) is decoded but never encoded.
type PwsStage uint8

// PWS stage selections.
const (
	PwsStagePreDepth       PwsStage = 0
	PwsStagePreShader      PwsStage = 1
	PwsStagePrePixelShader PwsStage = 3
	PwsStageCpPfp          PwsStage = 4
	PwsStageCpMe           PwsStage = 5
)

var pwsStageNames = [...]string{"PRE_DEPTH", "PRE_SHADER", "PRE_COLOR", "PRE_PIX_SHADER", "CP_PFP", "CP_ME"}

func (s PwsStage) String() string {
	if int(s) < len(pwsStageNames) {
		return pwsStageNames[s]
	}
	return fmt.Sprintf("STAGE(%d)", uint8(s))
}

// PwsCounter is the PWS event counter a release increments and an
// acquire waits on.
type PwsCounter uint8

// PWS counters.
const (
	PwsCounterTimestamp PwsCounter = 0
	PwsCounterPixel     PwsCounter = 1
	PwsCounterCompute   PwsCounter = 2
)

var pwsCounterNames = [...]string{"TS", "PS", "CS"}

func (c PwsCounter) String() string {
	if int(c) < len(pwsCounterNames) {
		return pwsCounterNames[c]
	}
	return fmt.Sprintf("COUNTER(%d)", uint8(c))
}

// MaxPwsCount is the largest "events ago" value an acquire can encode.
const MaxPwsCount = 63

// CompareFunc is the WAIT_REG_MEM comparison.
type CompareFunc uint8

// WAIT_REG_MEM comparisons; the wait ends when (*addr & mask) OP reference.
const (
	CompareAlways       CompareFunc = 0
	CompareLess         CompareFunc = 1
	CompareLessEqual    CompareFunc = 2
	CompareEqual        CompareFunc = 3
	CompareNotEqual     CompareFunc = 4
	CompareGreaterEqual CompareFunc = 5
	CompareGreater      CompareFunc = 6
)

// =============================================================================
// EVENT_WRITE
// =============================================================================

var (
	evType  = field{0, 6}
	evIndex = field{8, 4}
)

// EventWriteInfo describes an EVENT_WRITE packet.
type EventWriteInfo struct {
	Event EventType
}

// BuildEventWrite writes an EVENT_WRITE for a non-timestamp event.
// End-of-pipe and end-of-shader events belong in RELEASE_MEM.
func BuildEventWrite(st ShaderType, info EventWriteInfo, dst []uint32) int {
	if IsReleasable(info.Event) {
		panic(errors.Errorf("pm4: %v must be issued through RELEASE_MEM", info.Event))
	}
	dst[0] = Header(OpEventWrite, EventWriteSizeDwords, st)
	dst[1] = evType.set(uint32(info.Event)) | evIndex.set(uint32(IndexOf(info.Event)))
	return EventWriteSizeDwords
}

// =============================================================================
// RELEASE_MEM
// =============================================================================

var (
	relGcrCntl = field{12, 13}
	relPwsEna  = field{31, 1}
	relDstSel  = field{16, 2}
	relIntSel  = field{24, 3}
	relDataSel = field{29, 3}
)

// ReleaseMemInfo describes a RELEASE_MEM packet.
type ReleaseMemInfo struct {
	// Event is an end-of-pipe or end-of-shader event.
	Event EventType
	// Gcr lists cache actions performed once the event retires.
	Gcr GcrOps
	// Pws increments the PWS counter for Event instead of writing memory.
	Pws bool
	// DataSel, Address and Data describe the memory write; ignored with Pws.
	DataSel DataSel
	Address uint64
	Data    uint64
}

// BuildReleaseMem writes a RELEASE_MEM packet.
func BuildReleaseMem(st ShaderType, info ReleaseMemInfo, dst []uint32) int {
	if !IsReleasable(info.Event) {
		panic(errors.Errorf("pm4: RELEASE_MEM cannot carry %v", info.Event))
	}
	if info.Pws && info.DataSel != DataNone {
		panic(errors.New("pm4: PWS release must not write memory"))
	}
	switch info.DataSel {
	case DataNone:
	case DataSend32:
		if info.Address&0x3 != 0 {
			panic(errors.Errorf("pm4: release address 0x%x not dword aligned", info.Address))
		}
		if info.Data > 0xffffffff {
			panic(errors.Wrapf(ErrFieldOverflow, "release data 0x%x exceeds 32 bits", info.Data))
		}
	default:
		panic(errors.Errorf("pm4: unsupported release data selection %d", info.DataSel))
	}

	dst[0] = Header(OpReleaseMem, ReleaseMemSizeDwords, st)
	dst[1] = evType.set(uint32(info.Event)) |
		evIndex.set(uint32(IndexOf(info.Event))) |
		relGcrCntl.set(ReleaseGcrCntl(info.Gcr)) |
		relPwsEna.setBool(info.Pws)
	dst[2] = relDstSel.set(0) | relIntSel.set(0) | relDataSel.set(uint32(info.DataSel))
	dst[3] = lo32(info.Address)
	dst[4] = hi32(info.Address)
	dst[5] = lo32(info.Data)
	dst[6] = hi32(info.Data)
	dst[7] = 0 // int_ctxid
	return ReleaseMemSizeDwords
}

// =============================================================================
// ACQUIRE_MEM
// =============================================================================

var (
	acqEngineSel  = field{30, 1}
	acqPwsEna     = field{31, 1}
	acqPwsStage   = field{11, 3}
	acqPwsCounter = field{14, 2}
	acqPwsEna2    = field{17, 1}
	acqPwsCount   = field{18, 6}
	acqPoll       = field{0, 16}
	acqGcrCntl    = field{0, 19}
)

// Full-range coherency window.
const (
	coherSizeAll   = 0xffffffff
	coherSizeHiAll = 0xff
)

// AcquireMemInfo describes a non-PWS ACQUIRE_MEM packet.
type AcquireMemInfo struct {
	Engine EngineSel
	Gcr    GcrOps
}

// BuildAcquireMem writes an ACQUIRE_MEM covering the full address range.
func BuildAcquireMem(st ShaderType, info AcquireMemInfo, dst []uint32) int {
	if st == ShaderCompute && info.Engine == EnginePfp {
		panic(errors.New("pm4: compute engines have no prefetch parser"))
	}
	dst[0] = Header(OpAcquireMem, AcquireMemSizeDwords, st)
	dst[1] = acqEngineSel.set(uint32(info.Engine))
	dst[2] = coherSizeAll
	dst[3] = coherSizeHiAll
	dst[4] = 0
	dst[5] = 0
	dst[6] = acqPoll.set(DefaultPollInterval)
	dst[7] = acqGcrCntl.set(AcquireGcrCntl(info.Gcr))
	return AcquireMemSizeDwords
}

// AcquireMemPwsInfo describes a PWS ACQUIRE_MEM: wait until the selected
// counter reaches the value it had Count releases ago, stalling at Stage.
type AcquireMemPwsInfo struct {
	Stage   PwsStage
	Counter PwsCounter
	Count   uint8
	Gcr     GcrOps
}

// BuildAcquireMemPws writes a PWS ACQUIRE_MEM. Only graphics engines
// implement PWS.
func BuildAcquireMemPws(st ShaderType, info AcquireMemPwsInfo, dst []uint32) int {
	if st != ShaderGraphics {
		panic(errors.New("pm4: PWS acquire requires a graphics engine"))
	}
	dst[0] = Header(OpAcquireMem, AcquireMemPwsSizeDwords, st)
	dst[1] = acqPwsStage.set(uint32(info.Stage)) |
		acqPwsCounter.set(uint32(info.Counter)) |
		acqPwsEna2.set(1) |
		acqPwsCount.set(uint32(info.Count)) |
		acqPwsEna.set(1)
	dst[2] = coherSizeAll
	dst[3] = coherSizeHiAll
	dst[4] = 0
	dst[5] = 0
	dst[6] = 0
	dst[7] = acqGcrCntl.set(AcquireGcrCntl(info.Gcr))
	return AcquireMemPwsSizeDwords
}

// =============================================================================
// WAIT_REG_MEM
// =============================================================================

var (
	wrmFunction  = field{0, 3}
	wrmMemSpace  = field{4, 1}
	wrmOperation = field{6, 2}
	wrmEngine    = field{8, 2}
	wrmPoll      = field{0, 16}
)

// WaitRegMemInfo describes a memory poll.
type WaitRegMemInfo struct {
	Engine    EngineSel
	Function  CompareFunc
	Address   uint64
	Reference uint32
	Mask      uint32
}

// BuildWaitRegMem writes a WAIT_REG_MEM polling memory.
func BuildWaitRegMem(st ShaderType, info WaitRegMemInfo, dst []uint32) int {
	if info.Address&0x3 != 0 {
		panic(errors.Errorf("pm4: wait address 0x%x not dword aligned", info.Address))
	}
	if st == ShaderCompute && info.Engine == EnginePfp {
		panic(errors.New("pm4: compute engines have no prefetch parser"))
	}
	dst[0] = Header(OpWaitRegMem, WaitRegMemSizeDwords, st)
	dst[1] = wrmFunction.set(uint32(info.Function)) |
		wrmMemSpace.set(1) |
		wrmOperation.set(0) |
		wrmEngine.set(uint32(info.Engine))
	dst[2] = lo32(info.Address)
	dst[3] = hi32(info.Address)
	dst[4] = info.Reference
	dst[5] = info.Mask
	dst[6] = wrmPoll.set(DefaultPollInterval)
	return WaitRegMemSizeDwords
}

// =============================================================================
// PFP_SYNC_ME
// =============================================================================

// BuildPfpSyncMe writes a PFP_SYNC_ME, which holds the prefetch parser
// until the micro engine has reached the packet.
func BuildPfpSyncMe(st ShaderType, dst []uint32) int {
	if st != ShaderGraphics {
		panic(errors.New("pm4: PFP_SYNC_ME requires a graphics engine"))
	}
	dst[0] = Header(OpPfpSyncMe, PfpSyncMeSizeDwords, st)
	dst[1] = 0
	return PfpSyncMeSizeDwords
}

// =============================================================================
// WRITE_DATA
// =============================================================================

var (
	wdDstSel    = field{8, 4}
	wdWrConfirm = field{20, 1}
	wdEngineSel = field{30, 2}
)

const wdDstMemory = 5

// WriteDataInfo describes a single-dword WRITE_DATA to memory.
type WriteDataInfo struct {
	// Engine is the front-end that performs the write, in stream order.
	Engine  EngineSel
	Address uint64
	Data    uint32
}

// BuildWriteData writes a confirmed single-dword memory write. The
// issuing engine does not move past the packet until the write lands.
func BuildWriteData(st ShaderType, info WriteDataInfo, dst []uint32) int {
	if info.Address&0x3 != 0 {
		panic(errors.Errorf("pm4: write address 0x%x not dword aligned", info.Address))
	}
	if st == ShaderCompute && info.Engine == EnginePfp {
		panic(errors.New("pm4: compute engines have no prefetch parser"))
	}
	dst[0] = Header(OpWriteData, WriteDataSizeDwords, st)
	dst[1] = wdDstSel.set(wdDstMemory) |
		wdWrConfirm.set(1) |
		wdEngineSel.set(uint32(info.Engine))
	dst[2] = lo32(info.Address)
	dst[3] = hi32(info.Address)
	dst[4] = info.Data
	return WriteDataSizeDwords
}

// =============================================================================
// NOP
// =============================================================================

// BuildNop writes a NOP of size dwords with a zeroed body. It is used to
// pad streams to an alignment boundary.
func BuildNop(st ShaderType, size int, dst []uint32) int {
	dst[0] = Header(OpNop, size, st)
	clear(dst[1:size])
	return size
}
