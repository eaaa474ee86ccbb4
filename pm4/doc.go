// Package pm4 encodes the PM4 type-3 command packets used by the barrier
// engine.
//
// # Overview
//
// A PM4 packet is a header dword followed by a fixed body. The header
// carries the packet type (always 3 here), the body length, the opcode
// and the shader type (graphics or compute). Every builder in this
// package is a pure function with a fixed output size:
//
//	n := pm4.BuildPfpSyncMe(pm4.ShaderGraphics, dst) // n == pm4.PfpSyncMeSizeDwords
//
// Builders never allocate. Callers normally go through [Stream.Emit],
// which reserves space, runs the builder and asserts that the returned
// dword count matches the packet's size constant.
//
// # Field layout
//
// Packet fields are written with explicit shift/mask helpers rather than
// struct bitfields. A value that does not fit its field is a programming
// error and panics.
//
// # Packets
//
//   - EVENT_WRITE:   pipeline event without a memory write (partial flushes)
//   - RELEASE_MEM:   end-of-pipe / end-of-shader event with cache actions,
//     optionally writing a fence value or bumping a PWS counter
//   - ACQUIRE_MEM:   cache invalidation, optionally a PWS counter wait
//   - WAIT_REG_MEM:  poll a memory location on the ME or PFP
//   - WRITE_DATA:    confirmed dword write, used to clear fence memory
//   - PFP_SYNC_ME:   hold the prefetch parser until the ME catches up
//
// [Disassemble] turns a dword stream back into readable packets.
package pm4
