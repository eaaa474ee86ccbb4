// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package halsync maps WebGPU-style resource usages onto barrier
// transitions.
//
// The wgpu HAL describes a barrier as an old and a new usage set. Each
// usage is translated into the accesses and pipeline stages it implies,
// so a HAL barrier becomes a [barrier.Transition] that the resolver can
// turn into cache and pipeline synchronization:
//
//	t := halsync.TextureTransition(hal.TextureBarrier{
//	    Texture: tex,
//	    Usage: hal.TextureUsageTransition{
//	        OldUsage: gputypes.TextureUsageRenderAttachment,
//	        NewUsage: gputypes.TextureUsageCopySrc,
//	    },
//	}, halsync.TextureInfo{Format: gputypes.TextureFormatRGBA8Unorm, Layout: layout})
//	emitter.ResolveAndEmit(barrier.BarrierBatch{Transitions: []barrier.Transition{t}})
//
// The layout comes from the addressing library and may be nil; a
// compressed layout makes shader reads invalidate the metadata cache.
//
// Usages carry no shader visibility, so shader-bound usages are assumed
// visible to every shader stage. [BufferTransitionVisible] narrows them
// when the binding visibility is known.
//
// Usage bits the package does not recognize map to an unknown access and
// are synchronized conservatively. They are reported at Warn level
// through [barrier.Logger].
package halsync
