// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halsync

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/barrier"
)

// accessUnknown stands in for usage bits without a mapping. The resolver
// treats undefined access bits as touching every cache.
const accessUnknown = barrier.AccessMask(1 << 31)

// shaderStages is where a shader-bound usage may be accessed when the
// binding visibility is unknown.
const shaderStages = barrier.StageVertex | barrier.StagePixel | barrier.StageCompute

// usageSync is the access and stage footprint of one usage bit.
// Binding usages are reached from shaders and take their stages from the
// binding visibility.
type usageSync struct {
	access  barrier.AccessMask
	stages  barrier.StageMask
	binding bool
}

var bufferUsages = []struct {
	usage gputypes.BufferUsage
	sync  usageSync
}{
	{gputypes.BufferUsageMapRead, usageSync{barrier.AccessCPU, 0, false}},
	{gputypes.BufferUsageMapWrite, usageSync{barrier.AccessCPU, 0, false}},
	{gputypes.BufferUsageCopySrc, usageSync{barrier.AccessCopySrc, barrier.StageBlt, false}},
	{gputypes.BufferUsageCopyDst, usageSync{barrier.AccessCopyDst, barrier.StageBlt, false}},
	{gputypes.BufferUsageIndex, usageSync{barrier.AccessIndexData, barrier.StageIndexFetch, false}},
	{gputypes.BufferUsageVertex, usageSync{barrier.AccessShaderRead, barrier.StageVertex, false}},
	{gputypes.BufferUsageUniform, usageSync{barrier.AccessConstantRead, 0, true}},
	{gputypes.BufferUsageStorage, usageSync{barrier.AccessShaderRead | barrier.AccessShaderWrite, 0, true}},
	{gputypes.BufferUsageIndirect, usageSync{barrier.AccessIndirectArgs, barrier.StageIndirectArgs, false}},
}

var textureUsages = []struct {
	usage gputypes.TextureUsage
	sync  usageSync
}{
	{gputypes.TextureUsageCopySrc, usageSync{barrier.AccessCopySrc, barrier.StageBlt, false}},
	{gputypes.TextureUsageCopyDst, usageSync{barrier.AccessCopyDst, barrier.StageBlt, false}},
	{gputypes.TextureUsageTextureBinding, usageSync{barrier.AccessShaderRead, 0, true}},
	{gputypes.TextureUsageStorageBinding, usageSync{barrier.AccessShaderRead | barrier.AccessShaderWrite, 0, true}},
}

var (
	colorAttachment = usageSync{
		access: barrier.AccessColorTargetRead | barrier.AccessColorTargetWrite,
		stages: barrier.StageColorTarget,
	}
	depthAttachment = usageSync{
		access: barrier.AccessDepthStencilRead | barrier.AccessDepthStencilWrite,
		stages: barrier.StageDepthTarget,
	}
)

// add merges s into the footprint, resolving binding stages from vis.
func (f *usageSync) add(s usageSync, vis gputypes.ShaderStage) {
	f.access |= s.access
	f.stages |= s.stages
	if s.binding {
		f.stages |= bindingStages(vis)
	}
}

func (f *usageSync) addUnknown(kind string, bits uint64) {
	barrier.Logger().Warn("halsync: unknown usage", "kind", kind, "bits", bits)
	f.access |= accessUnknown
	f.stages |= barrier.StageBottomOfPipe
}

func bindingStages(vis gputypes.ShaderStage) barrier.StageMask {
	if s := StagesForVisibility(vis); s != 0 {
		return s
	}
	return shaderStages
}

// BufferAccess returns the accesses and stages a buffer in usage u may
// see. Binding usages are reached from the stages in vis, or from every
// shader stage when vis is zero.
func BufferAccess(u gputypes.BufferUsage, vis gputypes.ShaderStage) (barrier.AccessMask, barrier.StageMask) {
	var f usageSync
	rest := u
	for _, m := range bufferUsages {
		if u&m.usage != 0 {
			f.add(m.sync, vis)
			rest &^= m.usage
		}
	}
	if rest != 0 {
		f.addUnknown("buffer", uint64(rest))
	}
	return f.access, f.stages
}

// TextureAccess returns the accesses and stages a texture of format tf
// in usage u may see. Render attachments use the depth path for depth
// and stencil formats. vis is as for BufferAccess.
func TextureAccess(u gputypes.TextureUsage, tf gputypes.TextureFormat, vis gputypes.ShaderStage) (barrier.AccessMask, barrier.StageMask) {
	var f usageSync
	rest := u
	for _, m := range textureUsages {
		if u&m.usage != 0 {
			f.add(m.sync, vis)
			rest &^= m.usage
		}
	}
	if u&gputypes.TextureUsageRenderAttachment != 0 {
		if IsDepthStencil(tf) {
			f.add(depthAttachment, vis)
		} else {
			f.add(colorAttachment, vis)
		}
		rest &^= gputypes.TextureUsageRenderAttachment
	}
	if rest != 0 {
		f.addUnknown("texture", uint64(rest))
	}
	return f.access, f.stages
}

// IsDepthStencil reports whether f is a depth or stencil format.
func IsDepthStencil(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatDepth16Unorm,
		gputypes.TextureFormatDepth24Plus,
		gputypes.TextureFormatDepth24PlusStencil8,
		gputypes.TextureFormatDepth32Float,
		gputypes.TextureFormatDepth32FloatStencil8,
		gputypes.TextureFormatStencil8:
		return true
	}
	return false
}

// StagesForVisibility returns the pipeline stages a binding with
// visibility v is accessed from.
func StagesForVisibility(v gputypes.ShaderStage) barrier.StageMask {
	var s barrier.StageMask
	if v&gputypes.ShaderStageVertex != 0 {
		s |= barrier.StageVertex
	}
	if v&gputypes.ShaderStageFragment != 0 {
		s |= barrier.StagePixel
	}
	if v&gputypes.ShaderStageCompute != 0 {
		s |= barrier.StageCompute
	}
	return s
}

// BufferTransition returns the transition of a buffer from usage from to
// usage to, with bindings visible to every shader stage.
func BufferTransition(from, to gputypes.BufferUsage) barrier.Transition {
	return BufferTransitionVisible(from, 0, to, 0)
}

// BufferTransitionVisible is BufferTransition with known binding
// visibility on each side.
func BufferTransitionVisible(from gputypes.BufferUsage, fromVis gputypes.ShaderStage,
	to gputypes.BufferUsage, toVis gputypes.ShaderStage) barrier.Transition {
	var t barrier.Transition
	t.SrcAccess, t.SrcStage = BufferAccess(from, fromVis)
	t.DstAccess, t.DstStage = BufferAccess(to, toVis)
	return t
}

// TextureInfo describes the texture a HAL barrier applies to.
type TextureInfo struct {
	Format gputypes.TextureFormat
	// Layout is the texture's subresource layout from the addressing
	// library. A nil Layout is treated as carrying no metadata.
	Layout barrier.SubresourceLayout
}

// TextureTransition returns the transition described by a HAL texture
// barrier. The layout decides whether shader reads need the metadata
// cache invalidated.
func TextureTransition(b hal.TextureBarrier, info TextureInfo) barrier.Transition {
	var t barrier.Transition
	t.SrcAccess, t.SrcStage = TextureAccess(b.Usage.OldUsage, info.Format, 0)
	t.DstAccess, t.DstStage = TextureAccess(b.Usage.NewUsage, info.Format, 0)
	t.Layout = info.Layout
	return t
}

// TextureBatch converts HAL texture barriers into one batch. describe
// reports the texture behind each barrier.
func TextureBatch(bs []hal.TextureBarrier, describe func(hal.TextureBarrier) TextureInfo,
	reason barrier.Reason) barrier.BarrierBatch {
	batch := barrier.BarrierBatch{
		Transitions: make([]barrier.Transition, 0, len(bs)),
		Reason:      reason,
	}
	for _, b := range bs {
		batch.Add(TextureTransition(b, describe(b)))
	}
	return batch
}

// PresentTransition returns the transition of a texture in usage old to
// the presentation engine.
func PresentTransition(old gputypes.TextureUsage, f gputypes.TextureFormat) barrier.Transition {
	var t barrier.Transition
	t.SrcAccess, t.SrcStage = TextureAccess(old, f, 0)
	t.DstAccess = barrier.AccessPresent
	return t
}
