// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgslstage discovers the pipeline stages a WGSL module runs in.
//
// Barriers need the consuming stages of a resource. For resources bound
// to a shader, those are the stages of the module's entry points:
//
//	stages, err := wgslstage.Stages(src)
//	if err != nil {
//	    return err
//	}
//	t.DstStage = stages
//
// The module is compiled to SPIR-V with naga and the OpEntryPoint
// instructions are read back, so stage discovery agrees with what the
// driver will see.
package wgslstage
