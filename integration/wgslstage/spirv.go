// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgslstage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"

	"github.com/gogpu/barrier"
)

// Errors returned by this package.
var (
	// ErrCompile wraps WGSL compilation failures.
	ErrCompile = errors.New("wgslstage: compile failed")

	// ErrInvalidModule reports a SPIR-V module that cannot be parsed.
	ErrInvalidModule = errors.New("wgslstage: invalid SPIR-V module")

	// ErrUnsupportedModel reports an entry point whose execution model has
	// no pipeline stage.
	ErrUnsupportedModel = errors.New("wgslstage: unsupported execution model")
)

const (
	spirvMagic       = 0x07230203
	spirvHeaderWords = 5
	opEntryPoint     = 15
)

// ExecutionModel is a SPIR-V execution model.
type ExecutionModel uint32

// Execution models that map to pipeline stages.
const (
	ModelVertex                 ExecutionModel = 0
	ModelTessellationControl    ExecutionModel = 1
	ModelTessellationEvaluation ExecutionModel = 2
	ModelGeometry               ExecutionModel = 3
	ModelFragment               ExecutionModel = 4
	ModelGLCompute              ExecutionModel = 5
	ModelKernel                 ExecutionModel = 6
)

var modelStages = map[ExecutionModel]barrier.StageMask{
	ModelVertex:                 barrier.StageVertex,
	ModelTessellationControl:    barrier.StageHull,
	ModelTessellationEvaluation: barrier.StageDomain,
	ModelGeometry:               barrier.StageGeometry,
	ModelFragment:               barrier.StagePixel,
	ModelGLCompute:              barrier.StageCompute,
	ModelKernel:                 barrier.StageCompute,
}

// Stage returns the pipeline stage m runs in.
func (m ExecutionModel) Stage() (barrier.StageMask, error) {
	s, ok := modelStages[m]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedModel, uint32(m))
	}
	return s, nil
}

// EntryPoint is one OpEntryPoint of a module.
type EntryPoint struct {
	Name  string
	Model ExecutionModel
}

// Compile compiles WGSL source to SPIR-V words.
func Compile(src string) ([]uint32, error) {
	b, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of words", ErrInvalidModule, len(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words, nil
}

// Stages compiles src and returns the union of its entry point stages.
func Stages(src string) (barrier.StageMask, error) {
	words, err := Compile(src)
	if err != nil {
		return 0, err
	}
	return ModuleStages(words)
}

// ModuleStages returns the union of the entry point stages of a SPIR-V
// module.
func ModuleStages(words []uint32) (barrier.StageMask, error) {
	eps, err := EntryPoints(words)
	if err != nil {
		return 0, err
	}
	var stages barrier.StageMask
	for _, ep := range eps {
		s, err := ep.Model.Stage()
		if err != nil {
			return 0, fmt.Errorf("entry point %q: %w", ep.Name, err)
		}
		stages |= s
	}
	return stages, nil
}

// EntryPoints lists the entry points of a SPIR-V module in declaration
// order.
func EntryPoints(words []uint32) ([]EntryPoint, error) {
	if len(words) < spirvHeaderWords {
		return nil, fmt.Errorf("%w: %d words is shorter than the header", ErrInvalidModule, len(words))
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("%w: bad magic 0x%08x", ErrInvalidModule, words[0])
	}

	var eps []EntryPoint
	for off := spirvHeaderWords; off < len(words); {
		count := int(words[off] >> 16)
		op := words[off] & 0xffff
		if count == 0 || off+count > len(words) {
			return nil, fmt.Errorf("%w: instruction at word %d has length %d", ErrInvalidModule, off, count)
		}
		if op == opEntryPoint {
			if count < 4 {
				return nil, fmt.Errorf("%w: short OpEntryPoint at word %d", ErrInvalidModule, off)
			}
			eps = append(eps, EntryPoint{
				Model: ExecutionModel(words[off+1]),
				Name:  literalString(words[off+3 : off+count]),
			})
		}
		off += count
	}
	return eps, nil
}

// literalString decodes a nul-terminated SPIR-V literal string.
func literalString(words []uint32) string {
	var b strings.Builder
	for _, w := range words {
		for i := 0; i < 4; i++ {
			c := byte(w >> (8 * i))
			if c == 0 {
				return b.String()
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}
