// Command pm4dump prints the packets emitted for common resource
// transitions.
//
//	pm4dump -scenario render-to-sample -pws
//	pm4dump -scenario all -engine compute -fence 0x10000
//	pm4dump -wgsl shader.wgsl -o barrier.bin
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strconv"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/barrier"
	"github.com/gogpu/barrier/integration/halsync"
	"github.com/gogpu/barrier/integration/wgslstage"
	"github.com/gogpu/barrier/pm4"
)

// scenarios are named batches built from WebGPU usages.
var scenarios = map[string]func() barrier.BarrierBatch{
	"render-to-sample": func() barrier.BarrierBatch {
		return halsync.TextureBatch([]hal.TextureBarrier{{
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageTextureBinding,
			},
		}}, rgba8, barrier.ReasonRenderPass)
	},
	"render-to-copy": func() barrier.BarrierBatch {
		return halsync.TextureBatch([]hal.TextureBarrier{{
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		}}, rgba8, barrier.ReasonCopy)
	},
	"compute-to-compute": func() barrier.BarrierBatch {
		return batch(barrier.ReasonDispatch, halsync.BufferTransitionVisible(
			gputypes.BufferUsageStorage, gputypes.ShaderStageCompute,
			gputypes.BufferUsageStorage, gputypes.ShaderStageCompute))
	},
	"compute-to-indirect": func() barrier.BarrierBatch {
		return batch(barrier.ReasonDispatch, halsync.BufferTransitionVisible(
			gputypes.BufferUsageStorage, gputypes.ShaderStageCompute,
			gputypes.BufferUsageIndirect, 0))
	},
	"upload": func() barrier.BarrierBatch {
		return batch(barrier.ReasonCopy,
			halsync.BufferTransition(gputypes.BufferUsageMapWrite, gputypes.BufferUsageVertex))
	},
	"readback": func() barrier.BarrierBatch {
		return batch(barrier.ReasonHostReadback,
			halsync.BufferTransition(gputypes.BufferUsageCopyDst, gputypes.BufferUsageMapRead))
	},
	"present": func() barrier.BarrierBatch {
		return batch(barrier.ReasonPresent,
			halsync.PresentTransition(gputypes.TextureUsageRenderAttachment, gputypes.TextureFormatBGRA8Unorm))
	},
}

func rgba8(hal.TextureBarrier) halsync.TextureInfo {
	return halsync.TextureInfo{Format: gputypes.TextureFormatRGBA8Unorm}
}

func batch(reason barrier.Reason, ts ...barrier.Transition) barrier.BarrierBatch {
	return barrier.BarrierBatch{Transitions: ts, Reason: reason}
}

func main() {
	var (
		scenario = flag.String("scenario", "all", "scenario name, or all")
		engine   = flag.String("engine", "universal", "engine type: universal or compute")
		pws      = flag.Bool("pws", false, "device supports pixel-wait-sync")
		fence    = flag.String("fence", "0x10000", "fence memory address, 0 for none")
		wgsl     = flag.String("wgsl", "", "WGSL file whose stages read a compute-written buffer")
		output   = flag.String("o", "", "write the raw little-endian stream to this file")
		verbose  = flag.Bool("v", false, "log every barrier")
	)
	flag.Parse()

	if *verbose {
		barrier.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	caps := barrier.Caps{PWS: *pws}
	st := pm4.ShaderGraphics
	switch *engine {
	case "universal":
	case "compute":
		caps.Engine = barrier.EngineCompute
		st = pm4.ShaderCompute
	default:
		log.Fatalf("unknown engine %q", *engine)
	}

	fenceAddr, err := strconv.ParseUint(*fence, 0, 64)
	if err != nil {
		log.Fatalf("invalid fence address: %v", err)
	}

	batches, err := selectBatches(*scenario, *wgsl)
	if err != nil {
		log.Fatal(err)
	}

	stream := pm4.NewStream(st)
	e := barrier.NewEmitter(stream,
		barrier.WithCaps(caps),
		barrier.WithFenceMemory(fenceAddr),
		barrier.WithResolveCache(barrier.NewResolveCache(0)),
	)

	for _, nb := range batches {
		start := stream.Len()
		r, err := emit(e, nb.batch)
		if err != nil {
			fmt.Printf("# %s: skipped: %v\n\n", nb.name, err)
			continue
		}
		packets, err := pm4.Disassemble(stream.Dwords()[start:])
		if err != nil {
			log.Fatalf("%s: %v", nb.name, err)
		}
		fmt.Printf("# %s: %v\n", nb.name, r)
		fmt.Print(pm4.Listing(packets))
		fmt.Println()
	}

	s := e.Stats()
	fmt.Printf("# %d barriers, %d elided, %d packets, %d dwords\n", s.Batches, s.Elided, s.Packets, s.Dwords)

	if *output != "" {
		if err := os.WriteFile(*output, stream.Bytes(), 0o644); err != nil {
			log.Fatalf("Failed to write stream: %v", err)
		}
		log.Printf("Stream saved to %s (%d bytes)\n", *output, len(stream.Bytes()))
	}
}

// emit runs ResolveAndEmit and reports requests the engine rejects as
// errors.
func emit(e *barrier.Emitter, b barrier.BarrierBatch) (r barrier.Resolution, err error) {
	defer func() {
		if v := recover(); v != nil {
			perr, ok := v.(error)
			if !ok || !(errors.Is(perr, barrier.ErrUnsupported) || errors.Is(perr, barrier.ErrInvalidSync)) {
				panic(v)
			}
			err = perr
		}
	}()
	return e.ResolveAndEmit(b), nil
}

type namedBatch struct {
	name  string
	batch barrier.BarrierBatch
}

func selectBatches(scenario, wgslPath string) ([]namedBatch, error) {
	if wgslPath != "" {
		src, err := os.ReadFile(wgslPath)
		if err != nil {
			return nil, err
		}
		stages, err := wgslstage.Stages(string(src))
		if err != nil {
			return nil, err
		}
		t := barrier.Transition{
			SrcAccess: barrier.AccessShaderWrite,
			SrcStage:  barrier.StageCompute,
			DstAccess: barrier.AccessShaderRead | barrier.AccessConstantRead,
			DstStage:  stages,
		}
		return []namedBatch{{wgslPath, batch(barrier.ReasonDispatch, t)}}, nil
	}

	if scenario != "all" {
		build, ok := scenarios[scenario]
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q", scenario)
		}
		return []namedBatch{{scenario, build()}}, nil
	}

	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]namedBatch, len(names))
	for i, name := range names {
		out[i] = namedBatch{name, scenarios[name]()}
	}
	return out, nil
}
