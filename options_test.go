package barrier

import (
	"log/slog"
	"testing"

	"github.com/gogpu/barrier/pm4"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.caps != DefaultCaps() {
		t.Errorf("caps = %+v, want %+v", o.caps, DefaultCaps())
	}
	if o.fenceAddr != 0 || o.cache != nil || o.logger != nil {
		t.Errorf("unexpected defaults: %+v", o)
	}
}

func TestOptionsApply(t *testing.T) {
	c := NewResolveCache(0)
	l := slog.Default()
	caps := Caps{PWS: true}

	e := NewEmitter(pm4.NewStream(pm4.ShaderGraphics),
		WithCaps(caps),
		WithFenceMemory(0x2000),
		WithResolveCache(c),
		WithLogger(l),
	)
	if e.Caps() != caps {
		t.Errorf("Caps() = %+v, want %+v", e.Caps(), caps)
	}
	if e.fenceAddr != 0x2000 || e.cache != c || e.log() != l {
		t.Error("options were not applied")
	}
}

func TestCaps(t *testing.T) {
	tests := []struct {
		caps Caps
		pws  bool
		st   pm4.ShaderType
	}{
		{DefaultCaps(), false, pm4.ShaderGraphics},
		{Caps{PWS: true}, true, pm4.ShaderGraphics},
		{Caps{Engine: EngineCompute, PWS: true}, false, pm4.ShaderCompute},
	}
	for _, tt := range tests {
		if got := tt.caps.pwsUsable(); got != tt.pws {
			t.Errorf("%+v.pwsUsable() = %v, want %v", tt.caps, got, tt.pws)
		}
		if got := tt.caps.shaderType(); got != tt.st {
			t.Errorf("%+v.shaderType() = %v, want %v", tt.caps, got, tt.st)
		}
	}
	if EngineCompute.String() != "compute" || EngineUniversal.String() != "universal" {
		t.Error("EngineType.String mismatch")
	}
}
