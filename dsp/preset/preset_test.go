package preset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cwbudde/algo-fxgraph/dsp/fx"
	"github.com/cwbudde/algo-fxgraph/dsp/irload"
	"github.com/cwbudde/algo-fxgraph/dsp/unit"
	"github.com/cwbudde/algo-fxgraph/internal/testutil"
)

const yamlPreset = `
sampleRate: 1000
blockSize: 16
impulses:
  hall: ir/hall.wav
chain:
  - kind: delay
    settings:
      delayTime: 0.01
      feedback: 0
      level: 1
  - kind: reverb
    settings: {reverbType: hall, effectLevel: 0}
  - kind: tremolo
    settings: {rate: 2, depth: 0, bypass: true, tags: [a, b]}
`

const jsonPreset = `{
  "sampleRate": 44100,
  "chain": [
    {"kind": "phaser", "settings": {"rate": 4}},
    {"kind": "distortion"}
  ]
}`

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()

		f, err := Parse([]byte(yamlPreset))
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}

		if f.SampleRate != 1000 || f.BlockSize != 16 {
			t.Fatalf("engine = %g/%d, want 1000/16", f.SampleRate, f.BlockSize)
		}

		if f.Impulses["hall"] != "ir/hall.wav" {
			t.Fatalf("impulses=%v", f.Impulses)
		}

		if len(f.Chain) != 3 || f.Chain[2].Kind != "tremolo" {
			t.Fatalf("chain=%+v", f.Chain)
		}

		if len(f.ContextOptions()) != 2 {
			t.Fatalf("got %d context options, want 2", len(f.ContextOptions()))
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		f, err := Parse([]byte(jsonPreset))
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}

		if f.SampleRate != 44100 || len(f.Chain) != 2 {
			t.Fatalf("got %+v", f)
		}

		if got := f.Chain[0].Resolved().Num[fx.Rate]; got != 4 {
			t.Fatalf("rate=%g want 4", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		for _, data := range []string{
			"chain: [",
			"chain:\n  - settings: {level: 1}\n",
			"sampleRate: -1\nchain: []\n",
		} {
			if _, err := Parse([]byte(data)); !errors.Is(err, ErrInvalid) {
				t.Fatalf("Parse(%q) err=%v want ErrInvalid", data, err)
			}
		}
	})
}

func TestStageSettings(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(yamlPreset))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	delay := f.Chain[0].Resolved()
	if delay.Num[fx.DelayTime] != 0.01 || delay.Num[fx.Feedback] != 0 || delay.Num[fx.Level] != 1 {
		t.Fatalf("delay settings=%v", delay.Num)
	}

	reverb := f.Chain[1].Resolved()
	if reverb.Str[fx.ReverbType] != "hall" {
		t.Fatalf("reverb settings=%v", reverb.Str)
	}

	tremolo := f.Chain[2].Resolved()
	if tremolo.Num["bypass"] != 1 {
		t.Fatalf("bool not converted: %v", tremolo.Num)
	}

	if _, ok := tremolo.Num["tags"]; ok {
		t.Fatal("list setting kept")
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chain.yaml")
	if err := os.WriteFile(path, []byte(yamlPreset), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(f.Chain) != 3 {
		t.Fatalf("got %d stages, want 3", len(f.Chain))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBuildWireRender(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(yamlPreset))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	ctx := unit.NewContext(f.ContextOptions()...)
	reg := f.Registry(fx.WithLoader(irload.MapLoader{
		"ir/hall.wav": unit.NewMonoBuffer(1000, []float64{1}),
	}))

	chain, err := f.Build(ctx, reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(chain.Stages) != 3 {
		t.Fatalf("got %d stages, want 3", len(chain.Stages))
	}

	wctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := chain.Wait(wctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	in, out := ctx.NewGain(), ctx.NewGain()
	if err := chain.Wire(ctx, in, out); err != nil {
		t.Fatalf("Wire: %v", err)
	}

	testutil.RequireEdges(t, ctx.Edges(), in, chain.Stages[0].Input(), 1)
	testutil.RequireEdges(t, ctx.Edges(), chain.Stages[2].Output(), out, 1)

	tremolo, ok := chain.Stages[2].(*fx.Tremolo)
	if !ok {
		t.Fatalf("stage 2 is %T, want *fx.Tremolo", chain.Stages[2])
	}

	if tremolo.Oscillator().Starts() != 1 {
		t.Fatalf("tremolo started %d times, want 1", tremolo.Oscillator().Starts())
	}

	// delay 10 samples, dry reverb path, tremolo with zero depth
	y, err := ctx.Render(testutil.Impulse(64, 0), in, out)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if got := testutil.PeakIndex(y); got != 10 {
		t.Fatalf("peak at %d, want 10", got)
	}

	testutil.RequireNear(t, "echo", y[10], 1, 1e-9)
}

func TestBuildUnknownKind(t *testing.T) {
	t.Parallel()

	f := &File{Chain: []Stage{{Kind: "delay"}, {Kind: "wah"}}}

	_, err := f.Build(unit.NewContext(), f.Registry(fx.WithLoader(irload.MapLoader{})))
	if !errors.Is(err, fx.ErrUnknownKind) {
		t.Fatalf("err=%v want ErrUnknownKind", err)
	}
}

func TestChainWaitReportsFailure(t *testing.T) {
	t.Parallel()

	f := &File{Chain: []Stage{{Kind: "delay"}, {Kind: "reverb"}}}
	ctx := unit.NewContext()

	// MapLoader without the spring impulse fails the reverb load.
	chain, err := f.Build(ctx, f.Registry(fx.WithLoader(irload.MapLoader{})))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	wctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := chain.Wait(wctx); !errors.Is(err, fx.ErrResourceLoad) {
		t.Fatalf("Wait err=%v want ErrResourceLoad", err)
	}
}
