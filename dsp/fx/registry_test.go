package fx_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cwbudde/algo-fxgraph/dsp/fx"
	"github.com/cwbudde/algo-fxgraph/dsp/irload"
	"github.com/cwbudde/algo-fxgraph/dsp/unit"
)

func stubBuilder(ctx *unit.Context, s fx.Settings) (fx.Handle, error) {
	return fx.NewDistortion(ctx, s)
}

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	t.Run("registers and looks up builder", func(t *testing.T) {
		t.Parallel()

		r := fx.NewRegistry()
		if err := r.Register("fuzz", fx.DistortionDefaults(), stubBuilder); err != nil {
			t.Fatalf("Register: %v", err)
		}

		if r.Lookup("fuzz") == nil {
			t.Fatal("Lookup returned nil for registered kind")
		}

		if r.Lookup("missing") != nil {
			t.Fatal("Lookup returned a builder for an unknown kind")
		}
	})

	t.Run("rejects empty kind", func(t *testing.T) {
		t.Parallel()

		if err := fx.NewRegistry().Register("", fx.Settings{}, stubBuilder); err == nil {
			t.Fatal("expected error for empty kind")
		}
	})

	t.Run("rejects nil builder", func(t *testing.T) {
		t.Parallel()

		if err := fx.NewRegistry().Register("fuzz", fx.Settings{}, nil); err == nil {
			t.Fatal("expected error for nil builder")
		}
	})

	t.Run("rejects duplicate", func(t *testing.T) {
		t.Parallel()

		r := fx.NewRegistry()
		_ = r.Register("fuzz", fx.Settings{}, stubBuilder)

		if err := r.Register("fuzz", fx.Settings{}, stubBuilder); err == nil {
			t.Fatal("expected error for duplicate kind")
		}
	})

	t.Run("MustRegister panics on duplicate", func(t *testing.T) {
		t.Parallel()

		r := fx.NewRegistry()
		r.MustRegister("fuzz", fx.Settings{}, stubBuilder)

		defer func() {
			if recover() == nil {
				t.Fatal("expected panic")
			}
		}()

		r.MustRegister("fuzz", fx.Settings{}, stubBuilder)
	})
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	impulses := map[string]string{"hall": "hall.wav"}
	hall := unit.NewMonoBuffer(48000, []float64{1, 0.5})

	r := fx.DefaultRegistry(
		fx.WithLoader(irload.MapLoader{"hall.wav": hall}),
		fx.WithImpulses(impulses),
	)

	want := []fx.Kind{fx.KindDelay, fx.KindDistortion, fx.KindPhaser, fx.KindReverb, fx.KindTremolo}
	if got := r.Kinds(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Kinds=%v want %v", got, want)
	}

	for _, kind := range want {
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()

			defaults, ok := r.Defaults(kind)
			if !ok {
				t.Fatalf("no defaults for %s", kind)
			}

			s := fx.Settings{}
			if kind == fx.KindReverb {
				s.Str = map[string]string{fx.ReverbType: "hall"}
			}

			h, err := r.Build(unit.NewContext(), kind, s)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}

			if err := h.Wait(waitCtx(t)); err != nil {
				t.Fatalf("Wait: %v", err)
			}

			if !h.Ready() || h.Kind() != kind {
				t.Fatalf("ready=%v kind=%s", h.Ready(), h.Kind())
			}

			if !reflect.DeepEqual(h.Settings().Num, defaults.Num) {
				t.Fatalf("Num=%v want %v", h.Settings().Num, defaults.Num)
			}
		})
	}

	t.Run("defaults are copies", func(t *testing.T) {
		t.Parallel()

		d, _ := r.Defaults(fx.KindDelay)
		d.Num[fx.Level] = 99

		again, _ := r.Defaults(fx.KindDelay)
		if again.Num[fx.Level] != 0.5 {
			t.Fatal("Defaults returned shared map")
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		t.Parallel()

		h, err := r.Build(unit.NewContext(), "wah", fx.Settings{})
		if !errors.Is(err, fx.ErrUnknownKind) {
			t.Fatalf("err=%v want ErrUnknownKind", err)
		}

		if h != nil {
			t.Fatal("non-nil handle on error")
		}

		if _, ok := r.Defaults("wah"); ok {
			t.Fatal("defaults for unknown kind")
		}
	})

	t.Run("build error is wrapped", func(t *testing.T) {
		t.Parallel()

		h, err := r.Build(unit.NewContext(), fx.KindPhaser, fx.Settings{Num: map[string]float64{fx.Rate: 0}})
		if !errors.Is(err, fx.ErrInvalidSetting) {
			t.Fatalf("err=%v want ErrInvalidSetting", err)
		}

		if h != nil {
			t.Fatal("non-nil handle on error")
		}
	})
}
