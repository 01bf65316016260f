package unit_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-fxgraph/dsp/unit"
	"github.com/cwbudde/algo-fxgraph/internal/testutil"
)

func TestConvolver(t *testing.T) {
	t.Parallel()

	t.Run("silent without buffer", func(t *testing.T) {
		t.Parallel()

		ctx := unit.NewContext(unit.WithBlockSize(16))
		cv := ctx.NewConvolver()

		y, err := ctx.Render(testutil.DC(1, 40), cv, cv)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}

		if testutil.Energy(y) != 0 {
			t.Fatal("convolver without buffer should be silent")
		}
	})

	t.Run("shifted impulse delays across blocks", func(t *testing.T) {
		t.Parallel()

		ctx := unit.NewContext(unit.WithBlockSize(16))
		cv := ctx.NewConvolver()

		ir := testutil.Impulse(21, 20)
		if err := cv.SetBuffer(unit.NewMonoBuffer(48000, ir)); err != nil {
			t.Fatalf("SetBuffer: %v", err)
		}

		x := testutil.DeterministicSine(1000, 48000, 1, 70)

		y, err := ctx.Render(x, cv, cv)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}

		want := make([]float64, len(x))
		copy(want[20:], x[:len(x)-20])
		testutil.RequireSliceNearlyEqual(t, y, want, 1e-9)
	})

	t.Run("partial blocks keep the tail", func(t *testing.T) {
		t.Parallel()

		ctx := unit.NewContext(unit.WithBlockSize(16))
		cv := ctx.NewConvolver()
		_ = cv.SetBuffer(unit.NewMonoBuffer(48000, []float64{0.5, 0, 0, 0.25}))

		first, _ := ctx.Render(testutil.Impulse(5, 3), cv, cv)
		second, _ := ctx.Render(make([]float64, 5), cv, cv)

		testutil.RequireSliceNearlyEqual(t, first, []float64{0, 0, 0, 0.5, 0}, 1e-9)
		testutil.RequireSliceNearlyEqual(t, second, []float64{0, 0.25, 0, 0, 0}, 1e-9)
	})

	t.Run("rejects empty buffer", func(t *testing.T) {
		t.Parallel()

		ctx := unit.NewContext()
		cv := ctx.NewConvolver()

		err := cv.SetBuffer(&unit.Buffer{SampleRate: 48000})
		if !errors.Is(err, unit.ErrEmptyBuffer) {
			t.Fatalf("expected ErrEmptyBuffer, got %v", err)
		}

		if cv.Buffer() != nil {
			t.Fatal("failed SetBuffer must not install a buffer")
		}
	})
}

func TestFilter(t *testing.T) {
	t.Parallel()

	t.Run("allpass at zero frequency passes through", func(t *testing.T) {
		t.Parallel()

		ctx := unit.NewContext()
		f, _ := ctx.NewFilter(unit.Allpass)
		_ = f.Frequency().Set(0)

		x := testutil.DeterministicSine(440, 48000, 1, 300)

		y, err := ctx.Render(x, f, f)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}

		testutil.RequireSliceNearlyEqual(t, y, x, 1e-12)
	})

	t.Run("frequency above nyquist passes through", func(t *testing.T) {
		t.Parallel()

		ctx := unit.NewContext(unit.WithSampleRate(1000))
		f, _ := ctx.NewFilter(unit.Lowpass)

		if err := f.Frequency().Set(700); err != nil {
			t.Fatalf("Set(700) at 1 kHz: %v", err)
		}

		x := testutil.DeterministicSine(100, 1000, 1, 300)

		y, err := ctx.Render(x, f, f)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}

		testutil.RequireSliceNearlyEqual(t, y, x, 1e-12)
	})

	t.Run("non-finite frequency is rejected", func(t *testing.T) {
		t.Parallel()

		f, _ := unit.NewContext().NewFilter(unit.Bandpass)

		for _, v := range []float64{math.NaN(), math.Inf(1), -1} {
			if err := f.Frequency().Set(v); !errors.Is(err, unit.ErrInvalidParam) {
				t.Fatalf("Set(%v): err=%v want ErrInvalidParam", v, err)
			}
		}
	})

	t.Run("allpass keeps steady state amplitude", func(t *testing.T) {
		t.Parallel()

		ctx := unit.NewContext()
		f, _ := ctx.NewFilter(unit.Allpass)
		_ = f.Frequency().Set(1000)

		y, _ := ctx.Render(testutil.DeterministicSine(500, 48000, 1, 9600), f, f)

		peak := 0.0
		for _, v := range y[4800:] {
			peak = math.Max(peak, math.Abs(v))
		}

		testutil.RequireNear(t, "peak", peak, 1, 0.01)
	})

	t.Run("lowpass attenuates above cutoff", func(t *testing.T) {
		t.Parallel()

		ctx := unit.NewContext()
		f, _ := ctx.NewFilter(unit.Lowpass)

		x := testutil.DeterministicSine(8000, 48000, 1, 4800)
		y, _ := ctx.Render(x, f, f)

		if testutil.Energy(y[2400:]) > 0.01*testutil.Energy(x[2400:]) {
			t.Fatal("lowpass at 350 Hz should strongly attenuate 8 kHz")
		}
	})

	t.Run("highpass blocks dc", func(t *testing.T) {
		t.Parallel()

		ctx := unit.NewContext()
		f, _ := ctx.NewFilter(unit.Highpass)

		y, _ := ctx.Render(testutil.DC(1, 48000), f, f)

		if math.Abs(y[len(y)-1]) > 1e-6 {
			t.Fatalf("highpass dc output = %v, want ~0", y[len(y)-1])
		}
	})
}

func TestWaveShaper(t *testing.T) {
	t.Parallel()

	ctx := unit.NewContext()
	w := ctx.NewWaveShaper()

	x := []float64{-2, -1, -0.5, 0, 0.5, 1, 2}

	y, _ := ctx.Render(x, w, w)
	testutil.RequireSliceNearlyEqual(t, y, x, 0)

	if err := w.SetCurve([]float64{-0.5, 0, 0.5}); err != nil {
		t.Fatalf("SetCurve: %v", err)
	}

	y, _ = ctx.Render(x, w, w)
	testutil.RequireSliceNearlyEqual(t, y, []float64{-0.5, -0.5, -0.25, 0, 0.25, 0.5, 0.5}, 1e-12)

	if err := w.SetCurve([]float64{1}); err == nil {
		t.Fatal("expected error for one-point curve")
	}

	if len(w.Curve()) != 3 {
		t.Fatal("rejected curve must not replace the installed one")
	}
	t.Run("nan input reads the curve midpoint", func(t *testing.T) {
		t.Parallel()

		ctx := unit.NewContext()
		w := ctx.NewWaveShaper()

		if err := w.SetCurve([]float64{1, 3, 7}); err != nil {
			t.Fatalf("SetCurve: %v", err)
		}

		y, err := ctx.Render([]float64{math.NaN(), -1, math.NaN(), 1}, w, w)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}

		testutil.RequireSliceNearlyEqual(t, y, []float64{3, 1, 3, 7}, 0)
	})
}

func TestOscillatorStarts(t *testing.T) {
	t.Parallel()

	ctx := unit.NewContext()
	o := ctx.NewOscillator()

	if o.Running() || o.Starts() != 0 {
		t.Fatal("new oscillator should be stopped")
	}

	o.Start()
	o.Start()

	if !o.Running() || o.Starts() != 2 {
		t.Fatalf("Running=%v Starts=%d, want true/2", o.Running(), o.Starts())
	}

	o.Stop()

	y, _ := ctx.Render(testutil.DC(1, 10), o, o)
	if testutil.Energy(y) != 0 {
		t.Fatal("stopped oscillator should be silent")
	}
}

func TestBuffer(t *testing.T) {
	t.Parallel()

	b := &unit.Buffer{
		SampleRate: 1000,
		Channels:   [][]float64{{1, 0, 1, 0}, {0, 1, 1, 0}},
	}

	if b.Len() != 4 || b.NumChannels() != 2 {
		t.Fatalf("Len=%d NumChannels=%d", b.Len(), b.NumChannels())
	}

	if b.Duration() != 4*time.Millisecond {
		t.Errorf("Duration = %v, want 4ms", b.Duration())
	}

	testutil.RequireSliceNearlyEqual(t, b.Mono(), []float64{0.5, 0.5, 1, 0}, 1e-12)

	var empty *unit.Buffer
	if empty.Len() != 0 || empty.Duration() != 0 {
		t.Error("nil buffer should be empty")
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()

	ctx := unit.NewContext()
	d, _ := ctx.NewDelay(0)
	f, _ := ctx.NewFilter(unit.Notch)

	cases := []struct {
		u    unit.Unit
		want string
	}{
		{ctx.NewGain(), "gain"},
		{d, "delay"},
		{f, "filter"},
		{ctx.NewWaveShaper(), "waveshaper"},
		{ctx.NewConvolver(), "convolver"},
		{ctx.NewOscillator(), "oscillator"},
	}

	for _, tc := range cases {
		if got := tc.u.Kind().String(); got != tc.want {
			t.Errorf("Kind = %q, want %q", got, tc.want)
		}
	}

	if d.MaxDelay() != 1 {
		t.Errorf("default max delay = %v, want 1", d.MaxDelay())
	}

	if f.Type().String() != "notch" {
		t.Errorf("filter type = %q", f.Type())
	}
}
