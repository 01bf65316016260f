package unit

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-fxgraph/dsp/interp"
)

// WaveShaper maps each input sample through a transfer curve sampled
// uniformly over [-1, 1]. Without a curve it passes the signal unchanged.
// Inputs outside [-1, 1] take the end values; NaN is shaped as 0.
type WaveShaper struct {
	base

	curve []float64
}

// NewWaveShaper creates a waveshaper with no curve.
func (c *Context) NewWaveShaper() *WaveShaper {
	return &WaveShaper{base: c.newBase(KindWaveShaper)}
}

// SetCurve replaces the transfer curve. A nil curve restores passthrough.
func (w *WaveShaper) SetCurve(curve []float64) error {
	if curve == nil {
		w.curve = nil

		return nil
	}

	if len(curve) < 2 {
		return errors.New("unit: waveshaper curve needs at least 2 points")
	}

	w.curve = append([]float64(nil), curve...)

	return nil
}

// Curve returns a copy of the transfer curve, or nil.
func (w *WaveShaper) Curve() []float64 {
	if w.curve == nil {
		return nil
	}

	return append([]float64(nil), w.curve...)
}

func (w *WaveShaper) process(dst, src []float64) {
	if w.curve == nil {
		copy(dst, src)

		return
	}

	last := len(w.curve) - 1
	for i, x := range src {
		if math.IsNaN(x) {
			x = 0
		}

		pos := (x + 1) / 2 * float64(last)

		switch {
		case pos <= 0:
			dst[i] = w.curve[0]
		case pos >= float64(last):
			dst[i] = w.curve[last]
		default:
			k := int(pos)
			t := pos - float64(k)
			dst[i] = interp.Linear2(t, w.curve[k], w.curve[k+1])
		}
	}
}
