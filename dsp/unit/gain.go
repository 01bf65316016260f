package unit

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Gain scales its input by the "gain" parameter.
type Gain struct {
	base

	gain  *Param
	gains []float64 // per-sample gain scratch
}

// NewGain creates a unity gain stage.
func (c *Context) NewGain() *Gain {
	g := &Gain{base: c.newBase(KindGain)}
	g.gain = newParam(g, "gain", 1, math.Inf(-1), math.Inf(1))
	g.ps = []*Param{g.gain}

	return g
}

// Gain returns the gain parameter.
func (g *Gain) Gain() *Param { return g.gain }

func (g *Gain) process(dst, src []float64) {
	if cap(g.gains) < len(src) {
		g.gains = make([]float64, len(src))
	}

	gains := g.gains[:len(src)]
	g.gain.fill(gains)
	vecmath.MulBlock(dst, src, gains)
}
