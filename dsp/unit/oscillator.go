package unit

import "math"

const (
	defaultOscillatorFrequency = 4.0
	defaultOscillatorDepth     = 1.0
)

// Oscillator is a sine source with "frequency" (Hz) and "depth" (peak
// amplitude) parameters. It ignores its input and outputs silence until
// started.
type Oscillator struct {
	base

	frequency *Param
	depth     *Param

	phase   float64
	running bool
	starts  int
}

// NewOscillator creates a stopped 4 Hz sine oscillator with unit depth.
func (c *Context) NewOscillator() *Oscillator {
	o := &Oscillator{base: c.newBase(KindOscillator)}
	o.frequency = newParam(o, "frequency", defaultOscillatorFrequency, 0, c.cfg.SampleRate/2)
	o.depth = newParam(o, "depth", defaultOscillatorDepth, math.Inf(-1), math.Inf(1))
	o.ps = []*Param{o.frequency, o.depth}

	return o
}

// Frequency returns the frequency parameter in Hz.
func (o *Oscillator) Frequency() *Param { return o.frequency }

// Depth returns the amplitude parameter.
func (o *Oscillator) Depth() *Param { return o.depth }

// Start (re)starts the oscillator from phase zero.
func (o *Oscillator) Start() {
	o.phase = 0
	o.running = true
	o.starts++
}

// Stop silences the oscillator.
func (o *Oscillator) Stop() {
	o.running = false
}

// Running reports whether the oscillator is producing output.
func (o *Oscillator) Running() bool { return o.running }

// Starts returns how many times Start has been called.
func (o *Oscillator) Starts() int { return o.starts }

func (o *Oscillator) process(dst, _ []float64) {
	if !o.running {
		for i := range dst {
			dst[i] = 0
		}

		return
	}

	step := 2 * math.Pi / o.ctx.cfg.SampleRate
	for i := range dst {
		dst[i] = o.depth.at(i) * math.Sin(o.phase)

		o.phase += step * o.frequency.at(i)
		if o.phase >= 2*math.Pi {
			o.phase -= 2 * math.Pi
		}
	}
}
