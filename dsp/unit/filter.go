package unit

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxgraph/dsp/filter/biquad"
	"github.com/cwbudde/algo-fxgraph/dsp/filter/design"
)

// FilterType selects the biquad response of a Filter.
type FilterType int

const (
	Lowpass FilterType = iota
	Highpass
	Bandpass
	Notch
	Allpass
)

const (
	defaultFilterFrequency = 350.0
	defaultFilterQ         = 1.0
	maxFilterQ             = 1000.0
)

// String returns the lowercase response name.
func (t FilterType) String() string {
	switch t {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	case Notch:
		return "notch"
	case Allpass:
		return "allpass"
	default:
		return "unknown"
	}
}

// Filter is a biquad (RBJ cookbook) filter with "frequency" (Hz) and "Q"
// parameters, processed in Direct Form II Transposed. Coefficients are
// recomputed at block boundaries when the parameters change. Frequencies
// outside (0, nyquist) pass the signal through unchanged.
type Filter struct {
	base

	typ       FilterType
	frequency *Param
	q         *Param

	section     *biquad.Section
	designedFor [2]float64
	designed    bool
}

// NewFilter creates a biquad filter of the given response type with
// frequency 350 Hz and Q 1.
func (c *Context) NewFilter(typ FilterType) (*Filter, error) {
	if typ < Lowpass || typ > Allpass {
		return nil, fmt.Errorf("%w: unknown filter type %d", ErrInvalidParam, typ)
	}

	f := &Filter{
		base:    c.newBase(KindFilter),
		typ:     typ,
		section: biquad.NewSection(biquad.Passthrough()),
	}
	f.frequency = newParam(f, "frequency", defaultFilterFrequency, 0, math.MaxFloat64)
	f.q = newParam(f, "Q", defaultFilterQ, 1e-4, maxFilterQ)
	f.ps = []*Param{f.frequency, f.q}

	return f, nil
}

// Type returns the response type.
func (f *Filter) Type() FilterType { return f.typ }

// Frequency returns the center/cutoff frequency parameter in Hz.
func (f *Filter) Frequency() *Param { return f.frequency }

// Q returns the quality factor parameter.
func (f *Filter) Q() *Param { return f.q }

// Coefficients returns the section coefficients for the current parameter
// values.
func (f *Filter) Coefficients() biquad.Coefficients {
	f.design(f.frequency.at(0), f.q.at(0))

	return f.section.Coefficients
}

// Reset clears the filter state.
func (f *Filter) Reset() {
	f.section.Reset()
}

func (f *Filter) process(dst, src []float64) {
	f.design(f.frequency.at(0), f.q.at(0))
	f.section.ProcessBlockTo(dst, src)
}

func (f *Filter) design(freq, q float64) {
	key := [2]float64{freq, q}
	if f.designed && key == f.designedFor {
		return
	}

	f.section.Coefficients = designBiquad(f.typ, freq, q, f.ctx.cfg.SampleRate)
	f.designedFor = key
	f.designed = true
}

func designBiquad(typ FilterType, freq, q, sampleRate float64) biquad.Coefficients {
	if !design.InBand(freq, sampleRate) {
		return biquad.Passthrough()
	}

	switch typ {
	case Lowpass:
		return design.Lowpass(freq, q, sampleRate)
	case Highpass:
		return design.Highpass(freq, q, sampleRate)
	case Bandpass:
		return design.Bandpass(freq, q, sampleRate)
	case Notch:
		return design.Notch(freq, q, sampleRate)
	case Allpass:
		return design.Allpass(freq, q, sampleRate)
	default:
		return biquad.Passthrough()
	}
}
