package fx

import "github.com/cwbudde/algo-fxgraph/dsp/unit"

// NewDistortion builds a waveshaper whose output is split into parallel
// lowpass and highpass paths that mix again at the output:
//
//	input -> shaper -> {lowpass, highpass} -> output
//
// distortionLevel is resolved but not applied; the shaper has no curve.
func NewDistortion(ctx *unit.Context, given Settings) (*Effect, error) {
	s := Resolve(DistortionDefaults(), given)

	input, output := ctx.NewGain(), ctx.NewGain()
	shaper := ctx.NewWaveShaper()

	lowpass, err := ctx.NewFilter(unit.Lowpass)
	if err != nil {
		return nil, err
	}

	highpass, err := ctx.NewFilter(unit.Highpass)
	if err != nil {
		return nil, err
	}

	err = distortionTopology.Wire(ctx, map[string]unit.Unit{
		"input":    input,
		"shaper":   shaper,
		"lowpass":  lowpass,
		"highpass": highpass,
		"output":   output,
	})
	if err != nil {
		return nil, err
	}

	e := newEffect(KindDistortion, s)
	e.addUnits(input, shaper, lowpass, highpass, output)
	e.publish(input, output)

	return e, nil
}
