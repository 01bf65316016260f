package fx

import (
	"math"

	"github.com/cwbudde/algo-fxgraph/dsp/unit"
)

const minDelayCapacitySeconds = 1.0

// NewDelay builds a feedback delay:
//
//	input -> gain -> delay -> level -> output
//	                 delay -> feedback -> delay
//
// The feedback gain must stay below 1 for the loop to decay.
func NewDelay(ctx *unit.Context, given Settings) (*Effect, error) {
	s := Resolve(DelayDefaults(), given)

	line, err := ctx.NewDelay(math.Max(minDelayCapacitySeconds, s.Num[DelayTime]))
	if err != nil {
		return nil, err
	}

	input, gain := ctx.NewGain(), ctx.NewGain()
	feedback, level := ctx.NewGain(), ctx.NewGain()
	output := ctx.NewGain()

	if err := apply(line.DelayTime(), s, DelayTime); err != nil {
		return nil, err
	}

	if err := apply(feedback.Gain(), s, Feedback); err != nil {
		return nil, err
	}

	if err := apply(level.Gain(), s, Level); err != nil {
		return nil, err
	}

	err = delayTopology.Wire(ctx, map[string]unit.Unit{
		"input":    input,
		"gain":     gain,
		"delay":    line,
		"feedback": feedback,
		"level":    level,
		"output":   output,
	})
	if err != nil {
		return nil, err
	}

	e := newEffect(KindDelay, s)
	e.addUnits(input, gain, line, feedback, level, output)
	e.publish(input, output)

	return e, nil
}
