package fx

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxgraph/dsp/unit"
)

// phaserStageSpacing is the center frequency step between allpass stages.
const phaserStageSpacing = 100.0

// Phaser is a chain of allpass stages with a feedback path from the last
// stage to the first.
type Phaser struct {
	*Effect

	stages []*unit.Filter
}

// NewPhaser builds rate allpass stages, stage i centered at 100*i Hz:
//
//	input -> stage0 -> ... -> stageN-1 -> output
//	stageN-1 -> feedback -> stage0
//
// Stages centered at or above Nyquist pass the signal through. depth is
// resolved but not applied; the stage frequencies are static.
func NewPhaser(ctx *unit.Context, given Settings) (*Phaser, error) {
	s := Resolve(PhaserDefaults(), given)

	n := int(math.Round(s.Num[Rate]))
	if n < 1 {
		return nil, fmt.Errorf("%w: %s must be at least 1 stage: %g", ErrInvalidSetting, Rate, s.Num[Rate])
	}

	input, output := ctx.NewGain(), ctx.NewGain()
	feedback := ctx.NewGain()

	if err := apply(feedback.Gain(), s, Feedback); err != nil {
		return nil, err
	}

	slots := map[string]unit.Unit{
		"input":    input,
		"feedback": feedback,
		"output":   output,
	}

	stages := make([]*unit.Filter, n)
	for i := range stages {
		f, err := ctx.NewFilter(unit.Allpass)
		if err != nil {
			return nil, err
		}

		if err := f.Frequency().Set(phaserStageSpacing * float64(i)); err != nil {
			return nil, fmt.Errorf("%w: stage %d: %w", ErrInvalidSetting, i, err)
		}

		stages[i] = f
		slots[stageSlot(i)] = f
	}

	if err := phaserTopology(n).Wire(ctx, slots); err != nil {
		return nil, err
	}

	p := &Phaser{Effect: newEffect(KindPhaser, s), stages: stages}
	p.addUnits(input)

	for _, f := range stages {
		p.addUnits(f)
	}

	p.addUnits(feedback, output)
	p.publish(input, output)

	return p, nil
}

// Stages returns the allpass stages in signal order.
func (p *Phaser) Stages() []*unit.Filter {
	return append([]*unit.Filter(nil), p.stages...)
}

// SetCutoff is reserved for sweeping the stage frequencies. It currently
// leaves the stages at their fixed spacing.
func (p *Phaser) SetCutoff(float64) {}
