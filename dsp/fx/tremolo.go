package fx

import (
	"sync"

	"github.com/cwbudde/algo-fxgraph/dsp/route"
	"github.com/cwbudde/algo-fxgraph/dsp/unit"
)

// Tremolo modulates the gain of its input stage with a low-frequency
// oscillator. The oscillator is not in the signal path; it drives the gain
// parameter and starts when the tremolo is connected to a destination.
type Tremolo struct {
	*Effect

	ctx  *unit.Context
	gain *unit.Gain
	lfo  *unit.Oscillator

	mu        sync.Mutex
	modulated bool
}

// NewTremolo builds a tremolo. Input and Output are the same gain unit.
func NewTremolo(ctx *unit.Context, given Settings) (*Tremolo, error) {
	s := Resolve(TremoloDefaults(), given)

	gain := ctx.NewGain()
	lfo := ctx.NewOscillator()

	if err := apply(lfo.Frequency(), s, Rate); err != nil {
		return nil, err
	}

	if err := apply(lfo.Depth(), s, Depth); err != nil {
		return nil, err
	}

	t := &Tremolo{
		Effect: newEffect(KindTremolo, s),
		ctx:    ctx,
		gain:   gain,
		lfo:    lfo,
	}
	t.addUnits(gain, lfo)
	t.publish(gain, gain)

	return t, nil
}

// Connect wires the tremolo to dst, which may be any route endpoint, and
// starts the oscillator.
func (t *Tremolo) Connect(dst any) error {
	return route.Connect(t.ctx, t, dst)
}

// ConnectTo links the input gain to every dst, attaches the oscillator to
// the gain parameter on first use and starts the oscillator once.
func (t *Tremolo) ConnectTo(dst ...unit.Unit) error {
	for _, d := range dst {
		if err := t.ctx.Link(t.gain, d); err != nil {
			return err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.modulated {
		if err := t.ctx.Modulate(t.lfo, t.gain.Gain()); err != nil {
			return err
		}

		t.modulated = true
	}

	t.lfo.Start()

	return nil
}

// SetRate retunes the oscillator frequency in Hz.
func (t *Tremolo) SetRate(hz float64) error {
	if err := t.lfo.Frequency().Set(hz); err != nil {
		return err
	}

	t.setNum(Rate, hz)

	return nil
}

// SetDepth sets the oscillator amplitude added to the unity gain.
func (t *Tremolo) SetDepth(depth float64) error {
	if err := t.lfo.Depth().Set(depth); err != nil {
		return err
	}

	t.setNum(Depth, depth)

	return nil
}

// Oscillator returns the modulation oscillator.
func (t *Tremolo) Oscillator() *unit.Oscillator { return t.lfo }
