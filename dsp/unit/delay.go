package unit

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxgraph/dsp/delay"
)

const defaultMaxDelaySeconds = 1.0

// Delay is a circular delay line whose "delayTime" parameter (seconds) can be
// set anywhere in [0, max]. Fractional delays use cubic Hermite interpolation.
type Delay struct {
	base

	delayTime *Param
	maxDelay  float64

	line *delay.Line
}

// NewDelay creates a delay line able to hold maxSeconds of signal. A value
// <= 0 selects one second.
func (c *Context) NewDelay(maxSeconds float64) (*Delay, error) {
	if math.IsNaN(maxSeconds) || math.IsInf(maxSeconds, 0) {
		return nil, fmt.Errorf("%w: max delay must be finite: %f", ErrInvalidParam, maxSeconds)
	}

	if maxSeconds <= 0 {
		maxSeconds = defaultMaxDelaySeconds
	}

	// The line reads one sample behind the write head and needs three
	// samples of interpolation headroom.
	line, err := delay.New(int(math.Ceil(maxSeconds*c.cfg.SampleRate)) + 4)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParam, err)
	}

	d := &Delay{
		base:     c.newBase(KindDelay),
		maxDelay: maxSeconds,
		line:     line,
	}
	d.delayTime = newParam(d, "delayTime", 0, 0, maxSeconds)
	d.ps = []*Param{d.delayTime}

	return d, nil
}

// DelayTime returns the delay time parameter in seconds.
func (d *Delay) DelayTime() *Param { return d.delayTime }

// MaxDelay returns the largest accepted delay time in seconds.
func (d *Delay) MaxDelay() float64 { return d.maxDelay }

// Reset clears the delay line.
func (d *Delay) Reset() {
	d.line.Reset()
}

func (d *Delay) process(dst, src []float64) {
	sr := d.ctx.cfg.SampleRate
	for i, x := range src {
		d.line.Write(x)
		dst[i] = d.line.ReadFractional(d.delayTime.at(i)*sr + 1)
	}
}
