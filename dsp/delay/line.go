// Package delay provides a circular delay line with fractional reads.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxgraph/dsp/interp"
)

// Line is a circular delay line.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line of fixed size.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}

	return &Line{buffer: make([]float64, size)}, nil
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// MaxDelay returns the largest delay in samples ReadFractional honors.
func (d *Line) MaxDelay() float64 {
	return float64(len(d.buffer) - 3)
}

// Write writes one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample

	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples. After a Write, Read(1) returns the
// sample just written.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	readPos := ((d.writePos-delay)%size + size) % size

	return d.buffer[readPos]
}

// ReadFractional reads with cubic Hermite interpolation. Delays are clamped
// to [1, MaxDelay]; integer delays return the stored sample exactly.
func (d *Line) ReadFractional(delay float64) float64 {
	if delay < 1 || math.IsNaN(delay) {
		delay = 1
	}

	if maxDelay := d.MaxDelay(); delay > maxDelay {
		delay = maxDelay
	}

	p := int(math.Floor(delay))
	t := delay - float64(p)

	if t == 0 {
		return d.Read(p)
	}

	xm1 := d.Read(max(1, p-1))
	x0 := d.Read(p)
	x1 := d.Read(p + 1)
	x2 := d.Read(p + 2)

	return interp.Hermite4(t, xm1, x0, x1, x2)
}

// Reset clears line state.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}

	d.writePos = 0
}
