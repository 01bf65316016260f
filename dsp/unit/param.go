package unit

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParam is returned when a parameter value is non-finite or outside
// the parameter's range.
var ErrInvalidParam = errors.New("unit: invalid parameter value")

// Param is a named, independently settable numeric parameter of a unit.
// During rendering a parameter may additionally be driven per sample by
// modulation sources linked with Context.Modulate.
type Param struct {
	owner Unit
	name  string
	value float64
	min   float64
	max   float64

	mod []float64 // summed modulation for the block being rendered, nil when unmodulated
}

func newParam(owner Unit, name string, value, minValue, maxValue float64) *Param {
	return &Param{owner: owner, name: name, value: value, min: minValue, max: maxValue}
}

// Name returns the parameter name.
func (p *Param) Name() string { return p.name }

// Value returns the current base value.
func (p *Param) Value() float64 { return p.value }

// Owner returns the unit the parameter belongs to.
func (p *Param) Owner() Unit { return p.owner }

// Range returns the accepted value range.
func (p *Param) Range() (minValue, maxValue float64) { return p.min, p.max }

// Set updates the base value.
func (p *Param) Set(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < p.min || v > p.max {
		return fmt.Errorf("%w: %s must be in [%g, %g]: %g", ErrInvalidParam, p.name, p.min, p.max, v)
	}

	p.value = v

	return nil
}

// at returns the effective value for sample i of the current block.
func (p *Param) at(i int) float64 {
	if p.mod == nil {
		return p.value
	}

	return p.value + p.mod[i]
}

// fill writes the effective per-sample values of the current block into dst.
func (p *Param) fill(dst []float64) {
	for i := range dst {
		dst[i] = p.at(i)
	}
}
