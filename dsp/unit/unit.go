package unit

// Kind identifies a primitive unit type.
type Kind int

const (
	KindGain Kind = iota
	KindDelay
	KindFilter
	KindWaveShaper
	KindConvolver
	KindOscillator
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindGain:
		return "gain"
	case KindDelay:
		return "delay"
	case KindFilter:
		return "filter"
	case KindWaveShaper:
		return "waveshaper"
	case KindConvolver:
		return "convolver"
	case KindOscillator:
		return "oscillator"
	default:
		return "unknown"
	}
}

// Unit is an atomic processing node with one inbound and one outbound port.
// Units can only be created through a Context.
type Unit interface {
	ID() int
	Kind() Kind
	// Param returns the named parameter, or nil if the unit has none by that name.
	Param(name string) *Param
	ParamNames() []string

	context() *Context
	params() []*Param
	// process writes one block of output for the summed input block src.
	process(dst, src []float64)
}

type base struct {
	ctx  *Context
	id   int
	kind Kind
	ps   []*Param
}

func (b *base) ID() int { return b.id }

func (b *base) Kind() Kind { return b.kind }

func (b *base) Param(name string) *Param {
	for _, p := range b.ps {
		if p.name == name {
			return p
		}
	}

	return nil
}

func (b *base) ParamNames() []string {
	names := make([]string, len(b.ps))
	for i, p := range b.ps {
		names[i] = p.name
	}

	return names
}

func (b *base) context() *Context { return b.ctx }

func (b *base) params() []*Param { return b.ps }
