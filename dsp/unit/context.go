package unit

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrInvalidUnit is returned when a nil unit or a unit created by another
// Context is passed to a Context method.
var ErrInvalidUnit = errors.New("unit: invalid unit")

// Config defines the processing settings shared by every unit of a Context.
type Config struct {
	SampleRate float64
	BlockSize  int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns sensible defaults for offline rendering.
func DefaultConfig() Config {
	return Config{
		SampleRate: 48000,
		BlockSize:  128,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the render block size.
func WithBlockSize(blockSize int) Option {
	return func(cfg *Config) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// Edge is a directed signal connection between two units.
type Edge struct {
	From Unit
	To   Unit
}

// ModEdge connects the output of a unit to a parameter of another unit. The
// source signal is added to the parameter's base value per sample.
type ModEdge struct {
	From  Unit
	Param *Param
}

// Context creates units and records the connections between them. Link and
// Modulate are safe for concurrent use; unit parameters are not.
type Context struct {
	cfg Config

	mu     sync.Mutex
	nextID int
	edges  []Edge
	mods   []ModEdge
}

// NewContext creates a Context with the given options applied to DefaultConfig.
func NewContext(opts ...Option) *Context {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Context{cfg: cfg}
}

// SampleRate returns the sample rate in Hz.
func (c *Context) SampleRate() float64 { return c.cfg.SampleRate }

// BlockSize returns the render block size in samples.
func (c *Context) BlockSize() int { return c.cfg.BlockSize }

// Link adds one edge from -> to. Linking the same pair twice adds a second,
// parallel edge.
func (c *Context) Link(from, to Unit) error {
	if err := c.owns(from); err != nil {
		return err
	}

	if err := c.owns(to); err != nil {
		return err
	}

	c.mu.Lock()
	c.edges = append(c.edges, Edge{From: from, To: to})
	c.mu.Unlock()

	return nil
}

// Modulate adds the output of from to the per-sample value of p.
func (c *Context) Modulate(from Unit, p *Param) error {
	if err := c.owns(from); err != nil {
		return err
	}

	if p == nil {
		return fmt.Errorf("%w: nil parameter", ErrInvalidUnit)
	}

	if err := c.owns(p.owner); err != nil {
		return err
	}

	c.mu.Lock()
	c.mods = append(c.mods, ModEdge{From: from, Param: p})
	c.mu.Unlock()

	return nil
}

// Edges returns a snapshot of all signal edges in creation order.
func (c *Context) Edges() []Edge {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Edge, len(c.edges))
	copy(out, c.edges)

	return out
}

// ModEdges returns a snapshot of all modulation edges in creation order.
func (c *Context) ModEdges() []ModEdge {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ModEdge, len(c.mods))
	copy(out, c.mods)

	return out
}

func (c *Context) owns(u Unit) error {
	if u == nil {
		return fmt.Errorf("%w: nil", ErrInvalidUnit)
	}

	if rv := reflect.ValueOf(u); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return fmt.Errorf("%w: nil %T", ErrInvalidUnit, u)
	}

	if u.context() != c {
		return fmt.Errorf("%w: %s #%d belongs to another context", ErrInvalidUnit, u.Kind(), u.ID())
	}

	return nil
}

func (c *Context) newBase(kind Kind) base {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.mu.Unlock()

	return base{ctx: c, id: id, kind: kind}
}
