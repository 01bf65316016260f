// Package route resolves heterogeneous connection requests into the
// point-to-point links of a unit graph.
//
// An endpoint is a single unit.Unit, a set of units ([]unit.Unit or Set), or
// anything exposing Input/Output ports such as an effect handle. Connect
// wires consecutive endpoints pairwise:
//
//	route.Connect(ctx, a, b)               // a -> b
//	route.Connect(ctx, a, route.Set{b, c}) // a -> b, a -> c
//	route.Connect(ctx, route.Set{b, c}, d) // b -> d, c -> d
//	route.Connect(ctx, in, d, fb, d, out)  // in -> d -> out plus a d -> fb -> d loop
//
// Edges are never deduplicated and cycles are never rejected.
package route

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/cwbudde/algo-fxgraph/dsp/unit"
)

var (
	// ErrInvalidEndpoint is returned for endpoints that are neither a unit, a
	// non-empty set of units nor a port provider.
	ErrInvalidEndpoint = errors.New("route: invalid endpoint")

	// ErrNotReady is returned when a port provider has no ports yet, such as
	// a reverb whose impulse response is still loading.
	ErrNotReady = fmt.Errorf("%w: ports not ready", ErrInvalidEndpoint)
)

// Linker is the native point-to-point connect operation; *unit.Context
// implements it.
type Linker interface {
	Link(from, to unit.Unit) error
}

// Ports is implemented by composite endpoints that expose one input and one
// output unit. Either may be nil while the endpoint is not ready.
type Ports interface {
	Input() unit.Unit
	Output() unit.Unit
}

// Connector is implemented by sources that need to run their own logic when
// connected, such as a tremolo starting its oscillator. When the source side
// of a pair implements Connector, ConnectTo is called once for the pair with
// every destination unit, instead of Linker.Link.
type Connector interface {
	ConnectTo(dst ...unit.Unit) error
}

// Set is a group of units used as one endpoint for fan-out or fan-in.
type Set []unit.Unit

// Connect links each consecutive pair of endpoints. Pairs are applied in
// order and not rolled back: when a later pair fails, edges from earlier
// pairs remain.
func Connect(l Linker, endpoints ...any) error {
	if l == nil {
		return errors.New("route: nil linker")
	}

	if len(endpoints) < 2 {
		return fmt.Errorf("%w: need at least two endpoints, got %d", ErrInvalidEndpoint, len(endpoints))
	}

	src, err := resolve(endpoints[0])
	if err != nil {
		return fmt.Errorf("endpoint 0: %w", err)
	}

	for i := 1; i < len(endpoints); i++ {
		dst, err := resolve(endpoints[i])
		if err != nil {
			return fmt.Errorf("endpoint %d: %w", i, err)
		}

		if err := link(l, src, dst); err != nil {
			return fmt.Errorf("endpoints %d -> %d: %w", i-1, i, err)
		}

		src = dst
	}

	return nil
}

// side is a resolved endpoint: the units that receive when it is a
// destination and the units that emit when it is a source.
type side struct {
	inputs  []unit.Unit
	outputs []unit.Unit
	conn    Connector
}

func resolve(e any) (side, error) {
	switch v := e.(type) {
	case nil:
		return side{}, fmt.Errorf("%w: nil", ErrInvalidEndpoint)
	case unit.Unit:
		if isNilPointer(v) {
			return side{}, fmt.Errorf("%w: nil %T", ErrInvalidEndpoint, v)
		}

		units := []unit.Unit{v}

		return side{inputs: units, outputs: units}, nil
	case Set:
		return resolveSet(v)
	case []unit.Unit:
		return resolveSet(v)
	case Ports:
		if isNilPointer(v) {
			return side{}, fmt.Errorf("%w: nil %T", ErrInvalidEndpoint, v)
		}

		in, out := v.Input(), v.Output()
		if in == nil || out == nil || isNilPointer(in) || isNilPointer(out) {
			return side{}, ErrNotReady
		}

		s := side{inputs: []unit.Unit{in}, outputs: []unit.Unit{out}}
		if c, ok := v.(Connector); ok {
			s.conn = c
		}

		return s, nil
	default:
		return side{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidEndpoint, e)
	}
}

func resolveSet(units []unit.Unit) (side, error) {
	if len(units) == 0 {
		return side{}, fmt.Errorf("%w: empty set", ErrInvalidEndpoint)
	}

	for i, u := range units {
		if u == nil || isNilPointer(u) {
			return side{}, fmt.Errorf("%w: nil set member %d", ErrInvalidEndpoint, i)
		}
	}

	return side{inputs: units, outputs: units}, nil
}

// isNilPointer reports whether v holds a nil pointer behind a non-nil
// interface.
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)

	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func link(l Linker, src, dst side) error {
	if src.conn != nil {
		return src.conn.ConnectTo(dst.inputs...)
	}

	for _, to := range dst.inputs {
		for _, from := range src.outputs {
			if err := l.Link(from, to); err != nil {
				return err
			}
		}
	}

	return nil
}
