package fx

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-fxgraph/dsp/route"
	"github.com/cwbudde/algo-fxgraph/dsp/unit"
)

var (
	// ErrInvalidSetting is returned when a resolved setting cannot be applied.
	ErrInvalidSetting = errors.New("fx: invalid setting")

	// ErrResourceLoad reports that an effect's backing resource never
	// arrived. The effect stays pending.
	ErrResourceLoad = errors.New("fx: resource load failed")

	// ErrUnknownKind is returned when building an unregistered kind.
	ErrUnknownKind = errors.New("fx: unknown effect kind")
)

// Handle is the external view of an effect unit.
type Handle interface {
	route.Ports

	Kind() Kind
	Settings() Settings
	Units() []unit.Unit
	Ready() bool
	Done() <-chan struct{}
	Err() error
	Wait(ctx context.Context) error
}

// Effect is a composite effect unit. Its ports are nil while the effect is
// pending and never change once set.
type Effect struct {
	kind Kind

	mu       sync.RWMutex
	settings Settings
	units    []unit.Unit
	input    unit.Unit
	output   unit.Unit
	err      error

	done     chan struct{}
	doneOnce sync.Once
}

func newEffect(kind Kind, settings Settings) *Effect {
	return &Effect{
		kind:     kind,
		settings: settings,
		done:     make(chan struct{}),
	}
}

// Kind returns the effect kind.
func (e *Effect) Kind() Kind { return e.kind }

// Settings returns a copy of the resolved settings.
func (e *Effect) Settings() Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.settings.Clone()
}

// Units returns the internal units in allocation order.
func (e *Effect) Units() []unit.Unit {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return append([]unit.Unit(nil), e.units...)
}

// Input returns the input port, or nil while pending.
func (e *Effect) Input() unit.Unit {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.input
}

// Output returns the output port, or nil while pending.
func (e *Effect) Output() unit.Unit {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.output
}

// Ready reports whether the ports are set and wired.
func (e *Effect) Ready() bool {
	return e.Input() != nil
}

// Done is closed once construction has finished, successfully or not.
func (e *Effect) Done() <-chan struct{} { return e.done }

// Err returns the construction failure, if any.
func (e *Effect) Err() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.err
}

// Wait blocks until construction finishes or ctx is done. It returns the
// construction error or ctx.Err().
func (e *Effect) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		return e.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Effect) addUnits(units ...unit.Unit) {
	e.mu.Lock()
	e.units = append(e.units, units...)
	e.mu.Unlock()
}

// publish sets the ports and marks the effect ready. Only the first call of
// publish or fail has an effect.
func (e *Effect) publish(in, out unit.Unit) {
	e.doneOnce.Do(func() {
		e.mu.Lock()
		e.input, e.output = in, out
		e.mu.Unlock()
		close(e.done)
	})
}

func (e *Effect) fail(err error) {
	e.doneOnce.Do(func() {
		e.mu.Lock()
		e.err = err
		e.mu.Unlock()
		close(e.done)
	})
}

func (e *Effect) setNum(key string, v float64) {
	e.mu.Lock()
	e.settings.Num[key] = v
	e.mu.Unlock()
}

func (e *Effect) setStr(key, v string) {
	e.mu.Lock()
	e.settings.Str[key] = v
	e.mu.Unlock()
}

// apply sets p to the resolved value of key.
func apply(p *unit.Param, s Settings, key string) error {
	if err := p.Set(s.Num[key]); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSetting, key, err)
	}

	return nil
}
