package fx

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"sync"

	"github.com/cwbudde/algo-fxgraph/dsp/unit"
)

type reverbConfig struct {
	impulses map[string]string
	logger   *slog.Logger
}

// ReverbOption configures NewReverb.
type ReverbOption func(*reverbConfig)

// WithReverbImpulses replaces the reverb type to locator map. Its keys are the
// accepted reverbType values.
func WithReverbImpulses(impulses map[string]string) ReverbOption {
	return func(c *reverbConfig) {
		if len(impulses) > 0 {
			c.impulses = maps.Clone(impulses)
		}
	}
}

// WithReverbLogger sets the logger that reports load outcomes.
func WithReverbLogger(l *slog.Logger) ReverbOption {
	return func(c *reverbConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewReverb builds a convolution reverb whose impulse response is fetched by
// loader. It returns a pending handle at once; when the load completes the
// same handle is wired and its ports are set:
//
//	input -> {output, convolver}
//	convolver -> level -> output
//
// One load is issued per call. If the load fails, or returns no buffer for
// the configured reverbType, the handle stays pending and Err reports
// ErrResourceLoad. reverbTime is resolved but not applied.
func NewReverb(ctx *unit.Context, loader Loader, given Settings, opts ...ReverbOption) (*Effect, error) {
	cfg := reverbConfig{
		impulses: DefaultImpulses(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if loader == nil {
		return nil, fmt.Errorf("%w: no loader", ErrResourceLoad)
	}

	s := Resolve(ReverbDefaults(), given)
	s.Str[ReverbPath] = ""

	typ := s.Str[ReverbType]
	if _, ok := cfg.impulses[typ]; !ok {
		return nil, fmt.Errorf("%w: %s %q not in %v", ErrInvalidSetting, ReverbType, typ, sortedKeys(cfg.impulses))
	}

	convolver := ctx.NewConvolver()
	level := ctx.NewGain()

	if err := apply(level.Gain(), s, EffectLevel); err != nil {
		return nil, err
	}

	e := newEffect(KindReverb, s)
	e.addUnits(convolver, level)

	b := &reverbBinder{
		ctx:       ctx,
		effect:    e,
		convolver: convolver,
		level:     level,
		typ:       typ,
		locators:  cfg.impulses,
		logger:    cfg.logger,
	}

	loader.Load(context.Background(), maps.Clone(cfg.impulses), b.complete)

	return e, nil
}

// reverbBinder finishes a reverb once its impulse responses arrive.
type reverbBinder struct {
	ctx       *unit.Context
	effect    *Effect
	convolver *unit.Convolver
	level     *unit.Gain
	typ       string
	locators  map[string]string
	logger    *slog.Logger

	once sync.Once
}

func (b *reverbBinder) complete(buffers map[string]*unit.Buffer, err error) {
	b.once.Do(func() {
		if err := b.bind(buffers, err); err != nil {
			b.logger.Error("reverb impulse response unavailable",
				"reverbType", b.typ, "locator", b.locators[b.typ], "err", err)
			b.effect.fail(err)
		}
	})
}

func (b *reverbBinder) bind(buffers map[string]*unit.Buffer, loadErr error) error {
	if loadErr != nil {
		return fmt.Errorf("%w: %w", ErrResourceLoad, loadErr)
	}

	buf := buffers[b.typ]
	if buf == nil {
		return fmt.Errorf("%w: no buffer for %s %q", ErrResourceLoad, ReverbType, b.typ)
	}

	if err := b.convolver.SetBuffer(buf); err != nil {
		return fmt.Errorf("%w: %w", ErrResourceLoad, err)
	}

	input, output := b.ctx.NewGain(), b.ctx.NewGain()

	err := reverbTopology.Wire(b.ctx, map[string]unit.Unit{
		"input":     input,
		"output":    output,
		"convolver": b.convolver,
		"level":     b.level,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrResourceLoad, err)
	}

	b.effect.setStr(ReverbPath, b.locators[b.typ])
	b.effect.addUnits(input, output)
	b.effect.publish(input, output)

	b.logger.Debug("reverb ready",
		"reverbType", b.typ, "locator", b.locators[b.typ], "frames", buf.Len())

	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
