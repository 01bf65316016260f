package fx

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/cwbudde/algo-fxgraph/dsp/irload"
	"github.com/cwbudde/algo-fxgraph/dsp/unit"
)

// Builder constructs one effect of a registered kind from caller settings.
type Builder func(ctx *unit.Context, s Settings) (Handle, error)

type entry struct {
	defaults Settings
	build    Builder
}

// Registry maps effect kinds to their builders and defaults.
type Registry struct {
	mu      sync.RWMutex
	entries map[Kind]entry
}

var errDuplicateKind = errors.New("fx: duplicate effect kind")

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Kind]entry)}
}

// Register adds a builder for kind together with its default settings.
func (r *Registry) Register(kind Kind, defaults Settings, b Builder) error {
	if kind == "" {
		return errors.New("fx: empty effect kind")
	}

	if b == nil {
		return errors.New("fx: nil builder")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[kind]; exists {
		return fmt.Errorf("%w: %s", errDuplicateKind, kind)
	}

	r.entries[kind] = entry{defaults: defaults.Clone(), build: b}

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(kind Kind, defaults Settings, b Builder) {
	if err := r.Register(kind, defaults, b); err != nil {
		panic(err.Error())
	}
}

// Lookup returns the builder for kind, or nil.
func (r *Registry) Lookup(kind Kind) Builder {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.entries[kind].build
}

// Defaults returns a copy of the default settings for kind.
func (r *Registry) Defaults(kind Kind) (Settings, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[kind]
	if !ok {
		return Settings{}, false
	}

	return e.defaults.Clone(), true
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.entries))
	for k := range r.entries {
		kinds = append(kinds, k)
	}

	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	return kinds
}

// Build constructs an effect of the given kind.
func (r *Registry) Build(ctx *unit.Context, kind Kind, s Settings) (Handle, error) {
	b := r.Lookup(kind)
	if b == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	h, err := b(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", kind, err)
	}

	return h, nil
}

type registryConfig struct {
	loader   Loader
	impulses map[string]string
	logger   *slog.Logger
}

// RegistryOption configures DefaultRegistry.
type RegistryOption func(*registryConfig)

// WithLoader sets the impulse response loader used by reverb.
func WithLoader(l Loader) RegistryOption {
	return func(c *registryConfig) { c.loader = l }
}

// WithImpulses sets the reverb type to locator map.
func WithImpulses(impulses map[string]string) RegistryOption {
	return func(c *registryConfig) { c.impulses = impulses }
}

// WithLogger sets the logger passed to builders that report asynchronous
// failures.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(c *registryConfig) { c.logger = l }
}

// DefaultRegistry returns a Registry with the five built-in kinds. Without
// WithLoader, reverb reads WAV files relative to the working directory.
func DefaultRegistry(opts ...RegistryOption) *Registry {
	cfg := &registryConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.loader == nil {
		cfg.loader = irload.NewFileLoader(os.DirFS("."), irload.WithLogger(cfg.logger))
	}

	r := NewRegistry()

	r.MustRegister(KindDelay, DelayDefaults(), func(ctx *unit.Context, s Settings) (Handle, error) {
		e, err := NewDelay(ctx, s)
		if err != nil {
			return nil, err
		}

		return e, nil
	})
	r.MustRegister(KindDistortion, DistortionDefaults(), func(ctx *unit.Context, s Settings) (Handle, error) {
		e, err := NewDistortion(ctx, s)
		if err != nil {
			return nil, err
		}

		return e, nil
	})
	r.MustRegister(KindPhaser, PhaserDefaults(), func(ctx *unit.Context, s Settings) (Handle, error) {
		p, err := NewPhaser(ctx, s)
		if err != nil {
			return nil, err
		}

		return p, nil
	})
	r.MustRegister(KindReverb, ReverbDefaults(), func(ctx *unit.Context, s Settings) (Handle, error) {
		e, err := NewReverb(ctx, cfg.loader, s,
			WithReverbImpulses(cfg.impulses), WithReverbLogger(cfg.logger))
		if err != nil {
			return nil, err
		}

		return e, nil
	})
	r.MustRegister(KindTremolo, TremoloDefaults(), func(ctx *unit.Context, s Settings) (Handle, error) {
		t, err := NewTremolo(ctx, s)
		if err != nil {
			return nil, err
		}

		return t, nil
	})

	return r
}
