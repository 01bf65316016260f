// Package preset reads effect chain descriptions from YAML or JSON and turns
// them into wired effect graphs.
//
// A preset lists effects in signal order together with optional engine
// settings and a reverb impulse map:
//
//	sampleRate: 48000
//	impulses:
//	  hall: ir/hall.wav
//	chain:
//	  - kind: distortion
//	  - kind: delay
//	    settings: {delayTime: 0.3, feedback: 0.4}
//	  - kind: reverb
//	    settings: {reverbType: hall}
package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-fxgraph/dsp/fx"
	"github.com/cwbudde/algo-fxgraph/dsp/unit"
)

// ErrInvalid is returned for presets that parse but cannot describe a chain.
var ErrInvalid = errors.New("preset: invalid preset")

// File is the on-disk preset layout.
type File struct {
	SampleRate float64           `json:"sampleRate,omitempty" yaml:"sampleRate,omitempty"`
	BlockSize  int               `json:"blockSize,omitempty"  yaml:"blockSize,omitempty"`
	Impulses   map[string]string `json:"impulses,omitempty"   yaml:"impulses,omitempty"`
	Chain      []Stage           `json:"chain"                yaml:"chain"`
}

// Stage is one effect in the chain.
type Stage struct {
	Kind     string         `json:"kind"               yaml:"kind"`
	Settings map[string]any `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// Parse decodes a preset, trying JSON first and YAML second.
func Parse(data []byte) (*File, error) {
	var f File

	if errJSON := json.Unmarshal(data, &f); errJSON != nil {
		f = File{}
		if errYAML := yaml.Unmarshal(data, &f); errYAML != nil {
			return nil, fmt.Errorf("%w: not json (%v) or yaml (%v)", ErrInvalid, errJSON, errYAML)
		}
	}

	if err := f.validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

// Load reads and parses the preset at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

func (f *File) validate() error {
	if f.SampleRate < 0 {
		return fmt.Errorf("%w: negative sampleRate %g", ErrInvalid, f.SampleRate)
	}

	if f.BlockSize < 0 {
		return fmt.Errorf("%w: negative blockSize %d", ErrInvalid, f.BlockSize)
	}

	for i, s := range f.Chain {
		if s.Kind == "" {
			return fmt.Errorf("%w: stage %d has no kind", ErrInvalid, i)
		}
	}

	return nil
}

// ContextOptions returns the engine options the preset sets.
func (f *File) ContextOptions() []unit.Option {
	var opts []unit.Option

	if f.SampleRate > 0 {
		opts = append(opts, unit.WithSampleRate(f.SampleRate))
	}

	if f.BlockSize > 0 {
		opts = append(opts, unit.WithBlockSize(f.BlockSize))
	}

	return opts
}

// Registry returns the default registry, using the preset's impulse map when
// it has one. Later opts override it.
func (f *File) Registry(opts ...fx.RegistryOption) *fx.Registry {
	if len(f.Impulses) > 0 {
		opts = append([]fx.RegistryOption{fx.WithImpulses(f.Impulses)}, opts...)
	}

	return fx.DefaultRegistry(opts...)
}

// Resolved converts the stage's loosely typed settings. Numbers and booleans
// become numeric settings, strings become string settings, anything else is
// dropped.
func (s Stage) Resolved() fx.Settings {
	out := fx.Settings{
		Num: map[string]float64{},
		Str: map[string]string{},
	}

	for k, v := range s.Settings {
		switch t := v.(type) {
		case float64:
			out.Num[k] = t
		case float32:
			out.Num[k] = float64(t)
		case int:
			out.Num[k] = float64(t)
		case int64:
			out.Num[k] = float64(t)
		case uint64:
			out.Num[k] = float64(t)
		case string:
			out.Str[k] = t
		case bool:
			if t {
				out.Num[k] = 1
			} else {
				out.Num[k] = 0
			}
		}
	}

	return out
}
