package fx

import (
	"context"
	"maps"

	"github.com/cwbudde/algo-fxgraph/dsp/unit"
)

// Loader fetches named resources. Load must not block: it issues the request
// and calls done exactly once, from any goroutine, with either every buffer
// keyed by resource name or an error.
type Loader interface {
	Load(ctx context.Context, locators map[string]string, done func(map[string]*unit.Buffer, error))
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, locators map[string]string, done func(map[string]*unit.Buffer, error))

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, locators map[string]string, done func(map[string]*unit.Buffer, error)) {
	f(ctx, locators, done)
}

var defaultImpulses = map[string]string{
	"hall":   "effects/reverb/responses/bright-hall.wav",
	"room":   "effects/reverb/responses/medium-room.wav",
	"spring": "effects/reverb/responses/feedback-spring.wav",
}

// DefaultImpulses returns the built-in reverb type to impulse response
// locator map.
func DefaultImpulses() map[string]string {
	return maps.Clone(defaultImpulses)
}
