package unit

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-fxgraph/dsp/conv"
)

// ErrEmptyBuffer is returned when a convolver is given an impulse response
// without samples.
var ErrEmptyBuffer = errors.New("unit: empty impulse response")

// Convolver convolves its input with an impulse response buffer using
// streaming FFT overlap-add at the context block size. Without a buffer it
// outputs silence. Multi-channel buffers are mixed down to mono; no
// resampling is performed.
type Convolver struct {
	base

	buffer *Buffer
	engine *conv.StreamingOverlapAdd
}

// NewConvolver creates a convolver without an impulse response.
func (c *Context) NewConvolver() *Convolver {
	return &Convolver{base: c.newBase(KindConvolver)}
}

// SetBuffer installs the impulse response. A nil buffer silences the unit.
func (cv *Convolver) SetBuffer(buf *Buffer) error {
	if buf == nil {
		cv.buffer, cv.engine = nil, nil

		return nil
	}

	engine, err := conv.NewStreamingOverlapAdd(buf.Mono(), cv.ctx.cfg.BlockSize)
	if errors.Is(err, conv.ErrEmptyKernel) {
		return ErrEmptyBuffer
	}

	if err != nil {
		return fmt.Errorf("unit: convolver: %w", err)
	}

	cv.buffer, cv.engine = buf, engine

	return nil
}

// Buffer returns the installed impulse response, or nil.
func (cv *Convolver) Buffer() *Buffer { return cv.buffer }

func (cv *Convolver) process(dst, src []float64) {
	if cv.engine == nil {
		for i := range dst {
			dst[i] = 0
		}

		return
	}

	// Blocks never exceed the context block size the engine was built for.
	_ = cv.engine.ProcessBlockTo(dst[:len(src)], src)
}
