package conv

import "errors"

var (
	// ErrEmptyKernel is returned when the convolution kernel has no samples.
	ErrEmptyKernel = errors.New("conv: empty kernel")

	// ErrLengthMismatch is returned when a block does not fit the convolver.
	ErrLengthMismatch = errors.New("conv: length mismatch")
)

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p *= 2
	}

	return p
}
