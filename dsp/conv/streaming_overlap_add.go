package conv

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// StreamingOverlapAdd implements streaming FFT-based convolution using
// overlap-add. It maintains the tail between blocks so a signal can be fed
// block by block with no per-block allocations.
//
// Blocks may be shorter than the configured block size, which lets the last
// block of a stream be processed at its real length without breaking
// continuity with the next call.
type StreamingOverlapAdd struct {
	// Kernel in frequency domain
	kernelFFT []complex128

	kernelLen int
	blockSize int
	fftSize   int

	plan *algofft.Plan[complex128]

	padded     []complex128
	convResult []float64 // full convolution result (blockSize + kernelLen - 1)

	// Overlap state (tail from previous block)
	tail []float64
}

// NewStreamingOverlapAdd creates a streaming overlap-add convolver.
// blockSize is the largest block ProcessBlockTo accepts.
func NewStreamingOverlapAdd(kernel []float64, blockSize int) (*StreamingOverlapAdd, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	if blockSize <= 0 {
		return nil, fmt.Errorf("conv: blockSize must be positive, got %d", blockSize)
	}

	kernelLen := len(kernel)

	// FFT size must accommodate block + kernel - 1 for linear convolution
	fftSize := nextPowerOf2(blockSize + kernelLen - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}

	soa := &StreamingOverlapAdd{
		kernelFFT:  make([]complex128, fftSize),
		kernelLen:  kernelLen,
		blockSize:  blockSize,
		fftSize:    fftSize,
		plan:       plan,
		padded:     make([]complex128, fftSize),
		convResult: make([]float64, blockSize+kernelLen-1),
		tail:       make([]float64, kernelLen-1),
	}

	kernelPadded := make([]complex128, fftSize)
	for i, v := range kernel {
		kernelPadded[i] = complex(v, 0)
	}

	if err := plan.Forward(soa.kernelFFT, kernelPadded); err != nil {
		return nil, fmt.Errorf("conv: failed to compute kernel FFT: %w", err)
	}

	return soa, nil
}

// ProcessBlockTo convolves input into output. input may hold up to
// BlockSize samples and output must be the same length. Zero-alloc.
func (soa *StreamingOverlapAdd) ProcessBlockTo(output, input []float64) error {
	n := len(input)
	if n > soa.blockSize {
		return fmt.Errorf("%w: at most %d input samples, got %d", ErrLengthMismatch, soa.blockSize, n)
	}

	if len(output) != n {
		return fmt.Errorf("%w: expected %d output samples, got %d", ErrLengthMismatch, n, len(output))
	}

	// Zero-pad input to FFT size
	for i := range soa.padded {
		soa.padded[i] = 0
	}

	for i, x := range input {
		soa.padded[i] = complex(x, 0)
	}

	if err := soa.plan.Forward(soa.padded, soa.padded); err != nil {
		return fmt.Errorf("conv: forward FFT failed: %w", err)
	}

	for i := range soa.padded {
		soa.padded[i] *= soa.kernelFFT[i]
	}

	if err := soa.plan.Inverse(soa.padded, soa.padded); err != nil {
		return fmt.Errorf("conv: inverse FFT failed: %w", err)
	}

	// Only the first n+kernelLen-1 samples carry signal; the rest of the
	// result is zeroed so a short block leaves no stale tail.
	resultLen := n + soa.kernelLen - 1
	for i := range soa.convResult {
		if i < resultLen {
			soa.convResult[i] = real(soa.padded[i])
		} else {
			soa.convResult[i] = 0
		}
	}

	for i, v := range soa.tail {
		soa.convResult[i] += v
	}

	copy(output, soa.convResult[:n])

	for i := range soa.tail {
		soa.tail[i] = soa.convResult[n+i]
	}

	return nil
}

// Reset clears the tail buffer (overlap state from previous blocks).
func (soa *StreamingOverlapAdd) Reset() {
	for i := range soa.tail {
		soa.tail[i] = 0
	}
}

// BlockSize returns the largest accepted block size.
func (soa *StreamingOverlapAdd) BlockSize() int {
	return soa.blockSize
}

// KernelLen returns the kernel length.
func (soa *StreamingOverlapAdd) KernelLen() int {
	return soa.kernelLen
}

// FFTSize returns the FFT size.
func (soa *StreamingOverlapAdd) FFTSize() int {
	return soa.fftSize
}
