package conv

import (
	"errors"
	"math"
	"testing"
)

func directConvolve(x, h []float64) []float64 {
	out := make([]float64, len(x)+len(h)-1)
	for i, xv := range x {
		for j, hv := range h {
			out[i+j] += xv * hv
		}
	}

	return out
}

func testSignal(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(0.37*float64(i)) + 0.25*math.Cos(1.3*float64(i))
	}

	return x
}

// stream feeds x through soa in chunks of the given sizes, cycling through
// them until x is consumed.
func stream(t *testing.T, soa *StreamingOverlapAdd, x []float64, sizes ...int) []float64 {
	t.Helper()

	out := make([]float64, 0, len(x))

	for pos, k := 0, 0; pos < len(x); k++ {
		n := min(sizes[k%len(sizes)], len(x)-pos)
		block := make([]float64, n)

		if err := soa.ProcessBlockTo(block, x[pos:pos+n]); err != nil {
			t.Fatalf("ProcessBlockTo at %d: %v", pos, err)
		}

		out = append(out, block...)
		pos += n
	}

	return out
}

func requireClose(t *testing.T, got, want []float64, tol float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}

	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			t.Fatalf("sample %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStreamingOverlapAddMatchesDirect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		kernelLen int
		blockSize int
		sizes     []int
	}{
		{"short kernel", 3, 8, []int{8}},
		{"kernel longer than block", 50, 16, []int{16}},
		{"single tap", 1, 32, []int{32}},
		{"short blocks", 20, 32, []int{32, 7, 1, 32, 13}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			kernel := testSignal(tt.kernelLen)
			x := testSignal(200)

			soa, err := NewStreamingOverlapAdd(kernel, tt.blockSize)
			if err != nil {
				t.Fatalf("NewStreamingOverlapAdd: %v", err)
			}

			got := stream(t, soa, x, tt.sizes...)
			want := directConvolve(x, kernel)[:len(x)]

			requireClose(t, got, want, 1e-9)
		})
	}
}

func TestStreamingOverlapAddTailAfterShortBlock(t *testing.T) {
	t.Parallel()

	kernel := []float64{1, 0.5, 0.25, 0.125}

	soa, err := NewStreamingOverlapAdd(kernel, 8)
	if err != nil {
		t.Fatalf("NewStreamingOverlapAdd: %v", err)
	}

	// An impulse in a one-sample block, then silence: the kernel must come
	// out intact across the following blocks.
	got := stream(t, soa, []float64{1, 0, 0, 0, 0, 0}, 1, 2, 3)
	requireClose(t, got, []float64{1, 0.5, 0.25, 0.125, 0, 0}, 1e-12)
}

func TestStreamingOverlapAddReset(t *testing.T) {
	t.Parallel()

	soa, err := NewStreamingOverlapAdd([]float64{0, 1}, 4)
	if err != nil {
		t.Fatalf("NewStreamingOverlapAdd: %v", err)
	}

	_ = stream(t, soa, []float64{0, 0, 0, 1}, 4)
	soa.Reset()

	got := stream(t, soa, []float64{0, 0, 0, 0}, 4)
	requireClose(t, got, []float64{0, 0, 0, 0}, 1e-12)
}

func TestStreamingOverlapAddAccessors(t *testing.T) {
	t.Parallel()

	soa, err := NewStreamingOverlapAdd(make([]float64, 10), 16)
	if err != nil {
		t.Fatalf("NewStreamingOverlapAdd: %v", err)
	}

	if soa.BlockSize() != 16 {
		t.Errorf("BlockSize() = %d, want 16", soa.BlockSize())
	}

	if soa.KernelLen() != 10 {
		t.Errorf("KernelLen() = %d, want 10", soa.KernelLen())
	}

	if soa.FFTSize() != 32 {
		t.Errorf("FFTSize() = %d, want 32", soa.FFTSize())
	}
}

func TestStreamingOverlapAddErrors(t *testing.T) {
	t.Parallel()

	if _, err := NewStreamingOverlapAdd(nil, 8); !errors.Is(err, ErrEmptyKernel) {
		t.Fatalf("empty kernel: err=%v want ErrEmptyKernel", err)
	}

	if _, err := NewStreamingOverlapAdd([]float64{1}, 0); err == nil {
		t.Fatal("expected error for zero block size")
	}

	soa, err := NewStreamingOverlapAdd([]float64{1}, 4)
	if err != nil {
		t.Fatalf("NewStreamingOverlapAdd: %v", err)
	}

	if err := soa.ProcessBlockTo(make([]float64, 5), make([]float64, 5)); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("oversized block: err=%v want ErrLengthMismatch", err)
	}

	if err := soa.ProcessBlockTo(make([]float64, 2), make([]float64, 3)); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("short output: err=%v want ErrLengthMismatch", err)
	}
}

func TestNextPowerOf2(t *testing.T) {
	t.Parallel()

	for in, want := range map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 17: 32, 64: 64} {
		if got := nextPowerOf2(in); got != want {
			t.Errorf("nextPowerOf2(%d) = %d, want %d", in, got, want)
		}
	}
}
