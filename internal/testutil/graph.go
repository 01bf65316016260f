package testutil

import (
	"testing"

	"github.com/cwbudde/algo-fxgraph/dsp/unit"
)

// CountEdges returns how many edges in edges run from -> to.
func CountEdges(edges []unit.Edge, from, to unit.Unit) int {
	n := 0
	for _, e := range edges {
		if e.From == from && e.To == to {
			n++
		}
	}
	return n
}

// RequireEdges fails t unless edges contains exactly want parallel edges
// from -> to.
func RequireEdges(t *testing.T, edges []unit.Edge, from, to unit.Unit, want int) {
	t.Helper()
	if got := CountEdges(edges, from, to); got != want {
		t.Fatalf("edges %s#%d -> %s#%d: got %d, want %d",
			from.Kind(), from.ID(), to.Kind(), to.ID(), got, want)
	}
}
