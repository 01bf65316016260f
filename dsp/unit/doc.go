// Package unit provides the primitive processing units that effect graphs are
// assembled from: gain stages, delay lines, biquad filters, waveshapers,
// convolvers and oscillators.
//
// Units are created by a Context, which also owns the connection edges
// between them. Every unit has exactly one inbound and one outbound signal
// port and a fixed set of named parameters:
//
//	ctx := unit.NewContext(unit.WithSampleRate(48000))
//	g := ctx.NewGain()
//	d, _ := ctx.NewDelay(1)
//	_ = ctx.Link(g, d)
//
// Edges are never deduplicated and cycles are allowed. Render pulls blocks
// through the graph offline; an edge that closes a cycle carries the
// previous block of its source, so every feedback loop has at least one
// block of latency.
package unit
