package preset

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-fxgraph/dsp/fx"
	"github.com/cwbudde/algo-fxgraph/dsp/route"
	"github.com/cwbudde/algo-fxgraph/dsp/unit"
)

// Chain is a built preset: its effects in signal order.
type Chain struct {
	Stages []fx.Handle
}

// Build constructs every stage of f with reg. Stages are built in order and
// construction stops at the first failure.
func (f *File) Build(ctx *unit.Context, reg *fx.Registry) (*Chain, error) {
	c := &Chain{Stages: make([]fx.Handle, 0, len(f.Chain))}

	for i, s := range f.Chain {
		h, err := reg.Build(ctx, fx.Kind(s.Kind), s.Resolved())
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}

		c.Stages = append(c.Stages, h)
	}

	return c, nil
}

// Wait blocks until every stage is ready, a stage fails or ctx is done.
func (c *Chain) Wait(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for i, h := range c.Stages {
		g.Go(func() error {
			if err := h.Wait(ctx); err != nil {
				return fmt.Errorf("stage %d (%s): %w", i, h.Kind(), err)
			}

			return nil
		})
	}

	return g.Wait()
}

// Wire connects in through every stage to out. All stages must be ready.
func (c *Chain) Wire(l route.Linker, in, out unit.Unit) error {
	endpoints := make([]any, 0, len(c.Stages)+2)
	endpoints = append(endpoints, in)

	for _, h := range c.Stages {
		endpoints = append(endpoints, h)
	}

	endpoints = append(endpoints, out)

	return route.Connect(l, endpoints...)
}
