package unit

import "fmt"

// Render pulls in through the graph offline, feeding it into from and reading
// the output of to, and returns len(in) samples. Only units that to depends
// on, through signal or modulation edges, are processed. Edges that close a
// cycle carry the previous block of their source.
//
// Unit state persists across calls, so consecutive Render calls continue the
// same stream.
func (c *Context) Render(in []float64, from, to Unit) ([]float64, error) {
	if err := c.owns(from); err != nil {
		return nil, fmt.Errorf("render source: %w", err)
	}

	if err := c.owns(to); err != nil {
		return nil, fmt.Errorf("render sink: %w", err)
	}

	out := make([]float64, len(in))
	if len(in) == 0 {
		return out, nil
	}

	plan := c.plan(to)
	block := c.cfg.BlockSize
	scratch := make([]float64, block)

	for start := 0; start < len(in); start += block {
		end := min(start+block, len(in))
		n := end - start
		plan.step(scratch[:n], in[start:end], from)
		copy(out[start:end], plan.out[to.ID()][:n])
	}

	plan.release()

	return out, nil
}

type renderPlan struct {
	order    []Unit
	incoming map[int][]Unit
	mods     map[*Param][]Unit
	out      map[int][]float64
}

// plan orders every unit sink depends on so that sources precede their
// destinations, except across back edges of a cycle.
func (c *Context) plan(sink Unit) *renderPlan {
	edges := c.Edges()
	modEdges := c.ModEdges()

	p := &renderPlan{
		incoming: make(map[int][]Unit),
		mods:     make(map[*Param][]Unit),
		out:      make(map[int][]float64),
	}

	for _, e := range edges {
		p.incoming[e.To.ID()] = append(p.incoming[e.To.ID()], e.From)
	}

	for _, m := range modEdges {
		p.mods[m.Param] = append(p.mods[m.Param], m.From)
	}

	const (
		unvisited = iota
		active
		finished
	)

	state := make(map[int]int)

	var visit func(u Unit)
	visit = func(u Unit) {
		if state[u.ID()] != unvisited {
			return
		}

		state[u.ID()] = active

		for _, src := range p.incoming[u.ID()] {
			visit(src)
		}

		for _, param := range u.params() {
			for _, src := range p.mods[param] {
				visit(src)
			}
		}

		state[u.ID()] = finished
		p.order = append(p.order, u)
		p.out[u.ID()] = make([]float64, c.cfg.BlockSize)
	}

	visit(sink)

	return p
}

// step processes one block of len(in) samples, at most the block size.
func (p *renderPlan) step(sum, in []float64, from Unit) {
	n := len(sum)

	for _, u := range p.order {
		for i := range sum {
			sum[i] = 0
		}

		if u.ID() == from.ID() {
			copy(sum, in)
		}

		for _, src := range p.incoming[u.ID()] {
			if buf, ok := p.out[src.ID()]; ok {
				addTo(sum, buf[:n])
			}
		}

		for _, param := range u.params() {
			srcs := p.mods[param]
			if len(srcs) == 0 {
				continue
			}

			if cap(param.mod) < n {
				param.mod = make([]float64, n)
			}

			param.mod = param.mod[:n]
			for i := range param.mod {
				param.mod[i] = 0
			}

			for _, src := range srcs {
				addTo(param.mod, p.out[src.ID()][:n])
			}
		}

		u.process(p.out[u.ID()][:n], sum)
	}
}

// release detaches per-render modulation buffers from parameters.
func (p *renderPlan) release() {
	for param := range p.mods {
		param.mod = nil
	}
}

func addTo(dst, src []float64) {
	for i := range dst {
		dst[i] += src[i]
	}
}
