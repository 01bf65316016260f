package fx

import (
	"fmt"
	"strconv"

	"github.com/cwbudde/algo-fxgraph/dsp/route"
	"github.com/cwbudde/algo-fxgraph/dsp/unit"
)

// Ref names the slots of one endpoint: a single name is a unit, several names
// form a route.Set.
type Ref []string

// Chain is one route.Connect call over slot references.
type Chain []Ref

// Topology is the fixed wiring of an effect kind.
type Topology []Chain

var (
	delayTopology = Topology{
		{{"input"}, {"gain"}, {"delay"}, {"feedback"}, {"delay"}, {"level"}, {"output"}},
	}

	distortionTopology = Topology{
		{{"input"}, {"shaper"}, {"lowpass", "highpass"}, {"output"}},
	}

	reverbTopology = Topology{
		{{"input"}, {"output", "convolver"}},
		{{"convolver"}, {"level"}, {"output"}},
	}
)

// phaserTopology chains n allpass stages between input and output and feeds
// the last stage back into the first through the feedback gain.
func phaserTopology(n int) Topology {
	main := Chain{{"input"}}
	for i := range n {
		main = append(main, Ref{stageSlot(i)})
	}

	main = append(main, Ref{"output"})

	return Topology{
		main,
		{{stageSlot(n - 1)}, {"feedback"}, {stageSlot(0)}},
	}
}

func stageSlot(i int) string {
	return "stage" + strconv.Itoa(i)
}

// Wire connects the slots chain by chain.
func (t Topology) Wire(l route.Linker, slots map[string]unit.Unit) error {
	for i, chain := range t {
		endpoints := make([]any, len(chain))

		for j, ref := range chain {
			ep, err := ref.resolve(slots)
			if err != nil {
				return fmt.Errorf("chain %d: %w", i, err)
			}

			endpoints[j] = ep
		}

		if err := route.Connect(l, endpoints...); err != nil {
			return fmt.Errorf("chain %d: %w", i, err)
		}
	}

	return nil
}

func (r Ref) resolve(slots map[string]unit.Unit) (any, error) {
	units := make(route.Set, len(r))

	for i, name := range r {
		u, ok := slots[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown slot %q", route.ErrInvalidEndpoint, name)
		}

		units[i] = u
	}

	if len(units) == 1 {
		return units[0], nil
	}

	return units, nil
}
