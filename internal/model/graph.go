package model

import (
	"github.com/pkg/errors"
)

// Validate freezes the graph and checks that it is a simple chain
// input → … → output → loss. It reports, wrapped in ErrInvalidGraph:
//   - an empty model or a missing loss layer
//   - edges naming unknown handles, self loops and duplicate edges
//   - a layer with more than one producer or more than one consumer
//   - an edge between layers whose output and input sizes differ
//   - a loss layer with outgoing edges or without exactly one producer
//   - cycles and layers unreachable from the input layer
//
// Validate runs once from Init; calling it again is cheap and idempotent.
func (m *Model) Validate() error {
	if m.validated {
		return nil
	}
	if err := m.validate(); err != nil {
		return errors.WithMessagef(err, "model %q", m.name)
	}
	m.validated = true
	return nil
}

func (m *Model) validate() error {
	if m.loss == NoHandle {
		return errors.Wrap(ErrInvalidGraph, "no loss layer")
	}
	if len(m.nodes) < 2 {
		return errors.Wrap(ErrInvalidGraph, "no layers besides the loss")
	}

	seen := make(map[edge]bool, len(m.edges))
	for _, e := range m.edges {
		if !m.valid(e.src) || !m.valid(e.dst) {
			return errors.Wrapf(ErrInvalidGraph, "edge %d→%d names an unknown layer", e.src, e.dst)
		}
		if e.src == e.dst {
			return errors.Wrapf(ErrInvalidGraph, "self loop on %q", m.nodes[e.src].layer.Name())
		}
		if seen[e] {
			return errors.Wrapf(ErrInvalidGraph, "duplicate edge %q→%q",
				m.nodes[e.src].layer.Name(), m.nodes[e.dst].layer.Name())
		}
		seen[e] = true

		src, dst := m.nodes[e.src].layer, m.nodes[e.dst].layer
		if src.OutputSize() != dst.InputSize() {
			return errors.Wrapf(ErrInvalidGraph, "edge %q→%q: output size %d != input size %d",
				src.Name(), dst.Name(), src.OutputSize(), dst.InputSize())
		}
	}

	for h, n := range m.nodes {
		if len(n.antecedents) > 1 {
			return errors.Wrapf(ErrInvalidGraph, "layer %q has %d producers", n.layer.Name(), len(n.antecedents))
		}
		if len(n.subsequents) > 1 {
			return errors.Wrapf(ErrInvalidGraph, "layer %q has %d consumers", n.layer.Name(), len(n.subsequents))
		}
		if Handle(h) == m.loss {
			if len(n.subsequents) != 0 {
				return errors.Wrapf(ErrInvalidGraph, "loss %q has outgoing edges", n.layer.Name())
			}
			if len(n.antecedents) != 1 {
				return errors.Wrapf(ErrInvalidGraph, "loss %q is not connected", n.layer.Name())
			}
		}
	}

	// Exactly one source, then walk the chain to the loss.
	source := NoHandle
	for h, n := range m.nodes {
		if Handle(h) == m.loss || len(n.antecedents) > 0 {
			continue
		}
		if source != NoHandle {
			return errors.Wrapf(ErrInvalidGraph, "layers %q and %q both lack a producer",
				m.nodes[source].layer.Name(), n.layer.Name())
		}
		source = Handle(h)
	}
	if source == NoHandle {
		return errors.Wrap(ErrInvalidGraph, "cycle: no input layer")
	}

	chain := make([]Handle, 0, len(m.nodes)-1)
	visited := make([]bool, len(m.nodes))
	for h := source; h != m.loss; {
		if visited[h] {
			return errors.Wrapf(ErrInvalidGraph, "cycle through %q", m.nodes[h].layer.Name())
		}
		visited[h] = true
		chain = append(chain, h)

		next := m.nodes[h].subsequents
		if len(next) == 0 {
			return errors.Wrapf(ErrInvalidGraph, "chain ends at %q before reaching the loss", m.nodes[h].layer.Name())
		}
		h = next[0]
	}
	if len(chain) != len(m.nodes)-1 {
		return errors.Wrapf(ErrInvalidGraph, "%d layers are unreachable from %q",
			len(m.nodes)-1-len(chain), m.nodes[source].layer.Name())
	}

	m.chain = chain
	return nil
}
