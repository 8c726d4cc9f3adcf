package model

import (
	"math/rand/v2"

	"github.com/born-ml/backprop/internal/nn"
	"github.com/born-ml/backprop/internal/optim"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"k8s.io/klog/v2"
)

// pcgStream is the fixed second word of the PCG state; the seed is the first.
const pcgStream = 0x9e3779b97f4a7c15

// NewSource returns the deterministic random source used by Init for seed.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, pcgStream)
}

// Init validates the graph, then initializes every layer in registration
// order from a single random source seeded with seed. A zero seed draws one
// from system entropy. The effective seed is returned and logged so a run can
// be reproduced.
//
// Init may be called again to re-initialize a ready model.
func (m *Model) Init(seed uint64) (uint64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	for seed == 0 {
		seed = rand.Uint64()
	}

	src := NewSource(seed)
	for h, n := range m.nodes {
		if Handle(h) != m.loss {
			n.layer.Init(src, m.initKind, m.distribution)
		}
	}
	m.nodes[m.loss].layer.Init(src, m.initKind, m.distribution)

	m.seed = seed
	m.initialized = true
	klog.Infof("model %q: initialized %d parameters (seed %d, %s %s)",
		m.name, m.ParamCount(), seed, m.initKind, m.distribution)
	return seed, nil
}

func (m *Model) mustBeReady(op string) {
	if !m.initialized {
		panic(errors.Errorf("model %q: %s before Init", m.name, op))
	}
}

// forward runs the chain on input and returns the output of the last layer.
func (m *Model) forward(input []float64) []float64 {
	out := input
	for _, h := range m.chain {
		out = m.nodes[h].layer.Forward(out)
	}
	return out
}

// Step runs one training example: forward through the chain and the loss,
// then reverse from the loss back to the input layer, accumulating
// gradients. Parameters are not changed.
//
// Step panics if the model is not initialized or the sizes of input or
// target do not match the graph.
func (m *Model) Step(input, target []float64) {
	m.mustBeReady("Step")
	loss := m.Loss()
	loss.SetTarget(target)
	loss.Forward(m.forward(input))

	grad := loss.Reverse(nil)
	for i := len(m.chain) - 1; i >= 0; i-- {
		grad = m.nodes[m.chain[i]].layer.Reverse(grad)
	}
	klog.V(4).Infof("model %q: step loss %g", m.name, loss.LastLoss())
}

// Predict runs the chain on input and returns the output of the last layer.
// The returned slice is owned by that layer and is overwritten by the next
// forward pass.
func (m *Model) Predict(input []float64) []float64 {
	m.mustBeReady("Predict")
	return m.forward(input)
}

// Evaluate runs the chain and the loss layer on one example without the
// reverse pass. The loss statistics are updated and the loss is returned.
func (m *Model) Evaluate(input, target []float64) float64 {
	m.mustBeReady("Evaluate")
	loss := m.Loss()
	loss.SetTarget(target)
	loss.Forward(m.forward(input))
	return loss.LastLoss()
}

// Train applies o to every layer in registration order, then to the loss
// layer, consuming the accumulated gradients, and resets the loss statistics.
func (m *Model) Train(o optim.Optimizer) {
	m.mustBeReady("Train")
	for h, n := range m.nodes {
		if Handle(h) != m.loss {
			o.Train(n.layer, n.layer)
		}
	}
	o.Train(m.nodes[m.loss].layer, m.nodes[m.loss].layer)
	klog.V(3).Infof("model %q: trained, accuracy %.4f avg loss %.6g", m.name, m.Accuracy(), m.AvgLoss())
	m.ResetScore()
}

// TrainFrom updates the parameters of m with the gradients accumulated in
// worker, layer by layer, and zeroes the worker's gradients. The worker must
// be a clone of m. Statistics of neither model are touched.
func (m *Model) TrainFrom(o optim.Optimizer, worker *Model) error {
	m.mustBeReady("TrainFrom")
	if err := m.sameLayout(worker); err != nil {
		return err
	}
	for h, n := range m.nodes {
		if err := optim.TrainCheck(o, worker.nodes[h].layer, n.layer); err != nil {
			return errors.WithMessagef(err, "model %q", m.name)
		}
	}
	return nil
}

// AccumulateGradients adds the gradients of worker into m and zeroes them in
// worker. The worker's loss statistics are merged into m and reset.
func (m *Model) AccumulateGradients(worker *Model) error {
	if err := m.sameLayout(worker); err != nil {
		return err
	}
	for h, n := range m.nodes {
		if g := worker.nodes[h].layer.Gradients(); len(g) > 0 {
			floats.Add(n.layer.Gradients(), g)
			clear(g)
		}
	}
	if l, wl := m.Loss(), worker.Loss(); l != nil && wl != nil {
		l.AddScore(wl.Score())
		wl.ResetScore()
	}
	return nil
}

// CopyParams overwrites the parameters of m with those of src.
func (m *Model) CopyParams(src *Model) error {
	if err := m.sameLayout(src); err != nil {
		return err
	}
	for h, n := range m.nodes {
		copy(n.layer.Params(), src.nodes[h].layer.Params())
	}
	return nil
}

// ZeroGradients clears every accumulated gradient.
func (m *Model) ZeroGradients() {
	for _, n := range m.nodes {
		clear(n.layer.Gradients())
	}
}

// ResetState clears the carried hidden state of every recurrent layer.
func (m *Model) ResetState() {
	for _, n := range m.nodes {
		if r, ok := n.layer.(*nn.Recurrent); ok {
			r.ResetHiddenState()
		}
	}
}

func (m *Model) sameLayout(other *Model) error {
	if len(m.nodes) != len(other.nodes) {
		return errors.Wrapf(ErrShapeMismatch, "model %q has %d layers, %q has %d",
			m.name, len(m.nodes), other.name, len(other.nodes))
	}
	for h, n := range m.nodes {
		if a, b := n.layer.ParamCount(), other.nodes[h].layer.ParamCount(); a != b {
			return errors.Wrapf(ErrShapeMismatch, "layer %d (%q): %d vs %d parameters",
				h, n.layer.Name(), a, b)
		}
	}
	return nil
}
