// Package model implements the layer graph that drives training.
//
// A Model is an arena of layers addressed by integer handles. Edges are
// recorded as handle lists on each node, so layers never hold references to
// each other or to the model. The graph is a chain from a single input layer
// to a single terminal loss layer; it is validated once, when Init freezes it.
//
// Per training example the model moves UNINITIALIZED → Init → READY, and per
// batch READY → Step×N → ACCUMULATED → Train → READY.
//
// A Model is not safe for concurrent use. Batch-parallel training runs Step
// on independent clones and folds their gradients back with
// AccumulateGradients.
package model

import (
	"fmt"
	"math"

	"github.com/born-ml/backprop/internal/nn"
	"github.com/pkg/errors"
)

// Handle addresses a layer registered in a Model.
type Handle int

// NoHandle is the zero-information handle.
const NoHandle Handle = -1

var (
	// ErrLossExists is returned by AddLoss when the model already has a loss layer.
	ErrLossExists = errors.New("model already has a loss layer")

	// ErrInvalidGraph wraps every graph validation failure.
	ErrInvalidGraph = errors.New("invalid layer graph")

	// ErrShapeMismatch is returned when two models with different layouts are combined.
	ErrShapeMismatch = errors.New("models have different layouts")
)

type node struct {
	layer       nn.Layer
	antecedents []Handle
	subsequents []Handle
}

type edge struct {
	src, dst Handle
}

// Model owns a set of layers, the edges between them and a designated loss layer.
type Model struct {
	name  string
	nodes []node
	loss  Handle
	edges []edge

	initKind     nn.InitKind
	distribution nn.Distribution

	// Set by Validate.
	chain     []Handle // non-loss layers from input to output
	validated bool

	seed        uint64
	initialized bool
}

// New creates an empty model. Layers are initialized with nn.InitAuto from a
// Normal distribution unless SetInitialization says otherwise.
func New(name string) *Model {
	return &Model{
		name:         name,
		loss:         NoHandle,
		initKind:     nn.InitAuto,
		distribution: nn.Normal,
	}
}

// Name returns the model name.
func (m *Model) Name() string {
	return m.name
}

// SetInitialization selects the initializer used by Init.
func (m *Model) SetInitialization(kind nn.InitKind, dist nn.Distribution) {
	m.initKind = kind
	m.distribution = dist
}

// AddLayer registers l and returns its handle. Registration order is the
// initialization, training and serialization order. Adding a layer to an
// initialized model requires a new Init.
func (m *Model) AddLayer(l nn.Layer) Handle {
	h := Handle(len(m.nodes))
	l.SetID(int(h))
	m.nodes = append(m.nodes, node{layer: l})
	m.invalidate()
	return h
}

// AddLoss registers the loss layer. A model has exactly one.
func (m *Model) AddLoss(l nn.LossLayer) (Handle, error) {
	if m.loss != NoHandle {
		return NoHandle, errors.Wrapf(ErrLossExists, "model %q: cannot add %q, loss is %q",
			m.name, l.Name(), m.nodes[m.loss].layer.Name())
	}
	h := m.AddLayer(l)
	m.loss = h
	return h, nil
}

// CreateEdge links src to dst so that dst consumes the output of src.
//
// No validation happens here: unknown handles, duplicate edges, cycles and
// size mismatches are reported by Validate when the graph is frozen.
func (m *Model) CreateEdge(src, dst Handle) {
	m.edges = append(m.edges, edge{src: src, dst: dst})
	if m.valid(src) && m.valid(dst) {
		m.nodes[src].subsequents = append(m.nodes[src].subsequents, dst)
		m.nodes[dst].antecedents = append(m.nodes[dst].antecedents, src)
	}
	m.invalidate()
}

// invalidate marks the graph as edited: it must be validated and
// initialized again before use.
func (m *Model) invalidate() {
	m.validated = false
	m.initialized = false
}

// Chain is a convenience that creates edges h[0]→h[1]→…→h[n-1].
func (m *Model) Chain(handles ...Handle) {
	for i := 1; i < len(handles); i++ {
		m.CreateEdge(handles[i-1], handles[i])
	}
}

func (m *Model) valid(h Handle) bool {
	return h >= 0 && int(h) < len(m.nodes)
}

// Layer returns the layer registered under h, or nil.
func (m *Model) Layer(h Handle) nn.Layer {
	if !m.valid(h) {
		return nil
	}
	return m.nodes[h].layer
}

// Antecedents returns the handles feeding h.
func (m *Model) Antecedents(h Handle) []Handle {
	if !m.valid(h) {
		return nil
	}
	return m.nodes[h].antecedents
}

// Subsequents returns the handles consuming the output of h.
func (m *Model) Subsequents(h Handle) []Handle {
	if !m.valid(h) {
		return nil
	}
	return m.nodes[h].subsequents
}

// Layers returns every registered layer except the loss, in registration order.
func (m *Model) Layers() []nn.Layer {
	layers := make([]nn.Layer, 0, len(m.nodes))
	for h, n := range m.nodes {
		if Handle(h) != m.loss {
			layers = append(layers, n.layer)
		}
	}
	return layers
}

// NumLayers returns the number of registered layers, loss included.
func (m *Model) NumLayers() int {
	return len(m.nodes)
}

// Loss returns the loss layer, or nil if none was added.
func (m *Model) Loss() nn.LossLayer {
	if m.loss == NoHandle {
		return nil
	}
	return m.nodes[m.loss].layer.(nn.LossLayer)
}

// LossHandle returns the handle of the loss layer, or NoHandle.
func (m *Model) LossHandle() Handle {
	return m.loss
}

// Seed returns the effective seed of the last Init, or 0.
func (m *Model) Seed() uint64 {
	return m.seed
}

// Initialized reports whether Init has completed.
func (m *Model) Initialized() bool {
	return m.initialized
}

// ParamCount returns the total number of trainable parameters.
func (m *Model) ParamCount() int {
	total := 0
	for _, n := range m.nodes {
		total += n.layer.ParamCount()
	}
	return total
}

// InputSize returns the input size of the first layer of the chain, or of
// the first registered layer before validation.
func (m *Model) InputSize() int {
	if first := m.first(); first != NoHandle {
		return m.nodes[first].layer.InputSize()
	}
	return 0
}

// OutputSize returns the output size of the last layer of the chain, or of
// the last registered non-loss layer before validation.
func (m *Model) OutputSize() int {
	if last := m.last(); last != NoHandle {
		return m.nodes[last].layer.OutputSize()
	}
	return 0
}

func (m *Model) first() Handle {
	if m.validated && len(m.chain) > 0 {
		return m.chain[0]
	}
	for h := range m.nodes {
		if Handle(h) != m.loss {
			return Handle(h)
		}
	}
	return NoHandle
}

func (m *Model) last() Handle {
	if m.validated && len(m.chain) > 0 {
		return m.chain[len(m.chain)-1]
	}
	for h := len(m.nodes) - 1; h >= 0; h-- {
		if Handle(h) != m.loss {
			return Handle(h)
		}
	}
	return NoHandle
}

// Accuracy returns the running accuracy of the loss layer, NaN without one.
func (m *Model) Accuracy() float64 {
	if l := m.Loss(); l != nil {
		return l.Accuracy()
	}
	return math.NaN()
}

// AvgLoss returns the running average loss of the loss layer, NaN without one.
func (m *Model) AvgLoss() float64 {
	if l := m.Loss(); l != nil {
		return l.AvgLoss()
	}
	return math.NaN()
}

// ResetScore clears the loss statistics.
func (m *Model) ResetScore() {
	if l := m.Loss(); l != nil {
		l.ResetScore()
	}
}

// LayerInfo describes one registered layer.
type LayerInfo struct {
	Handle     Handle
	Name       string
	Kind       string
	InputSize  int
	OutputSize int
	Params     int
}

// Summary describes every registered layer in registration order.
func (m *Model) Summary() []LayerInfo {
	infos := make([]LayerInfo, len(m.nodes))
	for h, n := range m.nodes {
		infos[h] = LayerInfo{
			Handle:     Handle(h),
			Name:       n.layer.Name(),
			Kind:       kindOf(n.layer),
			InputSize:  n.layer.InputSize(),
			OutputSize: n.layer.OutputSize(),
			Params:     n.layer.ParamCount(),
		}
	}
	return infos
}

func kindOf(l nn.Layer) string {
	switch v := l.(type) {
	case *nn.Dense:
		return fmt.Sprintf("Dense(%s)", v.Activation())
	case *nn.Recurrent:
		return fmt.Sprintf("Recurrent(h=%d, t=%d)", v.HiddenSize(), v.TimeSteps())
	case *nn.CCELoss:
		return "CCELoss"
	case *nn.MSELoss:
		return "MSELoss"
	default:
		return fmt.Sprintf("%T", l)
	}
}

// Clone returns a deep copy of the model: every layer is cloned and the
// edges, initialization state and seed are copied.
func (m *Model) Clone() *Model {
	c := &Model{
		name:         m.name,
		nodes:        make([]node, len(m.nodes)),
		loss:         m.loss,
		edges:        append([]edge(nil), m.edges...),
		initKind:     m.initKind,
		distribution: m.distribution,
		chain:        append([]Handle(nil), m.chain...),
		validated:    m.validated,
		seed:         m.seed,
		initialized:  m.initialized,
	}
	for h, n := range m.nodes {
		c.nodes[h] = node{
			layer:       n.layer.Clone(),
			antecedents: append([]Handle(nil), n.antecedents...),
			subsequents: append([]Handle(nil), n.subsequents...),
		}
	}
	return c
}
