package nn

import (
	"github.com/born-ml/backprop/internal/backend/cpu"
)

var _ LossLayer = (*CCELoss)(nil)

// CCELoss is the categorical cross-entropy loss for one-hot targets.
//
// Forward computes −Σ y·log(max(ŷ, ε)) and counts the sample as correct
// when the arg-max of the prediction is the first non-zero target index.
// The prediction is expected to be a probability distribution, typically
// the output of a Softmax Dense layer.
type CCELoss struct {
	lossBase
	active int
}

// NewCCELoss creates a categorical cross-entropy loss.
//
// Parameters:
//   - name: Layer name
//   - inSize: Number of classes
//   - batchSize: Examples per optimizer step; gradients are scaled by 1/batchSize
//   - backend: Kernel backend; nil selects the sequential backend
func NewCCELoss(name string, inSize, batchSize int, backend *cpu.CPUBackend) *CCELoss {
	return &CCELoss{lossBase: newLossBase(name, inSize, batchSize, backend), active: -1}
}

// Forward computes the loss of prediction against the bound target and
// updates the statistics. It returns nil.
func (l *CCELoss) Forward(prediction []float64) []float64 {
	l.beginForward("cce forward", prediction)

	l.active = -1
	for i, y := range l.target {
		if y != 0 {
			l.active = i
			break
		}
	}

	loss := l.backend.CrossEntropy(l.target, prediction)
	l.record(loss, l.active >= 0 && cpu.ArgMax(prediction) == l.active)
	return nil
}

// ActiveClass returns the one-hot index found by the last Forward, or -1.
func (l *CCELoss) ActiveClass() int {
	return l.active
}

// Reverse returns dL/dŷ_i = −y_i / max(ŷ_i, ε) / batchSize for the last
// Forward. The argument is ignored.
func (l *CCELoss) Reverse([]float64) []float64 {
	l.beginReverse("cce reverse")
	l.backend.CrossEntropyDerivative(l.grad, l.target, l.lastInput, l.invBatchSize)
	return l.grad
}

// Clone returns a copy with the same statistics and no bound target.
func (l *CCELoss) Clone() Layer {
	return &CCELoss{lossBase: l.cloneLossBase(), active: l.active}
}
