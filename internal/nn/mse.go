package nn

import (
	"math"

	"github.com/born-ml/backprop/internal/backend/cpu"
)

var _ LossLayer = (*MSELoss)(nil)

// DefaultLossTolerance is the per-scalar MSE correctness threshold used when
// none is given.
const DefaultLossTolerance = 1e-3

// MSELoss is the mean squared error loss.
//
// Forward computes mean((y − ŷ)²) and counts the sample as correct when every
// predicted scalar is within the configured tolerance of its target.
type MSELoss struct {
	lossBase
	tolerance float64
}

// NewMSELoss creates a mean squared error loss.
//
// Parameters:
//   - name: Layer name
//   - inSize: Number of predicted scalars
//   - batchSize: Examples per optimizer step; gradients are scaled by 1/batchSize
//   - tolerance: Largest per-scalar deviation still counted as a correct prediction
//   - backend: Kernel backend; nil selects the sequential backend
func NewMSELoss(name string, inSize, batchSize int, tolerance float64, backend *cpu.CPUBackend) *MSELoss {
	return &MSELoss{lossBase: newLossBase(name, inSize, batchSize, backend), tolerance: tolerance}
}

// Tolerance returns the correctness threshold.
func (l *MSELoss) Tolerance() float64 {
	return l.tolerance
}

// Forward computes the loss of prediction against the bound target and
// updates the statistics. It returns nil.
func (l *MSELoss) Forward(prediction []float64) []float64 {
	l.beginForward("mse forward", prediction)
	loss := l.backend.MSE(l.target, prediction)
	l.record(loss, l.withinTolerance(prediction))
	return nil
}

func (l *MSELoss) withinTolerance(prediction []float64) bool {
	for i, y := range l.target {
		if !(math.Abs(prediction[i]-y) <= l.tolerance) {
			return false
		}
	}
	return true
}

// Reverse returns dL/dŷ_i = 2(ŷ_i − y_i) / batchSize for the last Forward.
// The argument is ignored.
func (l *MSELoss) Reverse([]float64) []float64 {
	l.beginReverse("mse reverse")
	l.backend.MSEDerivative(l.grad, l.target, l.lastInput, l.invBatchSize)
	return l.grad
}

// Clone returns a copy with the same statistics and no bound target.
func (l *MSELoss) Clone() Layer {
	return &MSELoss{lossBase: l.cloneLossBase(), tolerance: l.tolerance}
}
