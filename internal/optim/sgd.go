package optim

import (
	"github.com/born-ml/backprop/internal/nn"
)

// GradientDescent implements plain gradient descent.
//
// Update rule:
//
//	param = param - lr * gradient
//
// Applied once per batch to gradients accumulated over the batch, this is
// mini-batch stochastic gradient descent. It holds no state besides the
// learning rate.
//
// Example:
//
//	opt := optim.NewGradientDescent(optim.GDConfig{LR: 0.03})
//	optim.Train(opt, layer)
type GradientDescent struct {
	lr float64
}

// GDConfig holds configuration for GradientDescent.
type GDConfig struct {
	LR float64 // Learning rate (default: 0.03)
}

// DefaultGDLearningRate is the learning rate used when GDConfig.LR is zero.
const DefaultGDLearningRate = 0.03

// NewGradientDescent creates a gradient descent optimizer.
func NewGradientDescent(config GDConfig) *GradientDescent {
	if config.LR == 0 {
		config.LR = DefaultGDLearningRate
	}
	return &GradientDescent{lr: config.LR}
}

// Train applies param -= lr·gradient to every parameter of to and zeroes the
// consumed gradients of from.
func (g *GradientDescent) Train(from, to nn.Layer) {
	grads, params := buffers("gradient descent", from, to)
	for i, grad := range grads {
		params[i] -= g.lr * grad
		grads[i] = 0
	}
}

// Reset is a no-op: gradient descent keeps no running state.
func (g *GradientDescent) Reset() {}

// LR returns the learning rate.
func (g *GradientDescent) LR() float64 {
	return g.lr
}

// SetLR changes the learning rate.
func (g *GradientDescent) SetLR(lr float64) {
	g.lr = lr
}
