// Package optim implements the optimizers that turn accumulated layer
// gradients into parameter updates.
//
// This package provides:
//   - Optimizer interface: Train(from, to) applies one update and clears the consumed gradients
//   - GradientDescent: param -= η·gradient
//   - Adam: Adaptive Moment Estimation with bias correction
//
// Example usage:
//
//	opt := optim.NewGradientDescent(optim.GDConfig{LR: 0.03})
//
//	for _, example := range batch {
//	    model.Step(example.Input, example.Target)
//	}
//	model.Train(opt) // calls opt.Train(layer, layer) for every layer
package optim

import (
	"fmt"

	"github.com/born-ml/backprop/internal/nn"
	"github.com/pkg/errors"
)

// ErrParamCountMismatch is returned by TrainCheck when the source and
// destination layers have different parameter counts.
var ErrParamCountMismatch = errors.New("parameter count mismatch")

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Train updates the parameters of to using the gradients accumulated in
	// from, then resets every consumed gradient of from to zero.
	//
	// from and to are usually the same layer. They differ when a worker copy
	// accumulated the gradients for the master layer. Train panics if the
	// parameter counts differ; use TrainCheck for a checked call.
	//
	// Calling Train twice without an intervening backward pass applies a
	// zero-gradient update.
	Train(from, to nn.Layer)

	// Reset clears any running state.
	Reset()

	// LR returns the current learning rate.
	LR() float64

	// SetLR changes the learning rate.
	SetLR(lr float64)
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}

// Train applies o to a single layer using its own gradients.
func Train(o Optimizer, layer nn.Layer) {
	o.Train(layer, layer)
}

// TrainCheck is the guarded form of o.Train(from, to). It returns an error
// wrapping ErrParamCountMismatch instead of panicking when the parameter
// counts differ.
func TrainCheck(o Optimizer, from, to nn.Layer) error {
	if from.ParamCount() != to.ParamCount() {
		return errors.Wrapf(ErrParamCountMismatch, "train %q from %q: %d != %d",
			to.Name(), from.Name(), to.ParamCount(), from.ParamCount())
	}
	o.Train(from, to)
	return nil
}

// buffers returns the gradient buffer of from and the parameter buffer of to,
// panicking if their lengths differ.
func buffers(op string, from, to nn.Layer) (grads, params []float64) {
	grads, params = from.Gradients(), to.Params()
	if len(grads) != len(params) {
		panic(fmt.Sprintf("%s: layer %q has %d parameters, gradients come from %q with %d",
			op, to.Name(), len(params), from.Name(), len(grads)))
	}
	return grads, params
}
