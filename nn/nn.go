// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/backprop/internal/backend/cpu"
	"github.com/born-ml/backprop/internal/nn"
)

// Activations

// Activation is the element-wise function applied after an affine transform.
type Activation = nn.Activation

// Supported activations.
const (
	ActivationLinear  = nn.ActivationLinear
	ActivationReLU    = nn.ActivationReLU
	ActivationELU     = nn.ActivationELU
	ActivationSoftmax = nn.ActivationSoftmax
	ActivationTanh    = nn.ActivationTanh
	ActivationSigmoid = nn.ActivationSigmoid
)

// ParseActivation returns the activation named s.
func ParseActivation(s string) (Activation, error) {
	return nn.ParseActivation(s)
}

// Layers

// Dense is a fully connected layer y = act(W·x + b).
type Dense = nn.Dense

// NewDense creates a fully connected layer. A nil backend selects the
// sequential CPU kernels.
//
// Example:
//
//	hidden := nn.NewDense("hidden", 784, 128, nn.ActivationReLU, cpu.New())
func NewDense(name string, inSize, outSize int, act Activation, backend *cpu.CPUBackend) *Dense {
	return nn.NewDense(name, inSize, outSize, act, backend)
}

// Recurrent is an Elman recurrent layer unrolled over a fixed number of
// time steps and trained with backpropagation through time.
type Recurrent = nn.Recurrent

// NewRecurrent creates a recurrent layer reading stepIn values and writing
// stepOut values per time step through a hidden state of size hidden.
//
// Example:
//
//	rnn := nn.NewRecurrent("rnn", 3, 16, 1, 10, nil) // 10 steps of 3 → 1
func NewRecurrent(name string, stepIn, hidden, stepOut, timeSteps int, backend *cpu.CPUBackend) *Recurrent {
	return nn.NewRecurrent(name, stepIn, hidden, stepOut, timeSteps, backend)
}

// Losses

// CCELoss is categorical cross-entropy against a one-hot target.
type CCELoss = nn.CCELoss

// NewCCELoss creates a categorical cross-entropy loss layer whose gradients
// are scaled by 1/batchSize.
func NewCCELoss(name string, inSize, batchSize int, backend *cpu.CPUBackend) *CCELoss {
	return nn.NewCCELoss(name, inSize, batchSize, backend)
}

// MSELoss is the mean squared error loss.
type MSELoss = nn.MSELoss

// DefaultLossTolerance is the absolute loss under which an MSE sample counts as correct.
const DefaultLossTolerance = nn.DefaultLossTolerance

// NewMSELoss creates a mean squared error loss layer. A sample is counted
// correct when its loss is at most tolerance.
func NewMSELoss(name string, inSize, batchSize int, tolerance float64, backend *cpu.CPUBackend) *MSELoss {
	return nn.NewMSELoss(name, inSize, batchSize, tolerance, backend)
}
