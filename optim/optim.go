// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/backprop/internal/optim"
	"github.com/born-ml/backprop/nn"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Config represents the base configuration for optimizers.
type Config = optim.Config

// ErrParamCountMismatch is returned by TrainCheck for layers of different sizes.
var ErrParamCountMismatch = optim.ErrParamCountMismatch

// Train applies o to layer using its own gradients.
func Train(o Optimizer, layer nn.Layer) {
	optim.Train(o, layer)
}

// TrainCheck is Train(from, to) with the parameter counts checked first.
func TrainCheck(o Optimizer, from, to nn.Layer) error {
	return optim.TrainCheck(o, from, to)
}

// Gradient Descent

// GradientDescent represents plain (mini-batch) gradient descent.
type GradientDescent = optim.GradientDescent

// GDConfig contains configuration for GradientDescent.
type GDConfig = optim.GDConfig

// DefaultGDLearningRate is used when GDConfig.LR is zero.
const DefaultGDLearningRate = optim.DefaultGDLearningRate

// NewGradientDescent creates a gradient descent optimizer.
//
// Example:
//
//	opt := optim.NewGradientDescent(optim.GDConfig{LR: 0.03})
//	m.Train(opt)
func NewGradientDescent(config GDConfig) *GradientDescent {
	return optim.NewGradientDescent(config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
//
// Example:
//
//	opt := optim.NewAdam(optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float64{0.9, 0.999},
//	})
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}
