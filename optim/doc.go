// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training networks.
//
// # Overview
//
// This package contains:
//   - GradientDescent: param -= lr·gradient
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//
// An optimizer reads the gradients of one layer and updates the parameters
// of another (usually the same one), then zeroes the gradients it consumed.
// Gradients accumulate over a batch of model Steps, so calling Train once
// per batch gives mini-batch training.
//
// # Basic Usage
//
//	opt := optim.NewAdam(optim.AdamConfig{LR: 0.001})
//	for epoch := range 10 {
//	    for _, ex := range data {
//	        m.Step(ex.Input, ex.Target)
//	    }
//	    m.Train(opt)
//	}
//
// # Adam moments
//
// By default Adam keeps a single (m, v) pair and a single timestep shared by
// every parameter, advancing the timestep once per parameter update. Set
// AdamConfig.PerParameter for one moment pair per parameter.
package optim
