// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go kernels used by layers.
//
// # Overview
//
// The backend implements the affine transform, activations and losses on
// flat float64 slices with three interchangeable strategies:
//   - Sequential: plain loops
//   - Threaded: fork-join over output rows with goroutines
//   - Vectorized: gonum floats routines
//
// All strategies compute the same values up to floating-point rounding.
//
// # Basic Usage
//
//	backend := cpu.NewThreaded(cpu.DefaultParallelConfig())
//	layer := nn.NewDense("hidden", 4096, 4096, nn.ActivationTanh, backend)
package cpu
