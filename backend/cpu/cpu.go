// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/backprop/internal/backend/cpu"
	"github.com/born-ml/backprop/internal/parallel"
)

// Backend represents the CPU kernel backend.
type Backend = internalcpu.CPUBackend

// Strategy selects how kernels execute.
type Strategy = internalcpu.Strategy

// Kernel strategies.
const (
	Sequential = internalcpu.Sequential
	Threaded   = internalcpu.Threaded
	Vectorized = internalcpu.Vectorized
)

// ParallelConfig configures the threaded strategy.
type ParallelConfig = parallel.Config

// New creates a CPU backend with plain sequential loops.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewDense("hidden", 784, 128, nn.ActivationReLU, backend)
func New() *Backend {
	return internalcpu.New()
}

// NewThreaded creates a CPU backend that splits kernels across goroutines.
func NewThreaded(cfg ParallelConfig) *Backend {
	return internalcpu.NewThreaded(cfg)
}

// NewVectorized creates a CPU backend built on gonum vector routines.
func NewVectorized() *Backend {
	return internalcpu.NewVectorized()
}

// DefaultParallelConfig returns the default threaded configuration.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}
