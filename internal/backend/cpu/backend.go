// Package cpu implements the numeric kernels behind the Dense and Recurrent
// layers and the loss functions.
//
// Every kernel exists in three strategies that agree up to floating-point
// summation order: a sequential reference, a thread-parallel variant that
// partitions the output index range across goroutines for the duration of
// one call, and a vectorized variant built on gonum's assembly-backed
// floats routines.
package cpu

import (
	"fmt"

	"github.com/born-ml/backprop/internal/parallel"
)

// Strategy selects how a CPUBackend executes its kernels.
type Strategy int

const (
	// Sequential runs every kernel on the calling goroutine.
	Sequential Strategy = iota
	// Threaded fork-joins each kernel call over the output index range.
	Threaded
	// Vectorized uses gonum/floats for the affine transform.
	Vectorized
)

// String returns the lower-case strategy name.
func (s Strategy) String() string {
	switch s {
	case Sequential:
		return "sequential"
	case Threaded:
		return "threaded"
	case Vectorized:
		return "vectorized"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// CPUBackend executes numeric kernels on flat float64 buffers.
// It holds no buffers of its own and is safe for concurrent use.
type CPUBackend struct {
	strategy Strategy
	cfg      parallel.Config
}

// New creates a sequential CPU backend.
func New() *CPUBackend {
	return &CPUBackend{strategy: Sequential, cfg: parallel.Config{}}
}

// NewThreaded creates a backend whose kernels partition work across
// goroutines according to cfg.
func NewThreaded(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{strategy: Threaded, cfg: cfg}
}

// NewVectorized creates a backend using gonum/floats for the affine kernels.
func NewVectorized() *CPUBackend {
	return &CPUBackend{strategy: Vectorized, cfg: parallel.Config{}}
}

// NewWithStrategy creates a backend for s, using parallel.DefaultConfig for
// the threaded strategy.
func NewWithStrategy(s Strategy) *CPUBackend {
	switch s {
	case Threaded:
		return NewThreaded(parallel.DefaultConfig())
	case Vectorized:
		return NewVectorized()
	default:
		return New()
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU/" + cpu.strategy.String()
}

// Strategy returns the execution strategy.
func (cpu *CPUBackend) Strategy() Strategy {
	return cpu.strategy
}

// rangeOver runs f over [0, n) using the threaded partition when enabled.
func (cpu *CPUBackend) rangeOver(n int, f func(start, end int)) {
	if n <= 0 {
		return
	}
	if cpu.strategy == Threaded {
		parallel.Range(n, f, cpu.cfg)
		return
	}
	f(0, n)
}

// sumOver returns the sum of f over [0, n), reducing per-chunk partial sums
// in the threaded strategy.
func (cpu *CPUBackend) sumOver(n int, f func(start, end int) float64) float64 {
	if n <= 0 {
		return 0
	}
	if cpu.strategy == Threaded {
		return parallel.Sum(n, f, cpu.cfg)
	}
	return f(0, n)
}

func checkLen(op, name string, got, want int) {
	if got != want {
		panic(fmt.Sprintf("%s: %s has length %d, expected %d", op, name, got, want))
	}
}
