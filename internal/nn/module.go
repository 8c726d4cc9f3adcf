// Package nn implements the layers of the backprop engine.
//
// This package provides the building blocks of a layer graph:
//   - Layer interface: identity, flat parameter and gradient buffers, forward/reverse contract
//   - Dense: affine transform followed by an activation
//   - Recurrent: time-unrolled hidden-state layer trained with back-propagation through time
//   - LossLayer: terminal nodes (CCELoss, MSELoss) tracking running accuracy and loss
//   - Initializers: Xavier, Kaiming and Auto drawn from Normal or Uniform distributions
//
// Gradients are written by hand per layer type. Every layer accumulates its
// parameter gradients across Reverse calls until an optimizer consumes them.
package nn

import (
	"fmt"
	"math/rand/v2"
)

// Layer is a node of the computational graph.
//
// Slices returned by Forward, Reverse, LastInput and LastOutput are borrowed:
// they stay valid only until the next Forward (or Reverse) call on the same
// layer. LastInput is the caller's own input slice, retained by reference.
type Layer interface {
	// Name returns the layer name given at construction.
	Name() string

	// ID returns the identifier assigned by the owning model, or -1.
	ID() int

	// SetID assigns the identifier. Called by the owning model on registration.
	SetID(id int)

	// InputSize is the number of scalars Forward consumes.
	InputSize() int

	// OutputSize is the number of scalars Forward produces and Reverse consumes.
	OutputSize() int

	// ParamCount returns the number of trainable scalars.
	ParamCount() int

	// Param returns a pointer to the i-th parameter.
	// It returns nil for layers without parameters and panics if i is out of range.
	Param(i int) *float64

	// Gradient returns a pointer to the i-th accumulated gradient, with the
	// same conventions as Param.
	Gradient(i int) *float64

	// Params returns the flat parameter buffer.
	Params() []float64

	// Gradients returns the flat gradient buffer. len(Gradients()) == len(Params()).
	Gradients() []float64

	// Init fills the parameters from dist seeded by src.
	Init(src rand.Source, kind InitKind, dist Distribution)

	// Forward consumes exactly InputSize scalars and returns the output.
	Forward(input []float64) []float64

	// Reverse consumes exactly OutputSize upstream gradient scalars,
	// accumulates parameter gradients and returns the gradient with respect
	// to the last input.
	Reverse(grad []float64) []float64

	// LastInput returns the input of the last Forward call.
	LastInput() []float64

	// LastOutput returns the output of the last Forward call.
	LastOutput() []float64

	// Clone returns a deep copy. The copy never aliases the receiver's
	// retained input.
	Clone() Layer
}

// base carries the identity, shape and retained buffers shared by every layer.
type base struct {
	name      string
	id        int
	inSize    int
	outSize   int
	lastInput []float64
	output    []float64
}

func newBase(name string, inSize, outSize int) base {
	if inSize < 0 || outSize < 0 {
		panic(fmt.Sprintf("layer %q: negative size (in=%d, out=%d)", name, inSize, outSize))
	}
	return base{
		name:    name,
		id:      -1,
		inSize:  inSize,
		outSize: outSize,
		output:  make([]float64, outSize),
	}
}

// Name returns the layer name.
func (b *base) Name() string { return b.name }

// ID returns the identifier assigned by the owning model.
func (b *base) ID() int { return b.id }

// SetID assigns the identifier.
func (b *base) SetID(id int) { b.id = id }

// InputSize returns the number of scalars consumed by Forward.
func (b *base) InputSize() int { return b.inSize }

// OutputSize returns the number of scalars produced by Forward.
func (b *base) OutputSize() int { return b.outSize }

// LastInput returns the input retained by the last Forward.
func (b *base) LastInput() []float64 { return b.lastInput }

// LastOutput returns the output of the last Forward.
func (b *base) LastOutput() []float64 { return b.output }

// cloneBase copies identity and shape, detaches the retained input and
// copies the output buffer.
func (b *base) cloneBase() base {
	c := *b
	c.lastInput = nil
	c.output = append([]float64(nil), b.output...)
	return c
}

func checkSize(op, layer string, got, want int) {
	if got != want {
		panic(fmt.Sprintf("%s %q: got %d values, expected %d", op, layer, got, want))
	}
}
