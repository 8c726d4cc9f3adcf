package nn

import (
	"fmt"
)

// Parameters is a flat parameter buffer paired with a gradient accumulator
// of identical length.
//
// Layers embed Parameters to satisfy the parameter half of the Layer
// interface. A zero-length buffer answers nil from Param and Gradient.
type Parameters struct {
	data []float64
	grad []float64
}

// NewParameters allocates n zeroed parameters and gradients.
func NewParameters(n int) Parameters {
	return Parameters{
		data: make([]float64, n),
		grad: make([]float64, n),
	}
}

// ParamCount returns the number of parameters.
func (p *Parameters) ParamCount() int {
	return len(p.data)
}

// Param returns a pointer to the i-th parameter.
//
// Returns nil when the buffer is empty. Panics if i is out of range.
func (p *Parameters) Param(i int) *float64 {
	if len(p.data) == 0 {
		return nil
	}
	if i < 0 || i >= len(p.data) {
		panic(fmt.Sprintf("param: index %d out of range [0, %d)", i, len(p.data)))
	}
	return &p.data[i]
}

// Gradient returns a pointer to the i-th accumulated gradient.
//
// Returns nil when the buffer is empty. Panics if i is out of range.
func (p *Parameters) Gradient(i int) *float64 {
	if len(p.grad) == 0 {
		return nil
	}
	if i < 0 || i >= len(p.grad) {
		panic(fmt.Sprintf("gradient: index %d out of range [0, %d)", i, len(p.grad)))
	}
	return &p.grad[i]
}

// Params returns the parameter buffer.
func (p *Parameters) Params() []float64 {
	return p.data
}

// Gradients returns the gradient buffer.
func (p *Parameters) Gradients() []float64 {
	return p.grad
}

// ZeroGrad clears the gradient accumulator.
func (p *Parameters) ZeroGrad() {
	clear(p.grad)
}

func (p *Parameters) clone() Parameters {
	return Parameters{
		data: append([]float64(nil), p.data...),
		grad: append([]float64(nil), p.grad...),
	}
}
