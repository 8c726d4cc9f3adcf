package nn

import (
	"math/rand/v2"

	"github.com/born-ml/backprop/internal/backend/cpu"
)

var _ Layer = (*Dense)(nil)

// Dense implements a fully connected layer followed by an activation.
//
// Performs the transformation: y = act(W·x + b)
// where:
//   - x is the input vector with inSize elements
//   - W is the weight matrix with shape [outSize, inSize], stored row-major
//   - b is the bias vector with outSize elements
//
// The parameter buffer holds W followed by b, so ParamCount is (inSize+1)*outSize.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewDense("hidden", 4, 8, nn.ActivationReLU, backend)
//	layer.Init(rand.NewPCG(1, 2), nn.InitAuto, nn.Normal)
//	y := layer.Forward([]float64{1, 2, 3, 4})
type Dense struct {
	base
	Parameters

	activation Activation
	backend    *cpu.CPUBackend

	z  []float64 // pre-activation
	dz []float64 // scratch for dL/dz
	dx []float64 // gradient with respect to the last input
}

// NewDense creates a Dense layer with zeroed parameters.
//
// Parameters:
//   - name: Layer name
//   - inSize: Number of input scalars
//   - outSize: Number of output scalars
//   - act: Activation applied after the affine transform
//   - backend: Kernel backend; nil selects the sequential backend
//
// Call Init before use.
func NewDense(name string, inSize, outSize int, act Activation, backend *cpu.CPUBackend) *Dense {
	if backend == nil {
		backend = cpu.New()
	}
	return &Dense{
		base:       newBase(name, inSize, outSize),
		Parameters: NewParameters((inSize + 1) * outSize),
		activation: act,
		backend:    backend,
		z:          make([]float64, outSize),
		dz:         make([]float64, outSize),
		dx:         make([]float64, inSize),
	}
}

// Activation returns the activation applied after the affine transform.
func (d *Dense) Activation() Activation {
	return d.activation
}

// Weights returns the weight matrix, row-major [outSize, inSize].
func (d *Dense) Weights() []float64 {
	return d.data[:d.inSize*d.outSize]
}

// Biases returns the bias vector.
func (d *Dense) Biases() []float64 {
	return d.data[d.inSize*d.outSize:]
}

// WeightGradients returns the accumulated weight gradients.
func (d *Dense) WeightGradients() []float64 {
	return d.grad[:d.inSize*d.outSize]
}

// BiasGradients returns the accumulated bias gradients.
func (d *Dense) BiasGradients() []float64 {
	return d.grad[d.inSize*d.outSize:]
}

// Init draws the weights with σ chosen by kind (InitAuto resolves against the
// layer's activation) and sets every bias to BiasInit.
func (d *Dense) Init(src rand.Source, kind InitKind, dist Distribution) {
	FillRandom(d.Weights(), src, dist, Sigma(kind.Resolve(d.activation), d.inSize))
	FillConst(d.Biases(), BiasInit)
}

// Forward computes act(W·x + b) and retains x as the last input.
func (d *Dense) Forward(input []float64) []float64 {
	checkSize("dense forward", d.name, len(input), d.inSize)
	d.lastInput = input
	d.backend.DenseForward(d.z, input, d.Weights(), d.Biases(), d.inSize, d.outSize)
	d.activation.forward(d.backend, d.output, d.z)
	return d.output
}

// Reverse accumulates weight and bias gradients for the upstream gradient
// and returns dL/dx. The returned slice is overwritten by the next Reverse.
func (d *Dense) Reverse(grad []float64) []float64 {
	checkSize("dense reverse", d.name, len(grad), d.outSize)
	if d.lastInput == nil && d.inSize > 0 {
		panic("dense reverse " + d.name + ": called before forward")
	}
	d.activation.backward(d.backend, d.dz, d.z, d.output, grad)
	d.backend.DenseBackward(d.dx, d.WeightGradients(), d.BiasGradients(),
		d.lastInput, d.Weights(), d.dz, d.inSize, d.outSize)
	return d.dx
}

// Clone returns a deep copy sharing only the stateless backend.
func (d *Dense) Clone() Layer {
	return &Dense{
		base:       d.cloneBase(),
		Parameters: d.Parameters.clone(),
		activation: d.activation,
		backend:    d.backend,
		z:          append([]float64(nil), d.z...),
		dz:         make([]float64, d.outSize),
		dx:         make([]float64, d.inSize),
	}
}
