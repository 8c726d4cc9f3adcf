package nn

import (
	"fmt"

	"github.com/born-ml/backprop/internal/backend/cpu"
	"github.com/pkg/errors"
)

// Activation is the nonlinearity applied by a Dense layer after its affine
// transform.
type Activation int

const (
	// ActivationLinear is the identity.
	ActivationLinear Activation = iota
	// ActivationReLU is max(0, x).
	ActivationReLU
	// ActivationELU is x for x > 0, ELUAlpha·(e^x − 1) otherwise.
	ActivationELU
	// ActivationSoftmax normalizes the outputs into a probability distribution.
	ActivationSoftmax
	// ActivationTanh is the hyperbolic tangent.
	ActivationTanh
	// ActivationSigmoid is the logistic function.
	ActivationSigmoid
)

// ELUAlpha is the saturation value of the ELU activation for x → −∞.
const ELUAlpha = 1.0

var activationNames = map[Activation]string{
	ActivationLinear:  "linear",
	ActivationReLU:    "relu",
	ActivationELU:     "elu",
	ActivationSoftmax: "softmax",
	ActivationTanh:    "tanh",
	ActivationSigmoid: "sigmoid",
}

// String returns the activation name.
func (a Activation) String() string {
	if name, ok := activationNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Activation(%d)", int(a))
}

// ParseActivation maps a name produced by String back to an Activation.
func ParseActivation(name string) (Activation, error) {
	for a, n := range activationNames {
		if n == name {
			return a, nil
		}
	}
	return ActivationLinear, errors.Errorf("unknown activation %q", name)
}

// forward writes act(z) into y. y may alias z.
func (a Activation) forward(backend *cpu.CPUBackend, y, z []float64) {
	switch a {
	case ActivationReLU:
		backend.ReLU(y, z)
	case ActivationELU:
		backend.ELU(y, z, ELUAlpha)
	case ActivationSoftmax:
		backend.Softmax(y, z)
	case ActivationTanh:
		backend.Tanh(y, z)
	case ActivationSigmoid:
		backend.Sigmoid(y, z)
	case ActivationLinear:
		backend.Linear(y, z)
	default:
		panic(fmt.Sprintf("activation forward: unsupported activation %d", int(a)))
	}
}

// backward writes dL/dz into dz given the pre-activation z, the activation
// output y and the upstream gradient g = dL/dy. dz must not alias y.
func (a Activation) backward(backend *cpu.CPUBackend, dz, z, y, g []float64) {
	switch a {
	case ActivationLinear:
		copy(dz, g)
		return
	case ActivationSoftmax:
		backend.SoftmaxDerivative(dz, y, g)
		return
	case ActivationReLU:
		backend.ReLUDerivative(dz, z)
	case ActivationELU:
		backend.ELUDerivative(dz, z, ELUAlpha)
	case ActivationTanh:
		backend.TanhDerivative(dz, z)
	case ActivationSigmoid:
		backend.SigmoidDerivative(dz, z)
	default:
		panic(fmt.Sprintf("activation backward: unsupported activation %d", int(a)))
	}
	for i, gi := range g {
		dz[i] *= gi
	}
}
