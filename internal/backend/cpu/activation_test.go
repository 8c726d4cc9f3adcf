package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var activationInput = []float64{-2, -1, 0, 1, 2}

func TestActivations(t *testing.T) {
	tests := []struct {
		name  string
		src   []float64
		apply func(b *CPUBackend, dst, src []float64)
		want  []float64
		delta float64
	}{
		{
			name:  "relu",
			src:   activationInput,
			apply: (*CPUBackend).ReLU,
			want:  []float64{0, 0, 0, 1, 2},
			delta: 1e-15,
		},
		{
			name:  "relu derivative",
			src:   activationInput,
			apply: (*CPUBackend).ReLUDerivative,
			want:  []float64{0, 0, 0, 1, 1},
			delta: 1e-15,
		},
		{
			name:  "elu",
			src:   activationInput,
			apply: func(b *CPUBackend, dst, src []float64) { b.ELU(dst, src, 1) },
			want:  []float64{-0.8646647167633873, -0.6321205588285577, 0, 1, 2},
			delta: 1e-12,
		},
		{
			name:  "elu derivative",
			src:   activationInput,
			apply: func(b *CPUBackend, dst, src []float64) { b.ELUDerivative(dst, src, 1) },
			want:  []float64{0.1353352832366127, 0.36787944117144233, 1, 1, 1},
			delta: 1e-12,
		},
		{
			name:  "tanh",
			src:   []float64{-10, 0, 1, 7, 1e4},
			apply: (*CPUBackend).Tanh,
			want:  []float64{-1, 0, 0.76159416, 0.99999834, 1},
			delta: 1e-8,
		},
		{
			name:  "tanh derivative",
			src:   []float64{-10, 0, 1, 7, 1e4},
			apply: (*CPUBackend).TanhDerivative,
			want:  []float64{8.24461455e-09, 1, 4.19974342e-01, 3.32610934e-06, 0},
			delta: 1e-8,
		},
		{
			name:  "sigmoid",
			src:   []float64{-10, 0, 1, 7, 1e4},
			apply: (*CPUBackend).Sigmoid,
			want:  []float64{4.5397868702434395e-05, 0.5, 0.7310585786300049, 0.9990889488055994, 1},
			delta: 1e-12,
		},
		{
			name:  "sigmoid derivative",
			src:   []float64{-10, 0, 1, 7, 1e4},
			apply: (*CPUBackend).SigmoidDerivative,
			want:  []float64{4.5395807735951673e-05, 0.25, 0.19661193324148185, 0.000910221180121784, 0},
			delta: 1e-12,
		},
		{
			name:  "softmax",
			src:   activationInput,
			apply: (*CPUBackend).Softmax,
			want:  []float64{0.01165623095604, 0.031684920796124, 0.086128544436269, 0.23412165725274, 0.63640864655883},
			delta: 1e-12,
		},
		{
			name:  "linear",
			src:   activationInput,
			apply: (*CPUBackend).Linear,
			want:  activationInput,
			delta: 0,
		},
		{
			name:  "linear derivative",
			src:   activationInput,
			apply: (*CPUBackend).LinearDerivative,
			want:  []float64{1, 1, 1, 1, 1},
			delta: 0,
		},
	}

	for _, tt := range tests {
		for name, backend := range allBackends() {
			t.Run(tt.name+"/"+name, func(t *testing.T) {
				dst := make([]float64, len(tt.src))
				tt.apply(backend, dst, tt.src)
				assert.InDeltaSlice(t, tt.want, dst, tt.delta)

				// In place.
				inPlace := append([]float64(nil), tt.src...)
				tt.apply(backend, inPlace, inPlace)
				assert.InDeltaSlice(t, tt.want, inPlace, tt.delta)
			})
		}
	}
}

func TestActivations_ZeroLengthIsNoop(t *testing.T) {
	for name, backend := range allBackends() {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				backend.ReLU(nil, nil)
				backend.Tanh(nil, nil)
				backend.Softmax(nil, nil)
				backend.SoftmaxDerivative(nil, nil, nil)
				backend.SoftmaxJacobianSum(nil, nil)
			})
		})
	}
}

func TestSoftmaxDerivative(t *testing.T) {
	s := []float64{0.2, 0.3, 0.5}
	g := []float64{1, 0, -1}
	// Σ s_j g_j = 0.2 - 0.5 = -0.3
	want := []float64{0.2 * 1.3, 0.3 * 0.3, 0.5 * -0.7}

	for name, backend := range allBackends() {
		t.Run(name, func(t *testing.T) {
			dst := make([]float64, 3)
			backend.SoftmaxDerivative(dst, s, g)
			assert.InDeltaSlice(t, want, dst, 1e-12)

			// A uniform upstream gradient is annihilated by the softmax Jacobian.
			backend.SoftmaxDerivative(dst, s, []float64{4, 4, 4})
			assert.InDeltaSlice(t, []float64{0, 0, 0}, dst, 1e-12)
		})
	}
}

func TestSoftmaxJacobianSum(t *testing.T) {
	s := []float64{0.2, 0.3, 0.5}
	// Rows of the softmax Jacobian sum to s_i(1 - Σ s_j) = 0.
	for name, backend := range allBackends() {
		t.Run(name, func(t *testing.T) {
			dst := make([]float64, 3)
			backend.SoftmaxJacobianSum(dst, s)
			assert.InDeltaSlice(t, []float64{0, 0, 0}, dst, 1e-12)
		})
	}

	dst := make([]float64, 2)
	New().SoftmaxJacobianSum(dst, []float64{0.5, 0.25})
	// i=0: 0.5*0.5 - 0.5*0.25 = 0.125, i=1: 0.25*0.75 - 0.25*0.5 = 0.0625
	assert.InDeltaSlice(t, []float64{0.125, 0.0625}, dst, 1e-12)
}

func TestSoftmaxDerivative_AliasPanics(t *testing.T) {
	backend := New()
	s := []float64{0.25, 0.75}
	assert.Panics(t, func() { backend.SoftmaxDerivative(s, s, []float64{1, 1}) })
	assert.Panics(t, func() { backend.SoftmaxJacobianSum(s, s) })
}
