package cpu

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// ReLU computes dst_i = max(0, src_i). dst may alias src.
func (cpu *CPUBackend) ReLU(dst, src []float64) {
	cpu.apply("relu", dst, src, func(x float64) float64 {
		return max(0, x)
	})
}

// ReLUDerivative computes dst_i = 1 if src_i > 0 else 0, from the
// pre-activation input.
func (cpu *CPUBackend) ReLUDerivative(dst, src []float64) {
	cpu.apply("relu derivative", dst, src, func(x float64) float64 {
		if x > 0 {
			return 1
		}
		return 0
	})
}

// ELU computes dst_i = src_i if src_i > 0 else alpha·(e^src_i − 1).
func (cpu *CPUBackend) ELU(dst, src []float64, alpha float64) {
	cpu.apply("elu", dst, src, func(x float64) float64 {
		if x > 0 {
			return x
		}
		return alpha * math.Expm1(x)
	})
}

// ELUDerivative computes dst_i = 1 if src_i > 0 else alpha·e^src_i.
func (cpu *CPUBackend) ELUDerivative(dst, src []float64, alpha float64) {
	cpu.apply("elu derivative", dst, src, func(x float64) float64 {
		if x > 0 {
			return 1
		}
		return alpha * math.Exp(x)
	})
}

// Sigmoid computes dst_i = 1 / (1 + e^-src_i).
func (cpu *CPUBackend) Sigmoid(dst, src []float64) {
	cpu.apply("sigmoid", dst, src, sigmoid)
}

// SigmoidDerivative computes dst_i = σ(src_i)·(1 − σ(src_i)).
func (cpu *CPUBackend) SigmoidDerivative(dst, src []float64) {
	cpu.apply("sigmoid derivative", dst, src, func(x float64) float64 {
		s := sigmoid(x)
		return s * (1 - s)
	})
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Tanh computes dst_i = tanh(src_i).
func (cpu *CPUBackend) Tanh(dst, src []float64) {
	cpu.apply("tanh", dst, src, math.Tanh)
}

// TanhDerivative computes dst_i = 1 − tanh²(src_i).
func (cpu *CPUBackend) TanhDerivative(dst, src []float64) {
	cpu.apply("tanh derivative", dst, src, func(x float64) float64 {
		t := math.Tanh(x)
		return 1 - t*t
	})
}

// Linear copies src into dst.
func (cpu *CPUBackend) Linear(dst, src []float64) {
	checkLen("linear", "dst", len(dst), len(src))
	copy(dst, src)
}

// LinearDerivative fills dst with ones.
func (cpu *CPUBackend) LinearDerivative(dst, src []float64) {
	checkLen("linear derivative", "dst", len(dst), len(src))
	for i := range dst {
		dst[i] = 1
	}
}

// Softmax computes dst_i = e^(src_i − max) / Σ_j e^(src_j − max).
// dst may alias src.
func (cpu *CPUBackend) Softmax(dst, src []float64) {
	if len(src) == 0 {
		return
	}
	checkLen("softmax", "dst", len(dst), len(src))

	m := floats.Max(src)
	cpu.apply("softmax", dst, src, func(x float64) float64 {
		return math.Exp(x - m)
	})
	floats.Scale(1/floats.Sum(dst), dst)
}

// SoftmaxDerivative computes the Jacobian-vector product of softmax with an
// upstream gradient g, given the already normalized output s:
//
//	dst_i = Σ_j J_ij g_j = s_i (g_i − Σ_j s_j g_j)
//
// It panics if dst aliases s.
func (cpu *CPUBackend) SoftmaxDerivative(dst, s, g []float64) {
	if len(s) == 0 {
		return
	}
	checkLen("softmax derivative", "dst", len(dst), len(s))
	checkLen("softmax derivative", "g", len(g), len(s))
	if aliased(dst, s) {
		panic("softmax derivative: destination aliases the softmax output")
	}

	dot := floats.Dot(s, g)
	cpu.rangeOver(len(s), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = s[i] * (g[i] - dot)
		}
	})
}

// SoftmaxJacobianSum computes the row sums of the softmax Jacobian from the
// already normalized output s:
//
//	dst_i = Σ_j (i == j ? s_i(1 − s_i) : −s_i s_j)
//
// It panics if dst aliases s.
func (cpu *CPUBackend) SoftmaxJacobianSum(dst, s []float64) {
	if len(s) == 0 {
		return
	}
	checkLen("softmax jacobian", "dst", len(dst), len(s))
	if aliased(dst, s) {
		panic("softmax jacobian: destination aliases the softmax output")
	}

	cpu.rangeOver(len(s), func(start, end int) {
		for i := start; i < end; i++ {
			si := s[i]
			sum := 0.0
			for j, sj := range s {
				if i == j {
					sum += si * (1 - si)
				} else {
					sum -= si * sj
				}
			}
			dst[i] = sum
		}
	})
}

// apply maps f over src into dst, partitioning the range when threaded.
func (cpu *CPUBackend) apply(op string, dst, src []float64, f func(float64) float64) {
	checkLen(op, "dst", len(dst), len(src))
	cpu.rangeOver(len(src), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = f(src[i])
		}
	})
}

// aliased reports whether a and b share their first element.
func aliased(a, b []float64) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	return &a[0] == &b[0]
}
