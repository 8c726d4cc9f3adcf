package cpu

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Epsilon is the lower clamp applied to predictions before taking a
// logarithm or dividing by them.
const Epsilon = 0x1p-52

// CrossEntropy returns −Σ y_i·log(max(ŷ_i, ε)).
func (cpu *CPUBackend) CrossEntropy(y, yHat []float64) float64 {
	checkLen("cross entropy", "y_hat", len(yHat), len(y))
	return cpu.sumOver(len(y), func(start, end int) float64 {
		loss := 0.0
		for i := start; i < end; i++ {
			loss += CrossEntropyScalar(y[i], yHat[i])
		}
		return loss
	})
}

// CrossEntropyScalar returns −y·log(max(ŷ, ε)).
func CrossEntropyScalar(y, yHat float64) float64 {
	return -y * math.Log(max(yHat, Epsilon))
}

// CrossEntropyDerivative computes dst_i = norm·(−y_i / max(ŷ_i, ε)).
func (cpu *CPUBackend) CrossEntropyDerivative(dst, y, yHat []float64, norm float64) {
	checkLen("cross entropy derivative", "y_hat", len(yHat), len(y))
	checkLen("cross entropy derivative", "dst", len(dst), len(y))
	cpu.rangeOver(len(y), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = CrossEntropyDerivativeScalar(y[i], yHat[i], norm)
		}
	})
}

// CrossEntropyDerivativeScalar returns norm·(−y / max(ŷ, ε)).
func CrossEntropyDerivativeScalar(y, yHat, norm float64) float64 {
	return norm * (-y / max(yHat, Epsilon))
}

// MSE returns the mean of (y_i − ŷ_i)². It returns 0 for empty inputs.
func (cpu *CPUBackend) MSE(y, yHat []float64) float64 {
	checkLen("mse", "y_hat", len(yHat), len(y))
	if len(y) == 0 {
		return 0
	}
	if cpu.strategy == Vectorized {
		d := floats.Distance(y, yHat, 2)
		return d * d / float64(len(y))
	}
	sum := cpu.sumOver(len(y), func(start, end int) float64 {
		s := 0.0
		for i := start; i < end; i++ {
			d := y[i] - yHat[i]
			s += d * d
		}
		return s
	})
	return sum / float64(len(y))
}

// MSEDerivative computes dst_i = norm·2(ŷ_i − y_i).
// The 1/n factor of the mean is not applied; norm carries the batch scale.
func (cpu *CPUBackend) MSEDerivative(dst, y, yHat []float64, norm float64) {
	checkLen("mse derivative", "y_hat", len(yHat), len(y))
	checkLen("mse derivative", "dst", len(dst), len(y))
	cpu.rangeOver(len(y), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = SquaredErrorDerivative(y[i], yHat[i], norm)
		}
	})
}

// SquaredErrorDerivative returns norm·2(ŷ − y).
func SquaredErrorDerivative(y, yHat, norm float64) float64 {
	return norm * 2 * (yHat - y)
}

// Max returns the largest element of v and its first index.
// It returns (NaN, -1) for an empty slice.
func Max(v []float64) (value float64, index int) {
	if len(v) == 0 {
		return math.NaN(), -1
	}
	index = floats.MaxIdx(v)
	return v[index], index
}

// ArgMax returns the first index of the largest element of v, or -1 if v is empty.
func ArgMax(v []float64) int {
	_, idx := Max(v)
	return idx
}
