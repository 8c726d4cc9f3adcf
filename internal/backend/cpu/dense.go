package cpu

import (
	"gonum.org/v1/gonum/floats"
)

// DenseForward computes dst = W·x + b.
//
// W is row-major with outSize rows of inSize columns. dst must not alias x.
// Zero-sized transforms are no-ops.
func (cpu *CPUBackend) DenseForward(dst, x, w, b []float64, inSize, outSize int) {
	if inSize == 0 || outSize == 0 {
		return
	}
	checkLen("dense forward", "x", len(x), inSize)
	checkLen("dense forward", "w", len(w), inSize*outSize)
	checkLen("dense forward", "b", len(b), outSize)
	checkLen("dense forward", "dst", len(dst), outSize)

	if cpu.strategy == Vectorized {
		for o := range outSize {
			dst[o] = b[o] + floats.Dot(w[o*inSize:(o+1)*inSize], x)
		}
		return
	}

	cpu.rangeOver(outSize, func(start, end int) {
		denseForwardRows(dst, x, w, b, inSize, start, end)
	})
}

func denseForwardRows(dst, x, w, b []float64, inSize, start, end int) {
	for o := start; o < end; o++ {
		row := w[o*inSize : (o+1)*inSize]
		sum := b[o]
		for i, xi := range x {
			sum += row[i] * xi
		}
		dst[o] = sum
	}
}

// DenseBackward back-propagates the upstream gradient grad through y = W·x + b.
//
// Weight and bias gradients accumulate:
//
//	dw[o,i] += grad[o] * x[i]
//	db[o]   += grad[o]
//
// The input gradient overwrites dx:
//
//	dx[i] = Σ_o w[o,i] * grad[o]
func (cpu *CPUBackend) DenseBackward(dx, dw, db, x, w, grad []float64, inSize, outSize int) {
	if inSize == 0 || outSize == 0 {
		return
	}
	checkLen("dense backward", "x", len(x), inSize)
	checkLen("dense backward", "w", len(w), inSize*outSize)
	checkLen("dense backward", "dw", len(dw), inSize*outSize)
	checkLen("dense backward", "db", len(db), outSize)
	checkLen("dense backward", "dx", len(dx), inSize)
	checkLen("dense backward", "grad", len(grad), outSize)

	switch cpu.strategy {
	case Vectorized:
		floats.Add(db, grad)
		clear(dx)
		for o, g := range grad {
			floats.AddScaled(dw[o*inSize:(o+1)*inSize], g, x)
			floats.AddScaled(dx, g, w[o*inSize:(o+1)*inSize])
		}
	case Threaded:
		// Rows of dw are disjoint per output, columns of dx are disjoint per input.
		cpu.rangeOver(outSize, func(start, end int) {
			for o := start; o < end; o++ {
				g := grad[o]
				db[o] += g
				row := dw[o*inSize : (o+1)*inSize]
				for i, xi := range x {
					row[i] += g * xi
				}
			}
		})
		cpu.rangeOver(inSize, func(start, end int) {
			for i := start; i < end; i++ {
				sum := 0.0
				for o, g := range grad {
					sum += w[o*inSize+i] * g
				}
				dx[i] = sum
			}
		})
	default:
		clear(dx)
		for o, g := range grad {
			db[o] += g
			row := w[o*inSize : (o+1)*inSize]
			dRow := dw[o*inSize : (o+1)*inSize]
			for i, xi := range x {
				dRow[i] += g * xi
				dx[i] += row[i] * g
			}
		}
	}
}

// MatVec computes dst = M·v for a row-major rows×cols matrix, without bias.
func (cpu *CPUBackend) MatVec(dst, m, v []float64, rows, cols int) {
	if rows == 0 || cols == 0 {
		return
	}
	checkLen("matvec", "m", len(m), rows*cols)
	checkLen("matvec", "v", len(v), cols)
	checkLen("matvec", "dst", len(dst), rows)

	if cpu.strategy == Vectorized {
		for r := range rows {
			dst[r] = floats.Dot(m[r*cols:(r+1)*cols], v)
		}
		return
	}
	cpu.rangeOver(rows, func(start, end int) {
		for r := start; r < end; r++ {
			row := m[r*cols : (r+1)*cols]
			sum := 0.0
			for c, vc := range v {
				sum += row[c] * vc
			}
			dst[r] = sum
		}
	})
}

// MatTVecAdd accumulates dst += Mᵀ·v for a row-major rows×cols matrix.
func (cpu *CPUBackend) MatTVecAdd(dst, m, v []float64, rows, cols int) {
	if rows == 0 || cols == 0 {
		return
	}
	checkLen("matTvec", "m", len(m), rows*cols)
	checkLen("matTvec", "v", len(v), rows)
	checkLen("matTvec", "dst", len(dst), cols)

	if cpu.strategy == Vectorized {
		for r, vr := range v {
			floats.AddScaled(dst, vr, m[r*cols:(r+1)*cols])
		}
		return
	}
	cpu.rangeOver(cols, func(start, end int) {
		for c := start; c < end; c++ {
			sum := 0.0
			for r, vr := range v {
				sum += m[r*cols+c] * vr
			}
			dst[c] += sum
		}
	})
}

// OuterAdd accumulates the outer product dst += a·bᵀ into a row-major
// len(a)×len(b) matrix.
func (cpu *CPUBackend) OuterAdd(dst, a, b []float64) {
	rows, cols := len(a), len(b)
	if rows == 0 || cols == 0 {
		return
	}
	checkLen("outer", "dst", len(dst), rows*cols)

	if cpu.strategy == Vectorized {
		for r, ar := range a {
			floats.AddScaled(dst[r*cols:(r+1)*cols], ar, b)
		}
		return
	}
	cpu.rangeOver(rows, func(start, end int) {
		for r := start; r < end; r++ {
			ar := a[r]
			row := dst[r*cols : (r+1)*cols]
			for c, bc := range b {
				row[c] += ar * bc
			}
		}
	})
}
