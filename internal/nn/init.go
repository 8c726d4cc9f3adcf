package nn

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// InitKind selects the variance rule used to initialize weights.
type InitKind int

const (
	// InitAuto picks Kaiming for ReLU layers and Xavier otherwise.
	InitAuto InitKind = iota
	// InitXavier uses variance 1/fanIn.
	InitXavier
	// InitKaiming uses variance 2/fanIn (He initialization).
	InitKaiming
)

// String returns the initializer name.
func (k InitKind) String() string {
	switch k {
	case InitAuto:
		return "auto"
	case InitXavier:
		return "xavier"
	case InitKaiming:
		return "kaiming"
	default:
		return fmt.Sprintf("InitKind(%d)", int(k))
	}
}

// Resolve replaces InitAuto with the concrete rule for a layer using act.
func (k InitKind) Resolve(act Activation) InitKind {
	if k != InitAuto {
		return k
	}
	if act == ActivationReLU {
		return InitKaiming
	}
	return InitXavier
}

// Distribution is the probability distribution weights are drawn from.
type Distribution int

const (
	// Normal draws from N(0, σ²).
	Normal Distribution = iota
	// Uniform draws from U(-σ√3, σ√3), which has the same variance σ².
	Uniform
)

// String returns the distribution name.
func (d Distribution) String() string {
	switch d {
	case Normal:
		return "normal"
	case Uniform:
		return "uniform"
	default:
		return fmt.Sprintf("Distribution(%d)", int(d))
	}
}

// BiasInit is the constant every bias starts from.
const BiasInit = 0.01

// Sigma returns the standard deviation of the weights of a layer with
// fanIn inputs under kind. InitAuto is treated as Xavier.
//
// Xavier: σ = sqrt(1/fanIn). Kaiming: σ = sqrt(2/fanIn).
func Sigma(kind InitKind, fanIn int) float64 {
	if fanIn <= 0 {
		return 0
	}
	if kind == InitKaiming {
		return math.Sqrt(2 / float64(fanIn))
	}
	return math.Sqrt(1 / float64(fanIn))
}

// FillRandom overwrites dst with samples of zero mean and standard deviation
// sigma from dist, seeded by src.
func FillRandom(dst []float64, src rand.Source, dist Distribution, sigma float64) {
	if sigma == 0 {
		clear(dst)
		return
	}
	var sampler interface{ Rand() float64 }
	switch dist {
	case Uniform:
		bound := sigma * math.Sqrt(3)
		sampler = distuv.Uniform{Min: -bound, Max: bound, Src: src}
	default:
		sampler = distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
	}
	for i := range dst {
		dst[i] = sampler.Rand()
	}
}

// FillConst overwrites dst with v.
func FillConst(dst []float64, v float64) {
	for i := range dst {
		dst[i] = v
	}
}
