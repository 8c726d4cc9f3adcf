package nn_test

import (
	"math"
	"testing"

	"github.com/born-ml/backprop/internal/nn"
	"github.com/stretchr/testify/assert"
)

func TestSigma(t *testing.T) {
	assert.InDelta(t, 0.5, nn.Sigma(nn.InitXavier, 4), 1e-15)
	assert.InDelta(t, math.Sqrt(0.5), nn.Sigma(nn.InitKaiming, 4), 1e-15)
	assert.InDelta(t, 0.5, nn.Sigma(nn.InitAuto, 4), 1e-15)
	assert.Zero(t, nn.Sigma(nn.InitXavier, 0))
}

func TestFillRandom(t *testing.T) {
	const n = 20000
	sigma := 0.5

	normal := make([]float64, n)
	nn.FillRandom(normal, newSource(1), nn.Normal, sigma)
	uniform := make([]float64, n)
	nn.FillRandom(uniform, newSource(1), nn.Uniform, sigma)

	for name, v := range map[string][]float64{"normal": normal, "uniform": uniform} {
		mean, variance := 0.0, 0.0
		for _, x := range v {
			mean += x
		}
		mean /= n
		for _, x := range v {
			variance += (x - mean) * (x - mean)
		}
		variance /= n
		assert.InDelta(t, 0, mean, 0.02, name)
		assert.InDelta(t, sigma*sigma, variance, 0.02, name)
	}

	bound := sigma * math.Sqrt(3)
	for _, x := range uniform {
		assert.LessOrEqual(t, math.Abs(x), bound)
	}

	zero := []float64{1, 2}
	nn.FillRandom(zero, newSource(1), nn.Normal, 0)
	assert.Equal(t, []float64{0, 0}, zero)
}

func TestEnumNames(t *testing.T) {
	assert.Equal(t, "xavier", nn.InitXavier.String())
	assert.Equal(t, "kaiming", nn.InitKaiming.String())
	assert.Equal(t, "auto", nn.InitAuto.String())
	assert.Equal(t, "normal", nn.Normal.String())
	assert.Equal(t, "uniform", nn.Uniform.String())
	assert.Equal(t, "InitKind(9)", nn.InitKind(9).String())
}
