package fnn_test

import (
	"math"
	"strings"
	"testing"

	"github.com/born-ml/backprop/internal/fnn"
	"github.com/born-ml/backprop/internal/nn"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const netYAML = `
name: xor
input_size: 2
layers:
  - name: hidden
    size: 8
    activation: tanh
  - size: 2
    activation: softmax
loss: cce
optimizer: gd
init: xavier
distribution: uniform
kernels: vectorized
parallelization: thread_per_data_batch
workers: 3
seed: 99
`

func xorDataset(t *testing.T) *fnn.SliceDataset {
	t.Helper()
	features := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	labels := [][]float64{{1, 0}, {0, 1}, {0, 1}, {1, 0}}
	return must.M1(fnn.NewSliceDataset(features, labels))
}

func TestLoadConfig(t *testing.T) {
	cfg, err := fnn.LoadConfig(strings.NewReader(netYAML))
	require.NoError(t, err)

	assert.Equal(t, "xor", cfg.Name)
	assert.Equal(t, 2, cfg.InputSize)
	require.Len(t, cfg.Layers, 2)
	assert.Equal(t, fnn.LayerDescriptor{Name: "hidden", Size: 8, Activation: fnn.ActivationTanH}, cfg.Layers[0])
	assert.Equal(t, fnn.ActivationSoftmax, cfg.Layers[1].Activation)
	assert.Equal(t, fnn.LossCCE, cfg.Loss)
	assert.Equal(t, fnn.OptimizerGradientDescent, cfg.Optimizer)
	assert.Equal(t, fnn.InitXavier, cfg.Init)
	assert.Equal(t, fnn.DistributionUniform, cfg.Distribution)
	assert.Equal(t, fnn.KernelVectorized, cfg.Kernels)
	assert.Equal(t, fnn.ThreadPerDataBatch, cfg.Parallelization)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, uint64(99), cfg.Seed)

	data, err := cfg.Marshal()
	require.NoError(t, err)
	again, err := fnn.LoadConfig(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown activation": "input_size: 2\nlayers: [{size: 2, activation: swish}]\n",
		"unknown key":        "input_size: 2\nlayers: [{size: 2}]\nlearning_rate: 3\n",
		"no layers":          "input_size: 2\n",
		"bad size":           "input_size: 2\nlayers: [{size: 0}]\n",
		"no input":           "layers: [{size: 2}]\n",
		"bad parallel":       "input_size: 2\nlayers: [{size: 2}]\nparallelization: gpu\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := fnn.LoadConfig(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "relu", fnn.ActivationReLU.String())
	assert.Equal(t, "none", fnn.ActivationNone.String())
	assert.Equal(t, "mse", fnn.LossMSE.String())
	assert.Equal(t, "adam", fnn.OptimizerAdam.String())
	assert.Equal(t, "kaiming", fnn.InitKaiming.String())
	assert.Equal(t, "thread_per_data_entry", fnn.ThreadPerDataEntry.String())
	assert.Equal(t, "threaded", fnn.KernelThreaded.String())
	assert.Equal(t, "ActivationType(42)", fnn.ActivationType(42).String())

	var level fnn.ParallelizationLevel
	require.NoError(t, level.UnmarshalText([]byte("Thread-Per-Data-Entry")))
	assert.Equal(t, fnn.ThreadPerDataEntry, level)
	assert.Error(t, level.UnmarshalText([]byte("gpu")))

	text, err := fnn.KernelVectorized.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "vectorized", string(text))
	_, err = fnn.LossType(9).MarshalText()
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	net, err := fnn.Build(fnn.Config{
		InputSize: 4,
		Layers: []fnn.LayerDescriptor{
			{Size: 8, Activation: fnn.ActivationReLU},
			{Size: 3, Activation: fnn.ActivationNone},
		},
	})
	require.NoError(t, err)

	m := net.Model()
	assert.Equal(t, 4, m.InputSize())
	assert.Equal(t, 3, m.OutputSize())
	assert.Equal(t, 4*8+8+8*3+3, m.ParamCount())
	assert.Nil(t, m.Loss(), "loss is added by Compile")
	assert.False(t, net.Compiled())
	assert.Positive(t, net.Config().Workers)
	assert.Equal(t, "fnn", net.Config().Name)

	dense := m.Layers()[1].(*nn.Dense)
	assert.Equal(t, nn.ActivationLinear, dense.Activation())

	_, err = fnn.Build(fnn.Config{InputSize: 4})
	assert.Error(t, err)
}

func TestCompile(t *testing.T) {
	net := must.M1(fnn.Build(fnn.Config{
		InputSize: 2,
		Layers:    []fnn.LayerDescriptor{{Size: 1, Activation: fnn.ActivationLinear}},
		Loss:      fnn.LossMSE,
		Optimizer: fnn.OptimizerAdam,
		Seed:      5,
	}))
	require.NoError(t, net.Compile(0, 0))
	assert.True(t, net.Compiled())
	assert.Equal(t, 1, net.BatchSize())
	assert.Equal(t, fnn.DefaultLearningRate, net.Optimizer().LR())
	assert.Equal(t, uint64(5), net.Model().Seed())
	assert.IsType(t, &nn.MSELoss{}, net.Model().Loss())

	require.NoError(t, net.Compile(1, 0.5))
	assert.Equal(t, 0.5, net.Optimizer().LR())
	assert.Error(t, net.Compile(4, 0.5), "batch size cannot change")
}

func TestFit_LearnsXOR(t *testing.T) {
	cfg := must.M1(fnn.LoadConfig(strings.NewReader(netYAML)))
	cfg.Parallelization = fnn.Sequential
	net := must.M1(fnn.Build(cfg))
	ds := xorDataset(t)

	var epochs int
	history, err := net.Fit(ds, fnn.FitOptions{
		Epochs:    500,
		BatchSize: 4,
		LR:        0.5,
		OnEpoch:   func(fnn.EpochStats) { epochs++ },
	})
	require.NoError(t, err)
	require.Len(t, history.Epochs, 500)
	assert.Equal(t, 500, epochs)
	assert.Equal(t, 1, history.Last().Batches)
	assert.Equal(t, 4, history.Last().Score.Samples())
	assert.Less(t, history.Last().AvgLoss(), history.Epochs[0].AvgLoss())

	preds, err := net.Predict(ds)
	require.NoError(t, err)
	require.Len(t, preds, 4)
	for _, p := range preds {
		assert.InDelta(t, 1.0, p[0]+p[1], 1e-9, "softmax output")
	}

	score, err := net.Evaluate(ds)
	require.NoError(t, err)
	assert.Equal(t, 4, score.Samples())
	assert.False(t, math.IsNaN(score.AvgLoss()))
}

// TestFit_ParallelMatchesSequential trains the same network under every
// parallelization level and compares the parameters.
func TestFit_ParallelMatchesSequential(t *testing.T) {
	features := make([][]float64, 24)
	labels := make([][]float64, 24)
	for i := range features {
		x := float64(i)/24 - 0.5
		features[i] = []float64{x, x * x, math.Sin(3 * x)}
		labels[i] = []float64{2*x - 1, x * x}
	}
	ds := must.M1(fnn.NewSliceDataset(features, labels))

	train := func(level fnn.ParallelizationLevel, workers int) ([]float64, fnn.History) {
		net := must.M1(fnn.Build(fnn.Config{
			InputSize: 3,
			Layers: []fnn.LayerDescriptor{
				{Size: 6, Activation: fnn.ActivationELU},
				{Size: 2, Activation: fnn.ActivationLinear},
			},
			Loss:            fnn.LossMSE,
			Parallelization: level,
			Workers:         workers,
			Seed:            1234,
		}))
		history, err := net.Fit(ds, fnn.FitOptions{Epochs: 10, BatchSize: 5, LR: 0.05})
		require.NoError(t, err)

		var params []float64
		for _, l := range net.Model().Layers() {
			params = append(params, l.Params()...)
		}
		return params, history
	}

	want, wantHistory := train(fnn.Sequential, 1)
	for _, tc := range []struct {
		level   fnn.ParallelizationLevel
		workers int
	}{
		{fnn.ThreadPerDataEntry, 3},
		{fnn.ThreadPerDataEntry, 8},
		{fnn.ThreadPerDataBatch, 2},
		{fnn.ThreadPerDataBatch, 7},
	} {
		got, history := train(tc.level, tc.workers)
		assert.InDeltaSlice(t, want, got, 1e-9, "%s with %d workers", tc.level, tc.workers)
		require.Len(t, history.Epochs, len(wantHistory.Epochs))
		for i := range history.Epochs {
			assert.Equal(t, 5, history.Epochs[i].Batches)
			assert.Equal(t, 24, history.Epochs[i].Score.Samples())
			assert.InDelta(t, wantHistory.Epochs[i].AvgLoss(), history.Epochs[i].AvgLoss(), 1e-9)
		}
	}
}

func TestFit_Errors(t *testing.T) {
	net := must.M1(fnn.Build(fnn.Config{
		InputSize: 2,
		Layers:    []fnn.LayerDescriptor{{Size: 2, Activation: fnn.ActivationSoftmax}},
		Seed:      1,
	}))

	wrongFeatures := must.M1(fnn.NewSliceDataset([][]float64{{1, 2, 3}}, [][]float64{{1, 0}}))
	_, err := net.Fit(wrongFeatures, fnn.FitOptions{})
	assert.Error(t, err)

	wrongLabels := must.M1(fnn.NewSliceDataset([][]float64{{1, 2}}, [][]float64{{1, 0, 0}}))
	_, err = net.Fit(wrongLabels, fnn.FitOptions{})
	assert.Error(t, err)

	empty := must.M1(fnn.NewSliceDataset(nil, nil))
	_, err = net.Fit(empty, fnn.FitOptions{})
	assert.Error(t, err)

	_, err = net.Predict(wrongFeatures)
	assert.Error(t, err)
}

func TestPredictBeforeCompile(t *testing.T) {
	net := must.M1(fnn.Build(fnn.Config{
		InputSize: 2,
		Layers:    []fnn.LayerDescriptor{{Size: 2}},
	}))
	_, err := net.Predict(xorDataset(t))
	assert.Error(t, err)
	_, err = net.Evaluate(xorDataset(t))
	assert.Error(t, err)
}

func TestFit_ShuffleIsSeeded(t *testing.T) {
	run := func() []float64 {
		cfg := must.M1(fnn.LoadConfig(strings.NewReader(netYAML)))
		net := must.M1(fnn.Build(cfg))
		_, err := net.Fit(xorDataset(t), fnn.FitOptions{Epochs: 20, LR: 0.1, Shuffle: true})
		require.NoError(t, err)
		return append([]float64(nil), net.Model().Layers()[0].Params()...)
	}
	assert.Equal(t, run(), run())
}
