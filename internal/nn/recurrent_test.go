package nn_test

import (
	"testing"

	"github.com/born-ml/backprop/internal/nn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecurrent_Shapes(t *testing.T) {
	r := nn.NewRecurrent("recurrent_layer_test", 10, 6, 20, 1, nil)
	assert.Equal(t, 10, r.InputSize())
	assert.Equal(t, 20, r.OutputSize())
	assert.Equal(t, 6*10+6*6+6+20*6+20, r.ParamCount())
	assert.Len(t, r.LastOutput(), r.OutputSize())

	r.SetTimeSteps(2)
	assert.Equal(t, 2, r.TimeSteps())
	assert.Equal(t, 20, r.InputSize())
	assert.Len(t, r.LastOutput(), 2*r.StepOutputSize())
	assert.Equal(t, 6*10+6*6+6+20*6+20, r.ParamCount(), "time steps do not change parameters")

	empty := nn.NewRecurrent("empty", 0, 0, 0, 0, nil)
	assert.Equal(t, 0, empty.ParamCount())
	assert.Nil(t, empty.Param(0))
	assert.Empty(t, empty.Forward(nil))
}

func TestRecurrent_SetInitialHiddenState(t *testing.T) {
	r := nn.NewRecurrent("r", 2, 3, 1, 1, nil)

	err := r.SetInitialHiddenState([]float64{1, 2, 3, 4})
	require.Error(t, err)
	assert.True(t, errors.Is(err, nn.ErrHiddenStateSize))

	require.NoError(t, r.SetInitialHiddenState([]float64{0.5}))
	assert.Equal(t, []float64{0.5, 0, 0}, r.HiddenState())

	r.ResetHiddenState()
	assert.Equal(t, []float64{0, 0, 0}, r.HiddenState())
}

// TestRecurrent_MatchesDenseChainForOneStep validates the recurrent layer
// against Dense(tanh) followed by Dense(linear) when T == 1 and the starting
// hidden state is zero.
func TestRecurrent_MatchesDenseChainForOneStep(t *testing.T) {
	const in, hidden, out = 3, 4, 2

	r := nn.NewRecurrent("r", in, hidden, out, 1, nil)
	r.Init(newSource(21), nn.InitXavier, nn.Normal)

	wih := r.Params()[:hidden*in]
	bh := r.Params()[hidden*in+hidden*hidden : hidden*in+hidden*hidden+hidden]
	who := r.Params()[hidden*in+hidden*hidden+hidden : hidden*in+hidden*hidden+hidden+out*hidden]
	bo := r.Params()[hidden*in+hidden*hidden+hidden+out*hidden:]

	d1 := nn.NewDense("d1", in, hidden, nn.ActivationTanh, nil)
	d2 := nn.NewDense("d2", hidden, out, nn.ActivationLinear, nil)
	copy(d1.Weights(), wih)
	copy(d1.Biases(), bh)
	copy(d2.Weights(), who)
	copy(d2.Biases(), bo)

	x := randomVector(newSource(22), in)
	g := randomVector(newSource(23), out)

	want := d2.Forward(d1.Forward(x))
	got := r.Forward(x)
	assert.InDeltaSlice(t, want, got, 1e-12)

	wantDx := d1.Reverse(d2.Reverse(g))
	gotDx := r.Reverse(g)
	assert.InDeltaSlice(t, wantDx, gotDx, 1e-12)

	grads := r.Gradients()
	assert.InDeltaSlice(t, d1.WeightGradients(), grads[:hidden*in], 1e-12)
	assert.InDeltaSlice(t, d1.BiasGradients(), grads[hidden*in+hidden*hidden:hidden*in+hidden*hidden+hidden], 1e-12)
	assert.InDeltaSlice(t, d2.WeightGradients(), grads[hidden*in+hidden*hidden+hidden:hidden*in+hidden*hidden+hidden+out*hidden], 1e-12)
	assert.InDeltaSlice(t, d2.BiasGradients(), grads[hidden*in+hidden*hidden+hidden+out*hidden:], 1e-12)

	// h0 is zero, so W_hh receives no gradient on a single step.
	for _, gw := range grads[hidden*in : hidden*in+hidden*hidden] {
		assert.Zero(t, gw)
	}
}

func TestRecurrent_BPTTGradients(t *testing.T) {
	r := nn.NewRecurrent("r", 2, 3, 2, 4, nil)
	r.Init(newSource(31), nn.InitXavier, nn.Normal)
	x := randomVector(newSource(32), r.InputSize())
	u := randomVector(newSource(33), r.OutputSize())
	checkGradients(t, r, x, u, 1e-5)
}

func TestRecurrent_CarriesStateAcrossForward(t *testing.T) {
	r := nn.NewRecurrent("r", 1, 2, 1, 2, nil)
	r.Init(newSource(41), nn.InitXavier, nn.Normal)
	x := []float64{0.3, -0.7}

	first := append([]float64(nil), r.Forward(x)...)
	carried := append([]float64(nil), r.HiddenState()...)
	assert.NotEqual(t, []float64{0, 0}, carried)

	second := r.Forward(x)
	assert.NotEqual(t, first, second, "second call starts from the carried state")

	r.ResetHiddenState()
	assert.InDeltaSlice(t, first, r.Forward(x), 1e-15)
}

func TestRecurrent_ReverseUsesStateOfLastForward(t *testing.T) {
	// Two forwards then one reverse must equal a gradient check seeded with
	// the carried state as initial state.
	r := nn.NewRecurrent("r", 2, 3, 1, 3, nil)
	r.Init(newSource(51), nn.InitXavier, nn.Normal)
	x := randomVector(newSource(52), r.InputSize())
	g := randomVector(newSource(53), r.OutputSize())

	r.Forward(x)
	h := append([]float64(nil), r.HiddenState()...)
	r.Forward(x)
	r.Reverse(g)
	got := append([]float64(nil), r.Gradients()...)

	ref := r.Clone().(*nn.Recurrent)
	for i := range ref.Gradients() {
		ref.Gradients()[i] = 0
	}
	require.NoError(t, ref.SetInitialHiddenState(h))
	ref.Forward(x)
	ref.Reverse(g)
	assert.InDeltaSlice(t, got, ref.Gradients(), 1e-12)
}

func TestRecurrent_CloneKeepsState(t *testing.T) {
	r := nn.NewRecurrent("r", 1, 2, 1, 1, nil)
	r.Init(newSource(61), nn.InitXavier, nn.Normal)
	r.Forward([]float64{1})

	c := r.Clone().(*nn.Recurrent)
	assert.Equal(t, r.HiddenState(), c.HiddenState())
	assert.Nil(t, c.LastInput())
	c.ResetHiddenState()
	assert.NotEqual(t, r.HiddenState(), c.HiddenState())
}
