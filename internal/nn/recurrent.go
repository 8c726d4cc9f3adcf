package nn

import (
	"math/rand/v2"

	"github.com/born-ml/backprop/internal/backend/cpu"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

var _ Layer = (*Recurrent)(nil)

// ErrHiddenStateSize is returned when an initial hidden state is longer than
// the hidden size of a Recurrent layer.
var ErrHiddenStateSize = errors.New("initial hidden state exceeds hidden size")

// Recurrent is an Elman recurrent layer unrolled over a fixed number of time
// steps.
//
// For every step t of an input sequence x_0 … x_{T−1}:
//
//	h_t = tanh(W_ih·x_t + W_hh·h_{t−1} + b_h)
//	y_t = W_ho·h_t + b_o
//
// Forward consumes T·stepInput scalars and produces T·stepOutput scalars.
// The hidden state after the last step is carried into the next Forward
// until ResetHiddenState is called.
//
// Parameter layout: W_ih [H, I], W_hh [H, H], b_h [H], W_ho [O, H], b_o [O].
type Recurrent struct {
	base
	Parameters

	stepIn, hidden, stepOut int
	timeSteps               int
	backend                 *cpu.CPUBackend

	carry  []float64 // state carried across Forward calls
	h0     []float64 // carry as it was when the last Forward started
	states []float64 // h_t for every step, hidden × max(T, 1)
	tmp    []float64 // hidden scratch
	dh     []float64 // dL/dh_t
	dhNext []float64 // dL/dh_t arriving through W_hh from step t+1
	dhOut  []float64 // dL/dh_t arriving through W_ho
	dz     []float64 // dL/d(pre-activation)
	dx     []float64 // dL/dx for the whole sequence
}

// NewRecurrent creates a Recurrent layer with zeroed parameters and state.
//
// Parameters:
//   - name: Layer name
//   - stepIn: Input scalars per time step (I)
//   - hidden: Hidden state size (H)
//   - stepOut: Output scalars per time step (O)
//   - timeSteps: Number of unrolled steps (T)
//   - backend: Kernel backend; nil selects the sequential backend
func NewRecurrent(name string, stepIn, hidden, stepOut, timeSteps int, backend *cpu.CPUBackend) *Recurrent {
	if backend == nil {
		backend = cpu.New()
	}
	r := &Recurrent{
		base:       newBase(name, stepIn*timeSteps, stepOut*timeSteps),
		Parameters: NewParameters(hidden*stepIn + hidden*hidden + hidden + stepOut*hidden + stepOut),
		stepIn:     stepIn,
		hidden:     hidden,
		stepOut:    stepOut,
		backend:    backend,
		carry:      make([]float64, hidden),
		h0:         make([]float64, hidden),
		tmp:        make([]float64, hidden),
		dh:         make([]float64, hidden),
		dhNext:     make([]float64, hidden),
		dhOut:      make([]float64, hidden),
		dz:         make([]float64, hidden),
	}
	r.SetTimeSteps(timeSteps)
	return r
}

// HiddenSize returns H.
func (r *Recurrent) HiddenSize() int { return r.hidden }

// StepInputSize returns the input scalars per time step.
func (r *Recurrent) StepInputSize() int { return r.stepIn }

// StepOutputSize returns the output scalars per time step.
func (r *Recurrent) StepOutputSize() int { return r.stepOut }

// TimeSteps returns the number of unrolled steps.
func (r *Recurrent) TimeSteps() int { return r.timeSteps }

// SetTimeSteps changes the number of unrolled steps and resizes every
// time-indexed buffer. Parameters and the carried hidden state are kept.
func (r *Recurrent) SetTimeSteps(timeSteps int) {
	if timeSteps < 0 {
		timeSteps = 0
	}
	r.timeSteps = timeSteps
	r.inSize = r.stepIn * timeSteps
	r.outSize = r.stepOut * timeSteps
	r.states = make([]float64, r.hidden*max(timeSteps, 1))
	r.output = make([]float64, r.outSize)
	r.dx = make([]float64, r.inSize)
	r.lastInput = nil
}

// HiddenState returns the state that the next Forward starts from.
func (r *Recurrent) HiddenState() []float64 {
	return r.carry
}

// SetInitialHiddenState sets the state the next Forward starts from.
// A state shorter than the hidden size fills the leading entries and zeroes
// the rest.
func (r *Recurrent) SetInitialHiddenState(h []float64) error {
	if len(h) > r.hidden {
		return errors.Wrapf(ErrHiddenStateSize, "recurrent %q: got %d values, hidden size is %d",
			r.name, len(h), r.hidden)
	}
	clear(r.carry)
	copy(r.carry, h)
	return nil
}

// ResetHiddenState zeroes the carried and per-step hidden states. Parameters
// are untouched.
func (r *Recurrent) ResetHiddenState() {
	clear(r.carry)
	clear(r.h0)
	clear(r.states)
}

// Parameter views.
func (r *Recurrent) offsets() (ih, hh, bh, ho, bo int) {
	ih = 0
	hh = ih + r.hidden*r.stepIn
	bh = hh + r.hidden*r.hidden
	ho = bh + r.hidden
	bo = ho + r.stepOut*r.hidden
	return
}

func (r *Recurrent) split(buf []float64) (wih, whh, bh, who, bo []float64) {
	ih, hh, b, ho, o := r.offsets()
	return buf[ih:hh], buf[hh:b], buf[b:ho], buf[ho:o], buf[o:]
}

// Init draws W_ih with σ from the input size and W_hh, W_ho with σ from the
// hidden size. Biases start at BiasInit. InitAuto resolves to Xavier since the
// hidden activation is tanh.
func (r *Recurrent) Init(src rand.Source, kind InitKind, dist Distribution) {
	kind = kind.Resolve(ActivationTanh)
	wih, whh, bh, who, bo := r.split(r.data)
	FillRandom(wih, src, dist, Sigma(kind, r.stepIn))
	FillRandom(whh, src, dist, Sigma(kind, r.hidden))
	FillRandom(who, src, dist, Sigma(kind, r.hidden))
	FillConst(bh, BiasInit)
	FillConst(bo, BiasInit)
}

// Forward unrolls the recurrence over the input sequence.
func (r *Recurrent) Forward(input []float64) []float64 {
	checkSize("recurrent forward", r.name, len(input), r.inSize)
	r.lastInput = input
	if r.timeSteps == 0 {
		return r.output
	}

	wih, whh, bh, who, bo := r.split(r.data)
	H, I, O := r.hidden, r.stepIn, r.stepOut

	copy(r.h0, r.carry)
	prev := r.h0
	for t := range r.timeSteps {
		h := r.states[t*H : (t+1)*H]
		r.backend.DenseForward(h, input[t*I:(t+1)*I], wih, bh, I, H)
		r.backend.MatVec(r.tmp, whh, prev, H, H)
		floats.Add(h, r.tmp)
		r.backend.Tanh(h, h)
		r.backend.DenseForward(r.output[t*O:(t+1)*O], h, who, bo, H, O)
		prev = h
	}
	copy(r.carry, prev)
	return r.output
}

// Reverse runs back-propagation through time over the last Forward,
// accumulating the gradients of every parameter across all steps.
// The gradient with respect to the starting hidden state is discarded.
func (r *Recurrent) Reverse(grad []float64) []float64 {
	checkSize("recurrent reverse", r.name, len(grad), r.outSize)
	if r.timeSteps == 0 {
		return r.dx
	}
	if r.lastInput == nil && r.inSize > 0 {
		panic("recurrent reverse " + r.name + ": called before forward")
	}

	wih, whh, _, who, _ := r.split(r.data)
	dwih, dwhh, dbh, dwho, dbo := r.split(r.grad)
	H, I, O := r.hidden, r.stepIn, r.stepOut

	clear(r.dhNext)
	for t := r.timeSteps - 1; t >= 0; t-- {
		h := r.states[t*H : (t+1)*H]
		prev := r.h0
		if t > 0 {
			prev = r.states[(t-1)*H : t*H]
		}

		// Output projection.
		r.backend.DenseBackward(r.dhOut, dwho, dbo, h, who, grad[t*O:(t+1)*O], H, O)
		floats.AddTo(r.dh, r.dhOut, r.dhNext)

		// tanh'(z) = 1 − h².
		for i, hi := range h {
			r.dz[i] = r.dh[i] * (1 - hi*hi)
		}

		// Input and recurrent projections.
		r.backend.DenseBackward(r.dx[t*I:(t+1)*I], dwih, dbh, r.lastInput[t*I:(t+1)*I], wih, r.dz, I, H)
		r.backend.OuterAdd(dwhh, r.dz, prev)
		clear(r.dhNext)
		r.backend.MatTVecAdd(r.dhNext, whh, r.dz, H, H)
	}
	return r.dx
}

// Clone returns a deep copy including the carried hidden state.
func (r *Recurrent) Clone() Layer {
	c := &Recurrent{
		base:       r.cloneBase(),
		Parameters: r.Parameters.clone(),
		stepIn:     r.stepIn,
		hidden:     r.hidden,
		stepOut:    r.stepOut,
		timeSteps:  r.timeSteps,
		backend:    r.backend,
		carry:      append([]float64(nil), r.carry...),
		h0:         append([]float64(nil), r.h0...),
		states:     append([]float64(nil), r.states...),
		tmp:        make([]float64, r.hidden),
		dh:         make([]float64, r.hidden),
		dhNext:     make([]float64, r.hidden),
		dhOut:      make([]float64, r.hidden),
		dz:         make([]float64, r.hidden),
		dx:         make([]float64, r.inSize),
	}
	return c
}
