package optim

import (
	"math"

	"github.com/born-ml/backprop/internal/nn"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule, applied parameter by parameter:
//
//	m = beta1 * m + (1-beta1) * gradient         // First moment
//	v = beta2 * v + (1-beta2) * gradient²        // Second moment
//	m_hat = m / (1 - beta1^t)                    // Bias correction
//	v_hat = v / (1 - beta2^t)                    // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//	t = t + 1
//
// By default the moments m, v and the timestep t are single scalars shared by
// every parameter the optimizer touches, and t advances once per parameter
// update. This differs from the textbook algorithm.
// Set AdamConfig.PerParameter to keep one (m, v) pair per parameter and
// advance t once per Train call instead.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
//
// Example:
//
//	opt := optim.NewAdam(optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float64{0.9, 0.999},
//	    Eps:   1e-8,
//	})
//	model.Train(opt)
type Adam struct {
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64

	// Shared state.
	m, v float64
	t    int

	perParameter bool
	moments      map[nn.Layer]*adamMoments
}

type adamMoments struct {
	m, v []float64
	t    int
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR           float64    // Learning rate (default: 0.001)
	Betas        [2]float64 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps          float64    // Term for numerical stability (default: 1e-8)
	PerParameter bool       // Keep moments per parameter instead of shared scalars
}

// NewAdam creates a new Adam optimizer.
//
// Default hyperparameters:
//   - LR: 0.001
//   - Beta1: 0.9
//   - Beta2: 0.999
//   - Eps: 1e-8
func NewAdam(config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	a := &Adam{
		lr:           config.LR,
		beta1:        config.Betas[0],
		beta2:        config.Betas[1],
		eps:          config.Eps,
		perParameter: config.PerParameter,
	}
	a.Reset()
	return a
}

// Train applies the Adam update to every parameter of to using the gradients
// of from, zeroing them afterwards.
func (a *Adam) Train(from, to nn.Layer) {
	grads, params := buffers("adam", from, to)
	if a.perParameter {
		a.trainPerParameter(to, grads, params)
		return
	}

	for i, g := range grads {
		a.m = a.beta1*a.m + (1-a.beta1)*g
		a.v = a.beta2*a.v + (1-a.beta2)*g*g

		mHat := a.m / (1 - math.Pow(a.beta1, float64(a.t)))
		vHat := a.v / (1 - math.Pow(a.beta2, float64(a.t)))
		params[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)

		a.t++
		grads[i] = 0
	}
}

func (a *Adam) trainPerParameter(to nn.Layer, grads, params []float64) {
	if len(params) == 0 {
		return
	}
	st, ok := a.moments[to]
	if !ok {
		st = &adamMoments{m: make([]float64, len(params)), v: make([]float64, len(params)), t: 1}
		a.moments[to] = st
	}

	biasCorrection1 := 1 - math.Pow(a.beta1, float64(st.t))
	biasCorrection2 := 1 - math.Pow(a.beta2, float64(st.t))
	for i, g := range grads {
		st.m[i] = a.beta1*st.m[i] + (1-a.beta1)*g
		st.v[i] = a.beta2*st.v[i] + (1-a.beta2)*g*g

		mHat := st.m[i] / biasCorrection1
		vHat := st.v[i] / biasCorrection2
		params[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)

		grads[i] = 0
	}
	st.t++
}

// Reset zeroes the moments and restarts the timestep at 1.
func (a *Adam) Reset() {
	a.m, a.v, a.t = 0, 0, 1
	a.moments = make(map[nn.Layer]*adamMoments)
}

// LR returns the learning rate.
func (a *Adam) LR() float64 {
	return a.lr
}

// SetLR changes the learning rate.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// Timestep returns the shared timestep t.
func (a *Adam) Timestep() int {
	return a.t
}

// Moments returns the shared first and second moment estimates.
func (a *Adam) Moments() (m, v float64) {
	return a.m, a.v
}
