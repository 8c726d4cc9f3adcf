package nn

import (
	"math"
	"math/rand/v2"

	"github.com/born-ml/backprop/internal/backend/cpu"
)

// LossLayer is the terminal node of a layer graph.
//
// It compares the prediction fed to Forward against the target bound with
// SetTarget, keeps running statistics, and on Reverse returns the gradient of
// the loss with respect to the prediction, scaled by 1/batchSize.
//
// Loss layers have no parameters, so Param and Gradient return nil and Reverse
// ignores its argument (dL/dL ≡ 1). Forward returns nil and OutputSize is 0.
//
// State machine: accumulating → (optimizer step) → accumulating, with
// ResetScore clearing the statistics.
type LossLayer interface {
	Layer

	// SetTarget binds the ground truth for the next Forward and Reverse.
	// The slice is retained by reference.
	SetTarget(target []float64)

	// Target returns the bound ground truth.
	Target() []float64

	// LastLoss returns the loss computed by the last Forward.
	LastLoss() float64

	// Accuracy returns correct / (correct + incorrect) since the last
	// ResetScore, or NaN if no sample has been seen.
	Accuracy() float64

	// AvgLoss returns the cumulative loss divided by the samples seen since
	// the last ResetScore, or NaN if no sample has been seen.
	AvgLoss() float64

	// ResetScore clears the running statistics.
	ResetScore()

	// Score returns the raw running statistics.
	Score() Score

	// AddScore merges statistics gathered elsewhere, typically by a worker
	// copy of the same loss layer.
	AddScore(s Score)

	// BatchSize returns the batch size used to scale gradients.
	BatchSize() int
}

// Score holds running loss statistics.
type Score struct {
	CumulativeLoss float64
	Correct        int
	Incorrect      int
}

// Samples returns the number of samples counted.
func (s Score) Samples() int {
	return s.Correct + s.Incorrect
}

// Add returns the sum of s and o.
func (s Score) Add(o Score) Score {
	return Score{
		CumulativeLoss: s.CumulativeLoss + o.CumulativeLoss,
		Correct:        s.Correct + o.Correct,
		Incorrect:      s.Incorrect + o.Incorrect,
	}
}

// Accuracy returns Correct/Samples, or NaN with no samples.
func (s Score) Accuracy() float64 {
	if s.Samples() == 0 {
		return math.NaN()
	}
	return float64(s.Correct) / float64(s.Samples())
}

// AvgLoss returns CumulativeLoss/Samples, or NaN with no samples.
func (s Score) AvgLoss() float64 {
	if s.Samples() == 0 {
		return math.NaN()
	}
	return s.CumulativeLoss / float64(s.Samples())
}

// lossBase carries the state shared by every loss layer.
type lossBase struct {
	base

	backend      *cpu.CPUBackend
	target       []float64
	lastLoss     float64
	score        Score
	batchSize    int
	invBatchSize float64
	grad         []float64 // dL/dprediction
}

func newLossBase(name string, inSize, batchSize int, backend *cpu.CPUBackend) lossBase {
	if backend == nil {
		backend = cpu.New()
	}
	return lossBase{
		base:         newBase(name, inSize, 0),
		backend:      backend,
		lastLoss:     math.NaN(),
		batchSize:    batchSize,
		invBatchSize: 1 / float64(max(batchSize, 1)),
		grad:         make([]float64, inSize),
	}
}

// ParamCount returns 0.
func (l *lossBase) ParamCount() int { return 0 }

// Param returns nil.
func (l *lossBase) Param(int) *float64 { return nil }

// Gradient returns nil.
func (l *lossBase) Gradient(int) *float64 { return nil }

// Params returns nil.
func (l *lossBase) Params() []float64 { return nil }

// Gradients returns nil.
func (l *lossBase) Gradients() []float64 { return nil }

// Init is a no-op.
func (l *lossBase) Init(rand.Source, InitKind, Distribution) {}

// SetTarget binds the ground truth.
func (l *lossBase) SetTarget(target []float64) { l.target = target }

// Target returns the bound ground truth.
func (l *lossBase) Target() []float64 { return l.target }

// LastLoss returns the loss of the last Forward, or NaN before any.
func (l *lossBase) LastLoss() float64 { return l.lastLoss }

// Accuracy returns the running accuracy.
func (l *lossBase) Accuracy() float64 { return l.score.Accuracy() }

// AvgLoss returns the running average loss.
func (l *lossBase) AvgLoss() float64 { return l.score.AvgLoss() }

// ResetScore clears the running statistics. Calling it repeatedly is harmless.
func (l *lossBase) ResetScore() { l.score = Score{} }

// Score returns the raw running statistics.
func (l *lossBase) Score() Score { return l.score }

// AddScore merges s into the running statistics.
func (l *lossBase) AddScore(s Score) {
	l.score = l.score.Add(s)
}

// BatchSize returns the batch size.
func (l *lossBase) BatchSize() int { return l.batchSize }

// beginForward validates the prediction and target and retains the prediction.
func (l *lossBase) beginForward(op string, prediction []float64) {
	checkSize(op, l.name, len(prediction), l.inSize)
	checkSize(op+" target", l.name, len(l.target), l.inSize)
	l.lastInput = prediction
}

// record adds one sample to the statistics.
func (l *lossBase) record(loss float64, correct bool) {
	l.lastLoss = loss
	l.score.CumulativeLoss += loss
	if correct {
		l.score.Correct++
	} else {
		l.score.Incorrect++
	}
}

func (l *lossBase) beginReverse(op string) {
	if l.lastInput == nil && l.inSize > 0 {
		panic(op + " " + l.name + ": called before forward")
	}
	checkSize(op+" target", l.name, len(l.target), l.inSize)
}

func (l *lossBase) cloneLossBase() lossBase {
	c := *l
	c.base = l.cloneBase()
	c.target = nil
	c.grad = make([]float64, len(l.grad))
	return c
}
