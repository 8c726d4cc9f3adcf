// Package fnn is the configuration layer for feed-forward networks.
//
// A Config (usually loaded from YAML) lists Dense layers by size and
// activation. Build turns it into a model graph; Fit appends the loss layer,
// creates the optimizer, initializes the model and trains it on a Dataset,
// optionally spreading every batch over worker goroutines.
//
// Example:
//
//	net, err := fnn.Build(fnn.Config{
//	    InputSize: 4,
//	    Layers: []fnn.LayerDescriptor{
//	        {Size: 8, Activation: fnn.ActivationReLU},
//	        {Size: 3, Activation: fnn.ActivationSoftmax},
//	    },
//	})
//	history, err := net.Fit(ds, fnn.FitOptions{Epochs: 20, BatchSize: 16})
package fnn

import (
	"fmt"
	"runtime"

	"github.com/born-ml/backprop/internal/model"
	"github.com/born-ml/backprop/internal/nn"
	"github.com/born-ml/backprop/internal/optim"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DefaultLearningRate is used when FitOptions.LR is zero.
const DefaultLearningRate = 0.03

// Network is a model built from a Config.
type Network struct {
	cfg     Config
	model   *model.Model
	handles []model.Handle

	// Set by Compile.
	batchSize int
	optimizer optim.Optimizer
	workers   []*model.Model
}

// Build creates the Dense layers described by cfg and chains them.
// The loss layer is added later by Compile, once the batch size is known.
func Build(cfg Config) (*Network, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = "fnn"
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	backend := cfg.Kernels.backend()
	m := model.New(cfg.Name)
	m.SetInitialization(cfg.Init.nn(), cfg.Distribution.nn())

	n := &Network{cfg: cfg, model: m}
	in := cfg.InputSize
	for i, desc := range cfg.Layers {
		name := desc.Name
		if name == "" {
			name = fmt.Sprintf("dense%d", i)
		}
		h := m.AddLayer(nn.NewDense(name, in, desc.Size, desc.Activation.nn(), backend))
		if i > 0 {
			m.CreateEdge(n.handles[i-1], h)
		}
		n.handles = append(n.handles, h)
		in = desc.Size
	}
	klog.V(1).Infof("fnn %q: built %d layers, %d parameters (%s kernels)",
		cfg.Name, len(cfg.Layers), m.ParamCount(), backend.Name())
	return n, nil
}

// Config returns the configuration the network was built from, with defaults filled in.
func (n *Network) Config() Config {
	return n.cfg
}

// Model returns the underlying model.
func (n *Network) Model() *model.Model {
	return n.model
}

// Compiled reports whether Compile has run.
func (n *Network) Compiled() bool {
	return n.optimizer != nil
}

// BatchSize returns the batch size fixed by Compile, or 0.
func (n *Network) BatchSize() int {
	return n.batchSize
}

// Compile appends the loss layer sized to the last layer and batchSize,
// creates the optimizer with learning rate lr and initializes the model
// with the configured seed. It runs once; later calls must agree on the
// batch size and only update the learning rate.
func (n *Network) Compile(batchSize int, lr float64) error {
	if batchSize <= 0 {
		batchSize = 1
	}
	if lr == 0 {
		lr = DefaultLearningRate
	}
	if n.Compiled() {
		if batchSize != n.batchSize {
			return errors.Errorf("fnn %q: batch size is fixed at %d, got %d", n.cfg.Name, n.batchSize, batchSize)
		}
		n.optimizer.SetLR(lr)
		return nil
	}

	out := n.cfg.Layers[len(n.cfg.Layers)-1].Size
	var loss nn.LossLayer
	switch n.cfg.Loss {
	case LossMSE:
		tol := n.cfg.LossTolerance
		if tol == 0 {
			tol = nn.DefaultLossTolerance
		}
		loss = nn.NewMSELoss("mse", out, batchSize, tol, n.cfg.Kernels.backend())
	default:
		loss = nn.NewCCELoss("cce", out, batchSize, n.cfg.Kernels.backend())
	}
	h, err := n.model.AddLoss(loss)
	if err != nil {
		return err
	}
	n.model.CreateEdge(n.handles[len(n.handles)-1], h)

	if _, err := n.model.Init(n.cfg.Seed); err != nil {
		return err
	}

	switch n.cfg.Optimizer {
	case OptimizerAdam:
		n.optimizer = optim.NewAdam(optim.AdamConfig{LR: lr})
	default:
		n.optimizer = optim.NewGradientDescent(optim.GDConfig{LR: lr})
	}
	n.batchSize = batchSize

	if n.cfg.Parallelization != Sequential {
		n.workers = make([]*model.Model, n.cfg.Workers)
		for i := range n.workers {
			n.workers[i] = n.model.Clone()
		}
	}
	return nil
}

// Optimizer returns the optimizer created by Compile, or nil.
func (n *Network) Optimizer() optim.Optimizer {
	return n.optimizer
}

func (n *Network) checkDataset(ds Dataset, needLabels bool) error {
	if ds.FeatureSize() != n.model.InputSize() && ds.Len() > 0 {
		return errors.Errorf("fnn %q: dataset has %d features, network expects %d",
			n.cfg.Name, ds.FeatureSize(), n.model.InputSize())
	}
	if needLabels && ds.LabelSize() != n.model.OutputSize() && ds.Len() > 0 {
		return errors.Errorf("fnn %q: dataset has %d labels, network produces %d",
			n.cfg.Name, ds.LabelSize(), n.model.OutputSize())
	}
	return nil
}

// Predict returns the network output for every example of ds.
func (n *Network) Predict(ds Dataset) ([][]float64, error) {
	if !n.model.Initialized() {
		return nil, errors.Errorf("fnn %q: Predict before Compile", n.cfg.Name)
	}
	if err := n.checkDataset(ds, false); err != nil {
		return nil, err
	}
	out := make([][]float64, ds.Len())
	for i := range out {
		out[i] = append([]float64(nil), n.model.Predict(ds.Features(i))...)
	}
	return out, nil
}

// Evaluate scores the network on ds without training. Training statistics
// in progress are left untouched.
func (n *Network) Evaluate(ds Dataset) (nn.Score, error) {
	if !n.model.Initialized() {
		return nn.Score{}, errors.Errorf("fnn %q: Evaluate before Compile", n.cfg.Name)
	}
	if err := n.checkDataset(ds, true); err != nil {
		return nn.Score{}, err
	}
	loss := n.model.Loss()
	saved := loss.Score()
	loss.ResetScore()
	for i := range ds.Len() {
		n.model.Evaluate(ds.Features(i), ds.Labels(i))
	}
	score := loss.Score()
	loss.ResetScore()
	loss.AddScore(saved)
	return score, nil
}
