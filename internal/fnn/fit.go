package fnn

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"github.com/born-ml/backprop/internal/model"
	"github.com/born-ml/backprop/internal/nn"
	"github.com/born-ml/backprop/internal/parallel"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// FitOptions controls a call to Fit.
type FitOptions struct {
	Epochs    int     // Passes over the dataset (default: 1)
	BatchSize int     // Examples per optimizer step (default: 1); fixed by the first Fit
	LR        float64 // Learning rate (default: DefaultLearningRate)
	Shuffle   bool    // Visit examples in a new seeded order every epoch

	// ShowProgress draws a progress bar on stderr. Config.ShowProgress also enables it.
	ShowProgress bool

	// OnEpoch, if set, is called after every epoch.
	OnEpoch func(EpochStats)
}

// EpochStats summarizes one epoch of training.
type EpochStats struct {
	Epoch    int
	Score    nn.Score
	Batches  int
	Duration time.Duration
}

// AvgLoss returns the average loss over the epoch.
func (s EpochStats) AvgLoss() float64 { return s.Score.AvgLoss() }

// Accuracy returns the accuracy over the epoch.
func (s EpochStats) Accuracy() float64 { return s.Score.Accuracy() }

// History records every epoch of a Fit call.
type History struct {
	Epochs []EpochStats
}

// Last returns the stats of the final epoch.
func (h History) Last() EpochStats {
	if len(h.Epochs) == 0 {
		return EpochStats{}
	}
	return h.Epochs[len(h.Epochs)-1]
}

// Fit trains the network on ds. The first call compiles the network with
// opts.BatchSize and opts.LR; later calls continue training from the
// current parameters.
//
// Each batch runs Step for its examples, on the master model or on worker
// copies depending on Config.Parallelization, then one optimizer step. A
// final partial batch is trained like a full one.
func (n *Network) Fit(ds Dataset, opts FitOptions) (History, error) {
	if opts.Epochs <= 0 {
		opts.Epochs = 1
	}
	if err := n.Compile(opts.BatchSize, opts.LR); err != nil {
		return History{}, err
	}
	if err := n.checkDataset(ds, true); err != nil {
		return History{}, err
	}
	if ds.Len() == 0 {
		return History{}, errors.Errorf("fnn %q: empty dataset", n.cfg.Name)
	}

	numBatches := (ds.Len() + n.batchSize - 1) / n.batchSize
	var bar *progressbar.ProgressBar
	if opts.ShowProgress || n.cfg.ShowProgress {
		bar = progressbar.NewOptions(opts.Epochs*numBatches,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(fmt.Sprintf("Training %s: ", n.cfg.Name)),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("batches"),
			progressbar.OptionSetTheme(progressbar.ThemeUnicode),
			progressbar.OptionClearOnFinish())
		defer func() { _ = bar.Finish() }()
	}

	order := make([]int, ds.Len())
	for i := range order {
		order[i] = i
	}
	rng := rand.New(model.NewSource(n.model.Seed()))

	var history History
	for epoch := range opts.Epochs {
		start := time.Now()
		if opts.Shuffle {
			rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		stats := EpochStats{Epoch: epoch + 1}
		for b := 0; b < len(order); b += n.batchSize {
			batch := order[b:min(b+n.batchSize, len(order))]
			if err := n.runBatch(ds, batch); err != nil {
				return history, errors.WithMessagef(err, "epoch %d", epoch+1)
			}
			batchScore := n.model.Loss().Score()
			stats.Score = stats.Score.Add(batchScore)
			stats.Batches++
			n.model.Train(n.optimizer)

			klog.V(2).Infof("fnn %q: epoch %d batch %d avg loss %.6g", n.cfg.Name, epoch+1, stats.Batches, batchScore.AvgLoss())
			if bar != nil {
				_ = bar.Add(1)
			}
		}
		stats.Duration = time.Since(start)

		if math.IsNaN(stats.AvgLoss()) || math.IsInf(stats.AvgLoss(), 0) {
			klog.Warningf("fnn %q: epoch %d loss is %g, consider a smaller learning rate", n.cfg.Name, epoch+1, stats.AvgLoss())
		}
		klog.V(1).Infof("fnn %q: epoch %d/%d avg loss %.6g accuracy %.4f (%s)",
			n.cfg.Name, epoch+1, opts.Epochs, stats.AvgLoss(), stats.Accuracy(), stats.Duration)
		history.Epochs = append(history.Epochs, stats)
		if opts.OnEpoch != nil {
			opts.OnEpoch(stats)
		}
	}
	return history, nil
}

// runBatch accumulates the gradients and statistics of batch in the master
// model.
func (n *Network) runBatch(ds Dataset, batch []int) error {
	switch n.cfg.Parallelization {
	case ThreadPerDataEntry:
		return n.runPerEntry(ds, batch)
	case ThreadPerDataBatch:
		return n.runPerShard(ds, batch)
	default:
		for _, i := range batch {
			n.model.Step(ds.Features(i), ds.Labels(i))
		}
		return nil
	}
}

// runPerEntry runs every example as its own task. A worker copy is taken
// from a pool for the duration of one Step, so at most len(workers) tasks
// run at once.
func (n *Network) runPerEntry(ds Dataset, batch []int) error {
	if err := n.syncWorkers(); err != nil {
		return err
	}
	pool := make(chan *model.Model, len(n.workers))
	for _, w := range n.workers {
		pool <- w
	}

	var g errgroup.Group
	g.SetLimit(len(n.workers))
	for _, i := range batch {
		g.Go(func() error {
			w := <-pool
			defer func() { pool <- w }()
			return step(w, ds, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return n.reduceWorkers()
}

// runPerShard splits batch into one contiguous shard per worker.
func (n *Network) runPerShard(ds Dataset, batch []int) error {
	if err := n.syncWorkers(); err != nil {
		return err
	}
	chunks := parallel.Split(len(batch), len(n.workers), 1)

	var g errgroup.Group
	for k, c := range chunks {
		w := n.workers[k]
		g.Go(func() error {
			for _, i := range batch[c.Start:c.End] {
				if err := step(w, ds, i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return n.reduceWorkers()
}

// step runs one example on w, turning a shape panic into an error so that it
// does not escape the worker goroutine.
func step(w *model.Model, ds Dataset, i int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("example %d: %v", i, r)
		}
	}()
	w.Step(ds.Features(i), ds.Labels(i))
	return nil
}

func (n *Network) syncWorkers() error {
	for _, w := range n.workers {
		if err := w.CopyParams(n.model); err != nil {
			return err
		}
	}
	return nil
}

// reduceWorkers sums worker gradients and statistics into the master in
// worker order.
func (n *Network) reduceWorkers() error {
	for _, w := range n.workers {
		if err := n.model.AccumulateGradients(w); err != nil {
			return err
		}
	}
	return nil
}
