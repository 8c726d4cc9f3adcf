// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers of a manually differentiated network.
//
// # Overview
//
// This package contains:
//   - Dense: fully connected layer with ReLU, ELU, Softmax, Tanh, Sigmoid or linear activation
//   - Recurrent: Elman RNN trained with backpropagation through time
//   - CCELoss and MSELoss: terminal loss layers with running statistics
//   - Layer and LossLayer interfaces for custom layers
//
// Every layer stores its parameters and gradients as flat float64 slices.
// Forward caches the input and output; Reverse accumulates parameter
// gradients (+=) and overwrites the returned input gradient. Gradients are
// reset only by an optimizer step.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/backprop/model"
//	    "github.com/born-ml/backprop/nn"
//	    "github.com/born-ml/backprop/optim"
//	)
//
//	func main() {
//	    m := model.New("mnist")
//	    hidden := m.AddLayer(nn.NewDense("hidden", 784, 128, nn.ActivationReLU, nil))
//	    out := m.AddLayer(nn.NewDense("out", 128, 10, nn.ActivationSoftmax, nil))
//	    loss, _ := m.AddLoss(nn.NewCCELoss("cce", 10, 32, nil))
//	    m.Chain(hidden, out, loss)
//	    if _, err := m.Init(42); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    opt := optim.NewGradientDescent(optim.GDConfig{LR: 0.03})
//	    for _, batch := range batches {
//	        for _, ex := range batch {
//	            m.Step(ex.Input, ex.Target)
//	        }
//	        m.Train(opt)
//	    }
//	}
//
// # Initialization
//
// Weights are drawn from a Normal or Uniform distribution with variance
// 1/fanIn (Xavier) or 2/fanIn (Kaiming). InitAuto picks Kaiming for ReLU
// layers. Biases start at 0.01.
package nn
