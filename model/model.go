// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package model assembles layers into a trainable graph.
//
// Layers are registered into a Model and addressed by Handle. Edges chain
// them from an input layer to a single loss layer; the graph is validated
// when Init freezes it.
//
// Example:
//
//	m := model.New("regressor")
//	hidden := m.AddLayer(nn.NewDense("hidden", 4, 8, nn.ActivationReLU, nil))
//	out := m.AddLayer(nn.NewDense("out", 8, 2, nn.ActivationLinear, nil))
//	loss, _ := m.AddLoss(nn.NewMSELoss("mse", 2, 1, nn.DefaultLossTolerance, nil))
//	m.Chain(hidden, out, loss)
//	seed, err := m.Init(0) // 0 draws a seed from system entropy
package model

import (
	"math/rand/v2"

	"github.com/born-ml/backprop/internal/model"
)

// Model owns a set of layers, the edges between them and a loss layer.
type Model = model.Model

// Handle addresses a layer registered in a Model.
type Handle = model.Handle

// LayerInfo describes one registered layer.
type LayerInfo = model.LayerInfo

// NoHandle is the invalid handle.
const NoHandle = model.NoHandle

// Errors returned by Model operations.
var (
	ErrLossExists    = model.ErrLossExists
	ErrInvalidGraph  = model.ErrInvalidGraph
	ErrShapeMismatch = model.ErrShapeMismatch
)

// New creates an empty model.
func New(name string) *Model {
	return model.New(name)
}

// NewSource returns the deterministic random source Init uses for seed.
func NewSource(seed uint64) rand.Source {
	return model.NewSource(seed)
}
