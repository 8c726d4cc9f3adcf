// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/backprop/internal/nn"
)

// Layer is the contract shared by every node of a layer graph.
//
// A layer owns its parameters and gradients as flat float64 buffers.
// Forward caches what Reverse needs; Reverse accumulates parameter
// gradients and returns the gradient with respect to the input.
type Layer = nn.Layer

// LossLayer is the terminal node of a layer graph. It keeps running loss
// and accuracy statistics.
type LossLayer = nn.LossLayer

// Score holds running loss statistics.
type Score = nn.Score

// Parameters is the flat parameter and gradient storage embedded by layers.
type Parameters = nn.Parameters

// NewParameters allocates n zeroed parameters and gradients.
func NewParameters(n int) Parameters {
	return nn.NewParameters(n)
}

// ErrHiddenStateSize is returned when an initial hidden state is too long.
var ErrHiddenStateSize = nn.ErrHiddenStateSize

// Initialization

// InitKind selects the variance rule used to initialize weights.
type InitKind = nn.InitKind

// Initialization rules.
const (
	InitAuto    = nn.InitAuto
	InitXavier  = nn.InitXavier
	InitKaiming = nn.InitKaiming
)

// Distribution is the probability distribution weights are drawn from.
type Distribution = nn.Distribution

// Weight distributions.
const (
	Normal  = nn.Normal
	Uniform = nn.Uniform
)
