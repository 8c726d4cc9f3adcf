// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package fnn builds and trains feed-forward networks from a declarative
// configuration.
//
// Example:
//
//	cfg, err := fnn.LoadConfigFile("net.yaml")
//	net, err := fnn.Build(cfg)
//	ds, err := fnn.ReadCSV(f, 3)
//	history, err := net.Fit(ds, fnn.FitOptions{Epochs: 20, BatchSize: 16})
package fnn

import (
	"io"

	"github.com/born-ml/backprop/internal/fnn"
)

// Network is a model built from a Config.
type Network = fnn.Network

// Config describes a feed-forward network and how to train it.
type Config = fnn.Config

// LayerDescriptor describes one Dense layer.
type LayerDescriptor = fnn.LayerDescriptor

// FitOptions controls a call to Network.Fit.
type FitOptions = fnn.FitOptions

// History records every epoch of a Fit call.
type History = fnn.History

// EpochStats summarizes one epoch of training.
type EpochStats = fnn.EpochStats

// Dataset is a random-access collection of examples.
type Dataset = fnn.Dataset

// SliceDataset is a Dataset backed by in-memory rows.
type SliceDataset = fnn.SliceDataset

// CSVOption configures ReadCSV.
type CSVOption = fnn.CSVOption

// Selection enums.
type (
	ActivationType       = fnn.ActivationType
	LossType             = fnn.LossType
	OptimizerType        = fnn.OptimizerType
	InitType             = fnn.InitType
	DistributionType     = fnn.DistributionType
	KernelType           = fnn.KernelType
	ParallelizationLevel = fnn.ParallelizationLevel
)

// Activations.
const (
	ActivationReLU    = fnn.ActivationReLU
	ActivationELU     = fnn.ActivationELU
	ActivationSoftmax = fnn.ActivationSoftmax
	ActivationTanH    = fnn.ActivationTanH
	ActivationSigmoid = fnn.ActivationSigmoid
	ActivationLinear  = fnn.ActivationLinear
	ActivationNone    = fnn.ActivationNone
)

// Losses.
const (
	LossCCE = fnn.LossCCE
	LossMSE = fnn.LossMSE
)

// Optimizers.
const (
	OptimizerGradientDescent = fnn.OptimizerGradientDescent
	OptimizerAdam            = fnn.OptimizerAdam
)

// Initializers and distributions.
const (
	InitAuto            = fnn.InitAuto
	InitKaiming         = fnn.InitKaiming
	InitXavier          = fnn.InitXavier
	DistributionNormal  = fnn.DistributionNormal
	DistributionUniform = fnn.DistributionUniform
)

// Kernel strategies.
const (
	KernelSequential = fnn.KernelSequential
	KernelThreaded   = fnn.KernelThreaded
	KernelVectorized = fnn.KernelVectorized
)

// Parallelization levels.
const (
	Sequential         = fnn.Sequential
	ThreadPerDataEntry = fnn.ThreadPerDataEntry
	ThreadPerDataBatch = fnn.ThreadPerDataBatch
)

// DefaultLearningRate is used when FitOptions.LR is zero.
const DefaultLearningRate = fnn.DefaultLearningRate

// Build creates and chains the layers described by cfg.
func Build(cfg Config) (*Network, error) {
	return fnn.Build(cfg)
}

// LoadConfig decodes a YAML network descriptor.
func LoadConfig(r io.Reader) (Config, error) {
	return fnn.LoadConfig(r)
}

// LoadConfigFile reads a YAML network descriptor from path.
func LoadConfigFile(path string) (Config, error) {
	return fnn.LoadConfigFile(path)
}

// NewSliceDataset wraps in-memory features and labels.
func NewSliceDataset(features, labels [][]float64) (*SliceDataset, error) {
	return fnn.NewSliceDataset(features, labels)
}

// ReadCSV loads a numeric CSV table whose last labelCols columns are labels.
func ReadCSV(r io.Reader, labelCols int, opts ...CSVOption) (*SliceDataset, error) {
	return fnn.ReadCSV(r, labelCols, opts...)
}

// WithHeader declares whether the first CSV row holds column names.
func WithHeader(header bool) CSVOption {
	return fnn.WithHeader(header)
}
