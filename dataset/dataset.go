// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dataset loads MNIST or generates synthetic digits and cuts them
// into shuffled mini-batches.
//
//	ds, err := dataset.LoadMNIST("data/mnist", true, 0)
//	err = ds.Normalize(dataset.MNISTStats)
//	loader, err := dataset.NewLoader(ds, dataset.LoaderConfig{BatchSize: 64, Shuffle: true})
package dataset

import (
	"github.com/born-ml/digitnet/internal/dataset"
	"github.com/born-ml/digitnet/tensor"
)

type (
	Dataset         = dataset.Dataset
	Batch           = dataset.Batch
	Loader          = dataset.Loader
	LoaderConfig    = dataset.LoaderConfig
	Stats           = dataset.Stats
	SyntheticConfig = dataset.SyntheticConfig
)

// MNISTStats are the usual MNIST pixel mean and standard deviation.
var MNISTStats = dataset.MNISTStats

// New validates images shaped [n, 1, rows, cols] against labels.
func New(images *tensor.Tensor, labels []int, classes int) (*Dataset, error) {
	return dataset.New(images, labels, classes)
}

// LoadMNIST reads the IDX files (plain or .gz) from dataDir.
func LoadMNIST(dataDir string, train bool, maxSamples int) (*Dataset, error) {
	return dataset.LoadMNIST(dataDir, train, maxSamples)
}

// DefaultSyntheticConfig is 10 classes of 20 noisy 8x8 prototypes.
func DefaultSyntheticConfig() SyntheticConfig {
	return dataset.DefaultSyntheticConfig()
}

// Synthetic generates a deterministic dataset from cfg.Seed.
func Synthetic(cfg SyntheticConfig) *Dataset {
	return dataset.Synthetic(cfg)
}

// ComputeStats returns the population mean and standard deviation of all pixels.
func ComputeStats(d *Dataset) Stats {
	return dataset.ComputeStats(d)
}

// NewLoader creates a restartable batch loader over ds.
func NewLoader(ds *Dataset, cfg LoaderConfig) (*Loader, error) {
	return dataset.NewLoader(ds, cfg)
}
