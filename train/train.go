// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train runs the mini-batch training loop.
//
//	trainer, err := train.New(model, lossFn, opt, backend, train.Config{})
//	history, err := trainer.Train(ctx, loader, 5)
package train

import (
	"github.com/born-ml/digitnet/autodiff"
	"github.com/born-ml/digitnet/internal/train"
	"github.com/born-ml/digitnet/nn"
	"github.com/born-ml/digitnet/optim"
)

type (
	Trainer    = train.Trainer
	Config     = train.Config
	DataSource = train.DataSource
	EpochStats = train.EpochStats
	History    = train.History
	EvalStats  = train.EvalStats
)

var (
	ErrEmptyEpoch    = train.ErrEmptyEpoch
	ErrShapeMismatch = train.ErrShapeMismatch
	ErrDoubleSoftmax = train.ErrDoubleSoftmax
)

// New validates the components and returns a trainer.
func New(model nn.Module, lossFn nn.Loss, opt optim.Optimizer, backend *autodiff.Backend, cfg Config) (*Trainer, error) {
	return train.New(model, lossFn, opt, backend, cfg)
}
