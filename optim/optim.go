// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides SGD and Adam.
//
//	opt := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.01, Momentum: 0.9})
//	opt.ZeroGrad()
//	// forward, backward
//	opt.Step()
package optim

import (
	"github.com/born-ml/digitnet/internal/optim"
	"github.com/born-ml/digitnet/nn"
)

// Optimizer updates parameters from their accumulated gradients.
type Optimizer = optim.Optimizer

// SGD with optional momentum.
type (
	SGD       = optim.SGD
	SGDConfig = optim.SGDConfig
)

// NewSGD creates an SGD optimizer.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	return optim.NewSGD(params, config)
}

// Adam with bias correction.
type (
	Adam       = optim.Adam
	AdamConfig = optim.AdamConfig
)

// NewAdam creates an Adam optimizer.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	return optim.NewAdam(params, config)
}
