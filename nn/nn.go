// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers, losses and MLP builder for digit
// classifiers.
//
//	backend := autodiff.New(cpu.New())
//	model := nn.NewMLP(nn.MLPConfig{
//	    InFeatures: 784,
//	    Hidden:     []int{128, 64},
//	    Classes:    10,
//	    Output:     nn.OutputLogits,
//	}, backend, rand.New(rand.NewPCG(42, 1)))
//	lossFn := nn.LossFor(nn.OutputLogits, backend)
package nn

import (
	"math/rand/v2"

	"github.com/born-ml/digitnet/autodiff"
	"github.com/born-ml/digitnet/internal/nn"
	"github.com/born-ml/digitnet/tensor"
)

// Module is anything with a forward pass and trainable parameters.
type Module = nn.Module

// Parameter is a named trainable tensor with its accumulated gradient.
type Parameter = nn.Parameter

// NewParameter wraps t as a trainable parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// Leaves converts parameters into the leaf list autodiff.Backend.Backward
// expects.
func Leaves(params []*Parameter) []autodiff.Leaf {
	return nn.Leaves(params)
}

// Layers

// Linear computes x @ W^T + b.
type Linear = nn.Linear

// NewLinear creates a Xavier-initialized layer with zero bias.
func NewLinear(inFeatures, outFeatures int, backend tensor.Backend, rng *rand.Rand) *Linear {
	return nn.NewLinear(inFeatures, outFeatures, backend, rng)
}

// Sequential chains modules.
type Sequential = nn.Sequential

// NewSequential chains modules in order.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// Activations

type (
	ReLU       = nn.ReLU
	Softmax    = nn.Softmax
	LogSoftmax = nn.LogSoftmax
)

// NewReLU creates a ReLU activation.
func NewReLU(backend tensor.Backend) *ReLU { return nn.NewReLU(backend) }

// NewSoftmax creates a row-wise softmax.
func NewSoftmax(backend tensor.Backend) *Softmax { return nn.NewSoftmax(backend) }

// NewLogSoftmax creates a row-wise log-softmax.
func NewLogSoftmax(backend tensor.Backend) *LogSoftmax { return nn.NewLogSoftmax(backend) }

// Losses

// Loss reduces a batch of scores and labels to a scalar.
type Loss = nn.Loss

type (
	CrossEntropyLoss = nn.CrossEntropyLoss
	NLLLoss          = nn.NLLLoss
)

// NewCrossEntropyLoss expects raw logits.
func NewCrossEntropyLoss(backend tensor.Backend) *CrossEntropyLoss {
	return nn.NewCrossEntropyLoss(backend)
}

// NewNLLLoss expects log-probabilities.
func NewNLLLoss(backend tensor.Backend) *NLLLoss {
	return nn.NewNLLLoss(backend)
}

// MLP

// OutputMode selects the final layer of an MLP.
type OutputMode = nn.OutputMode

const (
	OutputLogits     = nn.OutputLogits
	OutputLogSoftmax = nn.OutputLogSoftmax
	OutputSoftmax    = nn.OutputSoftmax
)

// MLPConfig describes a multilayer perceptron.
type MLPConfig = nn.MLPConfig

// NewMLP builds Linear/ReLU blocks ending in the configured output.
func NewMLP(cfg MLPConfig, backend tensor.Backend, rng *rand.Rand) *Sequential {
	return nn.NewMLP(cfg, backend, rng)
}

// LossFor returns the loss matching an output mode.
func LossFor(mode OutputMode, backend tensor.Backend) Loss {
	return nn.LossFor(mode, backend)
}

// ParseOutputMode parses "logits", "logsoftmax" or "softmax".
func ParseOutputMode(s string) (OutputMode, error) {
	return nn.ParseOutputMode(s)
}

// Accuracy returns the fraction of predictions equal to labels.
func Accuracy(predictions, labels []int) float64 {
	return nn.Accuracy(predictions, labels)
}
