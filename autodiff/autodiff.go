// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff adds reverse-mode differentiation to any backend.
//
//	backend := autodiff.New(cpu.New())
//	backend.Graph().StartRecording()
//	loss := lossFn.Forward(model.Forward(x), labels)
//	grads, err := backend.Backward(loss, leaves...)
package autodiff

import (
	"github.com/born-ml/digitnet/internal/autodiff"
	"github.com/born-ml/digitnet/tensor"
)

// Backend records every operation it runs while its graph is recording.
type Backend = autodiff.Backend

// Graph is the record of operations since the last Clear.
type Graph = autodiff.Graph

// Leaf is a value gradients are delivered to, typically a parameter.
type Leaf = autodiff.Leaf

// Gradients maps each tensor reached by Backward to its gradient.
type Gradients = autodiff.Gradients

// Backward errors.
var (
	ErrNoGraph     = autodiff.ErrNoGraph
	ErrNotRecorded = autodiff.ErrNotRecorded
)

// New wraps inner with gradient recording.
func New(inner tensor.Backend) *Backend {
	return autodiff.New(inner)
}
