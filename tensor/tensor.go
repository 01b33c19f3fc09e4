// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor exposes the dense float64 tensors digitnet computes with.
//
//	x, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
package tensor

import (
	"math/rand/v2"

	"github.com/born-ml/digitnet/internal/tensor"
)

// Tensor is a dense row-major float64 array.
type Tensor = tensor.Tensor

// Shape lists the size of each dimension.
type Shape = tensor.Shape

// Backend is the set of operations models run on.
type Backend = tensor.Backend

// New allocates a zero tensor, rejecting non-positive dimensions.
func New(shape Shape) (*Tensor, error) {
	return tensor.New(shape)
}

// FromSlice wraps data without copying.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// Zeros returns a zero-filled tensor.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Ones returns a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return tensor.Ones(shape)
}

// Uniform samples every element from [low, high).
func Uniform(shape Shape, low, high float64, rng *rand.Rand) *Tensor {
	return tensor.Uniform(shape, low, high, rng)
}
