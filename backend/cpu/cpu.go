// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go backend, built on gonum.
package cpu

import (
	internalcpu "github.com/born-ml/digitnet/internal/backend/cpu"
	"github.com/born-ml/digitnet/tensor"
)

// Backend computes tensor operations on the CPU.
type Backend = internalcpu.CPUBackend

var _ tensor.Backend = (*Backend)(nil)

// New creates a CPU backend.
func New() *Backend {
	return internalcpu.New()
}
