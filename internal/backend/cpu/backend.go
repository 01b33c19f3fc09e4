// Package cpu implements the reference CPU backend. Dense linear algebra is
// delegated to gonum; element-wise kernels are plain loops over float64 slices.
package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/digitnet/internal/tensor"
)

// CPUBackend implements tensor.Backend on the host CPU.
// It is stateless and safe to share.
type CPUBackend struct{}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.Tensor) *tensor.Tensor {
	if a.Shape().Equal(b.Shape()) {
		out := a.Clone()
		floats.Add(out.Data(), b.Data())
		return out
	}
	return broadcastBinary("add", a, b, func(x, y float64) float64 { return x + y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.Tensor) *tensor.Tensor {
	if a.Shape().Equal(b.Shape()) {
		out := a.Clone()
		floats.Mul(out.Data(), b.Data())
		return out
	}
	return broadcastBinary("mul", a, b, func(x, y float64) float64 { return x * y })
}

// MulScalar multiplies every element of x by s.
func (cpu *CPUBackend) MulScalar(x *tensor.Tensor, s float64) *tensor.Tensor {
	out := x.Clone()
	floats.Scale(s, out.Data())
	return out
}

// Reshape copies x into a tensor of the requested shape.
func (cpu *CPUBackend) Reshape(x *tensor.Tensor, shape tensor.Shape) *tensor.Tensor {
	if shape.NumElements() != x.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v (%d elements)",
			x.Shape(), x.NumElements(), shape, shape.NumElements()))
	}
	out, err := tensor.FromSlice(x.Data(), shape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return out
}
