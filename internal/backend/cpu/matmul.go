package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/digitnet/internal/tensor"
)

// MatMul performs matrix multiplication (M, K) @ (K, N) -> (M, N) via gonum's
// BLAS-backed Dense.Mul. Tensors are row-major, so their storage is wrapped
// directly without copying.
func (cpu *CPUBackend) MatMul(a, b *tensor.Tensor) *tensor.Tensor {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape)))
	}
	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]
	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}

	out := tensor.Zeros(tensor.Shape{m, n})
	dst := mat.NewDense(m, n, out.Data())
	dst.Mul(mat.NewDense(m, k, a.Data()), mat.NewDense(k, n, b.Data()))
	return out
}

// Transpose swaps the axes of a 2-D tensor.
func (cpu *CPUBackend) Transpose(x *tensor.Tensor) *tensor.Tensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("transpose: only 2D tensors supported, got shape %v", shape))
	}
	rows, cols := shape[0], shape[1]
	out := tensor.Zeros(tensor.Shape{cols, rows})
	dst := mat.NewDense(cols, rows, out.Data())
	dst.Copy(mat.NewDense(rows, cols, x.Data()).T())
	return out
}
