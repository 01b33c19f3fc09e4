package ops

import "github.com/born-ml/digitnet/internal/tensor"

// MatMulOp is matrix multiplication: output = a @ b.
//
// Backward:
//   - dL/dA = outputGrad @ B^T
//   - dL/dB = A^T @ outputGrad
type MatMulOp struct{ binary }

// NewMatMulOp creates a new MatMulOp.
func NewMatMulOp(a, b, output *tensor.Tensor) *MatMulOp {
	return &MatMulOp{binary{a: a, b: b, output: output}}
}

// Backward computes input gradients for matrix multiplication.
func (op *MatMulOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	gradA := backend.MatMul(outputGrad, backend.Transpose(op.b))
	gradB := backend.MatMul(backend.Transpose(op.a), outputGrad)
	return []*tensor.Tensor{gradA, gradB}
}
