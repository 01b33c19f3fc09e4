package ops

import "github.com/born-ml/digitnet/internal/tensor"

// MulOp is element-wise multiplication: output = a * b.
//
// Backward: grad_a = outputGrad * b, grad_b = outputGrad * a.
type MulOp struct{ binary }

// NewMulOp creates a new MulOp.
func NewMulOp(a, b, output *tensor.Tensor) *MulOp {
	return &MulOp{binary{a: a, b: b, output: output}}
}

// Backward computes input gradients for multiplication.
func (op *MulOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{
		reduceBroadcast(backend.Mul(outputGrad, op.b), op.a.Shape()),
		reduceBroadcast(backend.Mul(outputGrad, op.a), op.b.Shape()),
	}
}

// ScaleOp multiplies by a constant: output = x * s.
type ScaleOp struct {
	unary
	scale float64
}

// NewScaleOp creates a new ScaleOp.
func NewScaleOp(input, output *tensor.Tensor, scale float64) *ScaleOp {
	return &ScaleOp{unary: unary{input: input, output: output}, scale: scale}
}

// Backward returns outputGrad * s.
func (op *ScaleOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{backend.MulScalar(outputGrad, op.scale)}
}
