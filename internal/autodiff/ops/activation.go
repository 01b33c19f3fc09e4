package ops

import (
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/digitnet/internal/tensor"
)

// ReLUOp is max(0, x).
//
// Backward: dL/dx = dL/dy where x > 0, else 0.
type ReLUOp struct{ unary }

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(input, output *tensor.Tensor) *ReLUOp {
	return &ReLUOp{unary{input: input, output: output}}
}

// Backward masks the gradient with the sign of the input.
func (op *ReLUOp) Backward(outputGrad *tensor.Tensor, _ tensor.Backend) []*tensor.Tensor {
	grad := outputGrad.Clone()
	in := op.input.Data()
	for i := range grad.Data() {
		if in[i] <= 0 {
			grad.Data()[i] = 0
		}
	}
	return []*tensor.Tensor{grad}
}

// SoftmaxOp normalizes each row of [batch, classes].
//
// Backward, per row with y = softmax(x):
//
//	dL/dx_j = y_j * (dL/dy_j - Σ_i dL/dy_i * y_i)
type SoftmaxOp struct{ unary }

// NewSoftmaxOp creates a new SoftmaxOp.
func NewSoftmaxOp(input, output *tensor.Tensor) *SoftmaxOp {
	return &SoftmaxOp{unary{input: input, output: output}}
}

// Backward applies the softmax Jacobian-vector product.
func (op *SoftmaxOp) Backward(outputGrad *tensor.Tensor, _ tensor.Backend) []*tensor.Tensor {
	grad := tensor.ZerosLike(op.input)
	for r := range grad.Shape()[0] {
		y, gy, gx := op.output.Row(r), outputGrad.Row(r), grad.Row(r)
		dot := floats.Dot(gy, y)
		for j := range gx {
			gx[j] = y[j] * (gy[j] - dot)
		}
	}
	return []*tensor.Tensor{grad}
}

// LogSoftmaxOp is x - logsumexp(x) per row.
//
// Backward, per row with p = exp(output):
//
//	dL/dx_j = dL/dy_j - p_j * Σ_i dL/dy_i
type LogSoftmaxOp struct{ unary }

// NewLogSoftmaxOp creates a new LogSoftmaxOp.
func NewLogSoftmaxOp(input, output *tensor.Tensor) *LogSoftmaxOp {
	return &LogSoftmaxOp{unary{input: input, output: output}}
}

// Backward applies the log-softmax Jacobian-vector product.
func (op *LogSoftmaxOp) Backward(outputGrad *tensor.Tensor, _ tensor.Backend) []*tensor.Tensor {
	probs := probsFromLog(op.output)
	sums := rowSums(outputGrad)
	grad := tensor.ZerosLike(op.input)
	for r, sum := range sums {
		p, gy, gx := probs.Row(r), outputGrad.Row(r), grad.Row(r)
		for j := range gx {
			gx[j] = gy[j] - p[j]*sum
		}
	}
	return []*tensor.Tensor{grad}
}
