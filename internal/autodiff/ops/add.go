package ops

import "github.com/born-ml/digitnet/internal/tensor"

// AddOp is element-wise addition: output = a + b.
//
// The gradient flows unchanged to both inputs, summed over any dimension
// that was broadcast in the forward pass.
type AddOp struct{ binary }

// NewAddOp creates a new AddOp.
func NewAddOp(a, b, output *tensor.Tensor) *AddOp {
	return &AddOp{binary{a: a, b: b, output: output}}
}

// Backward computes input gradients for addition.
func (op *AddOp) Backward(outputGrad *tensor.Tensor, _ tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{
		reduceBroadcast(outputGrad, op.a.Shape()),
		reduceBroadcast(outputGrad, op.b.Shape()),
	}
}
