// Package ops defines the differentiable operations recorded by the autodiff
// graph. Each operation keeps references to its inputs and output from the
// forward pass and knows its local derivative rule.
//
// Supported operations:
//   - AddOp, MulOp, ScaleOp: element-wise arithmetic (with broadcasting)
//   - MatMulOp, TransposeOp, ReshapeOp: linear algebra and layout
//   - ReLUOp, SoftmaxOp, LogSoftmaxOp: activations
//   - CrossEntropyOp, NLLLossOp: scalar losses over integer labels
package ops

import "github.com/born-ml/digitnet/internal/tensor"

// Operation is a node of the computation graph.
type Operation interface {
	// Backward maps dL/dOutput to dL/dInput for each input, in Inputs order.
	// A nil entry means no gradient flows to that input.
	Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor

	// Inputs returns the tensors this operation consumed.
	Inputs() []*tensor.Tensor

	// Output returns the tensor this operation produced.
	Output() *tensor.Tensor
}

// unary holds the bookkeeping shared by single-input operations.
type unary struct {
	input  *tensor.Tensor
	output *tensor.Tensor
}

func (u unary) Inputs() []*tensor.Tensor { return []*tensor.Tensor{u.input} }
func (u unary) Output() *tensor.Tensor   { return u.output }

// binary holds the bookkeeping shared by two-input operations.
type binary struct {
	a, b   *tensor.Tensor
	output *tensor.Tensor
}

func (o binary) Inputs() []*tensor.Tensor { return []*tensor.Tensor{o.a, o.b} }
func (o binary) Output() *tensor.Tensor   { return o.output }
