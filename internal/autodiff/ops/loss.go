package ops

import (
	"github.com/born-ml/digitnet/internal/tensor"
)

// CrossEntropyOp is the fused softmax + negative log-likelihood loss over
// raw scores:
//
//	L = mean_b( logsumexp(z_b) - z_b[y_b] )
//
// Backward:
//
//	dL/dz[b,i] = (softmax(z_b)_i - 1{i == y_b}) / batch
//
// Labels are integer class indices and receive no gradient.
type CrossEntropyOp struct {
	unary
	labels []int
}

// NewCrossEntropyOp creates a new CrossEntropyOp.
func NewCrossEntropyOp(logits *tensor.Tensor, labels []int, output *tensor.Tensor) *CrossEntropyOp {
	return &CrossEntropyOp{unary: unary{input: logits, output: output}, labels: labels}
}

// Backward computes the gradient with respect to the logits.
func (op *CrossEntropyOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	grad := backend.Softmax(op.input)
	scale := outputGrad.Item() / float64(len(op.labels))
	for b, y := range op.labels {
		grad.Row(b)[y] -= 1
	}
	return []*tensor.Tensor{backend.MulScalar(grad, scale)}
}

// NLLLossOp is the negative log-likelihood over log-probabilities:
//
//	L = -mean_b( x[b, y_b] )
//
// Backward: dL/dx[b,i] = -1{i == y_b} / batch.
type NLLLossOp struct {
	unary
	labels []int
}

// NewNLLLossOp creates a new NLLLossOp.
func NewNLLLossOp(logProbs *tensor.Tensor, labels []int, output *tensor.Tensor) *NLLLossOp {
	return &NLLLossOp{unary: unary{input: logProbs, output: output}, labels: labels}
}

// Backward scatters -1/batch into the label positions.
func (op *NLLLossOp) Backward(outputGrad *tensor.Tensor, _ tensor.Backend) []*tensor.Tensor {
	grad := tensor.ZerosLike(op.input)
	scale := outputGrad.Item() / float64(len(op.labels))
	for b, y := range op.labels {
		grad.Row(b)[y] = -scale
	}
	return []*tensor.Tensor{grad}
}
