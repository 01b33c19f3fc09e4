// Package autodiff implements reverse-mode automatic differentiation using
// the decorator pattern.
//
// Backend wraps any tensor.Backend and records every operation it performs
// into a Graph. Backward then walks the graph from a scalar loss and
// accumulates gradients into the leaves (model parameters) it is given.
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Graph().StartRecording()
//
//	y := backend.MatMul(x, w)
//	loss := backend.CrossEntropy(y, labels)
//	_, err := backend.Backward(loss, leaves...) // leaves []Leaf
package autodiff

import (
	"github.com/born-ml/digitnet/internal/autodiff/ops"
	"github.com/born-ml/digitnet/internal/tensor"
)

// Backend wraps a tensor.Backend and adds gradient tracking.
// It is not safe for concurrent use: one Backend drives one training loop.
type Backend struct {
	inner tensor.Backend
	graph *Graph
}

// New creates a Backend wrapping inner. Recording starts disabled.
func New(inner tensor.Backend) *Backend {
	return &Backend{
		inner: inner,
		graph: NewGraph(),
	}
}

// Graph returns the computation graph for manual control.
func (b *Backend) Graph() *Graph {
	return b.graph
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Add performs element-wise addition and records the operation.
func (b *Backend) Add(x, y *tensor.Tensor) *tensor.Tensor {
	out := b.inner.Add(x, y)
	b.graph.Record(ops.NewAddOp(x, y, out))
	return out
}

// Mul performs element-wise multiplication and records the operation.
func (b *Backend) Mul(x, y *tensor.Tensor) *tensor.Tensor {
	out := b.inner.Mul(x, y)
	b.graph.Record(ops.NewMulOp(x, y, out))
	return out
}

// MulScalar scales x and records the operation.
func (b *Backend) MulScalar(x *tensor.Tensor, s float64) *tensor.Tensor {
	out := b.inner.MulScalar(x, s)
	b.graph.Record(ops.NewScaleOp(x, out, s))
	return out
}

// MatMul performs matrix multiplication and records the operation.
func (b *Backend) MatMul(x, y *tensor.Tensor) *tensor.Tensor {
	out := b.inner.MatMul(x, y)
	b.graph.Record(ops.NewMatMulOp(x, y, out))
	return out
}

// Transpose transposes a 2-D tensor and records the operation.
func (b *Backend) Transpose(x *tensor.Tensor) *tensor.Tensor {
	out := b.inner.Transpose(x)
	b.graph.Record(ops.NewTransposeOp(x, out))
	return out
}

// Reshape reshapes a tensor and records the operation.
func (b *Backend) Reshape(x *tensor.Tensor, shape tensor.Shape) *tensor.Tensor {
	out := b.inner.Reshape(x, shape)
	b.graph.Record(ops.NewReshapeOp(x, out))
	return out
}

// ReLU applies max(0, x) and records the operation.
func (b *Backend) ReLU(x *tensor.Tensor) *tensor.Tensor {
	out := b.inner.ReLU(x)
	b.graph.Record(ops.NewReLUOp(x, out))
	return out
}

// Softmax applies row-wise softmax and records the operation.
func (b *Backend) Softmax(x *tensor.Tensor) *tensor.Tensor {
	out := b.inner.Softmax(x)
	b.graph.Record(ops.NewSoftmaxOp(x, out))
	return out
}

// LogSoftmax applies row-wise log-softmax and records the operation.
func (b *Backend) LogSoftmax(x *tensor.Tensor) *tensor.Tensor {
	out := b.inner.LogSoftmax(x)
	b.graph.Record(ops.NewLogSoftmaxOp(x, out))
	return out
}

// CrossEntropy computes the fused softmax + NLL loss and records it.
func (b *Backend) CrossEntropy(logits *tensor.Tensor, labels []int) *tensor.Tensor {
	out := b.inner.CrossEntropy(logits, labels)
	b.graph.Record(ops.NewCrossEntropyOp(logits, labels, out))
	return out
}

// NLLLoss computes the negative log-likelihood and records it.
func (b *Backend) NLLLoss(logProbs *tensor.Tensor, labels []int) *tensor.Tensor {
	out := b.inner.NLLLoss(logProbs, labels)
	b.graph.Record(ops.NewNLLLossOp(logProbs, labels, out))
	return out
}

// Argmax is not differentiable and is never recorded.
func (b *Backend) Argmax(x *tensor.Tensor) []int {
	return b.inner.Argmax(x)
}
