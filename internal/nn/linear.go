package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/digitnet/internal/tensor"
)

// Linear implements a fully connected layer: y = x @ W.T + b.
//
//   - x has shape [batch, in_features]
//   - W has shape [out_features, in_features]
//   - b has shape [out_features]
//   - y has shape [batch, out_features]
//
// Weights use Xavier uniform initialization drawn from the supplied rng so
// that a fixed seed yields a fixed model. Biases start at zero.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	rng := rand.New(rand.NewPCG(42, 0))
//	layer := nn.NewLinear(784, 128, backend, rng)
//	out := layer.Forward(x) // [batch, 128]
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter
	bias        *Parameter
	backend     tensor.Backend
}

// NewLinear creates a Linear layer with a bias.
func NewLinear(inFeatures, outFeatures int, backend tensor.Backend, rng *rand.Rand) *Linear {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("NewLinear: features must be positive, got in=%d out=%d", inFeatures, outFeatures))
	}
	w := Xavier(inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures}, rng)
	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", w),
		bias:        NewParameter("bias", tensor.Zeros(tensor.Shape{outFeatures})),
		backend:     backend,
	}
}

// Forward computes x @ W.T + b.
//
// Panics if input is not [batch, in_features].
func (l *Linear) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Linear.Forward: expected 2D input [batch, features], got shape %v", shape))
	}
	if shape[1] != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, shape[1]))
	}

	wT := l.backend.Transpose(l.weight.Tensor())
	out := l.backend.MatMul(input, wT)

	// [out] -> [1, out] so the bias broadcasts over the batch.
	b := l.backend.Reshape(l.bias.Tensor(), tensor.Shape{1, l.outFeatures})
	return l.backend.Add(out, b)
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}
