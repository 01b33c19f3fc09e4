package nn

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/digitnet/internal/autodiff"
	"github.com/born-ml/digitnet/internal/tensor"
)

// Parameter is a trainable tensor owned by a module, together with its
// gradient accumulator.
//
// The accumulator is nil until the first backward pass or ZeroGrad. Backward
// passes add into it; only ZeroGrad resets it.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	weight.ZeroGrad()
//	backend.Backward(loss, weight) // weight.Grad() now holds dLoss/dWeight
type Parameter struct {
	name   string
	tensor *tensor.Tensor
	grad   *tensor.Tensor
}

// NewParameter creates a parameter around an initialized tensor.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{name: name, tensor: t}
}

// Name returns the parameter name (e.g. "weight", "bias").
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// Grad returns the gradient accumulator, or nil if no gradient exists yet.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// NumElements returns the number of scalar weights in the parameter.
func (p *Parameter) NumElements() int {
	return p.tensor.NumElements()
}

// ZeroGrad sets every entry of the gradient accumulator to zero, allocating
// it on first use.
func (p *Parameter) ZeroGrad() {
	if p.grad == nil {
		p.grad = tensor.ZerosLike(p.tensor)
		return
	}
	clear(p.grad.Data())
}

// AccumulateGrad adds grad into the accumulator.
//
// Panics if grad does not have the parameter's shape.
func (p *Parameter) AccumulateGrad(grad *tensor.Tensor) {
	if !grad.Shape().Equal(p.tensor.Shape()) {
		panic(fmt.Sprintf("Parameter %q: gradient shape %v does not match %v", p.name, grad.Shape(), p.tensor.Shape()))
	}
	if p.grad == nil {
		p.grad = grad.Clone()
		return
	}
	floats.Add(p.grad.Data(), grad.Data())
}

// Leaves converts parameters into the leaf list Backward expects.
func Leaves(params []*Parameter) []autodiff.Leaf {
	leaves := make([]autodiff.Leaf, len(params))
	for i, p := range params {
		leaves[i] = p
	}
	return leaves
}
