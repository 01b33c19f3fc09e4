package autodiff

import (
	"fmt"

	"github.com/born-ml/digitnet/internal/tensor"
)

// Leaf is a tensor that owns a gradient accumulator, typically a model
// parameter.
type Leaf interface {
	// Tensor returns the value the graph saw as an input.
	Tensor() *tensor.Tensor
	// AccumulateGrad adds grad to the existing accumulator.
	AccumulateGrad(grad *tensor.Tensor)
}

// Backward differentiates the scalar loss with respect to everything it
// depends on, seeding dLoss/dLoss = 1, and adds each leaf's gradient into
// its accumulator. Leaves the loss does not depend on are left untouched.
//
// Accumulation is additive: callers must zero the leaves' gradients before
// each step or gradients from earlier batches leak into the update.
func (b *Backend) Backward(loss *tensor.Tensor, leaves ...Leaf) (Gradients, error) {
	if loss.NumElements() != 1 {
		return nil, fmt.Errorf("autodiff: backward needs a scalar loss, got shape %v", loss.Shape())
	}
	grads, err := b.graph.Backward(loss, tensor.Ones(loss.Shape()), b.inner)
	if err != nil {
		return nil, err
	}
	for _, leaf := range leaves {
		if g, ok := grads[leaf.Tensor()]; ok {
			leaf.AccumulateGrad(g)
		}
	}
	return grads, nil
}
