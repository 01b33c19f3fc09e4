// Package optim implements the optimizers that update model parameters from
// their accumulated gradients.
//
// Optimizers read nn.Parameter.Grad directly, so one training step is:
//
//	optimizer.ZeroGrad()
//	loss := criterion.Forward(model.Forward(x), labels)
//	backend.Backward(loss, nn.Leaves(model.Parameters())...)
//	optimizer.Step()
//
// ZeroGrad must run before every backward pass: gradients accumulate.
package optim

import (
	"github.com/born-ml/digitnet/internal/nn"
)

// Optimizer updates a fixed set of parameters in place.
type Optimizer interface {
	// ZeroGrad resets the gradient accumulator of every parameter to zero.
	ZeroGrad()

	// Step applies one update using the current accumulated gradients.
	// Parameters whose gradient is nil are skipped.
	Step()

	// LR returns the learning rate.
	LR() float64
}

func zeroGrads(params []*nn.Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
