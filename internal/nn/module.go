// Package nn provides the layers, containers and losses digitnet models are
// built from.
//
// Modules compute through a tensor.Backend. Pass an *autodiff.Backend to
// have every Forward call recorded for backpropagation, or a plain CPU
// backend for inference.
package nn

import (
	"github.com/born-ml/digitnet/internal/tensor"
)

// Module is the interface every layer and container implements.
//
// Example:
//
//	type MyLayer struct {
//	    weight *nn.Parameter
//	}
//
//	func (l *MyLayer) Forward(x *tensor.Tensor) *tensor.Tensor {
//	    // ...
//	}
//
//	func (l *MyLayer) Parameters() []*nn.Parameter {
//	    return []*nn.Parameter{l.weight}
//	}
type Module interface {
	// Forward computes the output of the module for a batch of inputs.
	Forward(input *tensor.Tensor) *tensor.Tensor

	// Parameters returns the trainable parameters, in a stable order.
	// Modules without parameters return nil.
	Parameters() []*Parameter
}
