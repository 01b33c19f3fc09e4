package nn

import (
	"github.com/born-ml/digitnet/internal/tensor"
)

// ReLU applies max(0, x) element-wise.
type ReLU struct {
	backend tensor.Backend
}

// NewReLU creates a ReLU activation module.
func NewReLU(backend tensor.Backend) *ReLU {
	return &ReLU{backend: backend}
}

// Forward applies ReLU.
func (r *ReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	return r.backend.ReLU(input)
}

// Parameters returns nil; ReLU has no trainable parameters.
func (r *ReLU) Parameters() []*Parameter {
	return nil
}

// Softmax normalizes each row of a [batch, classes] tensor into
// probabilities.
//
// Do not end a model with Softmax when training with CrossEntropyLoss: the
// loss applies its own softmax. Use LogSoftmax with NLLLoss, or raw logits
// with CrossEntropyLoss.
type Softmax struct {
	backend tensor.Backend
}

// NewSoftmax creates a Softmax module.
func NewSoftmax(backend tensor.Backend) *Softmax {
	return &Softmax{backend: backend}
}

// Forward applies softmax along the class dimension.
func (s *Softmax) Forward(input *tensor.Tensor) *tensor.Tensor {
	return s.backend.Softmax(input)
}

// Parameters returns nil.
func (s *Softmax) Parameters() []*Parameter {
	return nil
}

// LogSoftmax computes log(softmax(x)) row-wise with the log-sum-exp trick.
// Pair it with NLLLoss.
type LogSoftmax struct {
	backend tensor.Backend
}

// NewLogSoftmax creates a LogSoftmax module.
func NewLogSoftmax(backend tensor.Backend) *LogSoftmax {
	return &LogSoftmax{backend: backend}
}

// Forward applies log-softmax along the class dimension.
func (s *LogSoftmax) Forward(input *tensor.Tensor) *tensor.Tensor {
	return s.backend.LogSoftmax(input)
}

// Parameters returns nil.
func (s *LogSoftmax) Parameters() []*Parameter {
	return nil
}
