package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/digitnet/internal/tensor"
)

// OutputMode selects what the last layer of an MLP emits.
type OutputMode string

// Output modes.
const (
	// OutputLogits emits raw scores; train with CrossEntropyLoss.
	OutputLogits OutputMode = "logits"
	// OutputLogSoftmax emits log-probabilities; train with NLLLoss.
	OutputLogSoftmax OutputMode = "logsoftmax"
	// OutputSoftmax emits probabilities. Inference only.
	OutputSoftmax OutputMode = "softmax"
)

// ParseOutputMode converts a config string into an OutputMode.
func ParseOutputMode(s string) (OutputMode, error) {
	switch m := OutputMode(s); m {
	case OutputLogits, OutputLogSoftmax, OutputSoftmax:
		return m, nil
	default:
		return "", fmt.Errorf("unknown output mode %q (want logits, logsoftmax or softmax)", s)
	}
}

// MLPConfig describes a multilayer perceptron classifier.
type MLPConfig struct {
	InFeatures int
	Hidden     []int
	Classes    int
	Output     OutputMode
}

// NewMLP builds Linear -> ReLU -> ... -> Linear [-> (Log)Softmax].
//
// Layers are initialized in order from rng, so the same seed always yields
// the same weights.
//
// Example:
//
//	model := nn.NewMLP(nn.MLPConfig{
//	    InFeatures: 784, Hidden: []int{128, 64}, Classes: 10,
//	    Output: nn.OutputLogits,
//	}, backend, rng)
func NewMLP(cfg MLPConfig, backend tensor.Backend, rng *rand.Rand) *Sequential {
	model := NewSequential()
	in := cfg.InFeatures
	for _, h := range cfg.Hidden {
		model.Add(NewLinear(in, h, backend, rng))
		model.Add(NewReLU(backend))
		in = h
	}
	model.Add(NewLinear(in, cfg.Classes, backend, rng))

	switch cfg.Output {
	case OutputLogSoftmax:
		model.Add(NewLogSoftmax(backend))
	case OutputSoftmax:
		model.Add(NewSoftmax(backend))
	}
	return model
}

// LossFor returns the criterion that matches an output mode: NLLLoss for
// log-probabilities, CrossEntropyLoss otherwise.
func LossFor(mode OutputMode, backend tensor.Backend) Loss {
	if mode == OutputLogSoftmax {
		return NewNLLLoss(backend)
	}
	return NewCrossEntropyLoss(backend)
}

// CountParameters returns the total number of scalar weights in m.
func CountParameters(m Module) int {
	n := 0
	for _, p := range m.Parameters() {
		n += p.NumElements()
	}
	return n
}
