package nn

import (
	"github.com/born-ml/digitnet/internal/tensor"
)

// Loss reduces model outputs and integer class labels to a scalar [1]
// tensor holding the batch mean.
type Loss interface {
	Forward(scores *tensor.Tensor, labels []int) *tensor.Tensor
}

// CrossEntropyLoss is the fused softmax + negative log-likelihood loss for
// multi-class classification. It expects raw, unnormalized scores.
//
//	loss = mean_i( logsumexp(z_i) - z_i[y_i] )
//
// The gradient with respect to the scores is (softmax(z) - onehot(y)) / N.
//
// Example:
//
//	criterion := nn.NewCrossEntropyLoss(backend)
//	loss := criterion.Forward(logits, labels)
//	backend.Backward(loss, nn.Leaves(model.Parameters())...)
type CrossEntropyLoss struct {
	backend tensor.Backend
}

// NewCrossEntropyLoss creates a cross-entropy criterion.
func NewCrossEntropyLoss(backend tensor.Backend) *CrossEntropyLoss {
	return &CrossEntropyLoss{backend: backend}
}

// Forward computes the mean cross-entropy over the batch.
func (c *CrossEntropyLoss) Forward(logits *tensor.Tensor, labels []int) *tensor.Tensor {
	return c.backend.CrossEntropy(logits, labels)
}

// NLLLoss is the negative log-likelihood loss. It expects log-probabilities,
// i.e. the output of LogSoftmax.
//
// NLLLoss(LogSoftmax(z)) equals CrossEntropyLoss(z).
type NLLLoss struct {
	backend tensor.Backend
}

// NewNLLLoss creates a negative log-likelihood criterion.
func NewNLLLoss(backend tensor.Backend) *NLLLoss {
	return &NLLLoss{backend: backend}
}

// Forward computes mean_i(-logProbs[i, y_i]).
func (n *NLLLoss) Forward(logProbs *tensor.Tensor, labels []int) *tensor.Tensor {
	return n.backend.NLLLoss(logProbs, labels)
}

// Accuracy returns the fraction of rows whose argmax equals the label.
// Returns 0 for an empty batch.
func Accuracy(predictions, labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}
	return float64(CountCorrect(predictions, labels)) / float64(len(labels))
}

// CountCorrect returns how many predictions equal their label.
func CountCorrect(predictions, labels []int) int {
	correct := 0
	for i, y := range labels {
		if i < len(predictions) && predictions[i] == y {
			correct++
		}
	}
	return correct
}
