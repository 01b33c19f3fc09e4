package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/digitnet/internal/tensor"
)

// CrossEntropy computes mean(-log_softmax(logits)[label]) over the batch.
// The softmax is fused into the loss using the log-sum-exp trick.
func (cpu *CPUBackend) CrossEntropy(logits *tensor.Tensor, labels []int) *tensor.Tensor {
	requireLabels("cross_entropy", logits, labels)
	var total float64
	for r, y := range labels {
		row := logits.Row(r)
		total += floats.LogSumExp(row) - row[y]
	}
	return tensor.Scalar(total / float64(len(labels)))
}

// NLLLoss computes mean(-logProbs[label]) over the batch. The input must
// already hold log-probabilities.
func (cpu *CPUBackend) NLLLoss(logProbs *tensor.Tensor, labels []int) *tensor.Tensor {
	requireLabels("nll_loss", logProbs, labels)
	var total float64
	for r, y := range labels {
		total -= logProbs.Row(r)[y]
	}
	return tensor.Scalar(total / float64(len(labels)))
}

func requireLabels(op string, scores *tensor.Tensor, labels []int) {
	requireMatrix(op, scores)
	batch, classes := scores.Shape()[0], scores.Shape()[1]
	if len(labels) != batch {
		panic(fmt.Sprintf("%s: %d labels for batch of %d", op, len(labels), batch))
	}
	for i, y := range labels {
		if y < 0 || y >= classes {
			panic(fmt.Sprintf("%s: label %d at index %d out of range [0, %d)", op, y, i, classes))
		}
	}
}
