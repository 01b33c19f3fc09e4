package cpu

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/digitnet/internal/tensor"
)

// ReLU computes max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.Tensor) *tensor.Tensor {
	out := x.Clone()
	for i, v := range out.Data() {
		if v < 0 {
			out.Data()[i] = 0
		}
	}
	return out
}

// Softmax normalizes each row of a [batch, classes] tensor into a probability
// distribution. Rows are shifted by their log-sum-exp, so large logits do not
// overflow.
func (cpu *CPUBackend) Softmax(x *tensor.Tensor) *tensor.Tensor {
	out := cpu.LogSoftmax(x)
	for i, v := range out.Data() {
		out.Data()[i] = math.Exp(v)
	}
	return out
}

// LogSoftmax computes log(softmax(x)) per row as x - logsumexp(x).
func (cpu *CPUBackend) LogSoftmax(x *tensor.Tensor) *tensor.Tensor {
	requireMatrix("log_softmax", x)
	out := x.Clone()
	for r := range out.Shape()[0] {
		row := out.Row(r)
		floats.AddConst(-floats.LogSumExp(row), row)
	}
	return out
}

func requireMatrix(op string, x *tensor.Tensor) {
	if x.Rank() != 2 {
		panic(fmt.Sprintf("%s: expected 2D tensor [batch, classes], got shape %v", op, x.Shape()))
	}
}
