package ops

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/digitnet/internal/tensor"
)

// reduceBroadcast sums grad down to target's shape, undoing the broadcast
// applied in the forward pass.
//
//	Forward:  a[1,4] + b[3,4] -> c[3,4]
//	Backward: grad_c[3,4] -> grad_a[1,4] (sum over dim 0)
func reduceBroadcast(grad *tensor.Tensor, target tensor.Shape) *tensor.Tensor {
	if grad.Shape().Equal(target) {
		return grad.Clone()
	}

	out := tensor.Zeros(target)
	gShape := grad.Shape()
	gStrides := gShape.ComputeStrides()
	tStrides := target.ComputeStrides()
	offset := len(gShape) - len(target)

	od := out.Data()
	for i, v := range grad.Data() {
		ti := 0
		rem := i
		for d, s := range gStrides {
			idx := rem / s
			rem %= s
			td := d - offset
			if td < 0 || target[td] == 1 {
				continue
			}
			ti += idx * tStrides[td]
		}
		od[ti] += v
	}
	return out
}

// probsFromLog turns log-probabilities back into probabilities.
func probsFromLog(logProbs *tensor.Tensor) *tensor.Tensor {
	out := logProbs.Clone()
	for i, v := range out.Data() {
		out.Data()[i] = math.Exp(v)
	}
	return out
}

// rowSums returns the sum of each row of a 2-D tensor.
func rowSums(x *tensor.Tensor) []float64 {
	rows := x.Shape()[0]
	out := make([]float64, rows)
	for r := range rows {
		out[r] = floats.Sum(x.Row(r))
	}
	return out
}
