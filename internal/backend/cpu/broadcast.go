package cpu

import (
	"fmt"

	"github.com/born-ml/digitnet/internal/tensor"
)

// broadcastBinary applies f element-wise over the broadcast of a and b.
func broadcastBinary(op string, a, b *tensor.Tensor, f func(x, y float64) float64) *tensor.Tensor {
	outShape, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	out := tensor.Zeros(outShape)
	aStrides := broadcastStrides(a.Shape(), outShape)
	bStrides := broadcastStrides(b.Shape(), outShape)
	outStrides := outShape.ComputeStrides()

	ad, bd, od := a.Data(), b.Data(), out.Data()
	for i := range od {
		ai, bi := 0, 0
		rem := i
		for d, s := range outStrides {
			idx := rem / s
			rem %= s
			ai += idx * aStrides[d]
			bi += idx * bStrides[d]
		}
		od[i] = f(ad[ai], bd[bi])
	}
	return out
}

// broadcastStrides maps each output dimension to the stride of the source
// tensor, using 0 where the source is broadcast along that dimension.
func broadcastStrides(src, out tensor.Shape) []int {
	strides := make([]int, len(out))
	srcStrides := src.ComputeStrides()
	offset := len(out) - len(src)
	for i := range out {
		j := i - offset
		if j < 0 || src[j] == 1 {
			continue
		}
		strides[i] = srcStrides[j]
	}
	return strides
}
