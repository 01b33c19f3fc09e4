package cpu

import (
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/digitnet/internal/tensor"
)

// Argmax returns the column index of the maximum value in each row.
// Ties resolve to the lowest index.
func (cpu *CPUBackend) Argmax(x *tensor.Tensor) []int {
	requireMatrix("argmax", x)
	out := make([]int, x.Shape()[0])
	for r := range out {
		out[r] = floats.MaxIdx(x.Row(r))
	}
	return out
}
