package nn

import (
	"math"
	"math/rand/v2"

	"github.com/born-ml/digitnet/internal/tensor"
)

// Xavier draws a tensor from the Xavier/Glorot uniform distribution
// U(-a, a) with a = sqrt(6 / (fanIn + fanOut)).
//
// Reference: Glorot & Bengio, "Understanding the difficulty of training
// deep feedforward neural networks", 2010.
func Xavier(fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return tensor.Uniform(shape, -bound, bound, rng)
}
