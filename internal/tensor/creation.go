package tensor

import "math/rand/v2"

// Zeros creates a tensor filled with zeros. Panics on an invalid shape.
func Zeros(shape Shape) *Tensor {
	t, err := New(shape)
	if err != nil {
		panic(err)
	}
	return t
}

// ZerosLike creates a zero tensor with the same shape as t.
func ZerosLike(t *Tensor) *Tensor {
	return Zeros(t.Shape())
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return Full(shape, 1)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64) *Tensor {
	t := Zeros(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Scalar creates a single-element tensor of shape [1].
func Scalar(value float64) *Tensor {
	return Full(Shape{1}, value)
}

// Uniform fills a new tensor with values drawn from U(low, high) using rng.
//
// Passing an explicitly seeded generator keeps model initialization
// reproducible across runs.
func Uniform(shape Shape, low, high float64, rng *rand.Rand) *Tensor {
	t := Zeros(shape)
	span := high - low
	for i := range t.data {
		t.data[i] = low + rng.Float64()*span
	}
	return t
}
