package tensor

// Backend defines the kernels the rest of the module computes with.
// Every method allocates its result; inputs are never modified.
//
// Implementations:
//   - cpu.CPUBackend: gonum-backed reference kernels
//   - autodiff.Backend: decorator that records operations for backprop
type Backend interface {
	// Element-wise binary operations with NumPy broadcasting.
	Add(a, b *Tensor) *Tensor
	Mul(a, b *Tensor) *Tensor

	// MulScalar multiplies every element by s.
	MulScalar(x *Tensor, s float64) *Tensor

	// MatMul multiplies 2-D tensors: [M, K] @ [K, N] -> [M, N].
	MatMul(a, b *Tensor) *Tensor

	// Transpose swaps the two axes of a 2-D tensor.
	Transpose(x *Tensor) *Tensor

	// Reshape returns x with a new shape of equal element count.
	Reshape(x *Tensor, shape Shape) *Tensor

	// Activations along the last dimension of [batch, classes].
	ReLU(x *Tensor) *Tensor
	Softmax(x *Tensor) *Tensor
	LogSoftmax(x *Tensor) *Tensor

	// Losses reduce to a [1] tensor holding the batch mean.
	CrossEntropy(logits *Tensor, labels []int) *Tensor
	NLLLoss(logProbs *Tensor, labels []int) *Tensor

	// Argmax returns the index of the largest value in each row.
	Argmax(x *Tensor) []int

	// Name identifies the backend in logs.
	Name() string
}
