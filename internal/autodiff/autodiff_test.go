package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/born-ml/digitnet/internal/autodiff"
	"github.com/born-ml/digitnet/internal/backend/cpu"
	"github.com/born-ml/digitnet/internal/tensor"
)

// leaf is a minimal gradient accumulator for tests.
type leaf struct {
	value *tensor.Tensor
	grad  *tensor.Tensor
}

func (l *leaf) Tensor() *tensor.Tensor { return l.value }

func (l *leaf) AccumulateGrad(g *tensor.Tensor) {
	if l.grad == nil {
		l.grad = tensor.ZerosLike(l.value)
	}
	for i, v := range g.Data() {
		l.grad.Data()[i] += v
	}
}

func newRecording() *autodiff.Backend {
	b := autodiff.New(cpu.New())
	b.Graph().StartRecording()
	return b
}

func mustTensor(t *testing.T, data []float64, shape tensor.Shape) *tensor.Tensor {
	t.Helper()
	x, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return x
}

// numericGrad evaluates f at x with finite differences, leaving x unchanged.
func numericGrad(x *tensor.Tensor, f func() float64) []float64 {
	orig := append([]float64(nil), x.Data()...)
	grad := fd.Gradient(nil, func(v []float64) float64 {
		copy(x.Data(), v)
		return f()
	}, orig, &fd.Settings{Formula: fd.Central, Step: 1e-6})
	copy(x.Data(), orig)
	return grad
}

func TestBackward_LinearReLUCrossEntropy(t *testing.T) {
	x := mustTensor(t, []float64{0.5, -1, 2, 1.5, 0.3, -0.7}, tensor.Shape{2, 3})
	w := mustTensor(t, []float64{0.1, -0.2, 0.3, 0.4, 0.5, -0.6, -0.7, 0.8, 0.9, 0.05, -0.15, 0.25}, tensor.Shape{4, 3})
	bias := mustTensor(t, []float64{0.01, -0.02, 0.03, 0.5}, tensor.Shape{1, 4})
	labels := []int{1, 3}

	forward := func(b tensor.Backend) *tensor.Tensor {
		h := b.Add(b.MatMul(x, b.Transpose(w)), bias)
		return b.CrossEntropy(b.ReLU(h), labels)
	}

	b := newRecording()
	wLeaf, bLeaf := &leaf{value: w}, &leaf{value: bias}
	_, err := b.Backward(forward(b), wLeaf, bLeaf)
	require.NoError(t, err)

	plain := cpu.New()
	eval := func() float64 { return forward(plain).Item() }
	assert.InDeltaSlice(t, numericGrad(w, eval), wLeaf.grad.Data(), 1e-6)
	assert.InDeltaSlice(t, numericGrad(bias, eval), bLeaf.grad.Data(), 1e-6)
}

func TestBackward_SoftmaxAndLogSoftmax(t *testing.T) {
	z := mustTensor(t, []float64{1, 2, -1, 0.5, 0, 0.25}, tensor.Shape{2, 3})
	labels := []int{2, 0}

	cases := map[string]func(b tensor.Backend) *tensor.Tensor{
		"softmax":     func(b tensor.Backend) *tensor.Tensor { return b.NLLLoss(b.Softmax(z), labels) },
		"log_softmax": func(b tensor.Backend) *tensor.Tensor { return b.NLLLoss(b.LogSoftmax(z), labels) },
		"scaled":      func(b tensor.Backend) *tensor.Tensor { return b.CrossEntropy(b.MulScalar(z, 3), labels) },
		"mul":         func(b tensor.Backend) *tensor.Tensor { return b.CrossEntropy(b.Mul(z, z), labels) },
		"reshape": func(b tensor.Backend) *tensor.Tensor {
			flat := b.Reshape(z, tensor.Shape{6})
			return b.CrossEntropy(b.Reshape(flat, tensor.Shape{2, 3}), labels)
		},
	}
	for name, forward := range cases {
		t.Run(name, func(t *testing.T) {
			b := newRecording()
			zLeaf := &leaf{value: z}
			_, err := b.Backward(forward(b), zLeaf)
			require.NoError(t, err)

			plain := cpu.New()
			want := numericGrad(z, func() float64 { return forward(plain).Item() })
			assert.InDeltaSlice(t, want, zLeaf.grad.Data(), 1e-6)
		})
	}
}

func TestBackward_CrossEntropyEqualsLogSoftmaxNLL(t *testing.T) {
	z := mustTensor(t, []float64{3, 1, 0.2, -2, 0, 4, 1, 1, 1}, tensor.Shape{3, 3})
	labels := []int{0, 2, 1}

	fused := newRecording()
	fusedLeaf := &leaf{value: z}
	fusedLoss := fused.CrossEntropy(z, labels)
	_, err := fused.Backward(fusedLoss, fusedLeaf)
	require.NoError(t, err)

	split := newRecording()
	splitLeaf := &leaf{value: z}
	splitLoss := split.NLLLoss(split.LogSoftmax(z), labels)
	_, err = split.Backward(splitLoss, splitLeaf)
	require.NoError(t, err)

	assert.InDelta(t, fusedLoss.Item(), splitLoss.Item(), 1e-12)
	assert.InDeltaSlice(t, fusedLeaf.grad.Data(), splitLeaf.grad.Data(), 1e-12)
}

func TestBackward_SharedInputAccumulates(t *testing.T) {
	b := newRecording()
	x := mustTensor(t, []float64{0.1, 0.2, 0.3, 0.4}, tensor.Shape{2, 2})
	xLeaf := &leaf{value: x}

	loss := b.NLLLoss(b.Add(x, x), []int{0, 1})
	_, err := b.Backward(loss, xLeaf)
	require.NoError(t, err)

	// d/dx of -(2x[0,0] + 2x[1,1]) / 2
	assert.Equal(t, []float64{-1, 0, 0, -1}, xLeaf.grad.Data())
}

func TestBackward_BroadcastBiasReduces(t *testing.T) {
	b := newRecording()
	x := tensor.Zeros(tensor.Shape{3, 2})
	bias := mustTensor(t, []float64{0, 0}, tensor.Shape{2})
	biasLeaf := &leaf{value: bias}

	loss := b.NLLLoss(b.Add(x, bias), []int{0, 0, 1})
	_, err := b.Backward(loss, biasLeaf)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{2}, biasLeaf.grad.Shape())
	assert.InDeltaSlice(t, []float64{-2.0 / 3, -1.0 / 3}, biasLeaf.grad.Data(), 1e-12)
}

func TestBackward_AccumulatesAcrossCalls(t *testing.T) {
	z := mustTensor(t, []float64{1, 2, 3}, tensor.Shape{1, 3})
	zLeaf := &leaf{value: z}

	b := newRecording()
	_, err := b.Backward(b.CrossEntropy(z, []int{0}), zLeaf)
	require.NoError(t, err)
	once := append([]float64(nil), zLeaf.grad.Data()...)

	b.Graph().Clear()
	_, err = b.Backward(b.CrossEntropy(z, []int{0}), zLeaf)
	require.NoError(t, err)

	for i := range once {
		assert.InDelta(t, 2*once[i], zLeaf.grad.Data()[i], 1e-12)
	}
}

func TestBackward_OnlyVisitsRootDependencies(t *testing.T) {
	b := newRecording()
	z := mustTensor(t, []float64{1, 2}, tensor.Shape{1, 2})
	other := mustTensor(t, []float64{3, 4}, tensor.Shape{1, 2})

	unrelated := b.ReLU(other)
	loss := b.CrossEntropy(z, []int{1})

	grads, err := b.Backward(loss)
	require.NoError(t, err)
	assert.Contains(t, grads, z)
	assert.NotContains(t, grads, unrelated)
	assert.NotContains(t, grads, other)
}

func TestBackward_Errors(t *testing.T) {
	b := autodiff.New(cpu.New())
	z := mustTensor(t, []float64{1, 2}, tensor.Shape{1, 2})

	// Recording disabled: nothing lands on the graph.
	loss := b.CrossEntropy(z, []int{0})
	assert.Equal(t, 0, b.Graph().NumOps())
	_, err := b.Backward(loss)
	assert.ErrorIs(t, err, autodiff.ErrNoGraph)

	b.Graph().StartRecording()
	b.ReLU(z)
	_, err = b.Backward(loss)
	assert.ErrorIs(t, err, autodiff.ErrNotRecorded)

	_, err = b.Backward(b.ReLU(z))
	assert.Error(t, err, "non-scalar root must be rejected")
}

func TestGraph_ClearKeepsRecordingState(t *testing.T) {
	b := newRecording()
	b.ReLU(tensor.Ones(tensor.Shape{2}))
	assert.Equal(t, 1, b.Graph().NumOps())

	b.Graph().Clear()
	assert.Equal(t, 0, b.Graph().NumOps())
	assert.True(t, b.Graph().IsRecording())

	b.Graph().StopRecording()
	b.ReLU(tensor.Ones(tensor.Shape{2}))
	assert.Equal(t, 0, b.Graph().NumOps())
}

func TestBackward_StopsRecordingDuringPass(t *testing.T) {
	b := newRecording()
	z := mustTensor(t, []float64{1, 2}, tensor.Shape{1, 2})
	loss := b.CrossEntropy(z, []int{0})
	before := b.Graph().NumOps()

	_, err := b.Backward(loss)
	require.NoError(t, err)
	assert.Equal(t, before, b.Graph().NumOps())
	assert.True(t, b.Graph().IsRecording())
	assert.Equal(t, "Autodiff(CPU)", b.Name())
}
