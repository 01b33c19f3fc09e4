package nn_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/digitnet/internal/autodiff"
	"github.com/born-ml/digitnet/internal/backend/cpu"
	"github.com/born-ml/digitnet/internal/nn"
	"github.com/born-ml/digitnet/internal/tensor"
)

func mustTensor(t *testing.T, data []float64, shape tensor.Shape) *tensor.Tensor {
	t.Helper()
	x, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return x
}

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

func TestParameter_GradLifecycle(t *testing.T) {
	p := nn.NewParameter("w", mustTensor(t, []float64{1, 2, 3}, tensor.Shape{3}))
	assert.Equal(t, "w", p.Name())
	assert.Equal(t, 3, p.NumElements())
	assert.Nil(t, p.Grad(), "no gradient before the first backward pass")

	p.ZeroGrad()
	require.NotNil(t, p.Grad())
	assert.Equal(t, []float64{0, 0, 0}, p.Grad().Data())

	p.AccumulateGrad(mustTensor(t, []float64{0.5, 1, -1}, tensor.Shape{3}))
	p.AccumulateGrad(mustTensor(t, []float64{0.5, 1, -1}, tensor.Shape{3}))
	assert.Equal(t, []float64{1, 2, -2}, p.Grad().Data())

	p.ZeroGrad()
	assert.Equal(t, []float64{0, 0, 0}, p.Grad().Data())
}

func TestParameter_AccumulateCopiesFirstGradient(t *testing.T) {
	p := nn.NewParameter("w", mustTensor(t, []float64{1, 2}, tensor.Shape{2}))
	g := mustTensor(t, []float64{1, 1}, tensor.Shape{2})
	p.AccumulateGrad(g)
	p.AccumulateGrad(g)
	assert.Equal(t, []float64{1, 1}, g.Data(), "incoming gradient must not be mutated")
	assert.Equal(t, []float64{2, 2}, p.Grad().Data())
}

func TestParameter_AccumulateShapeMismatchPanics(t *testing.T) {
	p := nn.NewParameter("w", mustTensor(t, []float64{1, 2}, tensor.Shape{2}))
	assert.Panics(t, func() {
		p.AccumulateGrad(mustTensor(t, []float64{1, 2, 3}, tensor.Shape{3}))
	})
}

func TestXavier_BoundsAndDeterminism(t *testing.T) {
	bound := math.Sqrt(6.0 / float64(64+32))
	a := nn.Xavier(64, 32, tensor.Shape{32, 64}, newRNG(7))
	b := nn.Xavier(64, 32, tensor.Shape{32, 64}, newRNG(7))
	assert.Equal(t, a.Data(), b.Data())
	for _, v := range a.Data() {
		assert.GreaterOrEqual(t, v, -bound)
		assert.Less(t, v, bound)
	}
}

func TestLinear_Forward(t *testing.T) {
	backend := cpu.New()
	layer := nn.NewLinear(3, 2, backend, newRNG(1))
	require.NoError(t, layer.Weight().Tensor().CopyFrom(mustTensor(t, []float64{1, 0, 0, 0, 1, 1}, tensor.Shape{2, 3})))
	require.NoError(t, layer.Bias().Tensor().CopyFrom(mustTensor(t, []float64{0.5, -1}, tensor.Shape{2})))

	x := mustTensor(t, []float64{1, 2, 3, -1, 0, 4}, tensor.Shape{2, 3})
	y := layer.Forward(x)

	assert.Equal(t, tensor.Shape{2, 2}, y.Shape())
	assert.InDeltaSlice(t, []float64{1.5, 4, -0.5, 3}, y.Data(), 1e-12)
	assert.Equal(t, 3, layer.InFeatures())
	assert.Equal(t, 2, layer.OutFeatures())
	assert.Len(t, layer.Parameters(), 2)
}

func TestLinear_ZeroBiasAtInit(t *testing.T) {
	layer := nn.NewLinear(4, 3, cpu.New(), newRNG(1))
	assert.Equal(t, []float64{0, 0, 0}, layer.Bias().Tensor().Data())
	assert.Equal(t, tensor.Shape{3, 4}, layer.Weight().Tensor().Shape())
}

func TestLinear_ForwardPanicsOnWrongWidth(t *testing.T) {
	layer := nn.NewLinear(3, 2, cpu.New(), newRNG(1))
	assert.Panics(t, func() {
		layer.Forward(tensor.Zeros(tensor.Shape{1, 4}))
	})
	assert.Panics(t, func() {
		layer.Forward(tensor.Zeros(tensor.Shape{3}))
	})
}

func TestLinear_BackwardBiasGradientSumsToZero(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Graph().StartRecording()
	layer := nn.NewLinear(4, 3, backend, newRNG(3))
	for _, p := range layer.Parameters() {
		p.ZeroGrad()
	}

	x := tensor.Uniform(tensor.Shape{5, 4}, -1, 1, newRNG(4))
	loss := nn.NewCrossEntropyLoss(backend).Forward(layer.Forward(x), []int{0, 1, 2, 0, 1})
	_, err := backend.Backward(loss, nn.Leaves(layer.Parameters())...)
	require.NoError(t, err)

	require.NotNil(t, layer.Weight().Grad())
	assert.Equal(t, tensor.Shape{3, 4}, layer.Weight().Grad().Shape())

	// Each row of softmax - onehot sums to zero, so the bias gradient does too.
	sum := 0.0
	for _, g := range layer.Bias().Grad().Data() {
		sum += g
	}
	assert.InDelta(t, 0, sum, 1e-12)
}

func TestActivations(t *testing.T) {
	backend := cpu.New()
	x := mustTensor(t, []float64{-1, 0, 2, 1, 1, 1}, tensor.Shape{2, 3})

	assert.Equal(t, []float64{0, 0, 2, 1, 1, 1}, nn.NewReLU(backend).Forward(x).Data())

	probs := nn.NewSoftmax(backend).Forward(x)
	assert.InDelta(t, 1.0, probs.Data()[0]+probs.Data()[1]+probs.Data()[2], 1e-12)
	assert.InDelta(t, 1.0/3, probs.Data()[4], 1e-12)

	logProbs := nn.NewLogSoftmax(backend).Forward(x)
	for i, p := range probs.Data() {
		assert.InDelta(t, math.Log(p), logProbs.Data()[i], 1e-12)
	}

	assert.Nil(t, nn.NewReLU(backend).Parameters())
	assert.Nil(t, nn.NewSoftmax(backend).Parameters())
	assert.Nil(t, nn.NewLogSoftmax(backend).Parameters())
}

func TestLosses_CrossEntropyMatchesNLLOfLogSoftmax(t *testing.T) {
	backend := cpu.New()
	z := tensor.Uniform(tensor.Shape{8, 10}, -3, 3, newRNG(11))
	labels := []int{0, 1, 2, 3, 4, 5, 6, 7}

	ce := nn.NewCrossEntropyLoss(backend).Forward(z, labels).Item()
	nll := nn.NewNLLLoss(backend).Forward(nn.NewLogSoftmax(backend).Forward(z), labels).Item()
	assert.InDelta(t, ce, nll, 1e-12)
}

func TestLossFor(t *testing.T) {
	backend := cpu.New()
	assert.IsType(t, &nn.NLLLoss{}, nn.LossFor(nn.OutputLogSoftmax, backend))
	assert.IsType(t, &nn.CrossEntropyLoss{}, nn.LossFor(nn.OutputLogits, backend))
}

func TestAccuracy(t *testing.T) {
	assert.InDelta(t, 0.75, nn.Accuracy([]int{1, 2, 3, 4}, []int{1, 2, 3, 0}), 1e-12)
	assert.Equal(t, 3, nn.CountCorrect([]int{1, 2, 3, 4}, []int{1, 2, 3, 0}))
	assert.Zero(t, nn.Accuracy(nil, nil))
}

func TestSequential(t *testing.T) {
	backend := cpu.New()
	rng := newRNG(5)
	l1 := nn.NewLinear(4, 3, backend, rng)
	l2 := nn.NewLinear(3, 2, backend, rng)
	model := nn.NewSequential(l1, nn.NewReLU(backend))
	model.Add(l2)

	assert.Equal(t, 3, model.Len())
	assert.Same(t, l2, model.Module(2))
	assert.Same(t, l2, model.Last())
	assert.Equal(t, 4, model.InFeatures())
	assert.Panics(t, func() { model.Module(3) })

	params := model.Parameters()
	require.Len(t, params, 4)
	assert.Same(t, l1.Weight(), params[0])
	assert.Same(t, l2.Bias(), params[3])

	out := model.Forward(tensor.Zeros(tensor.Shape{6, 4}))
	assert.Equal(t, tensor.Shape{6, 2}, out.Shape())
	assert.Nil(t, nn.NewSequential().Last())
}

func TestSequential_StateDictRoundTrip(t *testing.T) {
	backend := cpu.New()
	cfg := nn.MLPConfig{InFeatures: 4, Hidden: []int{3}, Classes: 2, Output: nn.OutputLogits}
	src := nn.NewMLP(cfg, backend, newRNG(1))
	dst := nn.NewMLP(cfg, backend, newRNG(2))

	state := src.StateDict()
	assert.Len(t, state, 4)
	assert.Contains(t, state, "0.weight")
	assert.Contains(t, state, "2.bias")

	require.NoError(t, dst.LoadStateDict(state))
	for i, p := range dst.Parameters() {
		assert.Equal(t, src.Parameters()[i].Tensor().Data(), p.Tensor().Data())
	}
}

func TestSequential_LoadStateDictErrors(t *testing.T) {
	backend := cpu.New()
	cfg := nn.MLPConfig{InFeatures: 4, Hidden: []int{3}, Classes: 2}
	model := nn.NewMLP(cfg, backend, newRNG(1))

	state := model.StateDict()
	delete(state, "2.weight")
	assert.ErrorContains(t, model.LoadStateDict(state), "missing 2.weight")

	state = model.StateDict()
	state["0.bias"] = tensor.Zeros(tensor.Shape{4})
	assert.Error(t, model.LoadStateDict(state))

	state = model.StateDict()
	state["9.weight"] = tensor.Zeros(tensor.Shape{1})
	assert.ErrorContains(t, model.LoadStateDict(state), "9.weight")
}

func TestNewMLP(t *testing.T) {
	backend := cpu.New()
	model := nn.NewMLP(nn.MLPConfig{InFeatures: 64, Hidden: []int{32, 16}, Classes: 10, Output: nn.OutputLogSoftmax}, backend, newRNG(1))

	assert.Equal(t, 6, model.Len())
	assert.IsType(t, &nn.LogSoftmax{}, model.Last())
	assert.Equal(t, 64, model.InFeatures())
	assert.Equal(t, 64*32+32+32*16+16+16*10+10, nn.CountParameters(model))

	same := nn.NewMLP(nn.MLPConfig{InFeatures: 64, Hidden: []int{32, 16}, Classes: 10, Output: nn.OutputLogSoftmax}, backend, newRNG(1))
	for i, p := range same.Parameters() {
		assert.Equal(t, model.Parameters()[i].Tensor().Data(), p.Tensor().Data())
	}

	logits := nn.NewMLP(nn.MLPConfig{InFeatures: 4, Classes: 3}, backend, newRNG(1))
	assert.Equal(t, 1, logits.Len())
}

func TestParseOutputMode(t *testing.T) {
	for _, s := range []string{"logits", "logsoftmax", "softmax"} {
		m, err := nn.ParseOutputMode(s)
		require.NoError(t, err)
		assert.Equal(t, nn.OutputMode(s), m)
	}
	_, err := nn.ParseOutputMode("sigmoid")
	assert.Error(t, err)
}
