package optim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/digitnet/internal/nn"
	"github.com/born-ml/digitnet/internal/optim"
	"github.com/born-ml/digitnet/internal/tensor"
)

func newParam(t *testing.T, values ...float64) *nn.Parameter {
	t.Helper()
	x, err := tensor.FromSlice(values, tensor.Shape{len(values)})
	require.NoError(t, err)
	return nn.NewParameter("p", x)
}

func setGrad(t *testing.T, p *nn.Parameter, values ...float64) {
	t.Helper()
	g, err := tensor.FromSlice(values, tensor.Shape{len(values)})
	require.NoError(t, err)
	p.ZeroGrad()
	p.AccumulateGrad(g)
}

// Both optimizers satisfy the interface the trainer consumes.
var (
	_ optim.Optimizer = (*optim.SGD)(nil)
	_ optim.Optimizer = (*optim.Adam)(nil)
)

func TestSGD_Step(t *testing.T) {
	p := newParam(t, 1, 2)
	setGrad(t, p, 0.5, -1)

	opt := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.1})
	opt.Step()

	assert.InDeltaSlice(t, []float64{0.95, 2.1}, p.Tensor().Data(), 1e-12)
	assert.InDelta(t, 0.1, opt.LR(), 0)
}

func TestSGD_Momentum(t *testing.T) {
	p := newParam(t, 1)
	opt := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	setGrad(t, p, 1)
	opt.Step()
	assert.InDelta(t, 0.9, p.Tensor().Data()[0], 1e-12)

	setGrad(t, p, 1)
	opt.Step()
	// v = 0.9*1 + 1 = 1.9
	assert.InDelta(t, 0.71, p.Tensor().Data()[0], 1e-12)
}

func TestSGD_DefaultLRAndSetLR(t *testing.T) {
	opt := optim.NewSGD(nil, optim.SGDConfig{})
	assert.InDelta(t, 0.01, opt.LR(), 0)
	opt.SetLR(0.5)
	assert.InDelta(t, 0.5, opt.LR(), 0)
}

func TestSGD_SkipsParametersWithoutGradient(t *testing.T) {
	p := newParam(t, 1, 2)
	opt := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.1})
	opt.Step()
	assert.Equal(t, []float64{1, 2}, p.Tensor().Data())
}

func TestSGD_ZeroGrad(t *testing.T) {
	p := newParam(t, 1, 2)
	q := newParam(t, 3)
	setGrad(t, p, 4, 5)

	opt := optim.NewSGD([]*nn.Parameter{p, q}, optim.SGDConfig{LR: 0.1})
	opt.ZeroGrad()

	assert.Equal(t, []float64{0, 0}, p.Grad().Data())
	require.NotNil(t, q.Grad())
	assert.Equal(t, []float64{0}, q.Grad().Data())

	// A step over zero gradients is a no-op.
	opt.Step()
	assert.Equal(t, []float64{1, 2}, p.Tensor().Data())
}

func TestSGD_MinimizesQuadratic(t *testing.T) {
	p := newParam(t, 0)
	opt := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.1})
	for range 100 {
		opt.ZeroGrad()
		w := p.Tensor().Data()[0]
		p.Grad().Data()[0] = 2 * (w - 3)
		opt.Step()
	}
	assert.InDelta(t, 3, p.Tensor().Data()[0], 1e-6)
}

func TestAdam_FirstStepMovesByLR(t *testing.T) {
	p := newParam(t, 1, -1)
	setGrad(t, p, 2, -0.5)

	opt := optim.NewAdam([]*nn.Parameter{p}, optim.AdamConfig{LR: 0.1})
	opt.Step()

	// Bias correction makes the first update lr * sign(grad).
	assert.InDeltaSlice(t, []float64{0.9, -0.9}, p.Tensor().Data(), 1e-6)
	assert.Equal(t, 1, opt.Timestep())
}

func TestAdam_Defaults(t *testing.T) {
	opt := optim.NewAdam(nil, optim.AdamConfig{})
	assert.InDelta(t, 0.001, opt.LR(), 0)
	opt.SetLR(0.01)
	assert.InDelta(t, 0.01, opt.LR(), 0)
}

func TestAdam_SkipsParametersWithoutGradient(t *testing.T) {
	p := newParam(t, 1)
	q := newParam(t, 2)
	setGrad(t, p, 1)

	opt := optim.NewAdam([]*nn.Parameter{p, q}, optim.AdamConfig{LR: 0.1})
	opt.Step()

	assert.InDelta(t, 0.9, p.Tensor().Data()[0], 1e-6)
	assert.Equal(t, []float64{2}, q.Tensor().Data())
}

func TestAdam_MinimizesQuadratic(t *testing.T) {
	p := newParam(t, 0)
	opt := optim.NewAdam([]*nn.Parameter{p}, optim.AdamConfig{LR: 0.1})
	for range 500 {
		opt.ZeroGrad()
		w := p.Tensor().Data()[0]
		p.Grad().Data()[0] = 2 * (w - 3)
		opt.Step()
	}
	assert.InDelta(t, 3, p.Tensor().Data()[0], 0.05)
}
