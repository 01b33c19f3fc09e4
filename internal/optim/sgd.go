package optim

import (
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/digitnet/internal/nn"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * grad
//
// With momentum:
//
//	v = momentum * v + grad
//	param = param - lr * v
//
// Example:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.01, Momentum: 0.9})
type SGD struct {
	params     []*nn.Parameter
	lr         float64
	momentum   float64
	velocities map[*nn.Parameter][]float64
}

// SGDConfig holds configuration for SGD.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0)
}

// NewSGD creates an SGD optimizer over params.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter][]float64),
	}
}

// ZeroGrad zeroes every parameter gradient.
func (s *SGD) ZeroGrad() {
	zeroGrads(s.params)
}

// Step applies one SGD update.
func (s *SGD) Step() {
	for _, p := range s.params {
		grad := p.Grad()
		if grad == nil {
			continue
		}
		w := p.Tensor().Data()

		if s.momentum == 0 {
			floats.AddScaled(w, -s.lr, grad.Data())
			continue
		}

		v, ok := s.velocities[p]
		if !ok {
			v = make([]float64, len(w))
			s.velocities[p] = v
		}
		floats.Scale(s.momentum, v)
		floats.Add(v, grad.Data())
		floats.AddScaled(w, -s.lr, v)
	}
}

// LR returns the learning rate.
func (s *SGD) LR() float64 {
	return s.lr
}

// SetLR changes the learning rate for subsequent steps.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}
