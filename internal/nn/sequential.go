package nn

import (
	"fmt"
	"sort"

	"github.com/born-ml/digitnet/internal/tensor"
)

// Sequential chains modules: each module's output is the next one's input.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, backend, rng),
//	    nn.NewReLU(backend),
//	    nn.NewLinear(128, 10, backend, rng),
//	)
type Sequential struct {
	modules []Module
}

// NewSequential creates a Sequential container.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{modules: modules}
}

// Forward applies all modules in order.
func (s *Sequential) Forward(input *tensor.Tensor) *tensor.Tensor {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output)
	}
	return output
}

// Parameters returns the parameters of every module, in module order.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Add appends a module to the sequence.
func (s *Sequential) Add(module Module) {
	s.modules = append(s.modules, module)
}

// Len returns the number of modules.
func (s *Sequential) Len() int {
	return len(s.modules)
}

// Module returns the module at index.
//
// Panics if index is out of bounds.
func (s *Sequential) Module(index int) Module {
	if index < 0 || index >= len(s.modules) {
		panic("Sequential.Module: index out of bounds")
	}
	return s.modules[index]
}

// Last returns the final module, or nil for an empty container.
func (s *Sequential) Last() Module {
	if len(s.modules) == 0 {
		return nil
	}
	return s.modules[len(s.modules)-1]
}

// InFeatures returns the input width expected by the first Linear layer,
// or 0 if the container has none.
func (s *Sequential) InFeatures() int {
	for _, m := range s.modules {
		if l, ok := m.(*Linear); ok {
			return l.InFeatures()
		}
	}
	return 0
}

// StateDict returns the parameter tensors keyed by module index and
// parameter name ("0.weight", "0.bias", "2.weight", ...).
// The returned tensors alias the live parameters.
func (s *Sequential) StateDict() map[string]*tensor.Tensor {
	state := make(map[string]*tensor.Tensor)
	for i, module := range s.modules {
		for _, p := range module.Parameters() {
			state[fmt.Sprintf("%d.%s", i, p.Name())] = p.Tensor()
		}
	}
	return state
}

// LoadStateDict copies tensors from state into the parameters. Every
// parameter must be present with a matching shape; extra keys are an error.
func (s *Sequential) LoadStateDict(state map[string]*tensor.Tensor) error {
	seen := 0
	for i, module := range s.modules {
		for _, p := range module.Parameters() {
			key := fmt.Sprintf("%d.%s", i, p.Name())
			src, ok := state[key]
			if !ok {
				return fmt.Errorf("missing %s in state dict", key)
			}
			if err := p.Tensor().CopyFrom(src); err != nil {
				return fmt.Errorf("load %s: %w", key, err)
			}
			seen++
		}
	}
	if seen != len(state) {
		return fmt.Errorf("state dict has %d unexpected entries: %v", len(state)-seen, s.unknownKeys(state))
	}
	return nil
}

func (s *Sequential) unknownKeys(state map[string]*tensor.Tensor) []string {
	known := s.StateDict()
	var extra []string
	for k := range state {
		if _, ok := known[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return extra
}
