package autodiff

import (
	"errors"
	"fmt"

	"github.com/born-ml/digitnet/internal/autodiff/ops"
	"github.com/born-ml/digitnet/internal/tensor"
)

var (
	// ErrNoGraph is returned by Backward when nothing has been recorded.
	ErrNoGraph = errors.New("autodiff: no operations recorded (is recording enabled?)")

	// ErrNotRecorded is returned when the root tensor was not produced by a
	// recorded operation.
	ErrNotRecorded = errors.New("autodiff: tensor was not produced by a recorded operation")
)

// Gradients maps each tensor reached by a backward pass to dRoot/dTensor.
type Gradients map[*tensor.Tensor]*tensor.Tensor

// Graph records differentiable operations during the forward pass.
//
// Nodes are operations, edges are the tensors flowing between them: an
// operation depends on whichever operation produced each of its inputs.
// Backward walks that dependency graph in reverse topological order
// starting from the root, so operations the root does not depend on are
// never visited.
type Graph struct {
	ops       []ops.Operation
	producers map[*tensor.Tensor]ops.Operation
	recording bool
}

// NewGraph creates an empty graph that is not recording.
func NewGraph() *Graph {
	return &Graph{
		ops:       make([]ops.Operation, 0, 64),
		producers: make(map[*tensor.Tensor]ops.Operation),
	}
}

// StartRecording enables operation recording.
func (g *Graph) StartRecording() {
	g.recording = true
}

// StopRecording disables operation recording.
func (g *Graph) StopRecording() {
	g.recording = false
}

// IsRecording reports whether operations are being recorded.
func (g *Graph) IsRecording() bool {
	return g.recording
}

// Record adds op to the graph if recording is enabled.
func (g *Graph) Record(op ops.Operation) {
	if !g.recording {
		return
	}
	g.ops = append(g.ops, op)
	g.producers[op.Output()] = op
}

// Clear drops all recorded operations. The recording state is kept.
func (g *Graph) Clear() {
	clear(g.ops)
	g.ops = g.ops[:0]
	clear(g.producers)
}

// NumOps returns the number of recorded operations.
func (g *Graph) NumOps() int {
	return len(g.ops)
}

// Backward propagates rootGrad from root to every tensor root depends on.
// Gradients for tensors used more than once are summed.
func (g *Graph) Backward(root, rootGrad *tensor.Tensor, backend tensor.Backend) (Gradients, error) {
	if len(g.ops) == 0 {
		return nil, ErrNoGraph
	}
	if _, ok := g.producers[root]; !ok {
		return nil, ErrNotRecorded
	}
	if !root.Shape().Equal(rootGrad.Shape()) {
		return nil, fmt.Errorf("autodiff: root gradient shape %v does not match root %v", rootGrad.Shape(), root.Shape())
	}

	// Gradient kernels must not land on the graph being differentiated.
	wasRecording := g.recording
	g.recording = false
	defer func() { g.recording = wasRecording }()

	grads := Gradients{root: rootGrad}
	order := g.topoOrder(root)
	for i := len(order) - 1; i >= 0; i-- {
		op := order[i]
		outGrad, ok := grads[op.Output()]
		if !ok {
			continue
		}
		inputGrads := op.Backward(outGrad, backend)
		for j, input := range op.Inputs() {
			if j >= len(inputGrads) || inputGrads[j] == nil {
				continue
			}
			if existing, ok := grads[input]; ok {
				grads[input] = backend.Add(existing, inputGrads[j])
			} else {
				grads[input] = inputGrads[j]
			}
		}
	}
	return grads, nil
}

// topoOrder returns the operations root depends on, each placed after all of
// its producers.
func (g *Graph) topoOrder(root *tensor.Tensor) []ops.Operation {
	visited := make(map[ops.Operation]bool)
	var order []ops.Operation
	var visit func(op ops.Operation)
	visit = func(op ops.Operation) {
		if visited[op] {
			return
		}
		visited[op] = true
		for _, input := range op.Inputs() {
			if producer, ok := g.producers[input]; ok {
				visit(producer)
			}
		}
		order = append(order, op)
	}
	visit(g.producers[root])
	return order
}
