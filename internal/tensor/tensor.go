// Package tensor provides the dense float64 tensor shared by every digitnet
// component: datasets produce tensors, the backend computes on them and the
// autodiff graph records operations between them.
package tensor

import (
	"fmt"
	"strings"
)

// Tensor is a dense, row-major array of float64 values.
//
// A Tensor is identified by its pointer: the autodiff graph keys gradients
// by *Tensor, so two tensors sharing a buffer are still distinct nodes.
type Tensor struct {
	data    []float64
	shape   Shape
	strides []int
}

// New allocates a zero-filled tensor with the given shape.
func New(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &Tensor{
		data:    make([]float64, shape.NumElements()),
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
	}, nil
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	t, err := New(shape)
	if err != nil {
		return nil, err
	}
	copy(t.data, data)
	return t, nil
}

// view wraps data without copying. Callers guarantee len(data) matches shape.
func view(data []float64, shape Shape) *Tensor {
	return &Tensor{
		data:    data,
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
	}
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Strides returns the row-major strides.
func (t *Tensor) Strides() []int {
	return t.strides
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Data returns the underlying storage.
//
// WARNING: the slice aliases the tensor; writes modify it in place.
func (t *Tensor) Data() []float64 {
	return t.data
}

// Row returns a view of row i of a 2-D tensor.
func (t *Tensor) Row(i int) []float64 {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("Row: expected 2-D tensor, got shape %v", t.shape))
	}
	cols := t.shape[1]
	return t.data[i*cols : (i+1)*cols]
}

// Item returns the value of a single-element tensor.
func (t *Tensor) Item() float64 {
	if len(t.data) != 1 {
		panic(fmt.Sprintf("Item() only works for single-element tensors, got shape %v", t.shape))
	}
	return t.data[0]
}

// At returns the element at the given indices.
func (t *Tensor) At(indices ...int) float64 {
	return t.data[t.offset(indices)]
}

// Set stores value at the given indices.
func (t *Tensor) Set(value float64, indices ...int) {
	t.data[t.offset(indices)] = value
}

func (t *Tensor) offset(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(t.shape), len(indices)))
	}
	off := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, t.shape[i]))
		}
		off += idx * t.strides[i]
	}
	return off
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	data := make([]float64, len(t.data))
	copy(data, t.data)
	return view(data, t.shape)
}

// View returns a tensor sharing this tensor's storage under a new shape.
// The element count must be unchanged.
func (t *Tensor) View(shape Shape) (*Tensor, error) {
	if shape.NumElements() != len(t.data) {
		return nil, fmt.Errorf("cannot view %v (%d elements) as %v", t.shape, len(t.data), shape)
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return view(t.data, shape), nil
}

// CopyFrom overwrites the tensor's values with src's. Shapes must match.
func (t *Tensor) CopyFrom(src *Tensor) error {
	if !t.shape.Equal(src.shape) {
		return fmt.Errorf("copy: shape mismatch %v vs %v", t.shape, src.shape)
	}
	copy(t.data, src.data)
	return nil
}

// String returns a short description, plus values for small tensors.
func (t *Tensor) String() string {
	if len(t.data) > 16 {
		return fmt.Sprintf("Tensor%v", t.shape)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tensor%v[", t.shape)
	for i, v := range t.data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%.4g", v)
	}
	sb.WriteByte(']')
	return sb.String()
}
