package tensor

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSlice(t *testing.T) {
	src := []float64{1, 2, 3, 4, 5, 6}
	x, err := FromSlice(src, Shape{2, 3})
	require.NoError(t, err)

	src[0] = 100
	assert.Equal(t, 1.0, x.At(0, 0), "FromSlice must copy its input")
	assert.Equal(t, 6.0, x.At(1, 2))
	assert.Equal(t, []int{3, 1}, x.Strides())
	assert.Equal(t, []float64{4, 5, 6}, x.Row(1))

	_, err = FromSlice(src, Shape{4, 2})
	assert.Error(t, err)
}

func TestNew_InvalidShape(t *testing.T) {
	_, err := New(Shape{2, 0})
	assert.Error(t, err)
	assert.Panics(t, func() { Zeros(Shape{-1}) })
}

func TestSetAndAt(t *testing.T) {
	x := Zeros(Shape{2, 2, 2})
	x.Set(7, 1, 0, 1)
	assert.Equal(t, 7.0, x.Data()[5])
	assert.Panics(t, func() { x.At(2, 0, 0) })
	assert.Panics(t, func() { x.At(0, 0) })
}

func TestItem(t *testing.T) {
	assert.Equal(t, 3.5, Scalar(3.5).Item())
	assert.Panics(t, func() { Ones(Shape{2}).Item() })
}

func TestCloneIsDeep(t *testing.T) {
	x := Ones(Shape{3})
	y := x.Clone()
	y.Data()[0] = 9
	assert.Equal(t, 1.0, x.Data()[0])
}

func TestView(t *testing.T) {
	x := Full(Shape{2, 1, 2, 2}, 2)
	v, err := x.View(Shape{2, 4})
	require.NoError(t, err)
	v.Data()[0] = -1
	assert.Equal(t, -1.0, x.Data()[0], "View shares storage")

	_, err = x.View(Shape{3, 3})
	assert.Error(t, err)
}

func TestCopyFrom(t *testing.T) {
	dst := Zeros(Shape{2})
	require.NoError(t, dst.CopyFrom(Full(Shape{2}, 4)))
	assert.Equal(t, []float64{4, 4}, dst.Data())
	assert.Error(t, dst.CopyFrom(Zeros(Shape{3})))
}

func TestUniformDeterministic(t *testing.T) {
	a := Uniform(Shape{4, 4}, -1, 1, rand.New(rand.NewPCG(1, 2)))
	b := Uniform(Shape{4, 4}, -1, 1, rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, a.Data(), b.Data())
	for _, v := range a.Data() {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.Less(t, v, 1.0)
	}
}

func TestShape(t *testing.T) {
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Equal(t, 24, Shape{2, 3, 4}.NumElements())
	assert.Equal(t, []int{12, 4, 1}, Shape{2, 3, 4}.ComputeStrides())
	assert.True(t, Shape{2, 3}.Equal(Shape{2, 3}))
	assert.False(t, Shape{2, 3}.Equal(Shape{3, 2}))
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b, want Shape
		wantErr    bool
	}{
		{Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, false},
		{Shape{5}, Shape{3, 5}, Shape{3, 5}, false},
		{Shape{1, 5}, Shape{3, 1}, Shape{3, 5}, false},
		{Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false},
		{Shape{3, 4}, Shape{3, 5}, nil, true},
	}
	for _, tt := range tests {
		got, err := BroadcastShapes(tt.a, tt.b)
		if tt.wantErr {
			assert.Error(t, err, "%v + %v", tt.a, tt.b)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%v + %v", tt.a, tt.b)
	}
}

func TestString(t *testing.T) {
	x, err := FromSlice([]float64{1, 2.5}, Shape{2})
	require.NoError(t, err)
	assert.Equal(t, "Tensor[2][1 2.5]", x.String())
	assert.Equal(t, "Tensor[10 10]", Zeros(Shape{10, 10}).String())
}
