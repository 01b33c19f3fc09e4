// Package dataset provides the labeled image collections digitnet trains on
// and the loader that cuts them into mini-batches.
//
// Images are stored as one [n, 1, rows, cols] tensor of float64 pixels with
// an []int label per image.
package dataset

import (
	"errors"
	"fmt"

	"github.com/born-ml/digitnet/internal/tensor"
)

// ErrNoSamples is returned when a source holds no samples. Datasets are never
// empty.
var ErrNoSamples = errors.New("dataset: no samples")

// Dataset is an in-memory collection of grayscale images and class labels.
type Dataset struct {
	Images  *tensor.Tensor // [n, 1, rows, cols]
	Labels  []int          // [n], each in [0, Classes)
	Classes int
}

// New validates and wraps images and labels.
func New(images *tensor.Tensor, labels []int, classes int) (*Dataset, error) {
	shape := images.Shape()
	if len(shape) != 4 || shape[1] != 1 {
		return nil, fmt.Errorf("dataset: images must be [n, 1, rows, cols], got %v", shape)
	}
	if shape[0] != len(labels) {
		return nil, fmt.Errorf("dataset: image count (%d) != label count (%d)", shape[0], len(labels))
	}
	for i, y := range labels {
		if y < 0 || y >= classes {
			return nil, fmt.Errorf("dataset: label %d at index %d out of range [0, %d)", y, i, classes)
		}
	}
	return &Dataset{Images: images, Labels: labels, Classes: classes}, nil
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// Rows returns the image height.
func (d *Dataset) Rows() int {
	return d.Images.Shape()[2]
}

// Cols returns the image width.
func (d *Dataset) Cols() int {
	return d.Images.Shape()[3]
}

// Features returns the number of pixels per image.
func (d *Dataset) Features() int {
	return d.Rows() * d.Cols()
}

// Image returns the pixels of sample i. The slice aliases the dataset.
func (d *Dataset) Image(i int) []float64 {
	f := d.Features()
	return d.Images.Data()[i*f : (i+1)*f]
}

// Subset copies samples [start, end) into a new dataset.
func (d *Dataset) Subset(start, end int) *Dataset {
	if start < 0 || end > d.Len() || start > end {
		panic(fmt.Sprintf("Dataset.Subset: range [%d, %d) out of bounds for %d samples", start, end, d.Len()))
	}
	f := d.Features()
	images := tensor.Zeros(tensor.Shape{end - start, 1, d.Rows(), d.Cols()})
	copy(images.Data(), d.Images.Data()[start*f:end*f])
	labels := make([]int, end-start)
	copy(labels, d.Labels[start:end])
	return &Dataset{Images: images, Labels: labels, Classes: d.Classes}
}

// Split returns the first (1 - validationRatio) of the samples as the
// training set and the rest as the validation set. The training set keeps
// at least one sample; validation is nil when it would be empty.
func (d *Dataset) Split(validationRatio float64) (train, validation *Dataset) {
	splitIdx := max(1, int(float64(d.Len())*(1.0-validationRatio)))
	if splitIdx >= d.Len() {
		return d, nil
	}
	return d.Subset(0, splitIdx), d.Subset(splitIdx, d.Len())
}

// ClassCounts returns how many samples carry each label.
func (d *Dataset) ClassCounts() []int {
	counts := make([]int, d.Classes)
	for _, y := range d.Labels {
		counts[y]++
	}
	return counts
}

// Batch is one mini-batch as yielded by a Loader.
type Batch struct {
	Inputs *tensor.Tensor // [n, 1, rows, cols]
	Labels []int          // [n]
}

// Size returns the number of samples in the batch.
func (b Batch) Size() int {
	return len(b.Labels)
}
