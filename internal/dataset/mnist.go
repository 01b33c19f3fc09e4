package dataset

import (
	"fmt"
	"path/filepath"

	"github.com/born-ml/digitnet/internal/parallel"
	"github.com/born-ml/digitnet/internal/tensor"
)

// MNIST geometry.
const (
	MNISTRows    = 28
	MNISTCols    = 28
	MNISTClasses = 10
)

// LoadMNIST loads MNIST from the official IDX files in dataDir.
//
// Expected files (optionally with a .gz suffix):
//   - train-images-idx3-ubyte, train-labels-idx1-ubyte (train = true)
//   - t10k-images-idx3-ubyte, t10k-labels-idx1-ubyte (train = false)
//
// Pixels are scaled to [0, 1]. maxSamples > 0 keeps only the first
// maxSamples images.
func LoadMNIST(dataDir string, train bool, maxSamples int) (*Dataset, error) {
	prefix := "t10k"
	if train {
		prefix = "train"
	}
	imagePath := filepath.Join(dataDir, prefix+"-images-idx3-ubyte")
	labelPath := filepath.Join(dataDir, prefix+"-labels-idx1-ubyte")

	pixels, count, rows, cols, err := readImageFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}
	rawLabels, err := readLabelFile(labelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load labels: %w", err)
	}
	if count != len(rawLabels) {
		return nil, fmt.Errorf("image count (%d) != label count (%d)", count, len(rawLabels))
	}

	n := count
	if maxSamples > 0 && n > maxSamples {
		n = maxSamples
	}
	return FromIDX(pixels[:n*rows*cols], rawLabels[:n], rows, cols, MNISTClasses)
}

// FromIDX converts raw IDX bytes into a dataset with pixels scaled to [0, 1].
func FromIDX(pixels, rawLabels []byte, rows, cols, classes int) (*Dataset, error) {
	n := len(rawLabels)
	if n == 0 {
		return nil, ErrNoSamples
	}
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", rows, cols)
	}
	if len(pixels) != n*rows*cols {
		return nil, fmt.Errorf("have %d pixels for %d images of %dx%d", len(pixels), n, rows, cols)
	}
	images := tensor.Zeros(tensor.Shape{n, 1, rows, cols})
	data := images.Data()
	parallel.Chunks(len(pixels), parallel.DefaultConfig(), func(start, end int) {
		for i := start; i < end; i++ {
			data[i] = float64(pixels[i]) / 255.0
		}
	})
	labels := make([]int, n)
	for i, y := range rawLabels {
		labels[i] = int(y)
	}
	return New(images, labels, classes)
}

func readImageFile(path string) ([]byte, int, int, int, error) {
	rc, err := openIDX(path)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	defer rc.Close()
	return ReadIDXImages(rc)
}

func readLabelFile(path string) ([]byte, error) {
	rc, err := openIDX(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadIDXLabels(rc)
}
