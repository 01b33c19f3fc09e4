package dataset

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats is a per-dataset pixel mean and standard deviation.
type Stats struct {
	Mean float64 `yaml:"mean"`
	Std  float64 `yaml:"std"`
}

// MNISTStats are the conventional MNIST training-set statistics for pixels
// scaled to [0, 1].
var MNISTStats = Stats{Mean: 0.1307, Std: 0.3081}

// ComputeStats returns the population mean and standard deviation of all
// pixels in d.
func ComputeStats(d *Dataset) Stats {
	mean, std := stat.PopMeanStdDev(d.Images.Data(), nil)
	return Stats{Mean: mean, Std: std}
}

// Normalize maps every pixel x to (x - mean) / std in place.
func (d *Dataset) Normalize(s Stats) error {
	if s.Std <= 0 {
		return fmt.Errorf("normalize: std must be positive, got %g", s.Std)
	}
	data := d.Images.Data()
	floats.AddConst(-s.Mean, data)
	floats.Scale(1/s.Std, data)
	return nil
}
