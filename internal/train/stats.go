package train

import "time"

// EpochStats summarizes one training epoch.
type EpochStats struct {
	Epoch    int
	MeanLoss float64 // running loss total / batches
	Accuracy float64 // training accuracy, measured before each update
	Batches  int
	Samples  int
	Duration time.Duration
}

// History is the per-epoch record of a Train call, in epoch order.
type History []EpochStats

// Losses returns the mean loss of every epoch.
func (h History) Losses() []float64 {
	losses := make([]float64, len(h))
	for i, s := range h {
		losses[i] = s.MeanLoss
	}
	return losses
}

// Last returns the final epoch's stats and false when h is empty.
func (h History) Last() (EpochStats, bool) {
	if len(h) == 0 {
		return EpochStats{}, false
	}
	return h[len(h)-1], true
}

// EvalStats summarizes a forward-only pass over a data source.
type EvalStats struct {
	MeanLoss float64
	Accuracy float64
	Batches  int
	Samples  int
}
