// Package metrics accumulates per-epoch and per-window training statistics.
package metrics

import "time"

// Running accumulates batch losses and correct predictions for one epoch.
type Running struct {
	lossSum float64
	batches int
	correct int
	samples int
}

// Add records one batch.
func (r *Running) Add(loss float64, correct, samples int) {
	r.lossSum += loss
	r.batches++
	r.correct += correct
	r.samples += samples
}

// Reset clears the accumulator.
func (r *Running) Reset() {
	*r = Running{}
}

// MeanLoss returns the arithmetic mean of the recorded batch losses, or 0
// when nothing was recorded.
func (r *Running) MeanLoss() float64 {
	if r.batches == 0 {
		return 0
	}
	return r.lossSum / float64(r.batches)
}

// Accuracy returns correct / samples, or 0 when nothing was recorded.
func (r *Running) Accuracy() float64 {
	if r.samples == 0 {
		return 0
	}
	return float64(r.correct) / float64(r.samples)
}

// Batches returns the number of recorded batches.
func (r *Running) Batches() int {
	return r.batches
}

// Samples returns the number of recorded samples.
func (r *Running) Samples() int {
	return r.samples
}

// Window accumulates timing stats across multiple steps.
type Window struct {
	samples  int
	data     time.Duration
	compute  time.Duration
	steps    int
	lastLoss float64
}

// Record adds a new measurement to the window.
func (w *Window) Record(batchSize int, dataTime, computeTime time.Duration, loss float64) {
	w.samples += batchSize
	w.data += dataTime
	w.compute += computeTime
	w.steps++
	w.lastLoss = loss
}

// Steps returns the number of measurements since the last snapshot.
func (w *Window) Steps() int {
	return w.steps
}

// Snapshot returns aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{LastLoss: w.lastLoss}
	if total := w.data + w.compute; total > 0 {
		snap.SamplesPerSec = float64(w.samples) / total.Seconds()
	}
	if w.steps > 0 {
		snap.AvgDataMS = (w.data.Seconds() * 1000) / float64(w.steps)
		snap.AvgComputeMS = (w.compute.Seconds() * 1000) / float64(w.steps)
	}
	*w = Window{}
	return snap
}

// Snapshot represents loggable window metrics.
type Snapshot struct {
	SamplesPerSec float64
	AvgDataMS     float64
	AvgComputeMS  float64
	LastLoss      float64
}
