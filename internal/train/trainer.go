// Package train drives supervised training: it sequences the model, loss,
// gradient computation and optimizer over a data source for a number of
// epochs and reports the mean loss of each epoch.
package train

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"time"

	"github.com/born-ml/digitnet/internal/autodiff"
	"github.com/born-ml/digitnet/internal/dataset"
	"github.com/born-ml/digitnet/internal/metrics"
	"github.com/born-ml/digitnet/internal/nn"
	"github.com/born-ml/digitnet/internal/optim"
	"github.com/born-ml/digitnet/internal/tensor"
)

var (
	// ErrEmptyEpoch is returned when a data source yields no batches.
	ErrEmptyEpoch = errors.New("train: data source yielded no batches")

	// ErrShapeMismatch is returned when a batch cannot be flattened to
	// [n, InputWidth] or its labels do not fit the model output.
	ErrShapeMismatch = errors.New("train: batch shape mismatch")

	// ErrDoubleSoftmax is returned by New when a model that already ends in
	// Softmax is paired with CrossEntropyLoss, which applies softmax again.
	ErrDoubleSoftmax = errors.New("train: model ends in Softmax but CrossEntropyLoss expects raw scores")
)

// DataSource yields the batches of one epoch. Every call to Batches starts
// a new finite pass; sources may reshuffle between passes.
type DataSource interface {
	Batches() iter.Seq[dataset.Batch]
}

// Config holds the trainer's knobs.
type Config struct {
	// InputWidth is the feature count each sample is flattened to. Zero
	// means take it from the model's first Linear layer.
	InputWidth int

	// LogEvery logs throughput every LogEvery batches. Zero disables
	// per-batch logging; epoch summaries are always logged.
	LogEvery int

	// Logger receives key=value progress lines. Nil discards them.
	Logger *log.Logger

	// OnEpoch, if set, runs after every epoch. A non-nil error stops
	// training and is returned from Train.
	OnEpoch func(EpochStats) error
}

// Trainer runs the training loop for one model.
//
// A Trainer owns the autodiff graph of its backend while Train, Evaluate or
// Predict run and is not safe for concurrent use.
type Trainer struct {
	model   nn.Module
	lossFn  nn.Loss
	opt     optim.Optimizer
	backend *autodiff.Backend
	leaves  []autodiff.Leaf
	cfg     Config
	logger  *log.Logger
}

type inFeatureser interface {
	InFeatures() int
}

type lastModuler interface {
	Last() nn.Module
}

// New creates a Trainer. The optimizer must have been constructed over
// model.Parameters(), and model and lossFn must compute through backend.
func New(model nn.Module, lossFn nn.Loss, opt optim.Optimizer, backend *autodiff.Backend, cfg Config) (*Trainer, error) {
	if model == nil || lossFn == nil || opt == nil || backend == nil {
		return nil, errors.New("train: model, loss, optimizer and backend are required")
	}
	if endsInSoftmax(model) {
		if _, ok := lossFn.(*nn.CrossEntropyLoss); ok {
			return nil, ErrDoubleSoftmax
		}
	}
	if cfg.InputWidth == 0 {
		if m, ok := model.(inFeatureser); ok {
			cfg.InputWidth = m.InFeatures()
		}
	}
	if cfg.InputWidth <= 0 {
		return nil, fmt.Errorf("train: input width must be positive, got %d", cfg.InputWidth)
	}

	leaves := nn.Leaves(model.Parameters())

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Trainer{
		model:   model,
		lossFn:  lossFn,
		opt:     opt,
		backend: backend,
		leaves:  leaves,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func endsInSoftmax(m nn.Module) bool {
	for {
		switch v := m.(type) {
		case *nn.Softmax:
			return true
		case lastModuler:
			m = v.Last()
			if m == nil {
				return false
			}
		default:
			return false
		}
	}
}

// Train runs epochs passes over data. Each batch is one step:
//
//  1. flatten inputs to [n, InputWidth]
//  2. zero all gradients
//  3. forward through the model and loss
//  4. backpropagate into the parameters
//  5. apply one optimizer update
//
// The mean of the batch losses is reported per epoch. epochs == 0 does
// nothing; epochs < 0 is an error. The first failing step aborts training
// and returns the epochs completed so far together with the error. ctx is
// checked between batches.
func (t *Trainer) Train(ctx context.Context, data DataSource, epochs int) (History, error) {
	if epochs < 0 {
		return nil, fmt.Errorf("train: epochs must be >= 0, got %d", epochs)
	}

	graph := t.backend.Graph()
	wasRecording := graph.IsRecording()
	graph.StartRecording()
	defer func() {
		graph.Clear()
		if !wasRecording {
			graph.StopRecording()
		}
	}()

	history := make(History, 0, epochs)
	for epoch := 1; epoch <= epochs; epoch++ {
		stats, err := t.trainEpoch(ctx, data, epoch)
		if err != nil {
			return history, err
		}
		history = append(history, stats)

		t.logger.Printf("epoch=%d batches=%d samples=%d loss=%.4f acc=%.4f duration=%s",
			stats.Epoch, stats.Batches, stats.Samples, stats.MeanLoss, stats.Accuracy,
			stats.Duration.Round(time.Millisecond))

		if t.cfg.OnEpoch != nil {
			if err := t.cfg.OnEpoch(stats); err != nil {
				return history, fmt.Errorf("epoch %d callback: %w", epoch, err)
			}
		}
	}
	return history, nil
}

func (t *Trainer) trainEpoch(ctx context.Context, data DataSource, epoch int) (EpochStats, error) {
	var running metrics.Running
	var window metrics.Window
	start := time.Now()

	dataStart := time.Now()
	for batch := range data.Batches() {
		if err := ctx.Err(); err != nil {
			return EpochStats{}, err
		}
		dataTime := time.Since(dataStart)

		computeStart := time.Now()
		loss, correct, err := t.step(batch)
		if err != nil {
			return EpochStats{}, fmt.Errorf("epoch %d batch %d: %w", epoch, running.Batches()+1, err)
		}
		running.Add(loss, correct, batch.Size())
		window.Record(batch.Size(), dataTime, time.Since(computeStart), loss)

		if t.cfg.LogEvery > 0 && running.Batches()%t.cfg.LogEvery == 0 {
			snap := window.Snapshot()
			t.logger.Printf("epoch=%d step=%d samples_per_sec=%.1f data_ms=%.2f compute_ms=%.2f loss=%.4f",
				epoch, running.Batches(), snap.SamplesPerSec, snap.AvgDataMS, snap.AvgComputeMS, snap.LastLoss)
		}
		dataStart = time.Now()
	}
	if running.Batches() == 0 {
		return EpochStats{}, fmt.Errorf("epoch %d: %w", epoch, ErrEmptyEpoch)
	}

	return EpochStats{
		Epoch:    epoch,
		MeanLoss: running.MeanLoss(),
		Accuracy: running.Accuracy(),
		Batches:  running.Batches(),
		Samples:  running.Samples(),
		Duration: time.Since(start),
	}, nil
}

// step performs one optimizer update and returns the batch loss and the
// number of correct predictions made before the update.
func (t *Trainer) step(batch dataset.Batch) (float64, int, error) {
	graph := t.backend.Graph()
	defer graph.Clear()

	x, err := t.flatten(batch.Inputs, len(batch.Labels))
	if err != nil {
		return 0, 0, err
	}

	t.opt.ZeroGrad()
	scores := t.model.Forward(x)
	if err := checkLabels(scores, batch.Labels); err != nil {
		return 0, 0, err
	}
	loss := t.lossFn.Forward(scores, batch.Labels)

	if _, err := t.backend.Backward(loss, t.leaves...); err != nil {
		return 0, 0, fmt.Errorf("backward: %w", err)
	}
	t.opt.Step()

	return loss.Item(), nn.CountCorrect(t.backend.Argmax(scores), batch.Labels), nil
}

// Evaluate computes the mean loss and accuracy over data without recording
// a graph or touching the parameters.
func (t *Trainer) Evaluate(ctx context.Context, data DataSource) (EvalStats, error) {
	restore := t.pauseRecording()
	defer restore()

	var running metrics.Running
	for batch := range data.Batches() {
		if err := ctx.Err(); err != nil {
			return EvalStats{}, err
		}
		x, err := t.flatten(batch.Inputs, len(batch.Labels))
		if err != nil {
			return EvalStats{}, fmt.Errorf("batch %d: %w", running.Batches()+1, err)
		}
		scores := t.model.Forward(x)
		if err := checkLabels(scores, batch.Labels); err != nil {
			return EvalStats{}, fmt.Errorf("batch %d: %w", running.Batches()+1, err)
		}
		loss := t.lossFn.Forward(scores, batch.Labels).Item()
		running.Add(loss, nn.CountCorrect(t.backend.Argmax(scores), batch.Labels), batch.Size())
	}
	if running.Batches() == 0 {
		return EvalStats{}, ErrEmptyEpoch
	}
	return EvalStats{
		MeanLoss: running.MeanLoss(),
		Accuracy: running.Accuracy(),
		Batches:  running.Batches(),
		Samples:  running.Samples(),
	}, nil
}

// Predict returns the highest-scoring class for each sample of x, where x
// has the samples along its first dimension.
func (t *Trainer) Predict(x *tensor.Tensor) ([]int, error) {
	if x.Rank() == 0 {
		return nil, fmt.Errorf("%w: empty input shape", ErrShapeMismatch)
	}
	flat, err := t.flatten(x, x.Shape()[0])
	if err != nil {
		return nil, err
	}
	restore := t.pauseRecording()
	defer restore()
	return t.backend.Argmax(t.model.Forward(flat)), nil
}

func (t *Trainer) pauseRecording() func() {
	graph := t.backend.Graph()
	wasRecording := graph.IsRecording()
	graph.StopRecording()
	return func() {
		if wasRecording {
			graph.StartRecording()
		}
	}
}

// flatten views x as [n, InputWidth].
func (t *Trainer) flatten(x *tensor.Tensor, n int) (*tensor.Tensor, error) {
	if x == nil || x.Rank() == 0 || x.Shape()[0] != n {
		return nil, fmt.Errorf("%w: inputs do not hold %d samples", ErrShapeMismatch, n)
	}
	if x.NumElements() != n*t.cfg.InputWidth {
		return nil, fmt.Errorf("%w: inputs %v cannot be flattened to [%d %d]",
			ErrShapeMismatch, x.Shape(), n, t.cfg.InputWidth)
	}
	return x.View(tensor.Shape{n, t.cfg.InputWidth})
}

func checkLabels(scores *tensor.Tensor, labels []int) error {
	shape := scores.Shape()
	if len(shape) != 2 {
		return fmt.Errorf("%w: model output %v is not [batch, classes]", ErrShapeMismatch, shape)
	}
	for i, y := range labels {
		if y < 0 || y >= shape[1] {
			return fmt.Errorf("%w: label %d at index %d outside [0, %d)", ErrShapeMismatch, y, i, shape[1])
		}
	}
	return nil
}
