package dataset

import (
	"fmt"
	"iter"
	"math/rand/v2"
	"runtime"

	"github.com/born-ml/digitnet/internal/parallel"
	"github.com/born-ml/digitnet/internal/tensor"
)

// LoaderConfig controls how a Loader cuts a dataset into batches.
type LoaderConfig struct {
	BatchSize int
	Shuffle   bool   // draw a fresh permutation on every Batches call
	Seed      uint64 // seeds the shuffle sequence
	DropLast  bool   // skip a trailing batch smaller than BatchSize
}

// Loader yields mini-batches over a dataset. It is finite and restartable:
// every call to Batches starts a new pass, reshuffled when Shuffle is set.
// The shuffle sequence is determined by Seed.
type Loader struct {
	ds     *Dataset
	cfg    LoaderConfig
	rng    *rand.Rand
	passes int

	copyCfg parallel.Config
}

// NewLoader creates a loader over ds.
func NewLoader(ds *Dataset, cfg LoaderConfig) (*Loader, error) {
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("loader: batch size must be positive, got %d", cfg.BatchSize)
	}
	return &Loader{
		ds:  ds,
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, 0x9e3779b97f4a7c15)),
		// Small images copy faster inline.
		copyCfg: parallel.Config{Workers: runtime.NumCPU(), MinChunk: max(1, 1<<14/ds.Features())},
	}, nil
}

// Dataset returns the underlying dataset.
func (l *Loader) Dataset() *Dataset {
	return l.ds
}

// NumBatches returns the number of batches one pass yields.
func (l *Loader) NumBatches() int {
	n, b := l.ds.Len(), l.cfg.BatchSize
	if l.cfg.DropLast {
		return n / b
	}
	return (n + b - 1) / b
}

// Passes returns how many passes have been started.
func (l *Loader) Passes() int {
	return l.passes
}

// Batches starts a new pass over the dataset.
//
// The permutation is drawn when Batches is called, not when iteration
// begins, so calling Batches twice always yields two different epochs.
func (l *Loader) Batches() iter.Seq[Batch] {
	order := l.order()
	l.passes++

	return func(yield func(Batch) bool) {
		n := len(order)
		for start := 0; start < n; start += l.cfg.BatchSize {
			end := min(start+l.cfg.BatchSize, n)
			if l.cfg.DropLast && end-start < l.cfg.BatchSize {
				return
			}
			if !yield(l.gather(order[start:end])) {
				return
			}
		}
	}
}

func (l *Loader) order() []int {
	n := l.ds.Len()
	if l.cfg.Shuffle {
		return l.rng.Perm(n)
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func (l *Loader) gather(indices []int) Batch {
	rows, cols := l.ds.Rows(), l.ds.Cols()
	f := rows * cols
	inputs := tensor.Zeros(tensor.Shape{len(indices), 1, rows, cols})
	dst := inputs.Data()
	labels := make([]int, len(indices))
	parallel.For(len(indices), l.copyCfg, func(i int) {
		idx := indices[i]
		copy(dst[i*f:(i+1)*f], l.ds.Image(idx))
		labels[i] = l.ds.Labels[idx]
	})
	return Batch{Inputs: inputs, Labels: labels}
}
