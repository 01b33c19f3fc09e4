// Package parallel splits index ranges across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how work is split.
type Config struct {
	Workers  int // goroutines to use; 1 runs inline
	MinChunk int // never hand a goroutine fewer items than this
}

// DefaultConfig uses one worker per logical CPU.
func DefaultConfig() Config {
	return Config{
		Workers:  runtime.NumCPU(),
		MinChunk: 256,
	}
}

// Chunks calls f once per contiguous sub-range [start, end) of [0, n) and
// returns when every call has finished. Sub-ranges never overlap, so f may
// write to disjoint parts of a shared slice without locking.
func Chunks(n int, cfg Config, f func(start, end int)) {
	if n <= 0 {
		return
	}
	minChunk := max(cfg.MinChunk, 1)
	if cfg.Workers <= 1 || n <= minChunk {
		f(0, n)
		return
	}

	size := max((n+cfg.Workers-1)/cfg.Workers, minChunk)
	var wg sync.WaitGroup
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			f(start, end)
		}()
	}
	wg.Wait()
}

// For calls f(i) for every i in [0, n).
func For(n int, cfg Config, f func(i int)) {
	Chunks(n, cfg, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	})
}
