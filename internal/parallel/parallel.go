// Package parallel provides fork-join helpers used by the threaded kernels
// and the batch-parallel trainers.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64, // Typical cache line aware chunk.
	}
}

// Chunk is a half-open index range [Start, End).
type Chunk struct {
	Start, End int
}

// Len returns the number of indices covered by the chunk.
func (c Chunk) Len() int { return c.End - c.Start }

// Split partitions [0, n) into at most workers contiguous chunks of at least
// minChunk items each. The last chunk absorbs the remainder.
func Split(n, workers, minChunk int) []Chunk {
	if n <= 0 {
		return nil
	}
	workers = max(workers, 1)
	minChunk = max(minChunk, 1)
	chunkSize := max((n+workers-1)/workers, minChunk)

	chunks := make([]Chunk, 0, (n+chunkSize-1)/chunkSize)
	for start := 0; start < n; start += chunkSize {
		chunks = append(chunks, Chunk{Start: start, End: min(start+chunkSize, n)})
	}
	return chunks
}

// Range executes f(start, end) over a partition of [0, n) and waits for all
// chunks to finish. Each index belongs to exactly one chunk, so f may write
// to disjoint output ranges without locking.
// Falls back to a single f(0, n) call if parallelism is disabled or n is too small.
func Range(n int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	if !cfg.Enabled || n < cfg.MinChunkSize || cfg.NumWorkers <= 1 {
		f(0, n)
		return
	}

	chunks := Split(n, cfg.NumWorkers, cfg.MinChunkSize)
	if len(chunks) == 1 {
		f(0, n)
		return
	}

	var wg sync.WaitGroup
	for _, c := range chunks {
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(c.Start, c.End)
	}
	wg.Wait()
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	Range(n, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	}, cfg)
}

// Sum returns the total of f over contiguous chunks of [0, n), evaluating
// chunks concurrently when cfg allows. Partial sums are added in chunk order,
// so the result depends only on n and cfg.
func Sum(n int, f func(start, end int) float64, cfg Config) float64 {
	if n <= 0 {
		return 0
	}
	if !cfg.Enabled || n < cfg.MinChunkSize || cfg.NumWorkers <= 1 {
		return f(0, n)
	}

	chunks := Split(n, cfg.NumWorkers, cfg.MinChunkSize)
	partial := make([]float64, len(chunks))
	var wg sync.WaitGroup
	for k, c := range chunks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			partial[k] = f(c.Start, c.End)
		}()
	}
	wg.Wait()

	total := 0.0
	for _, p := range partial {
		total += p
	}
	return total
}
