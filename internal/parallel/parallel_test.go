package parallel

import (
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestFor_SmallChunk(t *testing.T) {
	// Small work units fall back to sequential.
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestRange_CoversEveryIndexOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 7, MinChunkSize: 3}
	n := 1001
	hits := make([]int32, n)

	Range(n, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	}, cfg)

	for i, h := range hits {
		if h != 1 {
			t.Fatalf("index %d visited %d times", i, h)
		}
	}
}

func TestRange_Empty(t *testing.T) {
	called := false
	Range(0, func(_, _ int) { called = true }, DefaultConfig())
	if called {
		t.Error("Range(0) must not call f")
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name             string
		n, workers, min  int
		wantChunks       int
		wantLastChunkEnd int
	}{
		{"even", 8, 4, 1, 4, 8},
		{"remainder", 10, 4, 1, 4, 10},
		{"min chunk dominates", 10, 8, 5, 2, 10},
		{"more workers than items", 3, 8, 1, 3, 3},
		{"zero workers", 5, 0, 1, 1, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Split(tt.n, tt.workers, tt.min)
			if len(chunks) != tt.wantChunks {
				t.Fatalf("got %d chunks, want %d", len(chunks), tt.wantChunks)
			}
			total := 0
			for i, c := range chunks {
				if i > 0 && c.Start != chunks[i-1].End {
					t.Errorf("chunk %d not contiguous", i)
				}
				total += c.Len()
			}
			if total != tt.n {
				t.Errorf("chunks cover %d items, want %d", total, tt.n)
			}
			if chunks[len(chunks)-1].End != tt.wantLastChunkEnd {
				t.Errorf("last chunk ends at %d", chunks[len(chunks)-1].End)
			}
		})
	}

	if Split(0, 4, 1) != nil {
		t.Error("Split(0) should be nil")
	}
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfgSeq := cfg
		cfgSeq.Enabled = false
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfgSeq)
		}
	})
}

func TestSum(t *testing.T) {
	n := 1001
	f := func(start, end int) float64 {
		s := 0.0
		for i := start; i < end; i++ {
			s += float64(i)
		}
		return s
	}
	want := float64(n * (n - 1) / 2)

	for _, cfg := range []Config{
		{},
		{Enabled: true, NumWorkers: 4, MinChunkSize: 1},
		{Enabled: true, NumWorkers: 7, MinChunkSize: 100},
	} {
		if got := Sum(n, f, cfg); got != want {
			t.Errorf("Sum with %+v = %g, want %g", cfg, got, want)
		}
	}
	if got := Sum(0, f, DefaultConfig()); got != 0 {
		t.Errorf("Sum over empty range = %g", got)
	}
}
