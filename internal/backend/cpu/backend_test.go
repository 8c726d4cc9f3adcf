package cpu

import (
	"testing"

	"github.com/born-ml/backprop/internal/parallel"
	"github.com/stretchr/testify/assert"
)

// allBackends returns one backend per strategy. The threaded backend uses a
// small chunk size so that tiny test vectors still fan out.
func allBackends() map[string]*CPUBackend {
	return map[string]*CPUBackend{
		"sequential": New(),
		"threaded":   NewThreaded(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}),
		"vectorized": NewVectorized(),
	}
}

func TestCPUBackend_New(t *testing.T) {
	tests := []struct {
		backend  *CPUBackend
		strategy Strategy
		name     string
	}{
		{New(), Sequential, "CPU/sequential"},
		{NewThreaded(parallel.DefaultConfig()), Threaded, "CPU/threaded"},
		{NewVectorized(), Vectorized, "CPU/vectorized"},
		{NewWithStrategy(Threaded), Threaded, "CPU/threaded"},
		{NewWithStrategy(Strategy(42)), Sequential, "CPU/sequential"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.strategy, tt.backend.Strategy())
		assert.Equal(t, tt.name, tt.backend.Name())
	}
	assert.Equal(t, "Strategy(7)", Strategy(7).String())
}
