package compute

import (
	"runtime"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// serialBelow is the particle count under which goroutines cost more than
// they save.
const serialBelow = 64

type CPUBackend struct {
	workers int
}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{
		workers: runtime.NumCPU(),
	}
}

// NewCPUBackendWorkers pins the worker count; values below 1 mean one worker.
func NewCPUBackendWorkers(workers int) *CPUBackend {
	if workers < 1 {
		workers = 1
	}
	return &CPUBackend{workers: workers}
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Cleanup()        {}

func (c *CPUBackend) Pairs(n int, kernel Kernel, forces []r3.Vec) float64 {
	if n < serialBelow || c.workers <= 1 {
		return pairsSerial(n, kernel, forces)
	}
	return c.pairsParallel(n, kernel, forces)
}

func pairsSerial(n int, kernel Kernel, forces []r3.Vec) float64 {
	energy := 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			f, e, ok := kernel(i, j)
			if !ok {
				continue
			}
			forces[i] = r3.Add(forces[i], f)
			forces[j] = r3.Sub(forces[j], f)
			energy += e
		}
	}
	return energy
}

// pairsParallel deals rows out round-robin so every worker gets a similar
// share of the triangular pair matrix.
func (c *CPUBackend) pairsParallel(n int, kernel Kernel, forces []r3.Vec) float64 {
	workers := c.workers
	if workers > n {
		workers = n
	}

	local := make([][]r3.Vec, workers)
	energies := make([]float64, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		local[w] = make([]r3.Vec, n)
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			lf := local[worker]
			for i := worker; i < n; i += workers {
				for j := i + 1; j < n; j++ {
					f, e, ok := kernel(i, j)
					if !ok {
						continue
					}
					lf[i] = r3.Add(lf[i], f)
					lf[j] = r3.Sub(lf[j], f)
					energies[worker] += e
				}
			}
		}(w)
	}

	wg.Wait()

	energy := 0.0
	for w := 0; w < workers; w++ {
		for i := 0; i < n; i++ {
			forces[i] = r3.Add(forces[i], local[w][i])
		}
		energy += energies[w]
	}
	return energy
}
