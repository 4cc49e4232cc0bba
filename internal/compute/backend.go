package compute

import "gonum.org/v1/gonum/spatial/r3"

// Kernel evaluates the interaction of the pair (i, j). It returns the force on
// i (j receives the opposite force), the pair energy, and false when the pair
// does not interact.
type Kernel func(i, j int) (f r3.Vec, energy float64, ok bool)

type Backend interface {
	Name() string
	Available() bool
	// Pairs adds the pair forces of n particles into forces and returns the
	// summed pair energy.
	Pairs(n int, kernel Kernel, forces []r3.Vec) float64
	Cleanup()
}

// Select returns the accelerated backend when it is wanted and present,
// otherwise the CPU backend.
func Select(accelerated bool) Backend {
	if accelerated {
		cuda := NewCUDABackend()
		if cuda.Available() {
			return cuda
		}
	}
	return NewCPUBackend()
}
