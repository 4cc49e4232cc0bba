package compute

import "gonum.org/v1/gonum/spatial/r3"

// CUDABackend stands in for the accelerated pair loop. No device kernel is
// linked into this build, so it reports itself unavailable and delegates to
// the CPU.
type CUDABackend struct {
	cpu *CPUBackend
}

func NewCUDABackend() *CUDABackend {
	return &CUDABackend{cpu: NewCPUBackend()}
}

func (c *CUDABackend) Name() string    { return "cuda (not available)" }
func (c *CUDABackend) Available() bool { return false }
func (c *CUDABackend) Cleanup()        {}

func (c *CUDABackend) Pairs(n int, kernel Kernel, forces []r3.Vec) float64 {
	return c.cpu.Pairs(n, kernel, forces)
}
