// Package compute provides the pair-force backends used by the engine.
//
// A backend walks every unordered particle pair (i < j) exactly once, calls a
// kernel for it and accumulates the returned force with Newton's third law:
//
//	backend := compute.Select(false)
//	energy := backend.Pairs(n, kernel, forces)
//
// Kernels must be safe for concurrent use; the CPU backend splits rows over
// goroutines with worker-local force buffers.
//
// Build with the cuda tag to link an accelerated backend; without it the
// accelerated backend reports itself unavailable and [Select] falls back to
// the CPU.
package compute
