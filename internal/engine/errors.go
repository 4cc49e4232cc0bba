package engine

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a NaN or Inf position or velocity.
	ErrInvalidState = errors.New("engine: invalid state (NaN or Inf detected)")

	// ErrBondBroken indicates a bonded pair stretched past its r_cut.
	ErrBondBroken = errors.New("engine: bond broken")

	// ErrUnknownParticle indicates an id that was never added.
	ErrUnknownParticle = errors.New("engine: unknown particle id")

	// ErrUnknownBond indicates a bond id that was never registered.
	ErrUnknownBond = errors.New("engine: unknown bond id")

	// ErrNoIntegrator indicates Run was called before SetIntegrator.
	ErrNoIntegrator = errors.New("engine: no integrator set")

	// ErrCutoffTooLarge indicates an interaction range beyond half the box,
	// where the minimum image convention no longer holds.
	ErrCutoffTooLarge = errors.New("engine: cutoff exceeds half the box length")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("engine: parameter out of valid bounds")

	// ErrVirtualSite indicates an invalid virtual site relation.
	ErrVirtualSite = errors.New("engine: invalid virtual site relation")
)

// SimulationError wraps an error with the step and time it happened at.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
