package engine

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Integrator advances a System. Implementations are SteepestDescent and
// VelocityVerlet.
type Integrator interface {
	Name() string
	run(ctx context.Context, s *System, n int) (int, error)
}

// SteepestDescent moves particles along the force, limiting each
// displacement component to MaxDisplacement. It stops early once the
// largest force and torque fall below FMax.
type SteepestDescent struct {
	FMax            float64
	Gamma           float64
	MaxDisplacement float64
}

func (SteepestDescent) Name() string { return "steepest_descent" }

// VelocityVerlet is the NVE integrator. Thermostats add their forces inside
// the step.
type VelocityVerlet struct{}

func (VelocityVerlet) Name() string { return "velocity_verlet" }

// Run integrates n steps with the current integrator. It returns the number
// of steps performed, which is less than n when a minimizer converged.
func (s *System) Run(ctx context.Context, n int) (int, error) {
	if s.integrator == nil {
		return 0, ErrNoIntegrator
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative step count %d", ErrParameterBounds, n)
	}
	done, err := s.integrator.run(ctx, s, n)
	if err != nil {
		s.log.Debugf("%s stopped after %d of %d steps: %v", s.integrator.Name(), done, n, err)
	}
	return done, err
}

func (s *System) wrap(err error) error {
	return &SimulationError{Step: s.steps, Time: s.time, Wrapped: err}
}

func (sd SteepestDescent) run(ctx context.Context, s *System, n int) (int, error) {
	if sd.Gamma <= 0 || sd.MaxDisplacement <= 0 {
		return 0, fmt.Errorf("%w: steepest descent gamma %g max_displacement %g",
			ErrParameterBounds, sd.Gamma, sd.MaxDisplacement)
	}
	for step := 0; step < n; step++ {
		if err := ctx.Err(); err != nil {
			return step, err
		}
		if err := s.computeForces(false); err != nil {
			return step, s.wrap(err)
		}
		var max2 float64
		for _, p := range s.particles {
			if p.Virtual {
				continue
			}
			max2 = math.Max(max2, r3.Norm2(p.Force))
			p.Pos = r3.Add(p.Pos, r3.Vec{
				X: clamp(sd.Gamma*p.Force.X, sd.MaxDisplacement),
				Y: clamp(sd.Gamma*p.Force.Y, sd.MaxDisplacement),
				Z: clamp(sd.Gamma*p.Force.Z, sd.MaxDisplacement),
			})
			if p.Rotation {
				max2 = math.Max(max2, r3.Norm2(p.Torque))
				if t := r3.Norm(p.Torque); t > 0 {
					angle := clamp(sd.Gamma*t, sd.MaxDisplacement)
					p.Quat = rotateLab(p.Quat, r3.Scale(1/t, p.Torque), angle)
				}
			}
		}
		s.forcesValid = false
		if math.Sqrt(max2) < sd.FMax {
			return step, nil
		}
	}
	return n, nil
}

func clamp(x, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, x))
}

func (VelocityVerlet) run(ctx context.Context, s *System, n int) (int, error) {
	dt := s.timeStep
	if !s.forcesValid {
		if err := s.computeForces(true); err != nil {
			return 0, s.wrap(err)
		}
	}
	for step := 0; step < n; step++ {
		if err := ctx.Err(); err != nil {
			return step, err
		}
		for _, p := range s.particles {
			if p.Virtual {
				continue
			}
			kick(p, 0.5*dt)
			p.Pos = r3.Add(p.Pos, r3.Scale(dt, p.Vel))
			if p.Rotation {
				p.Quat = advanceBody(p.Quat, r3.Scale(dt, p.Omega))
			}
		}
		if err := s.computeForces(true); err != nil {
			return step, s.wrap(err)
		}
		for _, p := range s.particles {
			if !p.Virtual {
				kick(p, 0.5*dt)
			}
		}
		s.updateVirtualSites()
		s.steps++
		s.time += dt
		if err := s.checkState(); err != nil {
			return step + 1, s.wrap(err)
		}
		if err := s.updateAccumulators(); err != nil {
			return step + 1, s.wrap(err)
		}
	}
	return n, nil
}

// kick applies half a step of force and torque to p.
func kick(p *Particle, h float64) {
	p.Vel = r3.Add(p.Vel, r3.Scale(h/p.Mass, p.Force))
	if !p.Rotation {
		return
	}
	tb := toBody(p.Quat, p.Torque)
	w := p.Omega
	inertia := p.Rinertia
	iw := r3.Vec{X: inertia.X * w.X, Y: inertia.Y * w.Y, Z: inertia.Z * w.Z}
	rhs := r3.Sub(tb, r3.Cross(w, iw))
	p.Omega = r3.Vec{
		X: w.X + h*rhs.X/inertia.X,
		Y: w.Y + h*rhs.Y/inertia.Y,
		Z: w.Z + h*rhs.Z/inertia.Z,
	}
}

func (s *System) checkState() error {
	for _, p := range s.particles {
		if !isFinite(p.Pos) || !isFinite(p.Vel) {
			return fmt.Errorf("%w: particle %d", ErrInvalidState, p.ID)
		}
	}
	return nil
}

func (s *System) updateAccumulators() error {
	for _, a := range s.accumulators {
		a.count++
		if a.count%a.acc.DeltaN() != 0 {
			continue
		}
		if err := a.acc.Update(s); err != nil {
			return err
		}
	}
	return nil
}
