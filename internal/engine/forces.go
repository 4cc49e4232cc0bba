package engine

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// computeForces rebuilds all forces and torques at the current positions.
// thermal adds the thermostat and thermalized bond terms, which only make
// sense during molecular dynamics.
func (s *System) computeForces(thermal bool) error {
	s.updateVirtualSites()
	n := len(s.particles)
	for _, p := range s.particles {
		p.Force = r3.Vec{}
		p.Torque = r3.Vec{}
	}
	if s.hasPairTerms() {
		buf := make([]r3.Vec, n)
		s.backend.Pairs(n, s.pairKernel, buf)
		for i, p := range s.particles {
			p.Force = r3.Add(p.Force, buf[i])
		}
	}
	if _, err := s.bondedForces(thermal); err != nil {
		return err
	}
	if thermal && s.thermostat != nil {
		s.thermostat.apply(s.particles, s.timeStep)
	}
	s.backTransfer()
	s.forcesValid = true
	return nil
}

func (s *System) hasPairTerms() bool {
	return s.solver != nil || len(s.nonBonded) > 0
}

// pairKernel is the compute.Kernel of the non-bonded interactions.
func (s *System) pairKernel(i, j int) (r3.Vec, float64, bool) {
	dEdr, lj, coul, thole, r, ok := s.pairTerms(i, j)
	if !ok {
		return r3.Vec{}, 0, false
	}
	d := s.MinImage(s.particles[i].Pos, s.particles[j].Pos)
	return r3.Scale(dEdr/r, d), lj + coul + thole, true
}

// Forces evaluates forces without advancing the system and returns the
// force on each particle after virtual site back transfer.
func (s *System) Forces() ([]r3.Vec, error) {
	if err := s.computeForces(false); err != nil {
		return nil, err
	}
	out := make([]r3.Vec, len(s.particles))
	for i, p := range s.particles {
		out[i] = p.Force
	}
	return out, nil
}
