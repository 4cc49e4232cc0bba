package engine

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Energy is the decomposed potential and kinetic energy of the system.
type Energy struct {
	Total   float64
	Kinetic float64
	LJ      float64
	Coulomb float64
	Thole   float64
	Bonded  float64
}

// Potential is the total minus the kinetic part.
func (e Energy) Potential() float64 { return e.Total - e.Kinetic }

// Energy evaluates every term at the current state. Forces are left
// untouched.
func (s *System) Energy() (Energy, error) {
	s.updateVirtualSites()
	var e Energy
	for i := range s.particles {
		for j := i + 1; j < len(s.particles); j++ {
			_, lj, coul, thole, _, ok := s.pairTerms(i, j)
			if !ok {
				continue
			}
			e.LJ += lj
			e.Coulomb += coul
			e.Thole += thole
		}
	}
	saved := make([]r3.Vec, len(s.particles))
	for i, p := range s.particles {
		saved[i] = p.Force
	}
	bonded, err := s.bondedForces(false)
	for i, p := range s.particles {
		p.Force = saved[i]
	}
	if err != nil {
		return Energy{}, err
	}
	e.Bonded = bonded
	e.Kinetic = s.kinetic()
	e.Total = e.Kinetic + e.LJ + e.Coulomb + e.Thole + e.Bonded
	return e, nil
}

func (s *System) kinetic() float64 {
	var ke float64
	for _, p := range s.particles {
		if p.Virtual {
			continue
		}
		ke += 0.5 * p.Mass * r3.Norm2(p.Vel)
		if p.Rotation {
			w := p.Omega
			ke += 0.5 * (p.Rinertia.X*w.X*w.X + p.Rinertia.Y*w.Y*w.Y + p.Rinertia.Z*w.Z*w.Z)
		}
	}
	return ke
}

// Temperature returns the instantaneous kinetic temperature in energy
// units, counting three degrees of freedom per non-virtual particle and
// three more per rotating one.
func (s *System) Temperature() float64 {
	dof := 0
	for _, p := range s.particles {
		if p.Virtual {
			continue
		}
		dof += 3
		if p.Rotation {
			dof += 3
		}
	}
	if dof == 0 {
		return 0
	}
	return 2 * s.kinetic() / float64(dof)
}
