package engine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// LennardJones is the shifted 12-6 potential between two particle types.
type LennardJones struct {
	Epsilon float64
	Sigma   float64
	Cutoff  float64
	// Shift is added to the energy inside the cutoff. AutoShift replaces it
	// with the value that brings the energy to zero at the cutoff.
	Shift     float64
	AutoShift bool
}

func (lj LennardJones) active() bool {
	return lj.Epsilon != 0 && lj.Sigma != 0 && lj.Cutoff > 0
}

// pair returns the energy and dE/dr at distance r.
func (lj LennardJones) pair(r float64) (e, dEdr float64, ok bool) {
	if r <= 0 || r >= lj.Cutoff {
		return 0, 0, false
	}
	sr6 := math.Pow(lj.Sigma/r, 6)
	sr12 := sr6 * sr6
	e = 4*lj.Epsilon*(sr12-sr6) + lj.Shift
	dEdr = -24 * lj.Epsilon * (2*sr12 - sr6) / r
	return e, dEdr, true
}

// Thole screens the Coulomb interaction of two polarizable dipoles.
// Q1Q2 is the product of the oscillator charges.
type Thole struct {
	ScalingCoeff float64
	Q1Q2         float64
}

func (t Thole) active() bool {
	return t.ScalingCoeff != 0 && t.Q1Q2 != 0
}

// pair replaces the solver's short-range part with the damped direct
// Coulomb interaction.
func (t Thole) pair(r float64, solver Solver) (e, dEdr float64, ok bool) {
	if solver == nil || r <= 0 || r >= solver.Cutoff() {
		return 0, 0, false
	}
	sr := t.ScalingCoeff * r
	ex := math.Exp(-sr)
	screen := 1 - (1+sr/2)*ex
	dScreen := t.ScalingCoeff / 2 * (1 + sr) * ex
	pref := solver.Prefactor()
	e = pref * screen / r
	dEdr = pref * (dScreen/r - screen/(r*r))
	if se, sd, ok := solver.Pair(r); ok {
		e -= se
		dEdr -= sd
	}
	return t.Q1Q2 * e, t.Q1Q2 * dEdr, true
}

type pairParams struct {
	lj    LennardJones
	thole Thole
}

func (s *System) params(t1, t2 int) *pairParams {
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	if t1 < 0 || t2 >= len(s.nonBonded) {
		return nil
	}
	row := s.nonBonded[t1]
	if t2 >= len(row) {
		return nil
	}
	return &row[t2]
}

func (s *System) ensureParams(t1, t2 int) *pairParams {
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	for len(s.nonBonded) <= t2 {
		s.nonBonded = append(s.nonBonded, nil)
	}
	for i := range s.nonBonded {
		for len(s.nonBonded[i]) <= t2 {
			s.nonBonded[i] = append(s.nonBonded[i], pairParams{})
		}
	}
	return &s.nonBonded[t1][t2]
}

// SetLennardJones sets the LJ parameters of a type pair.
func (s *System) SetLennardJones(t1, t2 int, lj LennardJones) error {
	if t1 < 0 || t2 < 0 {
		return fmt.Errorf("%w: negative particle type", ErrParameterBounds)
	}
	if lj.Cutoff > s.halfBox() {
		return fmt.Errorf("%w: lj cutoff %g for types %d-%d, half box %g",
			ErrCutoffTooLarge, lj.Cutoff, t1, t2, s.halfBox())
	}
	if lj.AutoShift {
		lj.Shift = 0
		if lj.active() {
			sr6 := math.Pow(lj.Sigma/lj.Cutoff, 6)
			lj.Shift = -4 * lj.Epsilon * (sr6*sr6 - sr6)
		}
	}
	s.ensureParams(t1, t2).lj = lj
	s.forcesValid = false
	return nil
}

// LennardJonesParams returns the LJ parameters of a type pair.
func (s *System) LennardJonesParams(t1, t2 int) LennardJones {
	if p := s.params(t1, t2); p != nil {
		return p.lj
	}
	return LennardJones{}
}

// SetThole sets the Thole parameters of a type pair.
func (s *System) SetThole(t1, t2 int, th Thole) error {
	if t1 < 0 || t2 < 0 {
		return fmt.Errorf("%w: negative particle type", ErrParameterBounds)
	}
	s.ensureParams(t1, t2).thole = th
	s.forcesValid = false
	return nil
}

// TholeParams returns the Thole parameters of a type pair.
func (s *System) TholeParams(t1, t2 int) Thole {
	if p := s.params(t1, t2); p != nil {
		return p.thole
	}
	return Thole{}
}

// pairTerms evaluates every non-bonded term of particles i and j.
func (s *System) pairTerms(i, j int) (dEdr float64, lj, coul, thole float64, r float64, ok bool) {
	pi, pj := s.particles[i], s.particles[j]
	d := s.MinImage(pi.Pos, pj.Pos)
	r = r3.Norm(d)
	if r <= 0 {
		return 0, 0, 0, 0, r, false
	}
	if p := s.params(pi.Type, pj.Type); p != nil {
		if p.lj.active() {
			if e, de, hit := p.lj.pair(r); hit {
				lj, dEdr, ok = e, dEdr+de, true
			}
		}
		if p.thole.active() && s.solver != nil {
			if _, skip := s.tholeSkip[makePairKey(i, j)]; !skip {
				if e, de, hit := p.thole.pair(r, s.solver); hit {
					thole, dEdr, ok = e, dEdr+de, true
				}
			}
		}
	}
	if s.solver != nil && pi.Q != 0 && pj.Q != 0 {
		if e, de, hit := s.solver.Pair(r); hit {
			qq := pi.Q * pj.Q
			coul, dEdr, ok = qq*e, dEdr+qq*de, true
		}
	}
	return dEdr, lj, coul, thole, r, ok
}
