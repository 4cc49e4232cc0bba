package engine

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// BondID identifies a registered bond type.
type BondID int

// Bond is one of HarmonicBond, ThermalizedBond or BondedCoulombSR.
type Bond interface {
	Kind() string
}

// HarmonicBond is a spring of stiffness K and rest length R0. A positive
// RCut breaks the bond beyond that distance.
type HarmonicBond struct {
	K    float64
	R0   float64
	RCut float64
}

func (HarmonicBond) Kind() string { return "harmonic" }

// ThermalizedBond thermostats the centre of mass and the relative motion of
// a pair separately. Gammas are frictions in mass per time.
type ThermalizedBond struct {
	TempCOM       float64
	GammaCOM      float64
	TempDistance  float64
	GammaDistance float64
	RCut          float64
	Seed          int64
}

func (ThermalizedBond) Kind() string { return "thermalized" }

// BondedCoulombSR adds the short-range Coulomb interaction of the solver for
// the charge product Q1Q2. A negative product cancels a non-bonded pair.
type BondedCoulombSR struct {
	Q1Q2 float64
}

func (BondedCoulombSR) Kind() string { return "bonded_coulomb_sr" }

type bondType struct {
	bond Bond
	rng  *rand.Rand
}

type bondEntry struct {
	id     BondID
	p1, p2 int
}

// AddBond registers a bond type and returns its id.
func (s *System) AddBond(b Bond) (BondID, error) {
	switch v := b.(type) {
	case HarmonicBond:
		if v.K < 0 {
			return 0, fmt.Errorf("%w: harmonic k %g", ErrParameterBounds, v.K)
		}
	case ThermalizedBond:
		if v.GammaCOM < 0 || v.GammaDistance < 0 || v.TempCOM < 0 || v.TempDistance < 0 {
			return 0, fmt.Errorf("%w: thermalized bond %+v", ErrParameterBounds, v)
		}
	case BondedCoulombSR:
	default:
		return 0, fmt.Errorf("%w: unsupported bond %T", ErrParameterBounds, b)
	}
	bt := bondType{bond: b}
	if tb, ok := b.(ThermalizedBond); ok {
		bt.rng = rand.New(rand.NewSource(tb.Seed))
	}
	s.bondTypes = append(s.bondTypes, bt)
	return BondID(len(s.bondTypes) - 1), nil
}

// BondType returns the registered bond for id.
func (s *System) BondType(id BondID) (Bond, error) {
	if id < 0 || int(id) >= len(s.bondTypes) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBond, id)
	}
	return s.bondTypes[id].bond, nil
}

// BindBond attaches bond id between particles p1 and p2. The bond is stored
// on p1.
func (s *System) BindBond(p1 int, id BondID, p2 int) error {
	if _, err := s.BondType(id); err != nil {
		return err
	}
	a, err := s.Particle(p1)
	if err != nil {
		return err
	}
	if _, err := s.Particle(p2); err != nil {
		return err
	}
	if p1 == p2 {
		return fmt.Errorf("%w: bond %d on particle %d with itself", ErrParameterBounds, id, p1)
	}
	a.bonds = append(a.bonds, bondRef{id: id, partner: p2})
	s.bonds = append(s.bonds, bondEntry{id: id, p1: p1, p2: p2})
	if _, ok := s.bondTypes[id].bond.(ThermalizedBond); ok {
		s.tholeSkip[makePairKey(p1, p2)] = struct{}{}
	}
	s.forcesValid = false
	return nil
}

// NumBonds counts the bound pairs.
func (s *System) NumBonds() int { return len(s.bonds) }

// bondedForces adds bond forces and returns the bonded energy. Thermalized
// bonds act only when thermal is set.
func (s *System) bondedForces(thermal bool) (float64, error) {
	var total float64
	for _, be := range s.bonds {
		a, b := s.particles[be.p1], s.particles[be.p2]
		d := s.MinImage(a.Pos, b.Pos)
		r := r3.Norm(d)
		bt := &s.bondTypes[be.id]
		switch bond := bt.bond.(type) {
		case HarmonicBond:
			if bond.RCut > 0 && r > bond.RCut {
				return total, fmt.Errorf("%w: harmonic %d-%d at r=%g", ErrBondBroken, be.p1, be.p2, r)
			}
			dr := r - bond.R0
			total += 0.5 * bond.K * dr * dr
			var f r3.Vec
			switch {
			case bond.R0 == 0:
				f = r3.Scale(bond.K, d)
			case r > 0:
				f = r3.Scale(bond.K*dr/r, d)
			}
			a.Force = r3.Add(a.Force, f)
			b.Force = r3.Sub(b.Force, f)
		case BondedCoulombSR:
			if s.solver == nil {
				continue
			}
			e, dEdr, ok := s.solver.Pair(r)
			if !ok {
				continue
			}
			total += bond.Q1Q2 * e
			f := r3.Scale(bond.Q1Q2*dEdr/r, d)
			a.Force = r3.Add(a.Force, f)
			b.Force = r3.Sub(b.Force, f)
		case ThermalizedBond:
			if bond.RCut > 0 && r > bond.RCut {
				return total, fmt.Errorf("%w: thermalized %d-%d at r=%g", ErrBondBroken, be.p1, be.p2, r)
			}
			if !thermal {
				continue
			}
			f1, f2 := s.thermalizedForces(bond, bt.rng, a, b)
			a.Force = r3.Add(a.Force, f1)
			b.Force = r3.Add(b.Force, f2)
		}
	}
	return total, nil
}

func (s *System) thermalizedForces(tb ThermalizedBond, rng *rand.Rand, a, b *Particle) (f1, f2 r3.Vec) {
	m1, m2 := a.Mass, b.Mass
	mt := m1 + m2
	vcom := r3.Scale(1/mt, r3.Add(r3.Scale(m1, a.Vel), r3.Scale(m2, b.Vel)))
	vdist := r3.Sub(b.Vel, a.Vel)
	noiseCOM := math.Sqrt(24 * tb.GammaCOM * tb.TempCOM / s.timeStep)
	noiseDist := math.Sqrt(24 * tb.GammaDistance * tb.TempDistance / s.timeStep)

	fcom := r3.Add(r3.Scale(-tb.GammaCOM, vcom), r3.Scale(noiseCOM, uniformVec(rng)))
	fdist := r3.Add(r3.Scale(-tb.GammaDistance, vdist), r3.Scale(noiseDist, uniformVec(rng)))

	f1 = r3.Sub(r3.Scale(m1/mt, fcom), fdist)
	f2 = r3.Add(r3.Scale(m2/mt, fcom), fdist)
	return f1, f2
}

// uniformVec draws each component from U(-0.5, 0.5).
func uniformVec(rng *rand.Rand) r3.Vec {
	return r3.Vec{X: rng.Float64() - 0.5, Y: rng.Float64() - 0.5, Z: rng.Float64() - 0.5}
}
