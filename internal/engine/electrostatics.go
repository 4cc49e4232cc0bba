package engine

import (
	"fmt"
	"math"
)

// Solver is a real-space Coulomb method. Pair returns the energy and dE/dr
// of a unit charge product at distance r.
type Solver interface {
	Name() string
	Prefactor() float64
	Cutoff() float64
	Pair(r float64) (e, dEdr float64, ok bool)
}

// DSF is the damped shifted force method of Fennell and Gezelter. Both the
// energy and the force go to zero at the cutoff.
type DSF struct {
	prefactor float64
	alpha     float64
	rCut      float64

	shiftE float64
	shiftF float64
}

// NewDSF derives the damping parameter from the requested accuracy, so that
// erfc(alpha*rCut) is of the order of accuracy.
func NewDSF(prefactor, accuracy, rCut float64) (*DSF, error) {
	if prefactor <= 0 {
		return nil, fmt.Errorf("%w: coulomb prefactor %g", ErrParameterBounds, prefactor)
	}
	if accuracy <= 0 || accuracy >= 1 {
		return nil, fmt.Errorf("%w: accuracy %g not in (0, 1)", ErrParameterBounds, accuracy)
	}
	if rCut <= 0 {
		return nil, fmt.Errorf("%w: coulomb cutoff %g", ErrParameterBounds, rCut)
	}
	alpha := math.Sqrt(-math.Log(accuracy)) / rCut
	d := &DSF{prefactor: prefactor, alpha: alpha, rCut: rCut}
	d.shiftE = math.Erfc(alpha*rCut) / rCut
	d.shiftF = d.shiftE/rCut + 2*alpha/math.Sqrt(math.Pi)*math.Exp(-alpha*alpha*rCut*rCut)/rCut
	return d, nil
}

func (d *DSF) Name() string       { return "dsf" }
func (d *DSF) Prefactor() float64 { return d.prefactor }
func (d *DSF) Cutoff() float64    { return d.rCut }
func (d *DSF) Alpha() float64     { return d.alpha }

func (d *DSF) Pair(r float64) (e, dEdr float64, ok bool) {
	if r <= 0 || r >= d.rCut {
		return 0, 0, false
	}
	erfc := math.Erfc(d.alpha * r)
	e = d.prefactor * (erfc/r - d.shiftE + d.shiftF*(r-d.rCut))
	dEdr = d.prefactor * (-erfc/(r*r) - 2*d.alpha/math.Sqrt(math.Pi)*math.Exp(-d.alpha*d.alpha*r*r)/r + d.shiftF)
	return e, dEdr, true
}
