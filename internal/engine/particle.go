package engine

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ParticleSpec describes a particle to add. Zero Mass means unit mass and a
// zero Rinertia means unit inertia, as in most MD engines.
type ParticleSpec struct {
	Type     int
	Pos      r3.Vec
	Vel      r3.Vec
	Q        float64
	Mass     float64
	Rinertia r3.Vec
	// Gamma overrides the thermostat's translational friction for this
	// particle. Nil keeps the global value.
	Gamma    *float64
	Rotation bool
}

// Particle is the engine's view of one particle. Positions are unfolded.
type Particle struct {
	ID       int
	Type     int
	Pos      r3.Vec
	Vel      r3.Vec
	Force    r3.Vec
	Q        float64
	Mass     float64
	Rinertia r3.Vec
	Gamma    *float64
	Rotation bool

	// Quat maps body-frame vectors to the lab frame.
	Quat quat.Number
	// Omega is the angular velocity in the body frame.
	Omega r3.Vec
	// Torque is accumulated in the lab frame.
	Torque r3.Vec

	Virtual bool
	vs      *vsRelation
	bonds   []bondRef
}

type vsRelation struct {
	to   int
	body r3.Vec
}

type bondRef struct {
	id      BondID
	partner int
}

// Bonds returns the bond ids and partners stored on p.
func (p *Particle) Bonds() (ids []BondID, partners []int) {
	for _, b := range p.bonds {
		ids = append(ids, b.id)
		partners = append(partners, b.partner)
	}
	return ids, partners
}

// RelatedTo returns the id of the particle p follows, or -1.
func (p *Particle) RelatedTo() int {
	if p.vs == nil {
		return -1
	}
	return p.vs.to
}

var identity = quat.Number{Real: 1}

func vecQuat(v r3.Vec) quat.Number {
	return quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
}

func quatVec(q quat.Number) r3.Vec {
	return r3.Vec{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
}

// toLab rotates a body-frame vector into the lab frame.
func toLab(q quat.Number, v r3.Vec) r3.Vec {
	return quatVec(quat.Mul(quat.Mul(q, vecQuat(v)), quat.Conj(q)))
}

// toBody rotates a lab-frame vector into the body frame.
func toBody(q quat.Number, v r3.Vec) r3.Vec {
	return quatVec(quat.Mul(quat.Mul(quat.Conj(q), vecQuat(v)), q))
}

func normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return identity
	}
	return quat.Scale(1/n, q)
}

// rotateLab turns q by angle around a lab-frame unit axis.
func rotateLab(q quat.Number, axis r3.Vec, angle float64) quat.Number {
	s, c := math.Sincos(angle / 2)
	r := quat.Number{Real: c, Imag: s * axis.X, Jmag: s * axis.Y, Kmag: s * axis.Z}
	return normalize(quat.Mul(r, q))
}

// advanceBody turns q by the body-frame rotation vector w (angle times
// axis).
func advanceBody(q quat.Number, w r3.Vec) quat.Number {
	half := quat.Exp(vecQuat(r3.Scale(0.5, w)))
	return normalize(quat.Mul(q, half))
}

func isFinite(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}
