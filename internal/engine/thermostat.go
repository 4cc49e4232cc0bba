package engine

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// Langevin is the global Langevin thermostat. GammaRotation of zero uses
// Gamma for the rotational degrees of freedom too.
type Langevin struct {
	KT            float64
	Gamma         float64
	GammaRotation float64
	Seed          int64
}

type langevinState struct {
	params Langevin
	rng    *rand.Rand
}

// apply adds friction and noise to every non-virtual particle. Torques are
// accumulated in the lab frame.
func (l *langevinState) apply(particles []*Particle, dt float64) {
	kT := l.params.KT
	gRot := l.params.GammaRotation
	if gRot == 0 {
		gRot = l.params.Gamma
	}
	for _, p := range particles {
		if p.Virtual {
			continue
		}
		gamma := l.params.Gamma
		if p.Gamma != nil {
			gamma = *p.Gamma
		}
		if gamma > 0 {
			noise := math.Sqrt(24 * kT * gamma / dt)
			f := r3.Add(r3.Scale(-gamma, p.Vel), r3.Scale(noise, uniformVec(l.rng)))
			p.Force = r3.Add(p.Force, f)
		}
		if p.Rotation && gRot > 0 {
			noise := math.Sqrt(24 * kT * gRot / dt)
			tb := r3.Add(r3.Scale(-gRot, p.Omega), r3.Scale(noise, uniformVec(l.rng)))
			p.Torque = r3.Add(p.Torque, toLab(p.Quat, tb))
		}
	}
}
