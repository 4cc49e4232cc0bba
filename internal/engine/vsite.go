package engine

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// RelateTo turns vs into a virtual site that rigidly follows com. The
// current offset, expressed in com's body frame, is kept for the rest of
// the run.
func (s *System) RelateTo(vs, com int) error {
	v, err := s.Particle(vs)
	if err != nil {
		return err
	}
	c, err := s.Particle(com)
	if err != nil {
		return err
	}
	switch {
	case vs == com:
		return fmt.Errorf("%w: particle %d related to itself", ErrVirtualSite, vs)
	case c.Virtual:
		return fmt.Errorf("%w: particle %d is itself virtual", ErrVirtualSite, com)
	case !c.Rotation:
		return fmt.Errorf("%w: particle %d has no rotational degrees of freedom", ErrVirtualSite, com)
	}
	offset := s.MinImage(c.Pos, v.Pos)
	v.vs = &vsRelation{to: com, body: toBody(c.Quat, offset)}
	v.Virtual = true
	s.forcesValid = false
	return nil
}

// updateVirtualSites places every virtual site from its reference particle
// and gives it the velocity of that rigid body point.
func (s *System) updateVirtualSites() {
	for _, p := range s.particles {
		if p.vs == nil {
			continue
		}
		c := s.particles[p.vs.to]
		arm := toLab(c.Quat, p.vs.body)
		p.Pos = r3.Add(c.Pos, arm)
		p.Vel = r3.Add(c.Vel, toLab(c.Quat, r3.Cross(c.Omega, p.vs.body)))
	}
}

// backTransfer moves the forces on virtual sites to their reference
// particles as force and torque.
func (s *System) backTransfer() {
	for _, p := range s.particles {
		if p.vs == nil {
			continue
		}
		c := s.particles[p.vs.to]
		arm := toLab(c.Quat, p.vs.body)
		c.Force = r3.Add(c.Force, p.Force)
		c.Torque = r3.Add(c.Torque, r3.Cross(arm, p.Force))
		p.Force = r3.Vec{}
	}
}
