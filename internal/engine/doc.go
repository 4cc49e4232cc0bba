// Package engine is the molecular-dynamics API the run driver talks to.
//
// It exposes the surface a BMIM PF6 driver consumes from an MD engine:
//
//   - [System]: box, particles, time step and the run loop
//   - [LennardJones], [Thole]: non-bonded pair parameters per type pair
//   - [HarmonicBond], [ThermalizedBond], [BondedCoulombSR]: bonded kinds
//   - [Solver]: electrostatics, with the real-space [DSF] solver
//   - [SteepestDescent], [VelocityVerlet]: integrators
//   - [Accumulator]: observables updated every N steps during a run
//
// The implementation is a small reference backend. Pairs are visited with a
// direct minimum-image loop through a [compute.Backend], electrostatics are
// evaluated in real space only, and rigid molecules are expressed as
// relative virtual sites on a rotating center.
//
// # Example
//
//	sys := engine.New(r3.Vec{X: l, Y: l, Z: l})
//	sys.SetTimeStep(0.01)
//	p, _ := sys.AddParticle(engine.ParticleSpec{Type: 0, Pos: pos, Q: -0.78, Mass: 144.96})
//	sys.SetIntegrator(engine.VelocityVerlet{})
//	_, err := sys.Run(ctx, 1000)
//
// # Thread Safety
//
// A System is NOT safe for concurrent use. Pair kernels run concurrently
// inside a single force evaluation only.
package engine
