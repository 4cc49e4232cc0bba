package engine

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/drudesim/internal/compute"
	"github.com/san-kum/drudesim/internal/logging"
	"gonum.org/v1/gonum/spatial/r3"
)

// System owns the particles, interactions and run state.
type System struct {
	box          r3.Vec
	timeStep     float64
	skin         float64
	minGlobalCut float64
	time         float64
	steps        int

	particles []*Particle
	nonBonded [][]pairParams
	bondTypes []bondType
	bonds     []bondEntry
	// pairs joined by a thermalized bond, exempt from Thole damping
	tholeSkip map[pairKey]struct{}

	solver     Solver
	thermostat *langevinState
	integrator Integrator
	backend    compute.Backend

	accumulators []*accumulatorEntry
	forcesValid  bool

	log logging.Logger
}

type pairKey struct{ a, b int }

func makePairKey(i, j int) pairKey {
	if i > j {
		i, j = j, i
	}
	return pairKey{i, j}
}

// New creates an empty orthorhombic periodic system.
func New(box r3.Vec) *System {
	return &System{
		box:       box,
		timeStep:  0.01,
		tholeSkip: make(map[pairKey]struct{}),
		backend:   compute.NewCPUBackend(),
		log:       logging.Nop{},
	}
}

func (s *System) Box() r3.Vec { return s.box }

func (s *System) Volume() float64 { return s.box.X * s.box.Y * s.box.Z }

func (s *System) TimeStep() float64 { return s.timeStep }

// SetTimeStep changes the integration step. Thermostat noise depends on it,
// so the next run re-evaluates forces.
func (s *System) SetTimeStep(dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("%w: time step must be positive, got %g", ErrParameterBounds, dt)
	}
	s.timeStep = dt
	s.forcesValid = false
	return nil
}

// Time is the simulated time in MD units.
func (s *System) Time() float64 { return s.time }

// Steps is the number of integration steps done so far.
func (s *System) Steps() int { return s.steps }

// SetSkin and SetMinGlobalCut record the neighbour list hints of the run.
// The direct pair loop visits every pair, so they only affect reporting.
func (s *System) SetSkin(skin float64)       { s.skin = skin }
func (s *System) Skin() float64              { return s.skin }
func (s *System) SetMinGlobalCut(c float64)  { s.minGlobalCut = c }
func (s *System) MinGlobalCut() float64      { return s.minGlobalCut }
func (s *System) SetLogger(l logging.Logger) { s.log = l }

func (s *System) SetBackend(b compute.Backend) {
	if s.backend != nil {
		s.backend.Cleanup()
	}
	s.backend = b
}

func (s *System) Backend() compute.Backend { return s.backend }

// AddParticle appends a particle. Ids are dense and sequential.
func (s *System) AddParticle(spec ParticleSpec) (*Particle, error) {
	if spec.Mass < 0 {
		return nil, fmt.Errorf("%w: negative mass %g", ErrParameterBounds, spec.Mass)
	}
	if !isFinite(spec.Pos) {
		return nil, fmt.Errorf("%w: position %v", ErrInvalidState, spec.Pos)
	}
	mass := spec.Mass
	if mass == 0 {
		mass = 1
	}
	inertia := spec.Rinertia
	if inertia == (r3.Vec{}) {
		inertia = r3.Vec{X: 1, Y: 1, Z: 1}
	}
	p := &Particle{
		ID:       len(s.particles),
		Type:     spec.Type,
		Pos:      spec.Pos,
		Vel:      spec.Vel,
		Q:        spec.Q,
		Mass:     mass,
		Rinertia: inertia,
		Gamma:    spec.Gamma,
		Rotation: spec.Rotation,
		Quat:     identity,
	}
	s.particles = append(s.particles, p)
	s.forcesValid = false
	return p, nil
}

// Particle looks a particle up by id.
func (s *System) Particle(id int) (*Particle, error) {
	if id < 0 || id >= len(s.particles) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownParticle, id)
	}
	return s.particles[id], nil
}

// Particles returns the particles in id order. The slice is shared.
func (s *System) Particles() []*Particle { return s.particles }

func (s *System) NumParticles() int { return len(s.particles) }

// SelectType returns the ids of all particles of type t.
func (s *System) SelectType(t int) []int {
	var ids []int
	for _, p := range s.particles {
		if p.Type == t {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Fold maps a position into the primary box [0, L).
func (s *System) Fold(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: fold(v.X, s.box.X),
		Y: fold(v.Y, s.box.Y),
		Z: fold(v.Z, s.box.Z),
	}
}

func fold(x, l float64) float64 {
	x -= l * math.Floor(x/l)
	if x >= l {
		x = 0
	}
	return x
}

// MinImage returns the shortest periodic vector from a to b.
func (s *System) MinImage(a, b r3.Vec) r3.Vec {
	d := r3.Sub(b, a)
	d.X -= s.box.X * math.Round(d.X/s.box.X)
	d.Y -= s.box.Y * math.Round(d.Y/s.box.Y)
	d.Z -= s.box.Z * math.Round(d.Z/s.box.Z)
	return d
}

func (s *System) halfBox() float64 {
	return 0.5 * math.Min(s.box.X, math.Min(s.box.Y, s.box.Z))
}

// SetElectrostatics installs the Coulomb solver.
func (s *System) SetElectrostatics(solver Solver) error {
	if solver != nil && solver.Cutoff() > s.halfBox() {
		return fmt.Errorf("%w: coulomb cutoff %g, half box %g", ErrCutoffTooLarge, solver.Cutoff(), s.halfBox())
	}
	s.solver = solver
	s.forcesValid = false
	return nil
}

func (s *System) Electrostatics() Solver { return s.solver }

// SetLangevin enables the Langevin thermostat on all non-virtual particles.
func (s *System) SetLangevin(l Langevin) error {
	if l.KT < 0 || l.Gamma < 0 {
		return fmt.Errorf("%w: langevin kT %g gamma %g", ErrParameterBounds, l.KT, l.Gamma)
	}
	s.thermostat = &langevinState{params: l, rng: rand.New(rand.NewSource(l.Seed))}
	s.forcesValid = false
	return nil
}

// Langevin returns the active thermostat parameters.
func (s *System) Langevin() (Langevin, bool) {
	if s.thermostat == nil {
		return Langevin{}, false
	}
	return s.thermostat.params, true
}

func (s *System) SetIntegrator(i Integrator) {
	s.integrator = i
}

// AutoUpdate registers an accumulator updated every DeltaN() steps of
// molecular dynamics.
func (s *System) AutoUpdate(acc Accumulator) error {
	if acc.DeltaN() <= 0 {
		return fmt.Errorf("%w: delta_N must be positive", ErrParameterBounds)
	}
	s.accumulators = append(s.accumulators, &accumulatorEntry{acc: acc})
	return nil
}

// Accumulator observes the system during a run.
type Accumulator interface {
	DeltaN() int
	Update(s *System) error
}

type accumulatorEntry struct {
	acc   Accumulator
	count int
}

// FoldedPos is the position of p mapped into the primary box.
func (s *System) FoldedPos(p *Particle) r3.Vec { return s.Fold(p.Pos) }
