// Package bmim runs the coarse-grained BMIM PF6 ionic liquid: it builds
// the box, optionally polarizes it with Drude oscillators, equilibrates,
// and writes the trajectory and radial distribution functions.
package bmim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/drudesim/internal/compute"
	"github.com/san-kum/drudesim/internal/config"
	"github.com/san-kum/drudesim/internal/drude"
	"github.com/san-kum/drudesim/internal/engine"
	"github.com/san-kum/drudesim/internal/forcefield"
	"github.com/san-kum/drudesim/internal/logging"
	"github.com/san-kum/drudesim/internal/units"
	"github.com/san-kum/drudesim/internal/viz"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// Output file names inside the run directory.
	TrajectoryFile = "traj.xyz"
	RDFFile        = "rdf.dat"

	thermalizedSeed = 123
	harmonicRCut    = 1.0
)

// Visualizer shows a running simulation until the user quits or ctx ends.
type Visualizer func(ctx context.Context, src viz.Source, stepsPerFrame int) error

type Option func(*Experiment)

func WithLogger(l logging.Logger) Option {
	return func(e *Experiment) { e.log = l }
}

// WithProgress draws progress bars for the cycle loops on w.
func WithProgress(w io.Writer) Option {
	return func(e *Experiment) { e.progress = w }
}

// WithVisualizer replaces the terminal viewer used in visual mode.
func WithVisualizer(v Visualizer) Option {
	return func(e *Experiment) { e.visualize = v }
}

type Experiment struct {
	cfg       *config.Config
	table     *forcefield.Table
	registry  *Registry
	log       logging.Logger
	progress  io.Writer
	visualize Visualizer
	now       func() time.Time

	sys       *engine.System
	helper    *drude.Helper
	rng       *rand.Rand
	prefactor float64
	res       Result

	anions       []int
	cations      [][]int
	cationDrudes [][]int
}

// New checks cfg and prepares an experiment. The configuration is copied.
func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Experiment{
		cfg:       cfg.Clone(),
		table:     forcefield.NewTable(),
		registry:  NewRegistry(),
		log:       logging.Nop{},
		visualize: RunViewer,
		now:       time.Now,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		prefactor: units.CoulombPrefactor(cfg.EpsilonR),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// System returns the simulated system, nil before Setup.
func (e *Experiment) System() *engine.System {
	return e.sys
}

// Drudes returns the oscillator registry, nil before Setup or without
// Drude particles.
func (e *Experiment) Drudes() *drude.Helper {
	return e.helper
}

// Setup builds the system up to the point where production can start:
// topology, force field, energy minimization, thermostat, electrostatics
// and the Drude oscillators.
func (e *Experiment) Setup(ctx context.Context) error {
	l := e.cfg.BoxLength()
	e.sys = engine.New(r3.Vec{X: l, Y: l, Z: l})
	e.sys.SetLogger(e.log)
	e.sys.SetSkin(e.cfg.System.Skin)
	e.sys.SetMinGlobalCut(e.cfg.System.MinGlobalCut)
	if err := e.sys.SetTimeStep(units.TimeStep(e.cfg.System.TimeStepFs)); err != nil {
		return err
	}
	e.res.BoxLength = l

	if err := e.setupForceField(); err != nil {
		return fmt.Errorf("force field: %w", err)
	}
	if err := e.placeIons(); err != nil {
		return fmt.Errorf("place ions: %w", err)
	}
	if err := e.minimize(ctx); err != nil {
		return err
	}
	if err := e.setupThermostat(); err != nil {
		return err
	}
	if err := e.setupElectrostatics(); err != nil {
		return fmt.Errorf("electrostatics: %w", err)
	}
	if e.cfg.Drude {
		if err := e.setupDrude(); err != nil {
			return fmt.Errorf("drude: %w", err)
		}
	}
	e.res.NumParticles = e.sys.NumParticles()
	return nil
}

// Run performs the whole procedure, calling Setup first if needed. Output
// files written before a cancellation or failure are flushed and kept.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if err := os.MkdirAll(e.cfg.Path, 0755); err != nil {
		return nil, err
	}
	if e.sys == nil {
		if err := e.Setup(ctx); err != nil {
			return &e.res, err
		}
	}
	defer e.sys.Backend().Cleanup()

	if err := e.warmup(ctx); err != nil {
		return e.result(), err
	}
	if err := e.timing(ctx); err != nil {
		return e.result(), err
	}

	if e.cfg.Visual {
		e.log.Infof("visual mode: %d steps per frame", e.cfg.Schedule.VisualSteps)
		err := e.visualize(ctx, &source{e: e}, e.cfg.Schedule.VisualSteps)
		return e.result(), err
	}

	if err := e.equilibrate(ctx); err != nil {
		return e.result(), err
	}
	err := e.integrate(ctx)
	return e.result(), err
}

func (e *Experiment) result() *Result {
	r := e.res
	if e.sys != nil {
		r.Steps = e.sys.Steps()
		r.SimTimeNs = mdTimeToNs(e.sys.Time())
	}
	return &r
}

func (e *Experiment) setupForceField() error {
	pairs, err := e.table.LJPairs()
	if err != nil {
		return err
	}
	for _, p := range pairs {
		err := e.sys.SetLennardJones(p.Type1, p.Type2, engine.LennardJones{
			Epsilon:   p.Epsilon,
			Sigma:     p.Sigma,
			Cutoff:    p.Cutoff,
			AutoShift: true,
		})
		if err != nil {
			return fmt.Errorf("%s-%s: %w", forcefield.TypeName(p.Type1), forcefield.TypeName(p.Type2), err)
		}
	}
	return nil
}

// placeIons adds the ion pairs at random positions: each pair is one PF6
// anion and one rigid BMIM cation, a rotating center carrying three
// virtual beads.
func (e *Experiment) placeIons() error {
	box := e.sys.Box()
	pf6 := e.table.MustLookup("PF6")
	com := e.table.MustLookup("BMIM_COM")
	noFriction := 0.0

	for i := 0; i < e.cfg.System.IonPairs; i++ {
		a, err := e.sys.AddParticle(engine.ParticleSpec{
			Type: pf6.Type,
			Pos:  e.randomPos(box),
			Q:    pf6.Charge,
			Mass: pf6.Mass,
		})
		if err != nil {
			return err
		}
		e.anions = append(e.anions, a.ID)

		center, err := e.sys.AddParticle(engine.ParticleSpec{
			Type:     com.Type,
			Pos:      e.randomPos(box),
			Mass:     com.Mass,
			Rinertia: forcefield.CationInertia,
			Gamma:    &noFriction,
			Rotation: true,
		})
		if err != nil {
			return err
		}

		sites := make([]int, 0, len(forcefield.CationSites))
		for _, site := range forcefield.CationSites {
			sp, _ := e.table.ByType(site.Type)
			b, err := e.sys.AddParticle(engine.ParticleSpec{
				Type: site.Type,
				Pos:  r3.Add(center.Pos, site.Offset),
				Q:    sp.Charge,
			})
			if err != nil {
				return err
			}
			if err := e.sys.RelateTo(b.ID, center.ID); err != nil {
				return err
			}
			sites = append(sites, b.ID)
		}
		e.cations = append(e.cations, sites)
	}
	e.log.Debugf("placed %d ion pairs in a box of %.3f A", e.cfg.System.IonPairs, box.X)
	return nil
}

func (e *Experiment) randomPos(box r3.Vec) r3.Vec {
	return r3.Vec{X: e.rng.Float64() * box.X, Y: e.rng.Float64() * box.Y, Z: e.rng.Float64() * box.Z}
}

func (e *Experiment) minimize(ctx context.Context) error {
	before, err := e.sys.Energy()
	if err != nil {
		return err
	}
	m := e.cfg.Minimize
	e.sys.SetIntegrator(engine.SteepestDescent{FMax: m.FMax, Gamma: m.Gamma, MaxDisplacement: m.MaxDisplacement})
	steps, err := e.sys.Run(ctx, m.MaxSteps)
	e.sys.SetIntegrator(engine.VelocityVerlet{})
	if err != nil {
		return fmt.Errorf("energy minimization: %w", err)
	}
	after, err := e.sys.Energy()
	if err != nil {
		return err
	}
	e.res.MinimizeFrom, e.res.MinimizeTo, e.res.MinimizeSteps = before.Total, after.Total, steps
	e.log.Infof("energy minimization: before %.2e, after %.2e (%d steps)", before.Total, after.Total, steps)
	return nil
}

// setupThermostat adds a Langevin thermostat when no Drude particles are
// used. With Drude particles the thermalized bonds thermostat the system.
func (e *Experiment) setupThermostat() error {
	if e.cfg.Drude {
		return nil
	}
	return e.sys.SetLangevin(engine.Langevin{
		KT:    units.KT(e.cfg.System.Temperature),
		Gamma: e.cfg.System.GammaCOM,
		Seed:  e.cfg.Seed,
	})
}

func (e *Experiment) setupElectrostatics() error {
	backend := compute.Select(e.cfg.GPU)
	if e.cfg.GPU && backend.Name() == "cpu" {
		e.log.Warnf("accelerated backend not available, using %s", backend.Name())
	}
	e.sys.SetBackend(backend)

	rc := min(e.cfg.Electrostatics.MaxCutoff, 0.5*e.sys.Box().X)
	dsf, err := engine.NewDSF(e.prefactor, e.cfg.Electrostatics.Accuracy, rc)
	if err != nil {
		return err
	}
	e.log.Infof("electrostatics: %s on %s, r_cut %.3f, alpha %.4f", dsf.Name(), backend.Name(), rc, dsf.Alpha())
	return e.sys.SetElectrostatics(dsf)
}

func (e *Experiment) setupDrude() error {
	s := e.cfg.System
	thermalized, err := e.sys.AddBond(engine.ThermalizedBond{
		TempCOM:       units.KT(s.Temperature),
		GammaCOM:      s.GammaCOM,
		TempDistance:  units.KT(s.TemperatureDrude),
		GammaDistance: units.GammaDrude(e.cfg.MassDrude, units.KDrude),
		RCut:          0.5 * e.table.MinSigma(),
		Seed:          thermalizedSeed,
	})
	if err != nil {
		return err
	}
	harmonic, err := e.sys.AddBond(engine.HarmonicBond{K: units.KDrude, R0: 0, RCut: harmonicRCut})
	if err != nil {
		return err
	}

	e.helper = drude.NewHelper()
	add := func(core int) (int, error) {
		p, err := e.sys.Particle(core)
		if err != nil {
			return 0, err
		}
		sp, _ := e.table.ByType(p.Type)
		td, ok := forcefield.DrudeType(p.Type)
		if !ok {
			return 0, fmt.Errorf("type %s is not polarizable", sp.Name)
		}
		return e.helper.AddDrudeToCore(e.sys, harmonic, thermalized, core, td,
			sp.Polarizability, e.cfg.MassDrude, e.prefactor)
	}

	e.log.Infof("adding Drude related bonds")
	for _, a := range e.anions {
		if _, err := add(a); err != nil {
			return err
		}
	}
	e.cationDrudes = make([][]int, len(e.cations))
	for i, sites := range e.cations {
		for _, c := range sites {
			d, err := add(c)
			if err != nil {
				return err
			}
			e.cationDrudes[i] = append(e.cationDrudes[i], d)
		}
	}

	if err := e.helper.SetupAndAddDrudeExclusionBonds(e.sys); err != nil {
		return err
	}
	if e.cfg.Thole {
		e.log.Infof("adding Thole interactions")
		if err := e.helper.AddAllThole(e.sys); err != nil {
			return err
		}
	}
	if e.cfg.IntraEx {
		e.log.Infof("adding intramolecular exclusions")
		if err := e.setupIntramolExclusions(); err != nil {
			return err
		}
	}
	return e.helper.Validate(e.sys)
}

func (e *Experiment) setupIntramolExclusions() error {
	var drudeTypes, coreTypes []int
	var charges []float64
	for _, site := range forcefield.CationSites {
		td, _ := forcefield.DrudeType(site.Type)
		sp, _ := e.table.ByType(site.Type)
		drudeTypes = append(drudeTypes, td)
		coreTypes = append(coreTypes, site.Type)
		charges = append(charges, sp.Charge)
	}
	if err := e.helper.SetupIntramolExclusionBonds(e.sys, drudeTypes, coreTypes, charges); err != nil {
		return err
	}
	for i, sites := range e.cations {
		if err := e.helper.AddIntramolExclusionBonds(e.sys, e.cationDrudes[i], sites); err != nil {
			return err
		}
	}
	return nil
}

// warmup integrates with a reduced time step to relax the freshly added
// Drude particles.
func (e *Experiment) warmup(ctx context.Context) error {
	sch := e.cfg.Schedule
	dt := e.sys.TimeStep()
	e.log.Infof("short equilibration with smaller time step")
	if err := e.sys.SetTimeStep(dt * sch.WarmupDtFactor); err != nil {
		return err
	}
	_, err := e.sys.Run(ctx, sch.WarmupSteps)
	if serr := e.sys.SetTimeStep(dt); err == nil {
		err = serr
	}
	return err
}

// timing measures the wall time per step and derives the yield.
func (e *Experiment) timing(ctx context.Context) error {
	n := e.cfg.Schedule.TimingSteps
	start := e.now()
	if _, err := e.sys.Run(ctx, n); err != nil {
		return err
	}
	perStep := e.now().Sub(start).Seconds() / float64(n)
	if perStep <= 0 {
		perStep = time.Nanosecond.Seconds()
	}
	nsPerHour := 3600.0 * units.FsToNs(e.cfg.System.TimeStepFs) / perStep
	e.res.TimePerStep = time.Duration(perStep * float64(time.Second))
	e.res.NsPerDay = 24.0 * nsPerHour

	e.res.Cycles = e.cfg.Cycles
	if e.res.Cycles <= 0 {
		e.res.Cycles = int(e.cfg.Walltime * 3600.0 / perStep / float64(e.cfg.Schedule.CycleSteps))
	}
	e.log.Infof("yield: %g ns/day", e.res.NsPerDay)
	return nil
}

func (e *Experiment) equilibrate(ctx context.Context) error {
	sch := e.cfg.Schedule
	e.log.Infof("equilibration: %d cycles x %d steps", sch.EquilCycles, sch.EquilSteps)
	bar := e.newProgress("equilibration", sch.EquilCycles)
	for i := 0; i < sch.EquilCycles; i++ {
		if _, err := e.sys.Run(ctx, sch.EquilSteps); err != nil {
			return err
		}
		bar.add(1)
	}
	bar.done()
	return nil
}

func mdTimeToNs(t float64) float64 {
	return units.FsToNs(t / units.FsToMDTime)
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
