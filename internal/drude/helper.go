// Package drude couples Drude shells to polarizable cores and keeps the
// bookkeeping of the exclusions and Thole screening that go with them.
//
// A Drude oscillator is a charged shell particle bound to its core by a
// stiff harmonic spring and a thermalized bond. The core gives up the shell's
// charge and mass, so the pair carries the original totals. Because core and
// shell sit on top of each other, their direct Coulomb interaction is
// removed with a bonded short-range term.
package drude

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/drudesim/internal/engine"
)

// DefaultTholeDamping is the dimensionless Thole damping of a new oscillator.
const DefaultTholeDamping = 2.6

var (
	ErrNonZeroRestLength = errors.New("drude: harmonic bond needs r_0 = 0")
	ErrBondKind          = errors.New("drude: wrong bond kind")
	ErrParameter         = errors.New("drude: parameter out of range")
	ErrCoreTaken         = errors.New("drude: core already carries a Drude particle")
	ErrTypeClash         = errors.New("drude: type used as both core and Drude")
	ErrIncompatibleType  = errors.New("drude: incompatible parameters for Drude type")
	ErrNotSetUp          = errors.New("drude: exclusion bonds not set up for type")
	ErrInvariant         = errors.New("drude: oscillator invariant violated")
)

// System is the part of the engine the helper needs.
type System interface {
	Particle(id int) (*engine.Particle, error)
	AddParticle(spec engine.ParticleSpec) (*engine.Particle, error)
	AddBond(b engine.Bond) (engine.BondID, error)
	BondType(id engine.BondID) (engine.Bond, error)
	BindBond(p1 int, id engine.BondID, p2 int) error
	SetThole(t1, t2 int, th engine.Thole) error
}

// typeRecord describes every oscillator of one core or Drude type.
type typeRecord struct {
	alpha     float64
	damping   float64
	qDrude    float64
	massDrude float64
	coreType  int
	drudeType int
	// qCore is the core charge left after the Drude took its share.
	qCore float64

	// exclusion bond of this Drude type with its own core
	coreBond *engine.BondID
	// intramolecular exclusion bonds keyed by the other core type
	intraCore map[int]engine.BondID
}

// Helper is the registry of Drude oscillators added to one system.
type Helper struct {
	records    map[int]*typeRecord
	coreTypes  []int
	drudeTypes []int

	coreOf  map[int]int
	drudeOf map[int]int
	drudes  []int
}

func NewHelper() *Helper {
	return &Helper{
		records: make(map[int]*typeRecord),
		coreOf:  make(map[int]int),
		drudeOf: make(map[int]int),
	}
}

// Option tunes a single AddDrudeToCore call.
type Option func(*addOptions)

type addOptions struct {
	damping float64
}

// WithTholeDamping overrides DefaultTholeDamping.
func WithTholeDamping(d float64) Option {
	return func(o *addOptions) { o.damping = d }
}

// Charge returns the Drude charge that gives polarizability alpha for a
// spring of stiffness k.
func Charge(k, alpha, prefactor float64) float64 {
	return -math.Sqrt(k * alpha / prefactor)
}

// AddDrudeToCore creates a Drude particle of drudeType on top of core and
// binds it with the harmonic and thermalized bonds. It returns the id of the
// new particle.
func (h *Helper) AddDrudeToCore(sys System, harmonic, thermalized engine.BondID, core, drudeType int,
	alpha, massDrude, prefactor float64, opts ...Option) (int, error) {
	o := addOptions{damping: DefaultTholeDamping}
	for _, opt := range opts {
		opt(&o)
	}

	hb, err := sys.BondType(harmonic)
	if err != nil {
		return 0, err
	}
	spring, ok := hb.(engine.HarmonicBond)
	if !ok {
		return 0, fmt.Errorf("%w: %s given as harmonic bond", ErrBondKind, hb.Kind())
	}
	if spring.R0 != 0 {
		return 0, fmt.Errorf("%w: got %g", ErrNonZeroRestLength, spring.R0)
	}
	tb, err := sys.BondType(thermalized)
	if err != nil {
		return 0, err
	}
	if _, ok := tb.(engine.ThermalizedBond); !ok {
		return 0, fmt.Errorf("%w: %s given as thermalized bond", ErrBondKind, tb.Kind())
	}
	switch {
	case spring.K <= 0:
		return 0, fmt.Errorf("%w: spring constant %g", ErrParameter, spring.K)
	case alpha <= 0:
		return 0, fmt.Errorf("%w: polarizability %g", ErrParameter, alpha)
	case prefactor <= 0:
		return 0, fmt.Errorf("%w: coulomb prefactor %g", ErrParameter, prefactor)
	}

	p, err := sys.Particle(core)
	if err != nil {
		return 0, err
	}
	if massDrude <= 0 || massDrude >= p.Mass {
		return 0, fmt.Errorf("%w: drude mass %g for core mass %g", ErrParameter, massDrude, p.Mass)
	}
	if _, taken := h.drudeOf[core]; taken {
		return 0, fmt.Errorf("%w: core %d", ErrCoreTaken, core)
	}
	if drudeType == p.Type || h.isCoreType(drudeType) || h.isDrudeType(p.Type) {
		return 0, fmt.Errorf("%w: core type %d, drude type %d", ErrTypeClash, p.Type, drudeType)
	}

	qd := Charge(spring.K, alpha, prefactor)
	rec := typeRecord{
		alpha:     alpha,
		damping:   o.damping,
		qDrude:    qd,
		massDrude: massDrude,
		coreType:  p.Type,
		drudeType: drudeType,
		qCore:     p.Q - qd,
	}
	if err := h.checkCompatible(drudeType, rec); err != nil {
		return 0, err
	}
	if err := h.checkCompatible(p.Type, rec); err != nil {
		return 0, err
	}

	d, err := sys.AddParticle(engine.ParticleSpec{Type: drudeType, Pos: p.Pos, Q: qd, Mass: massDrude})
	if err != nil {
		return 0, err
	}
	p.Q -= qd
	p.Mass -= massDrude
	if err := sys.BindBond(core, harmonic, d.ID); err != nil {
		return 0, err
	}
	if err := sys.BindBond(core, thermalized, d.ID); err != nil {
		return 0, err
	}

	h.register(rec)
	h.coreOf[d.ID] = core
	h.drudeOf[core] = d.ID
	h.drudes = append(h.drudes, d.ID)
	return d.ID, nil
}

func (h *Helper) isCoreType(t int) bool {
	r, ok := h.records[t]
	return ok && r.coreType == t
}

func (h *Helper) isDrudeType(t int) bool {
	r, ok := h.records[t]
	return ok && r.drudeType == t
}

// checkCompatible rejects a second oscillator of a known type whose
// parameters differ from the first one.
func (h *Helper) checkCompatible(t int, rec typeRecord) error {
	old, ok := h.records[t]
	if !ok {
		return nil
	}
	if old.alpha != rec.alpha || old.damping != rec.damping || old.qDrude != rec.qDrude ||
		old.massDrude != rec.massDrude || old.coreType != rec.coreType || old.drudeType != rec.drudeType {
		return fmt.Errorf("%w: type %d", ErrIncompatibleType, t)
	}
	return nil
}

func (h *Helper) register(rec typeRecord) {
	if _, ok := h.records[rec.drudeType]; ok {
		return
	}
	r := rec
	h.records[rec.drudeType] = &r
	h.records[rec.coreType] = &r
	h.drudeTypes = append(h.drudeTypes, rec.drudeType)
	h.coreTypes = append(h.coreTypes, rec.coreType)
}

// DrudeIDs returns the Drude particle ids in creation order.
func (h *Helper) DrudeIDs() []int {
	return append([]int(nil), h.drudes...)
}

// CoreOf returns the core of a Drude particle.
func (h *Helper) CoreOf(drude int) (int, bool) {
	c, ok := h.coreOf[drude]
	return c, ok
}

// DrudeOf returns the Drude particle of a core.
func (h *Helper) DrudeOf(core int) (int, bool) {
	d, ok := h.drudeOf[core]
	return d, ok
}

// DrudeCharge returns the charge of the Drude particles of a core or Drude
// type.
func (h *Helper) DrudeCharge(t int) (float64, bool) {
	r, ok := h.records[t]
	if !ok {
		return 0, false
	}
	return r.qDrude, true
}

// CoreTypes and DrudeTypes list the registered types in first-use order.
func (h *Helper) CoreTypes() []int  { return append([]int(nil), h.coreTypes...) }
func (h *Helper) DrudeTypes() []int { return append([]int(nil), h.drudeTypes...) }

// oscillatorCharge is the charge of the type's side of the oscillator: the
// Drude charge for shells, its negative for cores.
func (h *Helper) oscillatorCharge(t int) float64 {
	r := h.records[t]
	if t == r.drudeType {
		return r.qDrude
	}
	return -r.qDrude
}

// SetupAndAddDrudeExclusionBonds removes the short-range Coulomb interaction
// of every core with its own Drude. One bond is registered per Drude type.
func (h *Helper) SetupAndAddDrudeExclusionBonds(sys System) error {
	for _, td := range h.drudeTypes {
		r := h.records[td]
		if r.coreBond != nil {
			continue
		}
		id, err := sys.AddBond(engine.BondedCoulombSR{Q1Q2: -r.qCore * r.qDrude})
		if err != nil {
			return err
		}
		r.coreBond = &id
	}
	for _, d := range h.drudes {
		p, err := sys.Particle(d)
		if err != nil {
			return err
		}
		core := h.coreOf[d]
		if err := sys.BindBond(core, *h.records[p.Type].coreBond, d); err != nil {
			return err
		}
	}
	return nil
}

// AddTholePair screens the pair of oscillator types t1, t2.
func (h *Helper) AddTholePair(sys System, t1, t2 int) error {
	r1, ok1 := h.records[t1]
	r2, ok2 := h.records[t2]
	if !ok1 || !ok2 {
		return fmt.Errorf("%w: thole pair %d-%d", ErrNotSetUp, t1, t2)
	}
	s := 0.5 * (r1.damping + r2.damping) / math.Pow(r1.alpha*r2.alpha, 1.0/6.0)
	return sys.SetThole(t1, t2, engine.Thole{
		ScalingCoeff: s,
		Q1Q2:         h.oscillatorCharge(t1) * h.oscillatorCharge(t2),
	})
}

// AddAllThole screens every drude-drude, core-core and drude-core type
// pair.
func (h *Helper) AddAllThole(sys System) error {
	for i, a := range h.drudeTypes {
		for _, b := range h.drudeTypes[i:] {
			if err := h.AddTholePair(sys, a, b); err != nil {
				return err
			}
		}
	}
	for i, a := range h.coreTypes {
		for _, b := range h.coreTypes[i:] {
			if err := h.AddTholePair(sys, a, b); err != nil {
				return err
			}
		}
	}
	for _, a := range h.drudeTypes {
		for _, b := range h.coreTypes {
			if err := h.AddTholePair(sys, a, b); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetupIntramolExclusionBonds registers, for one kind of molecule, the
// bonds that remove the Coulomb interaction of each Drude with the partial
// charges of the other cores of the molecule. Drude pairs keep their Coulomb
// interaction, which Thole screens.
func (h *Helper) SetupIntramolExclusionBonds(sys System, drudeTypes, coreTypes []int, partialCharges []float64) error {
	if len(coreTypes) != len(partialCharges) {
		return fmt.Errorf("%w: %d core types but %d partial charges", ErrParameter, len(coreTypes), len(partialCharges))
	}
	for _, td := range drudeTypes {
		r, ok := h.records[td]
		if !ok || r.drudeType != td {
			return fmt.Errorf("%w: %d is not a Drude type", ErrNotSetUp, td)
		}
		if r.intraCore == nil {
			r.intraCore = make(map[int]engine.BondID)
		}
		for i, tc := range coreTypes {
			if tc == r.coreType {
				continue
			}
			id, err := sys.AddBond(engine.BondedCoulombSR{Q1Q2: -r.qDrude * partialCharges[i]})
			if err != nil {
				return err
			}
			r.intraCore[tc] = id
		}
	}
	return nil
}

// AddIntramolExclusionBonds binds the bonds set up by
// SetupIntramolExclusionBonds inside one molecule. Each Drude is paired with
// every core but its own.
func (h *Helper) AddIntramolExclusionBonds(sys System, drudes, cores []int) error {
	for _, d := range drudes {
		pd, err := sys.Particle(d)
		if err != nil {
			return err
		}
		r, ok := h.records[pd.Type]
		if !ok || r.intraCore == nil {
			return fmt.Errorf("%w: %d", ErrNotSetUp, pd.Type)
		}
		for _, c := range cores {
			if h.coreOf[d] == c {
				continue
			}
			pc, err := sys.Particle(c)
			if err != nil {
				return err
			}
			id, ok := r.intraCore[pc.Type]
			if !ok {
				return fmt.Errorf("%w: drude type %d with core type %d", ErrNotSetUp, pd.Type, pc.Type)
			}
			if err := sys.BindBond(d, id, c); err != nil {
				return err
			}
		}
	}
	return nil
}

// Validate checks that every Drude has exactly one core and is bound to it
// by one harmonic and one thermalized bond, and that no core carries two
// Drudes.
func (h *Helper) Validate(sys System) error {
	cores := make(map[int]int)
	ids := append([]int(nil), h.drudes...)
	sort.Ints(ids)
	for _, d := range ids {
		core, ok := h.coreOf[d]
		if !ok {
			return fmt.Errorf("%w: drude %d has no core", ErrInvariant, d)
		}
		cores[core]++
		if cores[core] > 1 {
			return fmt.Errorf("%w: core %d carries %d Drudes", ErrInvariant, core, cores[core])
		}
		pc, err := sys.Particle(core)
		if err != nil {
			return err
		}
		var harmonic, thermalized int
		bondIDs, partners := pc.Bonds()
		for i, id := range bondIDs {
			if partners[i] != d {
				continue
			}
			b, err := sys.BondType(id)
			if err != nil {
				return err
			}
			switch b.(type) {
			case engine.HarmonicBond:
				harmonic++
			case engine.ThermalizedBond:
				thermalized++
			}
		}
		if harmonic != 1 || thermalized != 1 {
			return fmt.Errorf("%w: drude %d has %d harmonic and %d thermalized bonds to core %d",
				ErrInvariant, d, harmonic, thermalized, core)
		}
	}
	return nil
}
