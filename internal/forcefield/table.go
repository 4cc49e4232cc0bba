package forcefield

import (
	"fmt"
	"math"
)

// LJPair is the combined Lennard-Jones parameter set of two types.
type LJPair struct {
	Type1, Type2 int
	Epsilon      float64
	Sigma        float64
	Cutoff       float64
}

// Table is the immutable species table of the model.
type Table struct {
	species []Species
	byName  map[string]int
	ljTypes []string
}

// NewTable builds the BMIM PF6 table.
func NewTable() *Table {
	t := &Table{
		species: defaultSpecies(),
		byName:  make(map[string]int),
		ljTypes: []string{"PF6", "BMIM_C1", "BMIM_C2", "BMIM_C3"},
	}
	for i, s := range t.species {
		t.byName[s.Name] = i
	}
	return t
}

// Lookup returns a copy of the named species.
func (t *Table) Lookup(name string) (Species, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Species{}, false
	}
	return t.species[i], true
}

// MustLookup is Lookup for names known at compile time.
func (t *Table) MustLookup(name string) Species {
	s, ok := t.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("forcefield: unknown species %q", name))
	}
	return s
}

// ByType returns the species with type code typ.
func (t *Table) ByType(typ int) (Species, bool) {
	for _, s := range t.species {
		if s.Type == typ {
			return s, true
		}
	}
	return Species{}, false
}

// Species returns a copy of all rows.
func (t *Table) Species() []Species {
	out := make([]Species, len(t.species))
	copy(out, t.species)
	return out
}

// Cutoff is the per-species LJ cutoff.
func (t *Table) Cutoff(name string) float64 {
	s, ok := t.Lookup(name)
	if !ok {
		return 0
	}
	return CutoffSigmaFactor * s.Sigma
}

// MinSigma is the smallest sigma over all species, including the massless
// center (sigma 0).
func (t *Table) MinSigma() float64 {
	m := math.Inf(1)
	for _, s := range t.species {
		m = math.Min(m, s.Sigma)
	}
	return m
}

// LJPairs combines every pair of LJ species, i <= j, with the Berthelot rule
// for sigma and cutoff and the Lorentz rule for epsilon.
func (t *Table) LJPairs() ([]LJPair, error) {
	pairs := make([]LJPair, 0, len(t.ljTypes)*(len(t.ljTypes)+1)/2)
	for i := range t.ljTypes {
		for j := i; j < len(t.ljTypes); j++ {
			a := t.MustLookup(t.ljTypes[i])
			b := t.MustLookup(t.ljTypes[j])

			sig, err := CombineSigma(Berthelot, a.Sigma, b.Sigma)
			if err != nil {
				return nil, err
			}
			cut, err := CombineSigma(Berthelot, t.Cutoff(a.Name), t.Cutoff(b.Name))
			if err != nil {
				return nil, err
			}
			eps, err := CombineEpsilon(Lorentz, a.Epsilon, b.Epsilon)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, LJPair{Type1: a.Type, Type2: b.Type, Epsilon: eps, Sigma: sig, Cutoff: cut})
		}
	}
	return pairs, nil
}
