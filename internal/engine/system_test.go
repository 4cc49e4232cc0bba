package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func cube(l float64) r3.Vec { return r3.Vec{X: l, Y: l, Z: l} }

func mustAdd(t *testing.T, s *System, spec ParticleSpec) *Particle {
	t.Helper()
	p, err := s.AddParticle(spec)
	if err != nil {
		t.Fatalf("AddParticle: %v", err)
	}
	return p
}

func TestFoldAndMinImage(t *testing.T) {
	s := New(cube(10))

	tests := []struct {
		name string
		in   r3.Vec
		want r3.Vec
	}{
		{"inside", r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 1, Y: 2, Z: 3}},
		{"above", r3.Vec{X: 11, Y: 22, Z: 13}, r3.Vec{X: 1, Y: 2, Z: 3}},
		{"below", r3.Vec{X: -1, Y: -12, Z: -0.5}, r3.Vec{X: 9, Y: 8, Z: 9.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Fold(tt.in)
			if r3.Norm(r3.Sub(got, tt.want)) > 1e-12 {
				t.Errorf("Fold(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	d := s.MinImage(r3.Vec{X: 0.5}, r3.Vec{X: 9.5})
	if math.Abs(d.X+1) > 1e-12 {
		t.Errorf("MinImage x = %g, want -1", d.X)
	}
}

func TestAddParticleDefaults(t *testing.T) {
	s := New(cube(10))
	p := mustAdd(t, s, ParticleSpec{Type: 2})
	if p.Mass != 1 {
		t.Errorf("default mass = %g, want 1", p.Mass)
	}
	if p.Rinertia != (r3.Vec{X: 1, Y: 1, Z: 1}) {
		t.Errorf("default inertia = %v", p.Rinertia)
	}
	if _, err := s.AddParticle(ParticleSpec{Mass: -1}); !errors.Is(err, ErrParameterBounds) {
		t.Errorf("negative mass error = %v", err)
	}
	if _, err := s.Particle(5); !errors.Is(err, ErrUnknownParticle) {
		t.Errorf("unknown particle error = %v", err)
	}
	if got := s.SelectType(2); len(got) != 1 || got[0] != 0 {
		t.Errorf("SelectType = %v", got)
	}
}

func TestCutoffChecks(t *testing.T) {
	s := New(cube(10))
	err := s.SetLennardJones(0, 0, LennardJones{Epsilon: 1, Sigma: 1, Cutoff: 6})
	if !errors.Is(err, ErrCutoffTooLarge) {
		t.Errorf("lj cutoff error = %v", err)
	}
	dsf, err := NewDSF(1, 1e-3, 6)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetElectrostatics(dsf); !errors.Is(err, ErrCutoffTooLarge) {
		t.Errorf("coulomb cutoff error = %v", err)
	}
}

func TestDSFVanishesAtCutoff(t *testing.T) {
	d, err := NewDSF(2, 1e-3, 5)
	if err != nil {
		t.Fatal(err)
	}
	e, f, ok := d.Pair(5 - 1e-9)
	if !ok {
		t.Fatal("pair just inside the cutoff should interact")
	}
	if math.Abs(e) > 1e-8 || math.Abs(f) > 1e-8 {
		t.Errorf("at cutoff e=%g dE/dr=%g, want 0", e, f)
	}
	if _, _, ok := d.Pair(5); ok {
		t.Error("pair at the cutoff should not interact")
	}
	if _, _, ok := d.Pair(0); ok {
		t.Error("pair at zero distance should not interact")
	}

	const h = 1e-6
	for _, r := range []float64{0.5, 1, 2.5, 4} {
		ep, _, _ := d.Pair(r + h)
		em, _, _ := d.Pair(r - h)
		_, got, _ := d.Pair(r)
		want := (ep - em) / (2 * h)
		if math.Abs(got-want) > 1e-5*math.Max(1, math.Abs(want)) {
			t.Errorf("r=%g dE/dr = %g, numeric %g", r, got, want)
		}
	}

	if _, err := NewDSF(1, 2, 5); !errors.Is(err, ErrParameterBounds) {
		t.Errorf("accuracy error = %v", err)
	}
}

func TestLennardJonesAutoShift(t *testing.T) {
	s := New(cube(10))
	if err := s.SetLennardJones(1, 0, LennardJones{Epsilon: 1, Sigma: 1, Cutoff: 2.5, AutoShift: true}); err != nil {
		t.Fatal(err)
	}
	lj := s.LennardJonesParams(0, 1)
	e, _, ok := lj.pair(2.5 - 1e-12)
	if !ok || math.Abs(e) > 1e-9 {
		t.Errorf("shifted energy at cutoff = %g", e)
	}
	_, dEdr, _ := lj.pair(math.Pow(2, 1.0/6))
	if math.Abs(dEdr) > 1e-9 {
		t.Errorf("force at minimum = %g", dEdr)
	}
}

// numericForces differentiates the total potential energy.
func numericForces(t *testing.T, s *System) []r3.Vec {
	t.Helper()
	const h = 1e-6
	out := make([]r3.Vec, s.NumParticles())
	for i, p := range s.Particles() {
		var grad [3]float64
		for k := 0; k < 3; k++ {
			orig := p.Pos
			shift := func(dx float64) float64 {
				p.Pos = orig
				switch k {
				case 0:
					p.Pos.X += dx
				case 1:
					p.Pos.Y += dx
				case 2:
					p.Pos.Z += dx
				}
				e, err := s.Energy()
				if err != nil {
					t.Fatal(err)
				}
				return e.Potential()
			}
			grad[k] = (shift(h) - shift(-h)) / (2 * h)
			p.Pos = orig
		}
		out[i] = r3.Vec{X: -grad[0], Y: -grad[1], Z: -grad[2]}
	}
	return out
}

func TestForcesMatchEnergyGradient(t *testing.T) {
	s := New(cube(12))
	dsf, err := NewDSF(1.5, 1e-3, 5)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetElectrostatics(dsf); err != nil {
		t.Fatal(err)
	}
	if err := s.SetLennardJones(0, 1, LennardJones{Epsilon: 0.5, Sigma: 1.2, Cutoff: 4, AutoShift: true}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetThole(0, 0, Thole{ScalingCoeff: 1.3, Q1Q2: 0.4}); err != nil {
		t.Fatal(err)
	}
	mustAdd(t, s, ParticleSpec{Type: 0, Pos: r3.Vec{X: 1, Y: 1, Z: 1}, Q: 0.7})
	mustAdd(t, s, ParticleSpec{Type: 0, Pos: r3.Vec{X: 2.1, Y: 1.4, Z: 0.8}, Q: -0.3})
	mustAdd(t, s, ParticleSpec{Type: 1, Pos: r3.Vec{X: 11.2, Y: 1.5, Z: 1.9}, Q: -0.4})
	b, err := s.AddBond(HarmonicBond{K: 3, R0: 0.8})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.BindBond(0, b, 1); err != nil {
		t.Fatal(err)
	}
	sr, err := s.AddBond(BondedCoulombSR{Q1Q2: 0.21})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.BindBond(1, sr, 0); err != nil {
		t.Fatal(err)
	}

	got, err := s.Forces()
	if err != nil {
		t.Fatal(err)
	}
	want := numericForces(t, s)
	for i := range got {
		if r3.Norm(r3.Sub(got[i], want[i])) > 1e-4 {
			t.Errorf("particle %d force %v, numeric %v", i, got[i], want[i])
		}
	}
	var sum r3.Vec
	for _, f := range got {
		sum = r3.Add(sum, f)
	}
	if r3.Norm(sum) > 1e-9 {
		t.Errorf("net force %v, want 0", sum)
	}
}

func TestBondedCoulombCancelsPair(t *testing.T) {
	s := New(cube(12))
	dsf, _ := NewDSF(1, 1e-3, 5)
	if err := s.SetElectrostatics(dsf); err != nil {
		t.Fatal(err)
	}
	mustAdd(t, s, ParticleSpec{Pos: r3.Vec{X: 1, Y: 1, Z: 1}, Q: 1.2})
	mustAdd(t, s, ParticleSpec{Pos: r3.Vec{X: 2, Y: 1, Z: 1}, Q: -0.5})
	id, _ := s.AddBond(BondedCoulombSR{Q1Q2: 0.6})
	if err := s.BindBond(0, id, 1); err != nil {
		t.Fatal(err)
	}
	e, err := s.Energy()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(e.Coulomb+e.Bonded) > 1e-12 {
		t.Errorf("coulomb %g + bonded %g should cancel", e.Coulomb, e.Bonded)
	}
	f, _ := s.Forces()
	if r3.Norm(f[0]) > 1e-12 {
		t.Errorf("force %v, want 0", f[0])
	}
}

func TestTholeSkippedForThermalizedPairs(t *testing.T) {
	s := New(cube(12))
	dsf, _ := NewDSF(1, 1e-3, 5)
	if err := s.SetElectrostatics(dsf); err != nil {
		t.Fatal(err)
	}
	if err := s.SetThole(0, 1, Thole{ScalingCoeff: 2, Q1Q2: 0.5}); err != nil {
		t.Fatal(err)
	}
	mustAdd(t, s, ParticleSpec{Type: 0, Pos: r3.Vec{X: 1, Y: 1, Z: 1}})
	mustAdd(t, s, ParticleSpec{Type: 1, Pos: r3.Vec{X: 1.5, Y: 1, Z: 1}})

	before, _ := s.Energy()
	if before.Thole == 0 {
		t.Fatal("thole should act before the thermalized bond")
	}
	id, _ := s.AddBond(ThermalizedBond{TempCOM: 1, GammaCOM: 1, TempDistance: 0.1, GammaDistance: 1})
	if err := s.BindBond(0, id, 1); err != nil {
		t.Fatal(err)
	}
	after, _ := s.Energy()
	if after.Thole != 0 {
		t.Errorf("thole energy %g for thermalized pair", after.Thole)
	}
}

func TestHarmonicBondBreaks(t *testing.T) {
	s := New(cube(12))
	mustAdd(t, s, ParticleSpec{Pos: r3.Vec{X: 1, Y: 1, Z: 1}})
	mustAdd(t, s, ParticleSpec{Pos: r3.Vec{X: 3, Y: 1, Z: 1}})
	id, _ := s.AddBond(HarmonicBond{K: 1, RCut: 1})
	if err := s.BindBond(0, id, 1); err != nil {
		t.Fatal(err)
	}
	s.SetIntegrator(VelocityVerlet{})
	_, err := s.Run(context.Background(), 1)
	if !errors.Is(err, ErrBondBroken) {
		t.Errorf("Run error = %v, want ErrBondBroken", err)
	}
	if err := s.BindBond(0, BondID(7), 1); !errors.Is(err, ErrUnknownBond) {
		t.Errorf("unknown bond error = %v", err)
	}
}
