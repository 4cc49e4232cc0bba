package drude

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/drudesim/internal/engine"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestCharge(t *testing.T) {
	got := Charge(4184, 4.653, 1389.37)
	want := -math.Sqrt(4184 * 4.653 / 1389.37)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Charge = %g, want %g", got, want)
	}
	if got >= 0 {
		t.Error("Drude charge should be negative")
	}
}

func TestAddDrudeToCoreErrors(t *testing.T) {
	setup := func(t *testing.T) (*engine.System, engine.BondID, engine.BondID, int) {
		t.Helper()
		sys := engine.New(r3.Vec{X: 20, Y: 20, Z: 20})
		hb, err := sys.AddBond(engine.HarmonicBond{K: 4184})
		if err != nil {
			t.Fatal(err)
		}
		tb, err := sys.AddBond(engine.ThermalizedBond{GammaCOM: 1, GammaDistance: 1})
		if err != nil {
			t.Fatal(err)
		}
		p, err := sys.AddParticle(engine.ParticleSpec{Type: 0, Pos: r3.Vec{X: 5, Y: 5, Z: 5}, Q: -0.78, Mass: 144.96})
		if err != nil {
			t.Fatal(err)
		}
		return sys, hb, tb, p.ID
	}

	tests := []struct {
		name      string
		swap      bool
		drudeType int
		alpha     float64
		mass      float64
		prefactor float64
		wantErr   error
	}{
		{"bonds swapped", true, 5, 4.653, 0.8, 1389, ErrBondKind},
		{"zero polarizability", false, 5, 0, 0.8, 1389, ErrParameter},
		{"zero prefactor", false, 5, 4.653, 0.8, 0, ErrParameter},
		{"zero mass", false, 5, 4.653, 0, 1389, ErrParameter},
		{"mass of the core", false, 5, 4.653, 144.96, 1389, ErrParameter},
		{"drude type equals core type", false, 0, 4.653, 0.8, 1389, ErrTypeClash},
		{"unknown core", false, 5, 4.653, 0.8, 1389, engine.ErrUnknownParticle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, hb, tb, core := setup(t)
			if tt.swap {
				hb, tb = tb, hb
			}
			if tt.wantErr == engine.ErrUnknownParticle {
				core = 42
			}
			h := NewHelper()
			_, err := h.AddDrudeToCore(sys, hb, tb, core, tt.drudeType, tt.alpha, tt.mass, tt.prefactor)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if len(h.DrudeIDs()) != 0 {
				t.Errorf("failed call registered Drudes %v", h.DrudeIDs())
			}
		})
	}
}

func TestIncompatibleDrudeType(t *testing.T) {
	sys := engine.New(r3.Vec{X: 20, Y: 20, Z: 20})
	hb, _ := sys.AddBond(engine.HarmonicBond{K: 4184})
	tb, _ := sys.AddBond(engine.ThermalizedBond{})
	a, _ := sys.AddParticle(engine.ParticleSpec{Type: 0, Mass: 10})
	b, _ := sys.AddParticle(engine.ParticleSpec{Type: 0, Pos: r3.Vec{X: 3}, Mass: 10})
	c, _ := sys.AddParticle(engine.ParticleSpec{Type: 5, Pos: r3.Vec{X: 6}, Mass: 10})

	h := NewHelper()
	if _, err := h.AddDrudeToCore(sys, hb, tb, a.ID, 5+1, 2, 0.5, 100); err != nil {
		t.Fatal(err)
	}
	if _, err := h.AddDrudeToCore(sys, hb, tb, b.ID, 6, 3, 0.5, 100); !errors.Is(err, ErrIncompatibleType) {
		t.Errorf("different polarizability error = %v", err)
	}
	if _, err := h.AddDrudeToCore(sys, hb, tb, b.ID, 6, 2, 0.5, 100, WithTholeDamping(2.0)); !errors.Is(err, ErrIncompatibleType) {
		t.Errorf("different damping error = %v", err)
	}
	if _, err := h.AddDrudeToCore(sys, hb, tb, c.ID, 0, 2, 0.5, 100); !errors.Is(err, ErrTypeClash) {
		t.Errorf("core type reused as Drude type error = %v", err)
	}
	if _, err := h.AddDrudeToCore(sys, hb, tb, b.ID, 6, 2, 0.5, 100); err != nil {
		t.Errorf("matching oscillator rejected: %v", err)
	}
	if err := h.Validate(sys); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateCatchesMissingBond(t *testing.T) {
	sys := engine.New(r3.Vec{X: 20, Y: 20, Z: 20})
	hb, _ := sys.AddBond(engine.HarmonicBond{K: 4184})
	tb, _ := sys.AddBond(engine.ThermalizedBond{})
	core, _ := sys.AddParticle(engine.ParticleSpec{Type: 0, Mass: 10})
	h := NewHelper()
	d, err := h.AddDrudeToCore(sys, hb, tb, core.ID, 5, 2, 0.5, 100)
	if err != nil {
		t.Fatal(err)
	}
	if err := sys.BindBond(core.ID, hb, d); err != nil {
		t.Fatal(err)
	}
	if err := h.Validate(sys); !errors.Is(err, ErrInvariant) {
		t.Errorf("Validate error = %v, want ErrInvariant", err)
	}
}
