package observables

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/drudesim/internal/engine"
	"gonum.org/v1/gonum/spatial/r3"
)

func newSystem(t *testing.T, l float64, pos ...r3.Vec) *engine.System {
	t.Helper()
	sys := engine.New(r3.Vec{X: l, Y: l, Z: l})
	for i, p := range pos {
		if _, err := sys.AddParticle(engine.ParticleSpec{Type: i % 2, Pos: p}); err != nil {
			t.Fatal(err)
		}
	}
	return sys
}

func TestNewRDFValidation(t *testing.T) {
	tests := []struct {
		name       string
		ids        []int
		minR, maxR float64
		bins       int
		want       error
	}{
		{"ok", []int{0}, 0, 1, 10, nil},
		{"no bins", []int{0}, 0, 1, 0, ErrBadRange},
		{"inverted", []int{0}, 2, 1, 10, ErrBadRange},
		{"no ids", nil, 0, 1, 10, ErrNoIDs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRDF(tt.ids, nil, tt.minR, tt.maxR, tt.bins)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBinCenters(t *testing.T) {
	r, err := NewRDF([]int{0}, nil, 1, 3, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1.25, 1.75, 2.25, 2.75}
	for i, c := range r.BinCenters() {
		if math.Abs(c-want[i]) > 1e-12 {
			t.Errorf("center %d = %g, want %g", i, c, want[i])
		}
	}
}

func TestRDFSinglePair(t *testing.T) {
	sys := newSystem(t, 10, r3.Vec{X: 0.5, Y: 5, Z: 5}, r3.Vec{X: 9, Y: 5, Z: 5})
	r, _ := NewRDF([]int{0, 1}, nil, 0, 3, 3)
	got, err := r.Calculate(sys)
	if err != nil {
		t.Fatal(err)
	}
	// the periodic image puts the pair 1.5 apart
	shell := 4.0 / 3.0 * math.Pi * (8 - 1)
	want := []float64{0, 1000 / shell, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("bin %d = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestRDFIdealGasIsFlat(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const l = 10.0
	var pos []r3.Vec
	for i := 0; i < 2000; i++ {
		pos = append(pos, r3.Vec{X: rng.Float64() * l, Y: rng.Float64() * l, Z: rng.Float64() * l})
	}
	sys := newSystem(t, l, pos...)

	ids := make([]int, len(pos))
	for i := range ids {
		ids[i] = i
	}
	var odd, even []int
	for _, id := range ids {
		if id%2 == 0 {
			even = append(even, id)
		} else {
			odd = append(odd, id)
		}
	}

	for name, r := range map[string]*RDF{
		"self":  {IDs1: ids, MinR: 0, MaxR: l / 2, Bins: 10},
		"cross": {IDs1: even, IDs2: odd, MinR: 0, MaxR: l / 2, Bins: 10},
	} {
		got, err := r.Calculate(sys)
		if err != nil {
			t.Fatal(err)
		}
		for i, g := range got {
			if math.Abs(g-1) > 0.2 {
				t.Errorf("%s bin %d = %g, want about 1", name, i, g)
			}
		}
	}
}

func TestRDFUnknownParticle(t *testing.T) {
	sys := newSystem(t, 10, r3.Vec{})
	r, _ := NewRDF([]int{0, 3}, nil, 0, 3, 3)
	if _, err := r.Calculate(sys); !errors.Is(err, engine.ErrUnknownParticle) {
		t.Errorf("error = %v", err)
	}
}
