package observables

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/drudesim/internal/engine"
	"gonum.org/v1/gonum/spatial/r3"
)

// stepCounter reports the number of integration steps done.
type stepCounter struct{}

func (stepCounter) Shape() int { return 2 }

func (stepCounter) Calculate(sys *engine.System) ([]float64, error) {
	n := float64(sys.Steps())
	return []float64{n, 2 * n}, nil
}

func TestMeanVarianceCalculator(t *testing.T) {
	sys := newSystem(t, 10, r3.Vec{X: 1, Y: 1, Z: 1})
	acc := NewMeanVarianceCalculator(stepCounter{}, 10)
	if got := acc.Mean(); got[0] != 0 || got[1] != 0 {
		t.Errorf("mean before sampling = %v", got)
	}
	if err := sys.AutoUpdate(acc); err != nil {
		t.Fatal(err)
	}
	sys.SetIntegrator(engine.VelocityVerlet{})
	if _, err := sys.Run(context.Background(), 40); err != nil {
		t.Fatal(err)
	}

	if acc.Count() != 4 {
		t.Fatalf("count = %d, want 4", acc.Count())
	}
	// samples 10, 20, 30, 40
	mean := acc.Mean()
	if mean[0] != 25 || mean[1] != 50 {
		t.Errorf("mean = %v, want [25 50]", mean)
	}
	variance := acc.Variance()
	if math.Abs(variance[0]-500.0/3) > 1e-9 || math.Abs(variance[1]-2000.0/3) > 1e-9 {
		t.Errorf("variance = %v", variance)
	}
	se := acc.StdError()
	if math.Abs(se[0]-math.Sqrt(500.0/3/4)) > 1e-9 {
		t.Errorf("standard error = %v", se)
	}
}

func TestMeanVarianceSingleSample(t *testing.T) {
	sys := newSystem(t, 10)
	acc := NewMeanVarianceCalculator(stepCounter{}, 1)
	if err := acc.Update(sys); err != nil {
		t.Fatal(err)
	}
	if v := acc.Variance(); v[0] != 0 {
		t.Errorf("variance of one sample = %v", v)
	}
}
