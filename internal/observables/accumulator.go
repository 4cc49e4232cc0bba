package observables

import (
	"fmt"
	"math"

	"github.com/san-kum/drudesim/internal/engine"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MeanVarianceCalculator keeps every sample of an observable and reports
// the per-component mean and sample variance. It is meant to be registered
// with engine.System.AutoUpdate.
type MeanVarianceCalculator struct {
	obs     Observable
	deltaN  int
	samples [][]float64
}

func NewMeanVarianceCalculator(obs Observable, deltaN int) *MeanVarianceCalculator {
	return &MeanVarianceCalculator{obs: obs, deltaN: deltaN}
}

func (m *MeanVarianceCalculator) DeltaN() int { return m.deltaN }

// Update samples the observable once.
func (m *MeanVarianceCalculator) Update(sys *engine.System) error {
	v, err := m.obs.Calculate(sys)
	if err != nil {
		return err
	}
	if len(v) != m.obs.Shape() {
		return fmt.Errorf("observables: sample of length %d, want %d", len(v), m.obs.Shape())
	}
	m.samples = append(m.samples, v)
	return nil
}

// Count is the number of samples taken.
func (m *MeanVarianceCalculator) Count() int { return len(m.samples) }

// Mean returns the component-wise mean, or zeros before the first sample.
func (m *MeanVarianceCalculator) Mean() []float64 {
	mean, _ := m.stats()
	return mean
}

// Variance returns the component-wise sample variance. It is zero until two
// samples exist.
func (m *MeanVarianceCalculator) Variance() []float64 {
	_, variance := m.stats()
	return variance
}

func (m *MeanVarianceCalculator) stats() (mean, variance []float64) {
	n := m.obs.Shape()
	mean = make([]float64, n)
	variance = make([]float64, n)
	switch len(m.samples) {
	case 0:
		return mean, variance
	case 1:
		copy(mean, m.samples[0])
		return mean, variance
	}
	col := make([]float64, len(m.samples))
	for i := 0; i < n; i++ {
		for s, sample := range m.samples {
			col[s] = sample[i]
		}
		mean[i], variance[i] = stat.MeanVariance(col, nil)
	}
	return mean, variance
}

// StdError returns the standard error of the mean per component.
func (m *MeanVarianceCalculator) StdError() []float64 {
	v := m.Variance()
	if len(m.samples) > 0 {
		floats.Scale(1/float64(len(m.samples)), v)
	}
	for i, x := range v {
		v[i] = math.Sqrt(x)
	}
	return v
}
