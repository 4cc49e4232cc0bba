// Package metrics tracks scalar run diagnostics such as energy drift and
// kinetic temperature.
package metrics

import "github.com/san-kum/drudesim/internal/engine"

// Metric observes the system and reduces the observations to one number.
type Metric interface {
	Name() string
	Observe(sys *engine.System) error
	Value() float64
	Reset()
}

// Sampler feeds a set of metrics every deltaN steps. It implements
// engine.Accumulator.
type Sampler struct {
	deltaN  int
	metrics []Metric
}

func NewSampler(deltaN int, metrics ...Metric) *Sampler {
	return &Sampler{deltaN: deltaN, metrics: metrics}
}

func (s *Sampler) DeltaN() int { return s.deltaN }

func (s *Sampler) Update(sys *engine.System) error {
	for _, m := range s.metrics {
		if err := m.Observe(sys); err != nil {
			return err
		}
	}
	return nil
}

// Values maps every metric name to its current value.
func (s *Sampler) Values() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}
