package bmim

import (
	"fmt"
	"sort"

	"github.com/san-kum/drudesim/internal/forcefield"
	"github.com/san-kum/drudesim/internal/metrics"
)

// RDFPair names one radial distribution function of the run. Type2 < 0
// means the function is taken within Type1.
type RDFPair struct {
	Name  string
	Type1 int
	Type2 int
}

// Registry holds the sampled quantities of a production run: the RDFs
// written to rdf.dat, in column order, and the scalar metrics reported with
// the run.
type Registry struct {
	rdfs    []RDFPair
	metrics map[string]func() metrics.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		rdfs: []RDFPair{
			{Name: "pf6-pf6", Type1: forcefield.TypePF6, Type2: -1},
			{Name: "bmim-bmim", Type1: forcefield.TypeCOM, Type2: -1},
			{Name: "pf6-bmim", Type1: forcefield.TypePF6, Type2: forcefield.TypeCOM},
		},
		metrics: make(map[string]func() metrics.Metric),
	}

	r.metrics["energy"] = func() metrics.Metric { return metrics.NewEnergy() }
	r.metrics["energy_drift"] = func() metrics.Metric { return metrics.NewEnergyDrift() }
	r.metrics["temperature"] = func() metrics.Metric { return metrics.NewTemperature() }

	return r
}

// RDFPairs returns the RDF definitions in rdf.dat column order.
func (r *Registry) RDFPairs() []RDFPair {
	return append([]RDFPair(nil), r.rdfs...)
}

func (r *Registry) GetMetric(name string) (metrics.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics builds one of every registered metric.
func (r *Registry) DefaultMetrics() []metrics.Metric {
	var out []metrics.Metric
	for _, name := range r.ListMetrics() {
		out = append(out, r.metrics[name]())
	}
	return out
}
