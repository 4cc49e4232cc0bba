package bmim

import (
	"time"

	"github.com/san-kum/drudesim/internal/config"
	"github.com/san-kum/drudesim/internal/storage"
)

// Result summarizes a run. A cancelled or failed run still reports what it
// got through.
type Result struct {
	NumParticles  int
	BoxLength     float64
	MinimizeFrom  float64
	MinimizeTo    float64
	MinimizeSteps int
	TimePerStep   time.Duration
	NsPerDay      float64

	// Cycles is the number of production cycles planned, CyclesDone the
	// number finished.
	Cycles     int
	CyclesDone int
	Steps      int
	SimTimeNs  float64

	Trajectory string
	RDF        string
	Energies   []storage.EnergySample
	Metrics    map[string]float64
}

// Metadata converts the result into the stored form. runErr sets the
// status.
func (r *Result) Metadata(cfg *config.Config, runErr error) *storage.RunMetadata {
	meta := &storage.RunMetadata{
		Status:       storage.StatusCompleted,
		Config:       cfg,
		NumParticles: r.NumParticles,
		BoxLength:    r.BoxLength,
		NsPerDay:     r.NsPerDay,
		Cycles:       r.CyclesDone,
		Steps:        r.Steps,
		SimTimeNs:    r.SimTimeNs,
		MinimizeFrom: r.MinimizeFrom,
		MinimizeTo:   r.MinimizeTo,
		Trajectory:   r.Trajectory,
		RDF:          r.RDF,
		Metrics:      r.Metrics,
	}
	switch {
	case runErr == nil:
	case isCancel(runErr):
		meta.Status = storage.StatusCancelled
	default:
		meta.Status = storage.StatusFailed
		meta.Error = runErr.Error()
	}
	return meta
}
