package bmim

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/san-kum/drudesim/internal/engine"
	"github.com/san-kum/drudesim/internal/forcefield"
	"github.com/san-kum/drudesim/internal/metrics"
	"github.com/san-kum/drudesim/internal/observables"
	"github.com/san-kum/drudesim/internal/storage"
	"github.com/san-kum/drudesim/internal/trajectory"
	"github.com/san-kum/drudesim/internal/units"
)

type rdfAccumulator struct {
	pair RDFPair
	obs  *observables.RDF
	acc  *observables.MeanVarianceCalculator
}

// integrate runs the production cycles. Every cycle appends one trajectory
// frame, the RDFs are sampled once per cycle and written at the end, also
// when the loop stops early.
func (e *Experiment) integrate(ctx context.Context) (err error) {
	sch := e.cfg.Schedule
	cycles := e.res.Cycles
	e.log.Infof("integration: simulating for %.2f h, which is %d cycles x %d steps, which is %.2f ns simulation time",
		e.cfg.Walltime, cycles, sch.CycleSteps, e.res.NsPerDay/24.0*e.cfg.Walltime)

	rdfs, err := e.addRDFs()
	if err != nil {
		return err
	}
	sampler := metrics.NewSampler(sch.CycleSteps, e.registry.DefaultMetrics()...)
	if err := e.sys.AutoUpdate(sampler); err != nil {
		return err
	}

	traj, path, err := trajectory.CreateXYZ(filepath.Join(e.cfg.Path, TrajectoryFile), e.cfg.Compress)
	if err != nil {
		return err
	}
	e.res.Trajectory = path
	defer func() {
		err = errors.Join(err, traj.Close(), e.writeRDF(rdfs))
		e.res.Metrics = sampler.Values()
	}()

	bar := e.newProgress("integration", cycles)
	for i := 0; i < cycles; i++ {
		if _, err := e.sys.Run(ctx, sch.CycleSteps); err != nil {
			return err
		}
		t := units.FsToNs(e.cfg.System.TimeStepFs) * float64(i) * float64(sch.CycleSteps)
		if err := traj.WriteFrame(e.frame(t)); err != nil {
			return err
		}
		if err := e.recordEnergy(); err != nil {
			return err
		}
		e.res.CyclesDone++
		bar.add(1)
	}
	bar.done()
	e.log.Infof("done: %d frames written to %s", traj.Frames(), path)
	return nil
}

func (e *Experiment) addRDFs() ([]rdfAccumulator, error) {
	sch := e.cfg.Schedule
	maxR := 0.5 * e.sys.Box().X
	var out []rdfAccumulator
	for _, pair := range e.registry.RDFPairs() {
		var ids2 []int
		if pair.Type2 >= 0 {
			ids2 = e.sys.SelectType(pair.Type2)
		}
		obs, err := observables.NewRDF(e.sys.SelectType(pair.Type1), ids2, 0, maxR, sch.RDFBins)
		if err != nil {
			return nil, fmt.Errorf("rdf %s: %w", pair.Name, err)
		}
		acc := observables.NewMeanVarianceCalculator(obs, sch.CycleSteps)
		if err := e.sys.AutoUpdate(acc); err != nil {
			return nil, err
		}
		out = append(out, rdfAccumulator{pair: pair, obs: obs, acc: acc})
	}
	return out, nil
}

// writeRDF writes the bin centers followed by the mean of every RDF.
func (e *Experiment) writeRDF(rdfs []rdfAccumulator) error {
	if len(rdfs) == 0 {
		return nil
	}
	cols := [][]float64{rdfs[0].obs.BinCenters()}
	for _, r := range rdfs {
		cols = append(cols, r.acc.Mean())
	}
	path := filepath.Join(e.cfg.Path, RDFFile)
	if err := trajectory.WriteRDFFile(path, cols...); err != nil {
		return err
	}
	e.res.RDF = path
	e.log.Debugf("wrote %s from %d samples", path, rdfs[0].acc.Count())
	return nil
}

// frame captures every particle with its short label and folded position.
func (e *Experiment) frame(t float64) trajectory.Frame {
	parts := e.sys.Particles()
	fr := trajectory.Frame{Time: t, Atoms: make([]trajectory.Atom, len(parts))}
	for i, p := range parts {
		fr.Atoms[i] = trajectory.Atom{Label: forcefield.ShortName(p.Type), Pos: e.sys.FoldedPos(p)}
	}
	return fr
}

func (e *Experiment) recordEnergy() error {
	en, err := e.sys.Energy()
	if err != nil {
		return err
	}
	e.res.Energies = append(e.res.Energies, energySample(e.sys, en))
	return nil
}

func energySample(sys *engine.System, en engine.Energy) storage.EnergySample {
	return storage.EnergySample{
		TimeNs:      mdTimeToNs(sys.Time()),
		Total:       en.Total,
		Kinetic:     en.Kinetic,
		LJ:          en.LJ,
		Coulomb:     en.Coulomb,
		Thole:       en.Thole,
		Bonded:      en.Bonded,
		Temperature: sys.Temperature(),
	}
}
