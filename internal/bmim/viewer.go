package bmim

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/drudesim/internal/forcefield"
	"github.com/san-kum/drudesim/internal/viz"
)

// RunViewer is the default Visualizer: a full screen Bubble Tea program.
func RunViewer(ctx context.Context, src viz.Source, stepsPerFrame int) error {
	m, err := viz.NewModel(ctx, src, stepsPerFrame, "bmim pf6")
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	return final.(viz.Model).Err()
}

// source exposes the experiment to the viewer.
type source struct {
	e *Experiment
}

func (s *source) Advance(ctx context.Context, steps int) error {
	_, err := s.e.sys.Run(ctx, steps)
	return err
}

func (s *source) Snapshot() (viz.Snapshot, error) {
	sys := s.e.sys
	en, err := sys.Energy()
	if err != nil {
		return viz.Snapshot{}, err
	}
	parts := sys.Particles()
	pts := make([]viz.Point, len(parts))
	for i, p := range parts {
		pts[i] = viz.Point{Pos: sys.FoldedPos(p), Kind: pointKind(p.Type)}
	}
	return viz.Snapshot{
		TimeNs:      mdTimeToNs(sys.Time()),
		Box:         sys.Box(),
		Points:      pts,
		Energy:      en.Total,
		Temperature: sys.Temperature(),
		Backend:     sys.Backend().Name(),
	}, nil
}

func pointKind(t int) int {
	switch t {
	case forcefield.TypePF6:
		return viz.KindAnion
	case forcefield.TypeC1, forcefield.TypeC2, forcefield.TypeC3:
		return viz.KindCation
	case forcefield.TypeCOM:
		return viz.KindCenter
	}
	return viz.KindDrude
}
