package bmim

import "github.com/san-kum/drudesim/internal/viz"

// progress wraps an optional viz.Progress.
type progress struct {
	bar *viz.Progress
}

func (e *Experiment) newProgress(label string, total int) progress {
	if e.progress == nil {
		return progress{}
	}
	return progress{bar: viz.NewProgress(e.progress, label, total)}
}

func (p progress) add(n int) {
	if p.bar != nil {
		p.bar.Add(n)
	}
}

func (p progress) done() {
	if p.bar != nil {
		p.bar.Done()
	}
}
