package viz

import (
	"fmt"
	"io"
	"time"
)

// Progress prints a single updating progress line for a fixed number of
// cycles.
type Progress struct {
	w     io.Writer
	label string
	total int
	done  int
	width int
	start time.Time
	now   func() time.Time
}

func NewProgress(w io.Writer, label string, total int) *Progress {
	p := &Progress{w: w, label: label, total: total, width: 30, now: time.Now}
	p.start = p.now()
	return p
}

// Add advances the bar by n cycles and redraws it.
func (p *Progress) Add(n int) {
	p.done += n
	p.draw()
}

// Line is the current progress line without the carriage return.
func (p *Progress) Line() string {
	frac := 1.0
	if p.total > 0 {
		frac = float64(p.done) / float64(p.total)
	}
	elapsed := p.now().Sub(p.start)
	rate, eta := 0.0, time.Duration(0)
	if secs := elapsed.Seconds(); secs > 0 && p.done > 0 {
		rate = float64(p.done) / secs
		eta = time.Duration(float64(p.total-p.done) / rate * float64(time.Second))
	}
	return fmt.Sprintf("%s %s %d/%d [%s<%s, %.2fit/s]",
		p.label, ProgressBar(frac, p.width), p.done, p.total,
		elapsed.Round(time.Second), eta.Round(time.Second), rate)
}

func (p *Progress) draw() {
	fmt.Fprintf(p.w, "\r%s", p.Line())
}

// Done ends the line.
func (p *Progress) Done() {
	p.draw()
	fmt.Fprintln(p.w)
}
