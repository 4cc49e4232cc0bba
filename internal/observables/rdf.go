// Package observables computes quantities sampled from a running system and
// the accumulators that average them.
package observables

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/drudesim/internal/engine"
)

var (
	ErrBadRange = errors.New("observables: invalid histogram range")
	ErrNoIDs    = errors.New("observables: no particle ids")
)

// Observable produces a fixed-length vector from the system state.
type Observable interface {
	Calculate(sys *engine.System) ([]float64, error)
	Shape() int
}

// RDF is the radial distribution function between two particle sets. With
// IDs2 empty it is computed within IDs1, counting each pair once.
type RDF struct {
	IDs1 []int
	IDs2 []int
	MinR float64
	MaxR float64
	Bins int
}

func NewRDF(ids1, ids2 []int, minR, maxR float64, bins int) (*RDF, error) {
	if bins <= 0 || minR < 0 || maxR <= minR {
		return nil, fmt.Errorf("%w: [%g, %g) in %d bins", ErrBadRange, minR, maxR, bins)
	}
	if len(ids1) == 0 {
		return nil, ErrNoIDs
	}
	return &RDF{
		IDs1: append([]int(nil), ids1...),
		IDs2: append([]int(nil), ids2...),
		MinR: minR,
		MaxR: maxR,
		Bins: bins,
	}, nil
}

func (r *RDF) Shape() int { return r.Bins }

func (r *RDF) binWidth() float64 { return (r.MaxR - r.MinR) / float64(r.Bins) }

// BinCenters returns the midpoint of every bin.
func (r *RDF) BinCenters() []float64 {
	w := r.binWidth()
	out := make([]float64, r.Bins)
	for i := range out {
		out[i] = r.MinR + (float64(i)+0.5)*w
	}
	return out
}

// Calculate histograms the minimum image distances and normalises every
// bin by its shell volume, the box volume and the number of pairs.
func (r *RDF) Calculate(sys *engine.System) ([]float64, error) {
	hist := make([]float64, r.Bins)
	inv := 1 / r.binWidth()

	add := func(a, b *engine.Particle) {
		d := r3.Norm(sys.MinImage(a.Pos, b.Pos))
		if d <= r.MinR || d >= r.MaxR {
			return
		}
		bin := int((d - r.MinR) * inv)
		if bin >= r.Bins {
			bin = r.Bins - 1
		}
		hist[bin]++
	}

	p1 := make([]*engine.Particle, len(r.IDs1))
	for i, id := range r.IDs1 {
		p, err := sys.Particle(id)
		if err != nil {
			return nil, err
		}
		p1[i] = p
	}

	var pairs float64
	if len(r.IDs2) == 0 {
		for i := range p1 {
			for j := i + 1; j < len(p1); j++ {
				add(p1[i], p1[j])
			}
		}
		n := float64(len(p1))
		pairs = n * (n - 1) / 2
	} else {
		p2 := make([]*engine.Particle, len(r.IDs2))
		for i, id := range r.IDs2 {
			p, err := sys.Particle(id)
			if err != nil {
				return nil, err
			}
			p2[i] = p
		}
		for _, a := range p1 {
			for _, b := range p2 {
				add(a, b)
			}
		}
		pairs = float64(len(p1) * len(p2))
	}
	if pairs == 0 {
		return hist, nil
	}

	volume := sys.Volume()
	w := r.binWidth()
	for i := range hist {
		rIn := r.MinR + float64(i)*w
		rOut := rIn + w
		shell := 4.0 / 3.0 * math.Pi * (rOut*rOut*rOut - rIn*rIn*rIn)
		hist[i] *= volume / (shell * pairs)
	}
	return hist, nil
}
