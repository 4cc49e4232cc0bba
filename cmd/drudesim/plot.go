package main

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/drudesim/internal/storage"
	"github.com/san-kum/drudesim/internal/trajectory"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var rdfCaptions = []string{"g(r) PF6-PF6", "g(r) BMIM-BMIM", "g(r) PF6-BMIM"}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	if meta.RDF == "" {
		return fmt.Errorf("run %s has no rdf table", meta.ID)
	}

	cols, err := trajectory.ReadRDFFile(meta.RDF)
	if err != nil {
		return err
	}
	if len(cols) < 2 {
		return fmt.Errorf("rdf table %s has %d columns", meta.RDF, len(cols))
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("bins: %d, r up to %.3f A\n\n", len(cols[0]), cols[0][len(cols[0])-1])

	for i, col := range cols[1:] {
		graph := asciigraph.Plot(col,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption(i)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if energies, err := st.LoadEnergies(meta.ID); err == nil && len(energies) > 1 {
		total := make([]float64, len(energies))
		for i, e := range energies {
			total[i] = e.Total
		}
		fmt.Println(asciigraph.Plot(total, asciigraph.Height(8), asciigraph.Width(80), asciigraph.Caption("total energy (kJ/mol)")))
		fmt.Println()
	}

	if pngPath != "" {
		if err := savePNG(pngPath, meta.ID, cols); err != nil {
			return err
		}
		fmt.Printf("saved %s\n", pngPath)
	}
	return nil
}

func caption(i int) string {
	if i < len(rdfCaptions) {
		return rdfCaptions[i]
	}
	return fmt.Sprintf("column %d", i+1)
}

// savePNG draws every RDF column against the bin centers.
func savePNG(path, title string, cols [][]float64) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "r (A)"
	p.Y.Label.Text = "g(r)"

	for i, col := range cols[1:] {
		pts := make(plotter.XYs, len(col))
		for j, v := range col {
			pts[j].X = cols[0][j]
			pts[j].Y = v
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(caption(i), line)
	}
	p.Add(plotter.NewGrid())

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
