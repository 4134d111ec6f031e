package sky

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveConvergencePlot renders the per-step mean matched separation as a
// line chart. Steps where nothing matched are skipped rather than drawn
// as NaN.
func SaveConvergencePlot(stats []StepStatistics, path string) error {
	if len(stats) == 0 {
		return fmt.Errorf("no convergence statistics to plot")
	}

	p := plot.New()
	p.Title.Text = "Alignment convergence"
	p.X.Label.Text = "Step"
	p.Y.Label.Text = "Mean matched separation (arcsec)"

	pts := make(plotter.XYs, 0, len(stats))
	for _, s := range stats {
		if s.MatchedPairs == 0 {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(s.Step), Y: s.MeanSeparation()})
	}
	if len(pts) == 0 {
		return fmt.Errorf("no matched pairs in any step")
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("creating convergence line: %w", err)
	}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("mean separation", line)
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("saving convergence plot: %w", err)
	}
	return nil
}

// matrixGrid adapts a symmetric count matrix to the heat map interface.
type matrixGrid struct {
	m *mat.SymDense
}

func (g matrixGrid) Dims() (c, r int)   { n := g.m.SymmetricDim(); return n, n }
func (g matrixGrid) Z(c, r int) float64 { return g.m.At(r, c) }
func (g matrixGrid) X(c int) float64    { return float64(c) }
func (g matrixGrid) Y(r int) float64    { return float64(r) }

// SaveMatchMatrixPlot renders the beam-to-beam match count matrix as a
// heat map. Bright off-diagonal cells are overlapping beams; a dark row
// is a beam that barely matches anything and will align poorly.
func SaveMatchMatrixPlot(m *mat.SymDense, path string) error {
	if m.SymmetricDim() == 0 {
		return fmt.Errorf("empty match matrix")
	}

	p := plot.New()
	p.Title.Text = "Pairwise match counts"
	p.X.Label.Text = "Beam index"
	p.Y.Label.Text = "Beam index"

	h := plotter.NewHeatMap(matrixGrid{m: m}, palette.Heat(12, 1))
	p.Add(h)

	if err := p.Save(7*vg.Inch, 7*vg.Inch, path); err != nil {
		return fmt.Errorf("saving match matrix plot: %w", err)
	}
	return nil
}
