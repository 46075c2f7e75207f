package render

import (
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoData is returned when there is no cost history to plot.
var ErrNoData = errors.New("no cost history")

// CostPlot builds a labelled gonum plot of costs with the frame at cursor
// highlighted. A cursor outside the history draws no marker.
func CostPlot(title string, costs []float64, cursor int) (*plot.Plot, error) {
	if len(costs) == 0 {
		return nil, ErrNoData
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Cost"

	pts := make(plotter.XYs, len(costs))
	for i, c := range costs {
		pts[i] = plotter.XY{X: float64(i), Y: c}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("cost line: %w", err)
	}
	line.Color = PathColor
	line.Width = vg.Points(2)
	p.Add(plotter.NewGrid(), line)

	if cursor >= 0 && cursor < len(costs) {
		marker, err := plotter.NewScatter(plotter.XYs{pts[cursor]})
		if err != nil {
			return nil, fmt.Errorf("cursor marker: %w", err)
		}
		marker.GlyphStyle.Color = CursorColor
		marker.GlyphStyle.Radius = vg.Points(4)
		marker.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(marker)
	}
	return p, nil
}

// WriteCostPlot renders CostPlot to w in the given format ("png", "svg", ...).
func WriteCostPlot(w io.Writer, format, title string, costs []float64, cursor int, width, height vg.Length) error {
	p, err := CostPlot(title, costs, cursor)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("encode cost plot: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
