package render

import (
	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/pathviz/internal/geom"
)

// CostGraph draws the cost history in its own fixed pixel space. It does not
// use the viewport.
type CostGraph struct {
	Padding      float64
	MarkerRadius float64
	LineWidth    float64
	AxisWidth    float64
	FontSize     float64
}

// NewCostGraph returns a graph with the standard layout.
func NewCostGraph() CostGraph {
	return CostGraph{Padding: 40, MarkerRadius: 5, LineWidth: 2, AxisWidth: 2, FontSize: 12}
}

// GraphRange returns the min and max of history and the span used for
// scaling, which is 1 when every cost is equal. history must be non-empty.
func GraphRange(history []float64) (lo, hi, span float64) {
	lo, hi = floats.Min(history), floats.Max(history)
	span = hi - lo
	if span == 0 {
		span = 1
	}
	return lo, hi, span
}

// Point maps history index i to pixel space on a width x height surface.
// Higher costs sit nearer the top.
func (g CostGraph) Point(history []float64, i int, width, height float64) geom.Point {
	lo, _, span := GraphRange(history)
	return g.point(i, len(history), history[i], lo, span, width, height)
}

func (g CostGraph) point(i, n int, cost, lo, span, width, height float64) geom.Point {
	x := g.Padding
	if n > 1 {
		x += float64(i) / float64(n-1) * (width - 2*g.Padding)
	}
	y := height - g.Padding - (cost-lo)/span*(height-2*g.Padding)
	return geom.Pt(x, y)
}

// Draw renders history with a marker at cursor. It draws nothing when
// history is empty.
func (g CostGraph) Draw(s Surface, history []float64, cursor int) {
	if len(history) == 0 {
		return
	}
	w, h := s.Size()
	p := g.Padding

	s.Clear(GraphBG)

	s.SetStroke(AxisColor, g.AxisWidth)
	s.StrokeLine(geom.Pt(p, p), geom.Pt(p, h-p), geom.Pt(w-p, h-p))

	s.SetFill(AxisColor)
	s.FillText(geom.Pt(5, p), g.FontSize, "Cost")
	s.FillText(geom.Pt(w-p-30, h-10), g.FontSize, "Iteration")

	lo, _, span := GraphRange(history)
	pts := make([]geom.Point, len(history))
	for i, c := range history {
		pts[i] = g.point(i, len(history), c, lo, span, w, h)
	}
	s.SetStroke(PathColor, g.LineWidth)
	s.StrokeLine(pts...)

	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(history) {
		cursor = len(history) - 1
	}
	s.SetFill(CursorColor)
	s.FillCircle(pts[cursor], g.MarkerRadius)
}
