package render

import (
	"image/color"
	"math"

	"github.com/banshee-data/pathviz/internal/geom"
	"github.com/banshee-data/pathviz/internal/scene"
	"github.com/banshee-data/pathviz/internal/viewport"
)

// Screen-space sizes in pixels. They are divided by the viewport scale before
// drawing so zoom does not change their apparent size.
const (
	gridWidth        = 0.5
	obstacleWidth    = 2.0
	safetyWidth      = 1.0
	safetyDash       = 5.0
	pathWidth        = 3.0
	waypointRadius   = 4.0
	endpointRadius   = 10.0
	outlineWidth     = 2.0
	labelSize        = 14.0
	labelOffsetX     = 15.0
	labelOffsetY     = 5.0
	DefaultGridSpace = 50.0
	maxGridLines     = 400
)

// PathView renders the scene in world coordinates.
type PathView struct {
	// SafetyMargin is added to each obstacle radius for the dashed outline.
	SafetyMargin float64
	// GridSpacing is the world-space distance between grid lines.
	GridSpacing float64
}

// NewPathView returns a renderer with the default grid spacing.
func NewPathView(safetyMargin float64) PathView {
	return PathView{SafetyMargin: safetyMargin, GridSpacing: DefaultGridSpace}
}

// Draw renders sc as seen through vp.
func (v PathView) Draw(s Surface, sc *scene.Scene, vp *viewport.Viewport) {
	s.Clear(Background)

	s.Push()
	defer s.Pop()
	ox, oy := vp.Offset()
	s.Transform(vp.Scale(), ox, oy)
	k := 1 / vp.Scale()

	v.drawGrid(s, vp, k)

	for _, o := range sc.Obstacles() {
		v.drawObstacle(s, o, ObstacleFill, k)
	}
	if p, ok := sc.Pending(); ok {
		v.drawObstacle(s, p, PendingFill, k)
	}

	if ov, ok := sc.Overlay(); ok && len(ov.Path) >= 2 {
		s.SetStroke(PathColor, pathWidth*k)
		s.StrokeLine(ov.Path...)
		for _, wp := range ov.Path[1 : len(ov.Path)-1] {
			drawMarker(s, wp, PathColor, waypointRadius*k, k)
		}
	}

	if p, ok := sc.Start(); ok {
		drawMarker(s, p, StartColor, endpointRadius*k, k)
		drawLabel(s, p, "START", k)
	}
	if p, ok := sc.Goal(); ok {
		drawMarker(s, p, GoalColor, endpointRadius*k, k)
		drawLabel(s, p, "GOAL", k)
	}
}

// GridLines returns the world x and y positions of the grid lines covering
// the visible extent of a width x height canvas.
func (v PathView) GridLines(vp *viewport.Viewport, width, height float64) (xs, ys []float64) {
	spacing := v.GridSpacing
	if spacing <= 0 {
		spacing = DefaultGridSpace
	}
	b := vp.VisibleBounds(width, height)
	xs = gridRange(b.Min[0], b.Max[0], spacing)
	ys = gridRange(b.Min[1], b.Max[1], spacing)
	return xs, ys
}

func gridRange(lo, hi, spacing float64) []float64 {
	first := math.Floor(lo/spacing) * spacing
	var out []float64
	for x := first; x <= hi && len(out) < maxGridLines; x += spacing {
		out = append(out, x)
	}
	return out
}

func (v PathView) drawGrid(s Surface, vp *viewport.Viewport, k float64) {
	w, h := s.Size()
	b := vp.VisibleBounds(w, h)
	xs, ys := v.GridLines(vp, w, h)

	s.SetStroke(GridColor, gridWidth*k)
	for _, x := range xs {
		s.StrokeLine(geom.Pt(x, b.Min[1]), geom.Pt(x, b.Max[1]))
	}
	for _, y := range ys {
		s.StrokeLine(geom.Pt(b.Min[0], y), geom.Pt(b.Max[0], y))
	}
}

func (v PathView) drawObstacle(s Surface, o scene.Obstacle, fill color.Color, k float64) {
	s.SetFill(fill)
	s.FillCircle(o.Center, o.Radius)
	s.SetStroke(ObstacleEdge, obstacleWidth*k)
	s.StrokeCircle(o.Center, o.Radius)

	s.SetStroke(ObstacleEdge, safetyWidth*k, safetyDash*k, safetyDash*k)
	s.StrokeCircle(o.Center, o.Radius+v.SafetyMargin)
}

func drawMarker(s Surface, p geom.Point, c color.Color, r, k float64) {
	s.SetFill(c)
	s.FillCircle(p, r)
	s.SetStroke(MarkerOutline, outlineWidth*k)
	s.StrokeCircle(p, r)
}

func drawLabel(s Surface, p geom.Point, text string, k float64) {
	s.SetFill(LabelColor)
	s.FillText(p.Add(geom.Pt(labelOffsetX*k, labelOffsetY*k)), labelSize*k, text)
}
