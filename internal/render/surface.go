// Package render draws the path view and the cost graph onto a Surface.
//
// Surface mirrors a 2D canvas context: primitives are given in user
// coordinates, and Transform composes a uniform scale plus translation onto
// the current user-to-device mapping. Device space has its origin at the top
// left with y growing downwards, matching screen pixels.
package render

import (
	"image/color"

	"github.com/banshee-data/pathviz/internal/geom"
)

// Surface is a drawing target.
type Surface interface {
	// Size returns the device size in pixels.
	Size() (width, height float64)
	// Clear fills the whole device with c, ignoring the transform.
	Clear(c color.Color)

	Push()
	Pop()
	// Transform composes p -> p*scale + (dx, dy) onto the current mapping.
	Transform(scale, dx, dy float64)

	// SetStroke sets the stroke colour, width and optional dash pattern, all
	// lengths in user units.
	SetStroke(c color.Color, width float64, dashes ...float64)
	SetFill(c color.Color)

	StrokeLine(pts ...geom.Point)
	FillCircle(center geom.Point, radius float64)
	StrokeCircle(center geom.Point, radius float64)
	// FillText draws s with its baseline origin at p using the fill colour.
	FillText(p geom.Point, size float64, s string)
}

// Affine is a uniform scale followed by a translation.
type Affine struct {
	S, DX, DY float64
}

// Identity is the identity mapping.
var Identity = Affine{S: 1}

// Apply maps p.
func (a Affine) Apply(p geom.Point) geom.Point {
	return geom.Pt(p.X*a.S+a.DX, p.Y*a.S+a.DY)
}

// Len maps a user-space length.
func (a Affine) Len(l float64) float64 { return l * a.S }

// Then returns the mapping that applies t first and a second.
func (a Affine) Then(t Affine) Affine {
	return Affine{
		S:  a.S * t.S,
		DX: t.DX*a.S + a.DX,
		DY: t.DY*a.S + a.DY,
	}
}

// Pen is the graphics state saved by Push and restored by Pop.
type Pen struct {
	Transform Affine
	Stroke    color.Color
	Width     float64
	Dashes    []float64
	Fill      color.Color
}

// PenStack implements the state half of Surface. Backends embed it and
// read Pen() when emitting primitives.
type PenStack struct {
	cur   Pen
	saved []Pen
}

// NewPenStack returns a stack with the identity transform and black pens.
func NewPenStack() PenStack {
	return PenStack{cur: Pen{Transform: Identity, Stroke: color.Black, Width: 1, Fill: color.Black}}
}

// Pen returns the current state.
func (ps *PenStack) Pen() Pen { return ps.cur }

func (ps *PenStack) Push() {
	ps.saved = append(ps.saved, ps.cur)
}

func (ps *PenStack) Pop() {
	if len(ps.saved) == 0 {
		return
	}
	ps.cur = ps.saved[len(ps.saved)-1]
	ps.saved = ps.saved[:len(ps.saved)-1]
}

func (ps *PenStack) Transform(scale, dx, dy float64) {
	ps.cur.Transform = ps.cur.Transform.Then(Affine{S: scale, DX: dx, DY: dy})
}

func (ps *PenStack) SetStroke(c color.Color, width float64, dashes ...float64) {
	ps.cur.Stroke = c
	ps.cur.Width = width
	ps.cur.Dashes = append([]float64(nil), dashes...)
}

func (ps *PenStack) SetFill(c color.Color) {
	ps.cur.Fill = c
}
