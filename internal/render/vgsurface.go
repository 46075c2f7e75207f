package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/banshee-data/pathviz/internal/geom"
)

// Output formats accepted by NewVGSurface.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

var labelFont = font.Font{Typeface: "Liberation", Variant: "Sans"}

// VGSurface draws onto a gonum/plot vector canvas. At 72 DPI one device
// pixel is one vg point.
type VGSurface struct {
	PenStack
	canvas vg.Canvas
	out    io.WriterTo
	w, h   float64
}

// NewVGSurface creates a width x height pixel surface encoding to format.
func NewVGSurface(format string, width, height float64) (*VGSurface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %gx%g", width, height)
	}
	s := &VGSurface{PenStack: NewPenStack(), w: width, h: height}
	switch format {
	case FormatPNG:
		c := vgimg.NewWith(vgimg.UseWH(vg.Length(width), vg.Length(height)), vgimg.UseDPI(72))
		s.canvas = c
		s.out = vgimg.PngCanvas{Canvas: c}
	case FormatSVG:
		c := vgsvg.New(vg.Length(width), vg.Length(height))
		s.canvas = c
		s.out = c
	default:
		return nil, fmt.Errorf("unsupported surface format %q", format)
	}
	return s, nil
}

// WriteTo encodes the drawing.
func (s *VGSurface) WriteTo(w io.Writer) (int64, error) {
	return s.out.WriteTo(w)
}

func (s *VGSurface) Size() (float64, float64) { return s.w, s.h }

func (s *VGSurface) Clear(c color.Color) {
	var p vg.Path
	p.Move(vg.Point{X: 0, Y: 0})
	p.Line(vg.Point{X: vg.Length(s.w), Y: 0})
	p.Line(vg.Point{X: vg.Length(s.w), Y: vg.Length(s.h)})
	p.Line(vg.Point{X: 0, Y: vg.Length(s.h)})
	p.Close()
	s.canvas.SetColor(c)
	s.canvas.Fill(p)
}

// device maps a user point to canvas space, where y grows upwards.
func (s *VGSurface) device(p geom.Point) vg.Point {
	q := s.Pen().Transform.Apply(p)
	return vg.Point{X: vg.Length(q.X), Y: vg.Length(s.h - q.Y)}
}

func (s *VGSurface) applyStroke() {
	pen := s.Pen()
	s.canvas.SetColor(pen.Stroke)
	s.canvas.SetLineWidth(vg.Length(pen.Transform.Len(pen.Width)))
	var dashes []vg.Length
	for _, d := range pen.Dashes {
		dashes = append(dashes, vg.Length(pen.Transform.Len(d)))
	}
	s.canvas.SetLineDash(dashes, 0)
}

func (s *VGSurface) StrokeLine(pts ...geom.Point) {
	if len(pts) < 2 {
		return
	}
	var p vg.Path
	p.Move(s.device(pts[0]))
	for _, pt := range pts[1:] {
		p.Line(s.device(pt))
	}
	s.applyStroke()
	s.canvas.Stroke(p)
}

func (s *VGSurface) circle(center geom.Point, radius float64) vg.Path {
	c := s.device(center)
	r := vg.Length(s.Pen().Transform.Len(radius))
	var p vg.Path
	p.Move(vg.Point{X: c.X + r, Y: c.Y})
	p.Arc(c, r, 0, 2*math.Pi)
	p.Close()
	return p
}

func (s *VGSurface) FillCircle(center geom.Point, radius float64) {
	if radius <= 0 {
		return
	}
	s.canvas.SetColor(s.Pen().Fill)
	s.canvas.Fill(s.circle(center, radius))
}

func (s *VGSurface) StrokeCircle(center geom.Point, radius float64) {
	if radius <= 0 {
		return
	}
	s.applyStroke()
	s.canvas.Stroke(s.circle(center, radius))
}

func (s *VGSurface) FillText(p geom.Point, size float64, text string) {
	pen := s.Pen()
	face := font.DefaultCache.Lookup(labelFont, vg.Length(pen.Transform.Len(size)))
	s.canvas.SetColor(pen.Fill)
	s.canvas.FillString(face, s.device(p), text)
}
