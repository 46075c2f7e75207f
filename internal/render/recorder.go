package render

import (
	"encoding/json"
	"fmt"
	"image/color"

	"github.com/banshee-data/pathviz/internal/geom"
)

// Op is one primitive captured by a Recorder, in device coordinates.
type Op struct {
	Kind   string       `json:"kind"`
	Points []geom.Point `json:"points,omitempty"`
	Radius float64      `json:"radius,omitempty"`
	Width  float64      `json:"width,omitempty"`
	Dashes []float64    `json:"dashes,omitempty"`
	Color  color.Color  `json:"-"`
	Text   string       `json:"text,omitempty"`
	Size   float64      `json:"size,omitempty"`
}

// MarshalJSON encodes Color as #rrggbbaa.
func (op Op) MarshalJSON() ([]byte, error) {
	type plain Op
	return json.Marshal(struct {
		plain
		Color string `json:"color,omitempty"`
	}{plain(op), HexColor(op.Color)})
}

// HexColor formats c as non-premultiplied #rrggbbaa, or "" for nil.
func HexColor(c color.Color) string {
	if c == nil {
		return ""
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}

// Recorder is a Surface that captures primitives instead of drawing them.
// The debug server serves its ops as a JSON display list, and tests use it
// to inspect output.
type Recorder struct {
	PenStack
	W, H float64
	Ops  []Op
}

// MarshalJSON encodes the canvas size and the recorded display list.
func (r *Recorder) MarshalJSON() ([]byte, error) {
	ops := r.Ops
	if ops == nil {
		ops = []Op{}
	}
	return json.Marshal(struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
		Ops    []Op    `json:"ops"`
	}{r.W, r.H, ops})
}

// NewRecorder returns an empty recorder of the given size.
func NewRecorder(width, height float64) *Recorder {
	return &Recorder{PenStack: NewPenStack(), W: width, H: height}
}

// Count returns how many ops of kind were recorded.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Find returns the recorded ops of kind.
func (r *Recorder) Find(kind string) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

func (r *Recorder) Size() (float64, float64) { return r.W, r.H }

func (r *Recorder) Clear(c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: "clear", Color: c})
}

func (r *Recorder) StrokeLine(pts ...geom.Point) {
	pen := r.Pen()
	dev := make([]geom.Point, len(pts))
	for i, p := range pts {
		dev[i] = pen.Transform.Apply(p)
	}
	r.Ops = append(r.Ops, Op{Kind: "line", Points: dev, Width: pen.Transform.Len(pen.Width), Dashes: r.dashes(), Color: pen.Stroke})
}

func (r *Recorder) FillCircle(center geom.Point, radius float64) {
	pen := r.Pen()
	r.Ops = append(r.Ops, Op{Kind: "fill-circle", Points: []geom.Point{pen.Transform.Apply(center)}, Radius: pen.Transform.Len(radius), Color: pen.Fill})
}

func (r *Recorder) StrokeCircle(center geom.Point, radius float64) {
	pen := r.Pen()
	r.Ops = append(r.Ops, Op{Kind: "stroke-circle", Points: []geom.Point{pen.Transform.Apply(center)}, Radius: pen.Transform.Len(radius), Width: pen.Transform.Len(pen.Width), Dashes: r.dashes(), Color: pen.Stroke})
}

func (r *Recorder) FillText(p geom.Point, size float64, s string) {
	pen := r.Pen()
	r.Ops = append(r.Ops, Op{Kind: "text", Points: []geom.Point{pen.Transform.Apply(p)}, Size: pen.Transform.Len(size), Text: s, Color: pen.Fill})
}

func (r *Recorder) dashes() []float64 {
	pen := r.Pen()
	if len(pen.Dashes) == 0 {
		return nil
	}
	out := make([]float64, len(pen.Dashes))
	for i, d := range pen.Dashes {
		out[i] = pen.Transform.Len(d)
	}
	return out
}
