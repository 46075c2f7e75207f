// Package geom holds the 2D point type shared by the viewport, scene and renderers.
//
// A Point is used for both world-space and screen-space coordinates; which space a
// value lives in is decided by the caller (the viewport converts between them).
// On the wire a point is encoded as a two-element JSON array [x, y].
package geom

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a 2D coordinate.
type Point r2.Vec

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point(r2.Add(r2.Vec(p), r2.Vec(q)))
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point(r2.Sub(r2.Vec(p), r2.Vec(q)))
}

// Scale returns p*f.
func (p Point) Scale(f float64) Point {
	return Point(r2.Scale(f, r2.Vec(p)))
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return r2.Norm(r2.Sub(r2.Vec(p), r2.Vec(q)))
}

// ApproxEqual reports whether p and q agree to within tol on both axes.
func (p Point) ApproxEqual(q Point, tol float64) bool {
	return math.Abs(p.X-q.X) <= tol && math.Abs(p.Y-q.Y) <= tol
}

// Orb converts p to an orb.Point.
func (p Point) Orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

// FromOrb converts an orb.Point.
func FromOrb(o orb.Point) Point {
	return Point{X: o.X(), Y: o.Y()}
}

func (p Point) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}

// MarshalJSON encodes p as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Orb())
}

// UnmarshalJSON decodes [x, y].
func (p *Point) UnmarshalJSON(data []byte) error {
	var o orb.Point
	if err := json.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("point must be [x, y]: %w", err)
	}
	*p = FromOrb(o)
	return nil
}

// Path is an ordered sequence of waypoints.
type Path []Point

// LineString converts the path to an orb.LineString.
func (ps Path) LineString() orb.LineString {
	ls := make(orb.LineString, len(ps))
	for i, p := range ps {
		ls[i] = p.Orb()
	}
	return ls
}

// PathFromLineString converts an orb.LineString.
func PathFromLineString(ls orb.LineString) Path {
	ps := make(Path, len(ls))
	for i, o := range ls {
		ps[i] = FromOrb(o)
	}
	return ps
}

// Length returns the polyline length of the path.
func (ps Path) Length() float64 {
	if len(ps) < 2 {
		return 0
	}
	return planar.Length(ps.LineString())
}

// Clone returns an independent copy of the path.
func (ps Path) Clone() Path {
	if ps == nil {
		return nil
	}
	out := make(Path, len(ps))
	copy(out, ps)
	return out
}
