// Package viewport maps between world coordinates and screen pixels.
//
// screen = world*scale + offset. The scale is always clamped to [MinScale, MaxScale].
// Mutators never draw; they only fire the change callback so the owner can
// schedule a re-render.
package viewport

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/banshee-data/pathviz/internal/geom"
)

const (
	MinScale = 0.1
	MaxScale = 5.0

	// ZoomInFactor and ZoomOutFactor are the discrete steps used by the wheel
	// and the zoom buttons.
	ZoomInFactor  = 1.1
	ZoomOutFactor = 0.9
)

// Viewport is the pan/zoom transform for one session.
type Viewport struct {
	scale   float64
	offsetX float64
	offsetY float64

	onChange func()
}

// New returns an identity viewport.
func New() *Viewport {
	return &Viewport{scale: 1}
}

// SetOnChange registers the re-render request callback. Pass nil to disable.
func (v *Viewport) SetOnChange(fn func()) {
	v.onChange = fn
}

func (v *Viewport) changed() {
	if v.onChange != nil {
		v.onChange()
	}
}

// Scale returns the current zoom scale.
func (v *Viewport) Scale() float64 { return v.scale }

// Offset returns the current translation in screen pixels.
func (v *Viewport) Offset() (x, y float64) { return v.offsetX, v.offsetY }

// ZoomPercent returns the scale as a rounded percentage for readouts.
func (v *Viewport) ZoomPercent() int {
	return int(math.Round(v.scale * 100))
}

// ToScreen converts a world point to screen pixels.
func (v *Viewport) ToScreen(p geom.Point) geom.Point {
	return geom.Pt(p.X*v.scale+v.offsetX, p.Y*v.scale+v.offsetY)
}

// ToWorld converts a screen point to world coordinates.
func (v *Viewport) ToWorld(p geom.Point) geom.Point {
	return geom.Pt((p.X-v.offsetX)/v.scale, (p.Y-v.offsetY)/v.scale)
}

// ZoomAt multiplies the scale by factor while keeping the world point under
// anchor (screen space) fixed on screen.
func (v *Viewport) ZoomAt(anchor geom.Point, factor float64) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	next := clamp(v.scale * factor)
	ratio := next / v.scale
	off := geom.Pt(v.offsetX, v.offsetY)
	off = anchor.Sub(anchor.Sub(off).Scale(ratio))
	v.scale = next
	v.offsetX, v.offsetY = off.X, off.Y
	v.changed()
}

// Pan shifts the offset by a screen-space delta. Panning is not scaled.
func (v *Viewport) Pan(dx, dy float64) {
	v.offsetX += dx
	v.offsetY += dy
	v.changed()
}

// Reset restores scale 1 and zero offset.
func (v *Viewport) Reset() {
	v.scale = 1
	v.offsetX, v.offsetY = 0, 0
	v.changed()
}

// VisibleBounds returns the world-space rectangle covered by a canvas of the
// given pixel size.
func (v *Viewport) VisibleBounds(width, height float64) orb.Bound {
	tl := v.ToWorld(geom.Pt(0, 0))
	br := v.ToWorld(geom.Pt(width, height))
	return orb.Bound{Min: tl.Orb(), Max: tl.Orb()}.Extend(br.Orb())
}

// State is a copyable snapshot used for readouts and tests.
type State struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// Snapshot returns the current transform values.
func (v *Viewport) Snapshot() State {
	return State{Scale: v.scale, OffsetX: v.offsetX, OffsetY: v.offsetY}
}

func clamp(s float64) float64 {
	return math.Min(MaxScale, math.Max(MinScale, s))
}
