package viewport

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/pathviz/internal/geom"
)

const tol = 1e-9

func TestNewIsIdentity(t *testing.T) {
	v := New()
	p := geom.Pt(12.5, -3)
	assert.Equal(t, p, v.ToScreen(p))
	assert.Equal(t, p, v.ToWorld(p))
	assert.Equal(t, 100, v.ZoomPercent())
}

func TestZoomAtKeepsAnchorFixed(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	v := New()

	for i := 0; i < 500; i++ {
		anchor := geom.Pt(rng.Float64()*800, rng.Float64()*600)
		factor := 0.5 + rng.Float64()*1.5

		before := v.ToWorld(anchor)
		v.ZoomAt(anchor, factor)
		after := v.ToWorld(anchor)

		if !before.ApproxEqual(after, 1e-6) {
			t.Fatalf("step %d: world under anchor moved from %v to %v (scale=%f)", i, before, after, v.Scale())
		}
	}
}

func TestScaleIsClamped(t *testing.T) {
	v := New()
	for i := 0; i < 100; i++ {
		v.ZoomAt(geom.Pt(10, 10), ZoomInFactor)
		assert.LessOrEqual(t, v.Scale(), MaxScale)
	}
	assert.Equal(t, MaxScale, v.Scale())

	for i := 0; i < 200; i++ {
		v.ZoomAt(geom.Pt(10, 10), ZoomOutFactor)
		assert.GreaterOrEqual(t, v.Scale(), MinScale)
	}
	assert.InDelta(t, MinScale, v.Scale(), tol)
}

func TestZoomAtClampedStillKeepsAnchor(t *testing.T) {
	v := New()
	v.ZoomAt(geom.Pt(0, 0), 5)
	anchor := geom.Pt(321, 123)
	before := v.ToWorld(anchor)
	v.ZoomAt(anchor, 3) // already at max
	assert.True(t, before.ApproxEqual(v.ToWorld(anchor), tol))
	assert.Equal(t, MaxScale, v.Scale())
}

func TestZoomAtIgnoresBadFactor(t *testing.T) {
	v := New()
	calls := 0
	v.SetOnChange(func() { calls++ })
	v.ZoomAt(geom.Pt(1, 1), 0)
	v.ZoomAt(geom.Pt(1, 1), -2)
	assert.Equal(t, 1.0, v.Scale())
	assert.Zero(t, calls)
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	v := New()
	for i := 0; i < 200; i++ {
		v.ZoomAt(geom.Pt(rng.Float64()*500, rng.Float64()*500), 0.7+rng.Float64())
		v.Pan(rng.Float64()*40-20, rng.Float64()*40-20)

		p := geom.Pt(rng.Float64()*2000-1000, rng.Float64()*2000-1000)
		assert.True(t, p.ApproxEqual(v.ToWorld(v.ToScreen(p)), 1e-6), "round trip %v", p)
	}
}

func TestPanIsScreenSpace(t *testing.T) {
	v := New()
	v.ZoomAt(geom.Pt(0, 0), 2)
	v.Pan(10, -5)

	ox, oy := v.Offset()
	assert.Equal(t, 10.0, ox)
	assert.Equal(t, -5.0, oy)
	assert.Equal(t, geom.Pt(30, 15), v.ToScreen(geom.Pt(10, 10)))
}

func TestResetAndChangeCallback(t *testing.T) {
	v := New()
	calls := 0
	v.SetOnChange(func() { calls++ })

	v.ZoomAt(geom.Pt(50, 50), 1.5)
	v.Pan(3, 4)
	v.Reset()

	assert.Equal(t, 3, calls)
	assert.Equal(t, State{Scale: 1}, v.Snapshot())
}

func TestVisibleBounds(t *testing.T) {
	v := New()
	v.ZoomAt(geom.Pt(0, 0), 2)
	v.Pan(100, 50)

	b := v.VisibleBounds(800, 600)
	assert.InDelta(t, -50, b.Min.X(), tol)
	assert.InDelta(t, -25, b.Min.Y(), tol)
	assert.InDelta(t, 350, b.Max.X(), tol)
	assert.InDelta(t, 275, b.Max.Y(), tol)
}
