package interact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pathviz/internal/geom"
	"github.com/banshee-data/pathviz/internal/scene"
	"github.com/banshee-data/pathviz/internal/viewport"
)

type harness struct {
	vp      *viewport.Viewport
	sc      *scene.Scene
	m       *Machine
	renders int
	status  []string
}

func newHarness() *harness {
	h := &harness{vp: viewport.New(), sc: scene.New()}
	h.m = NewMachine(h.vp, h.sc,
		WithRenderRequest(func() { h.renders++ }),
		WithStatus(func(s string) { h.status = append(h.status, s) }),
	)
	h.m.SetCanvasSize(800, 600)
	return h
}

func down(x, y float64) Event {
	return Event{Type: PointerDown, Screen: geom.Pt(x, y), Button: ButtonPrimary}
}

func move(x, y float64) Event {
	return Event{Type: PointerMove, Screen: geom.Pt(x, y)}
}

func up(x, y float64) Event {
	return Event{Type: PointerUp, Screen: geom.Pt(x, y), Button: ButtonPrimary}
}

func TestPlaceStartAndGoal(t *testing.T) {
	h := newHarness()
	assert.True(t, h.m.Handle(down(10, 20)))
	start, ok := h.sc.Start()
	require.True(t, ok)
	assert.Equal(t, geom.Pt(10, 20), start)

	h.m.SetMode(ModePlaceGoal)
	h.m.Handle(down(300, 400))
	goal, ok := h.sc.Goal()
	require.True(t, ok)
	assert.Equal(t, geom.Pt(300, 400), goal)

	assert.Equal(t, []string{
		"Start point set - Now set goal point",
		"Mode: goal",
		"Goal point set - Ready to add obstacles or run optimization",
	}, h.status)
}

func TestPlacementUsesWorldCoordinates(t *testing.T) {
	h := newHarness()
	h.vp.ZoomAt(geom.Pt(0, 0), 2)
	h.vp.Pan(100, 0)

	h.m.Handle(down(300, 200))
	start, _ := h.sc.Start()
	assert.Equal(t, geom.Pt(100, 100), start)
}

func TestObstacleBelowThresholdDiscarded(t *testing.T) {
	h := newHarness()
	h.m.SetMode(ModeDrawObstacle)

	h.m.Handle(down(100, 100))
	assert.True(t, h.m.Drawing())
	h.m.Handle(move(101, 101))
	h.m.Handle(up(102, 101))

	assert.False(t, h.m.Drawing())
	assert.Zero(t, h.sc.ObstacleCount())
}

func TestObstacleAboveThresholdCommitted(t *testing.T) {
	h := newHarness()
	h.m.SetMode(ModeDrawObstacle)

	h.m.Handle(down(100, 100))
	h.m.Handle(move(100, 120))
	h.m.Handle(up(100, 140))

	obs := h.sc.Obstacles()
	require.Len(t, obs, 1)
	assert.Equal(t, geom.Pt(100, 100), obs[0].Center)
	assert.InDelta(t, 40, obs[0].Radius, 1e-9)
	assert.Contains(t, h.status, "Obstacle added (1 total)")
}

func TestObstacleThresholdIsScreenSpace(t *testing.T) {
	h := newHarness()
	h.vp.ZoomAt(geom.Pt(0, 0), 4)
	h.m.SetMode(ModeDrawObstacle)

	// 8 screen pixels is only 2 world units at scale 4, but clears the 5px threshold.
	h.m.Handle(down(100, 100))
	h.m.Handle(up(108, 100))

	obs := h.sc.Obstacles()
	require.Len(t, obs, 1)
	assert.InDelta(t, 2, obs[0].Radius, 1e-9)
}

func TestEveryMoveWhileDrawingRequestsRender(t *testing.T) {
	h := newHarness()
	h.m.SetMode(ModeDrawObstacle)
	h.m.Handle(down(0, 0))
	before := h.renders
	for i := 1; i <= 5; i++ {
		h.m.Handle(move(float64(i), 0))
	}
	assert.Equal(t, before+5, h.renders)

	pending, ok := h.sc.Pending()
	require.True(t, ok)
	assert.InDelta(t, 5, pending.Radius, 1e-9)
}

func TestModeSwitchCancelsDraw(t *testing.T) {
	h := newHarness()
	h.m.SetMode(ModeDrawObstacle)
	h.m.Handle(down(100, 100))
	h.m.Handle(move(100, 200))

	h.m.SetMode(ModePlaceStart)
	assert.False(t, h.m.Drawing())
	_, ok := h.sc.Pending()
	assert.False(t, ok)

	// The release no longer commits anything.
	h.m.Handle(up(100, 200))
	assert.Zero(t, h.sc.ObstacleCount())
}

func TestMiddleButtonPans(t *testing.T) {
	h := newHarness()
	h.vp.ZoomAt(geom.Pt(0, 0), 2)

	consumed := h.m.Handle(Event{Type: PointerDown, Screen: geom.Pt(50, 50), Button: ButtonMiddle})
	assert.True(t, consumed)
	assert.True(t, h.m.Panning())
	assert.Equal(t, CursorGrabbing, h.m.Cursor())

	h.m.Handle(move(60, 45))
	h.m.Handle(move(70, 40))
	ox, oy := h.vp.Offset()
	assert.Equal(t, 20.0, ox, "pan is not scaled by zoom")
	assert.Equal(t, -10.0, oy)

	h.m.Handle(Event{Type: PointerUp, Screen: geom.Pt(70, 40), Button: ButtonMiddle})
	assert.False(t, h.m.Panning())
	assert.Equal(t, CursorDefault, h.m.Cursor())

	_, ok := h.sc.Start()
	assert.False(t, ok, "panning must not place the start point")
}

func TestOtherButtonReleaseKeepsDrawing(t *testing.T) {
	h := newHarness()
	h.m.SetMode(ModeDrawObstacle)

	h.m.Handle(down(100, 100))
	h.m.Handle(move(120, 100))
	h.m.Handle(Event{Type: PointerDown, Screen: geom.Pt(120, 100), Button: ButtonSecondary})
	h.m.Handle(Event{Type: PointerUp, Screen: geom.Pt(120, 100), Button: ButtonSecondary})
	assert.True(t, h.m.Drawing())
	assert.Zero(t, h.sc.ObstacleCount())

	// A middle press mid-draw does not start a pan either.
	h.m.Handle(Event{Type: PointerDown, Screen: geom.Pt(120, 100), Button: ButtonMiddle})
	assert.False(t, h.m.Panning())
	h.m.Handle(Event{Type: PointerUp, Screen: geom.Pt(120, 100), Button: ButtonMiddle})
	assert.True(t, h.m.Drawing())

	h.m.Handle(move(160, 100))
	h.m.Handle(up(160, 100))
	assert.False(t, h.m.Drawing())
	obs := h.sc.Obstacles()
	require.Len(t, obs, 1)
	assert.InDelta(t, 60, obs[0].Radius, 1e-9)
}

func TestOtherButtonReleaseKeepsPanning(t *testing.T) {
	h := newHarness()

	h.m.Handle(Event{Type: PointerDown, Screen: geom.Pt(50, 50), Button: ButtonMiddle})
	h.m.Handle(Event{Type: PointerDown, Screen: geom.Pt(50, 50), Button: ButtonPrimary})
	h.m.Handle(Event{Type: PointerUp, Screen: geom.Pt(50, 50), Button: ButtonPrimary})
	assert.True(t, h.m.Panning())
	assert.Equal(t, CursorGrabbing, h.m.Cursor())

	h.m.Handle(move(80, 50))
	ox, _ := h.vp.Offset()
	assert.Equal(t, 30.0, ox)

	h.m.Handle(Event{Type: PointerUp, Screen: geom.Pt(80, 50), Button: ButtonMiddle})
	assert.False(t, h.m.Panning())
	_, ok := h.sc.Start()
	assert.False(t, ok, "the primary press during the pan must not place the start point")
}

func TestModifierPanSuppressesAuthoring(t *testing.T) {
	h := newHarness()
	h.m.SetMode(ModeDrawObstacle)

	ev := down(10, 10)
	ev.Mods = ModAlt
	h.m.Handle(ev)
	assert.True(t, h.m.Panning())
	assert.False(t, h.m.Drawing())

	h.m.Handle(move(110, 10))
	h.m.Handle(up(110, 10))
	assert.Zero(t, h.sc.ObstacleCount())
	ox, _ := h.vp.Offset()
	assert.Equal(t, 100.0, ox)
}

func TestWheelZoomsAtPointer(t *testing.T) {
	h := newHarness()
	anchor := geom.Pt(200, 150)
	before := h.vp.ToWorld(anchor)

	assert.True(t, h.m.Handle(Event{Type: Wheel, Screen: anchor, DeltaY: -120}))
	assert.InDelta(t, viewport.ZoomInFactor, h.vp.Scale(), 1e-12)
	assert.True(t, before.ApproxEqual(h.vp.ToWorld(anchor), 1e-9))

	h.m.Handle(Event{Type: Wheel, Screen: anchor, DeltaY: 120})
	assert.InDelta(t, viewport.ZoomInFactor*viewport.ZoomOutFactor, h.vp.Scale(), 1e-12)
	assert.True(t, before.ApproxEqual(h.vp.ToWorld(anchor), 1e-9))
}

func TestZoomButtonsUseCanvasCentre(t *testing.T) {
	h := newHarness()
	centre := geom.Pt(400, 300)
	before := h.vp.ToWorld(centre)

	h.m.ZoomIn()
	h.m.ZoomIn()
	h.m.ZoomOut()
	assert.True(t, before.ApproxEqual(h.vp.ToWorld(centre), 1e-9))

	h.m.ResetZoom()
	assert.Equal(t, viewport.State{Scale: 1}, h.vp.Snapshot())
}

func TestUnhandledEventsAreNotConsumed(t *testing.T) {
	h := newHarness()
	assert.False(t, h.m.Handle(move(1, 1)))
	assert.False(t, h.m.Handle(up(1, 1)))
}

func TestSecondaryButtonIgnored(t *testing.T) {
	h := newHarness()
	h.m.Handle(Event{Type: PointerDown, Screen: geom.Pt(5, 5), Button: ButtonSecondary})
	_, ok := h.sc.Start()
	assert.False(t, ok)
}

func TestResetDropsGesture(t *testing.T) {
	h := newHarness()
	h.m.SetMode(ModeDrawObstacle)
	h.m.Handle(down(0, 0))
	h.m.Reset()
	assert.False(t, h.m.Drawing())
	_, ok := h.sc.Pending()
	assert.False(t, ok)
}
