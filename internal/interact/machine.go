// Package interact turns raw pointer and wheel events into scene and viewport
// mutations.
//
// Dispatch is an explicit table keyed by (event type, authoring mode). Panning
// is an orthogonal transient state checked before the table: while it is active,
// authoring gestures are suppressed. Every pointer position is converted to
// world space before it reaches the scene.
package interact

import (
	"fmt"

	"github.com/banshee-data/pathviz/internal/geom"
	"github.com/banshee-data/pathviz/internal/scene"
	"github.com/banshee-data/pathviz/internal/viewport"
)

type dispatchKey struct {
	event EventType
	mode  Mode
}

type handlerFunc func(m *Machine, ev Event)

// Machine is the interaction state machine for one canvas.
type Machine struct {
	vp    *viewport.Viewport
	scene *scene.Scene
	table map[dispatchKey]handlerFunc

	mode    Mode
	panning bool
	anchor  geom.Point
	drawing bool
	cursor  Cursor

	// held is the button that started the active pan or draw; only its
	// release ends the gesture.
	held Button

	width, height float64

	// PanModifier turns a primary-button press into a pan.
	PanModifier Modifier

	requestRender func()
	status        func(string)
}

// Option configures a Machine.
type Option func(*Machine)

// WithRenderRequest registers the callback fired whenever the path view needs redrawing.
func WithRenderRequest(fn func()) Option {
	return func(m *Machine) { m.requestRender = fn }
}

// WithStatus registers the status-line callback.
func WithStatus(fn func(string)) Option {
	return func(m *Machine) { m.status = fn }
}

// WithPanModifier overrides the modifier that turns a primary press into a pan.
func WithPanModifier(mod Modifier) Option {
	return func(m *Machine) { m.PanModifier = mod }
}

// NewMachine builds a machine in ModePlaceStart operating on vp and sc.
func NewMachine(vp *viewport.Viewport, sc *scene.Scene, opts ...Option) *Machine {
	m := &Machine{
		vp:          vp,
		scene:       sc,
		mode:        ModePlaceStart,
		PanModifier: ModAlt | ModCtrl,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.table = map[dispatchKey]handlerFunc{
		{PointerDown, ModePlaceStart}:   (*Machine).placeStart,
		{PointerDown, ModePlaceGoal}:    (*Machine).placeGoal,
		{PointerDown, ModeDrawObstacle}: (*Machine).beginObstacle,
		{PointerMove, ModeDrawObstacle}: (*Machine).resizeObstacle,
		{PointerUp, ModeDrawObstacle}:   (*Machine).finishObstacle,
	}
	for _, mode := range []Mode{ModePlaceStart, ModePlaceGoal, ModeDrawObstacle} {
		m.table[dispatchKey{Wheel, mode}] = (*Machine).wheelZoom
	}
	return m
}

// Mode returns the active authoring mode.
func (m *Machine) Mode() Mode { return m.mode }

// Panning reports whether a pan gesture is active.
func (m *Machine) Panning() bool { return m.panning }

// Drawing reports whether an obstacle draw is in progress.
func (m *Machine) Drawing() bool { return m.drawing }

// Cursor returns the affordance the front end should display.
func (m *Machine) Cursor() Cursor { return m.cursor }

// SetCanvasSize records the canvas size used by the zoom buttons.
func (m *Machine) SetCanvasSize(width, height float64) {
	m.width, m.height = width, height
}

// SetMode switches the authoring mode. An obstacle draw in progress is
// cancelled without committing.
func (m *Machine) SetMode(mode Mode) {
	if m.drawing {
		m.scene.CancelObstacle()
		m.drawing = false
		m.held = ButtonNone
		m.render()
	}
	m.mode = mode
	m.setStatus(fmt.Sprintf("Mode: %s", mode))
}

// Reset drops any transient gesture state (used when the scene is cleared).
func (m *Machine) Reset() {
	if m.drawing {
		m.scene.CancelObstacle()
	}
	m.drawing = false
	m.panning = false
	m.held = ButtonNone
	m.cursor = CursorDefault
}

// Handle dispatches one event. It returns true when the event was consumed and
// the front end should suppress its default handling (page scroll, context menu).
func (m *Machine) Handle(ev Event) bool {
	if m.panning || m.isPanTrigger(ev) {
		return m.handlePan(ev)
	}
	h, ok := m.table[dispatchKey{ev.Type, m.mode}]
	if !ok {
		return false
	}
	h(m, ev)
	return true
}

// ZoomIn zooms at the canvas centre.
func (m *Machine) ZoomIn() {
	m.vp.ZoomAt(m.center(), viewport.ZoomInFactor)
}

// ZoomOut zooms out at the canvas centre.
func (m *Machine) ZoomOut() {
	m.vp.ZoomAt(m.center(), viewport.ZoomOutFactor)
}

// ResetZoom restores the identity viewport.
func (m *Machine) ResetZoom() {
	m.vp.Reset()
}

func (m *Machine) center() geom.Point {
	return geom.Pt(m.width/2, m.height/2)
}

func (m *Machine) isPanTrigger(ev Event) bool {
	if ev.Type != PointerDown || m.drawing {
		return false
	}
	if ev.Button == ButtonMiddle {
		return true
	}
	return ev.Button == ButtonPrimary && m.PanModifier != 0 && ev.Mods&m.PanModifier != 0
}

func (m *Machine) handlePan(ev Event) bool {
	switch ev.Type {
	case PointerDown:
		if m.panning {
			return true
		}
		m.panning = true
		m.held = ev.Button
		m.anchor = ev.Screen
		m.cursor = CursorGrabbing
	case PointerMove:
		d := ev.Screen.Sub(m.anchor)
		m.anchor = ev.Screen
		m.vp.Pan(d.X, d.Y)
	case PointerUp:
		if ev.Button != m.held {
			return true
		}
		m.panning = false
		m.held = ButtonNone
		m.cursor = CursorDefault
	case Wheel:
		m.wheelZoom(ev)
	}
	return true
}

func (m *Machine) placeStart(ev Event) {
	if ev.Button != ButtonPrimary {
		return
	}
	m.scene.SetStart(m.vp.ToWorld(ev.Screen))
	m.setStatus("Start point set - Now set goal point")
	m.render()
}

func (m *Machine) placeGoal(ev Event) {
	if ev.Button != ButtonPrimary {
		return
	}
	m.scene.SetGoal(m.vp.ToWorld(ev.Screen))
	m.setStatus("Goal point set - Ready to add obstacles or run optimization")
	m.render()
}

func (m *Machine) beginObstacle(ev Event) {
	if ev.Button != ButtonPrimary || m.drawing {
		return
	}
	m.scene.BeginObstacle(m.vp.ToWorld(ev.Screen))
	m.drawing = true
	m.held = ev.Button
	m.render()
}

func (m *Machine) resizeObstacle(ev Event) {
	if !m.drawing {
		return
	}
	m.scene.UpdateObstacleRadius(m.vp.ToWorld(ev.Screen))
	m.render()
}

func (m *Machine) finishObstacle(ev Event) {
	if !m.drawing || ev.Button != m.held {
		return
	}
	m.scene.UpdateObstacleRadius(m.vp.ToWorld(ev.Screen))
	m.drawing = false
	m.held = ButtonNone
	// The threshold is in screen pixels; the scene stores world units.
	if _, ok := m.scene.CommitObstacle(scene.MinObstacleRadiusPx / m.vp.Scale()); ok {
		m.setStatus(fmt.Sprintf("Obstacle added (%d total)", m.scene.ObstacleCount()))
	}
	m.render()
}

func (m *Machine) wheelZoom(ev Event) {
	switch {
	case ev.DeltaY < 0:
		m.vp.ZoomAt(ev.Screen, viewport.ZoomInFactor)
	case ev.DeltaY > 0:
		m.vp.ZoomAt(ev.Screen, viewport.ZoomOutFactor)
	}
}

func (m *Machine) render() {
	if m.requestRender != nil {
		m.requestRender()
	}
}

func (m *Machine) setStatus(msg string) {
	if m.status != nil {
		m.status(msg)
	}
}
