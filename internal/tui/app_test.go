package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pathviz/internal/geom"
	"github.com/banshee-data/pathviz/internal/interact"
	"github.com/banshee-data/pathviz/internal/optimizer"
	"github.com/banshee-data/pathviz/internal/scene"
	"github.com/banshee-data/pathviz/internal/session"
	"github.com/banshee-data/pathviz/internal/timeutil"
)

type nopOptimizer struct{}

func (nopOptimizer) RequestOptimization(ctx context.Context, snap scene.Snapshot, p optimizer.Params) (optimizer.Run, error) {
	return optimizer.Run{}, errors.New("offline")
}

func (nopOptimizer) CalculateCost(ctx context.Context, path geom.Path, obstacles []scene.Obstacle, p optimizer.Params) (optimizer.CostBreakdown, error) {
	return optimizer.CostBreakdown{}, errors.New("offline")
}

type testApp struct {
	*App
	screen tcell.SimulationScreen
	quits  int
}

// newTestApp drives the app directly on the test goroutine; no loop runs, so
// nothing else touches the session.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(120, 40)
	t.Cleanup(screen.Fini)

	ta := &testApp{screen: screen}
	loop := session.NewLoop()
	ta.App = New(screen, loop, func() { ta.quits++ })
	sess := session.New(loop, session.Config{
		Clock:     timeutil.NewMockClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
		Optimizer: nopOptimizer{},
		Display:   ta.App,
	})
	ta.Attach(sess)
	ta.resize()
	return ta
}

// mouse and key handle one event and then render, standing in for the
// loop's idle flush.
func (ta *testApp) mouse(x, y int, btn tcell.ButtonMask, mods tcell.ModMask) {
	ta.handle(tcell.NewEventMouse(x, y, btn, mods))
	ta.Render(ta.sess)
}

func (ta *testApp) key(r rune) {
	ta.handle(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	ta.Render(ta.sess)
}

func (ta *testApp) row(y int) string {
	var sb strings.Builder
	w, _ := ta.screen.Size()
	for x := 0; x < w; x++ {
		r, _, _, _ := ta.screen.GetContent(x, y)
		sb.WriteRune(r)
	}
	return sb.String()
}

func (ta *testApp) screenText() string {
	_, h := ta.screen.Size()
	rows := make([]string, h)
	for y := range rows {
		rows[y] = ta.row(y)
	}
	return strings.Join(rows, "\n")
}

func TestLayoutSplitsScreen(t *testing.T) {
	l := computeLayout(120, 40)
	assert.Equal(t, rect{x: 0, y: 1, w: 88, h: 30}, l.canvas)
	assert.Equal(t, rect{x: 0, y: 31, w: 88, h: 8}, l.graph)
	assert.Equal(t, rect{x: 88, y: 1, w: 32, h: 38}, l.panel)
	assert.Equal(t, 39, l.help)

	small := computeLayout(40, 10)
	assert.True(t, small.panel.empty())
	assert.True(t, small.graph.empty())
	assert.Equal(t, rect{x: 0, y: 1, w: 40, h: 8}, small.canvas)
}

func TestCanvasSizeFollowsLayout(t *testing.T) {
	ta := newTestApp(t)
	w, h := ta.CanvasSize()
	assert.Equal(t, 88*2/0.5, w)
	assert.Equal(t, 30*4/0.5, h)
}

func TestClickPlacesStartInPixels(t *testing.T) {
	ta := newTestApp(t)
	ta.mouse(10, 5, tcell.Button1, tcell.ModNone)
	ta.mouse(10, 5, tcell.ButtonNone, tcell.ModNone)

	start, ok := ta.sess.Scene().Start()
	require.True(t, ok)
	// Cell (10, 4) in canvas space, centre dot (21, 18), at 0.5 dots per pixel.
	assert.Equal(t, geom.Pt(42, 36), start)
	assert.Contains(t, ta.row(0), "Start point set")
}

func TestDragDrawsObstacle(t *testing.T) {
	ta := newTestApp(t)
	ta.key('o')
	assert.Equal(t, interact.ModeDrawObstacle, ta.sess.Mode())

	ta.mouse(20, 10, tcell.Button1, tcell.ModNone)
	ta.mouse(30, 10, tcell.Button1, tcell.ModNone)
	ta.mouse(30, 10, tcell.ButtonNone, tcell.ModNone)
	require.Equal(t, 1, ta.sess.Scene().ObstacleCount())
	o := ta.sess.Scene().Obstacles()[0]
	assert.InDelta(t, 40, o.Radius, 1e-9)
}

func TestPressOutsideCanvasIgnored(t *testing.T) {
	ta := newTestApp(t)
	ta.mouse(100, 5, tcell.Button1, tcell.ModNone)
	ta.mouse(100, 5, tcell.ButtonNone, tcell.ModNone)
	_, ok := ta.sess.Scene().Start()
	assert.False(t, ok)
}

func TestWheelAndKeysZoom(t *testing.T) {
	ta := newTestApp(t)
	ta.mouse(10, 10, tcell.WheelUp, tcell.ModNone)
	assert.Equal(t, 110, ta.sess.Readouts().ZoomPercent)
	ta.key('-')
	assert.Equal(t, 99, ta.sess.Readouts().ZoomPercent)
	ta.key('0')
	assert.Equal(t, 100, ta.sess.Readouts().ZoomPercent)
}

func TestMiddleDragPans(t *testing.T) {
	ta := newTestApp(t)
	ta.mouse(10, 10, tcell.Button3, tcell.ModNone)
	ta.mouse(12, 10, tcell.Button3, tcell.ModNone)
	ox, oy := ta.sess.Viewport().Offset()
	// Two cells are four dots, eight pixels.
	assert.Equal(t, 8.0, ox)
	assert.Equal(t, 0.0, oy)
	ta.mouse(12, 10, tcell.ButtonNone, tcell.ModNone)
	assert.Equal(t, interact.CursorDefault, ta.sess.Cursor())
}

func TestRunWithoutGoalShowsNotice(t *testing.T) {
	ta := newTestApp(t)
	ta.key('r')
	assert.Contains(t, ta.screenText(), "Please set both start and goal points!")

	// The notice swallows the next key.
	ta.key('o')
	assert.Equal(t, interact.ModePlaceStart, ta.sess.Mode())
	assert.NotContains(t, ta.screenText(), "Please set both")
}

func TestReleaseUnderNoticeFinishesDraw(t *testing.T) {
	ta := newTestApp(t)
	ta.key('o')
	ta.mouse(20, 10, tcell.Button1, tcell.ModNone)
	ta.mouse(30, 10, tcell.Button1, tcell.ModNone)

	ta.Notify("Optimization failed")
	ta.mouse(30, 10, tcell.ButtonNone, tcell.ModNone)
	require.Equal(t, 1, ta.sess.Scene().ObstacleCount())
	_, pending := ta.sess.Scene().Pending()
	assert.False(t, pending)
	assert.Contains(t, ta.screenText(), "Optimization failed", "a release does not dismiss the notice")

	// The dismissing click starts nothing.
	ta.mouse(40, 10, tcell.Button1, tcell.ModNone)
	assert.NotContains(t, ta.screenText(), "Optimization failed")
	ta.mouse(45, 10, tcell.Button1, tcell.ModNone)
	ta.mouse(45, 10, tcell.ButtonNone, tcell.ModNone)
	assert.Equal(t, 1, ta.sess.Scene().ObstacleCount())
}

func TestTunableKeys(t *testing.T) {
	ta := newTestApp(t)
	ta.handle(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	assert.Equal(t, 21, ta.sess.Params().NPoints)

	ta.handle(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	assert.Equal(t, len(session.Tunables)-1, ta.selected)
	for i := 0; i < 3; i++ {
		ta.handle(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	}
	assert.InDelta(t, 0.95, ta.sess.Params().Momentum, 1e-9)
	assert.Contains(t, ta.row(39), "momentum")
	assert.Contains(t, ta.screenText(), "> Momentum")
}

func TestRenderShowsPanelAndGrid(t *testing.T) {
	ta := newTestApp(t)
	ta.Render(ta.sess)
	text := ta.screenText()
	assert.Contains(t, text, "pathviz | Ready - Click to set start point")
	assert.Contains(t, text, "Zoom")
	assert.Contains(t, text, "100%")
	assert.Contains(t, text, "Cost")
	assert.Contains(t, text, "N/A")

	braille := 0
	for _, r := range text {
		if r > brailleBase && r <= brailleBase+0xff {
			braille++
		}
	}
	assert.Greater(t, braille, 0, "grid lines drawn as braille")
}

func TestQuitKeys(t *testing.T) {
	ta := newTestApp(t)
	ta.key('q')
	ta.handle(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl))
	assert.Equal(t, 2, ta.quits)
}

func TestMouseTranslatorEdges(t *testing.T) {
	var mt mouseTranslator
	p := geom.Pt(5, 5)
	evs := mt.translate(tcell.NewEventMouse(0, 0, tcell.Button1, tcell.ModAlt), p, true)
	require.Len(t, evs, 1)
	assert.Equal(t, interact.PointerDown, evs[0].Type)
	assert.Equal(t, interact.ModAlt, evs[0].Mods)

	evs = mt.translate(tcell.NewEventMouse(0, 0, tcell.Button1, tcell.ModNone), geom.Pt(6, 5), false)
	require.Len(t, evs, 1)
	assert.Equal(t, interact.PointerMove, evs[0].Type, "drag continues outside the canvas")

	evs = mt.translate(tcell.NewEventMouse(0, 0, tcell.ButtonNone, tcell.ModNone), geom.Pt(6, 5), false)
	require.Len(t, evs, 1)
	assert.Equal(t, interact.PointerUp, evs[0].Type)
	assert.Equal(t, interact.ButtonPrimary, evs[0].Button)
}
