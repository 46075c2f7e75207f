// Package tui is a terminal front end for a session: a braille canvas driven
// by the mouse, a cost graph, readouts and key bindings.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/banshee-data/pathviz/internal/geom"
	"github.com/banshee-data/pathviz/internal/interact"
	"github.com/banshee-data/pathviz/internal/render"
	"github.com/banshee-data/pathviz/internal/session"
)

// Dots per pixel. The canvas unit makes one cell four pixels wide and eight
// tall; the graph is coarser so its padding fits a short panel.
const (
	DefaultCanvasUnit = 0.5
	DefaultGraphUnit  = 0.25
)

var (
	statusStyle = tcell.StyleDefault.Reverse(true)
	panelStyle  = tcell.StyleDefault
	labelStyle  = tcell.StyleDefault.Dim(true)
	selStyle    = tcell.StyleDefault.Bold(true)
	noticeStyle = tcell.StyleDefault.Background(tcell.ColorDarkRed).Foreground(tcell.ColorWhite)
	helpStyle   = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
)

// App renders a session to a tcell screen and feeds it input. Everything
// except Run executes on the session loop.
type App struct {
	screen tcell.Screen
	loop   *session.Loop
	sess   *session.Session
	quit   func()

	canvasUnit float64
	graphUnit  float64

	lay      layout
	mouse    mouseTranslator
	notice   string
	flash    string
	showHelp bool
	selected int
}

// New returns an app drawing to screen. quit is called when the user asks to
// exit.
func New(screen tcell.Screen, loop *session.Loop, quit func()) *App {
	w, h := screen.Size()
	return &App{
		screen:     screen,
		loop:       loop,
		quit:       quit,
		canvasUnit: DefaultCanvasUnit,
		graphUnit:  DefaultGraphUnit,
		lay:        computeLayout(w, h),
	}
}

// Attach binds the session the app drives. It must be called before Run.
func (a *App) Attach(s *session.Session) {
	a.sess = s
}

var _ session.Display = (*App)(nil)

// Run forwards screen events to the loop until ctx is cancelled or the
// screen is finalized.
func (a *App) Run(ctx context.Context) error {
	a.loop.Post(a.resize)
	go func() {
		<-ctx.Done()
		_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.loop.Post(func() { a.handle(ev) })
	}
}

// CanvasSize returns the canvas size in pixels.
func (a *App) CanvasSize() (float64, float64) {
	return float64(a.lay.canvas.w*dotsPerCellX) / a.canvasUnit,
		float64(a.lay.canvas.h*dotsPerCellY) / a.canvasUnit
}

// Notify implements session.Display. The notice blocks input until a key or
// click dismisses it.
func (a *App) Notify(msg string) {
	a.notice = msg
	a.redraw()
}

func (a *App) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		a.resize()
	case *tcell.EventKey:
		a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	}
}

func (a *App) resize() {
	w, h := a.screen.Size()
	a.lay = computeLayout(w, h)
	a.sess.SetCanvasSize(a.CanvasSize())
}

// toPixel maps a screen cell to the pixel at the centre of its dot matrix.
func (a *App) toPixel(x, y int) geom.Point {
	c := a.lay.canvas
	dx := float64((x-c.x)*dotsPerCellX) + dotsPerCellX/2
	dy := float64((y-c.y)*dotsPerCellY) + dotsPerCellY/2
	return geom.Pt(dx/a.canvasUnit, dy/a.canvasUnit)
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	inside := a.lay.canvas.contains(x, y)
	events := a.mouse.translate(ev, a.toPixel(x, y), inside)
	if a.notice != "" {
		// Releases still end a gesture begun before the notice appeared.
		for _, ie := range events {
			if ie.Type == interact.PointerUp {
				a.sess.HandleEvent(ie)
			}
		}
		if ev.Buttons()&tcell.Button1 != 0 {
			a.notice = ""
			a.redraw()
		}
		return
	}
	for _, ie := range events {
		a.sess.HandleEvent(ie)
	}
}

func (a *App) handleKey(ev *tcell.EventKey) {
	if a.notice != "" {
		a.notice = ""
		a.redraw()
		return
	}
	if a.showHelp {
		a.showHelp = false
		a.redraw()
		return
	}
	a.flash = ""

	switch ev.Key() {
	case tcell.KeyCtrlC:
		a.quit()
		return
	case tcell.KeyEnter:
		a.run()
	case tcell.KeyEsc:
		a.sess.Stop()
	case tcell.KeyUp:
		a.selected = (a.selected + len(session.Tunables) - 1) % len(session.Tunables)
	case tcell.KeyDown, tcell.KeyTab:
		a.selected = (a.selected + 1) % len(session.Tunables)
	case tcell.KeyLeft:
		a.adjust(-1)
	case tcell.KeyRight:
		a.adjust(1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			a.quit()
			return
		case 's':
			a.sess.SetMode(interact.ModePlaceStart)
		case 'g':
			a.sess.SetMode(interact.ModePlaceGoal)
		case 'o':
			a.sess.SetMode(interact.ModeDrawObstacle)
		case 'r':
			a.run()
		case 'x':
			a.sess.Stop()
		case 'c':
			a.sess.Clear()
		case '+', '=':
			a.sess.ZoomIn()
		case '-':
			a.sess.ZoomOut()
		case '0':
			a.sess.ResetZoom()
		case '?':
			a.showHelp = true
		}
	}
	a.redraw()
}

func (a *App) run() {
	err := a.sess.Run()
	var ue *session.UserInputError
	switch {
	case err == nil, errors.As(err, &ue):
		// User input errors are already on screen as a notice.
	case errors.Is(err, session.ErrRunInFlight):
		a.flash = "An optimization request is already running"
	default:
		a.flash = err.Error()
	}
}

func (a *App) adjust(steps int) {
	if err := a.sess.AdjustTunable(a.selected, steps); err != nil {
		a.flash = err.Error()
	}
}

func (a *App) redraw() {
	if a.sess != nil {
		a.Render(a.sess)
	}
}

// Render implements session.Display.
func (a *App) Render(s *session.Session) {
	a.screen.Clear()
	l := a.lay

	status := " pathviz | " + s.Status()
	if s.Cursor() == interact.CursorGrabbing {
		status += " [panning]"
	}
	a.fillRow(l.status, statusStyle, status)

	if !l.canvas.empty() {
		surf := NewBrailleSurface(l.canvas.w, l.canvas.h, a.canvasUnit)
		s.DrawPathView(surf)
		surf.Blit(a.screen, l.canvas.x, l.canvas.y)
	}
	if !l.graph.empty() {
		g := NewBrailleSurface(l.graph.w, l.graph.h, a.graphUnit)
		g.Clear(render.GraphBG)
		s.DrawCostGraph(g)
		g.Blit(a.screen, l.graph.x, l.graph.y)
	}
	if !l.panel.empty() {
		a.drawPanel(s)
	}

	help := "s/g/o mode  r run  x stop  c clear  +/- zoom  0 reset  arrows params  ? help  q quit"
	if a.flash != "" {
		help = a.flash
	}
	a.fillRow(l.help, labelStyle, " "+help)

	if a.showHelp {
		a.drawHelp()
	}
	if a.notice != "" {
		a.drawBox(noticeStyle, []string{a.notice, "", "press any key"})
	}
	a.screen.Show()
}

func (a *App) drawPanel(s *session.Session) {
	p := a.lay.panel
	r := s.Readouts()
	length := "N/A"
	if r.HasCost {
		length = fmt.Sprintf("%.1f", r.PathLength)
	}
	lt, st, ot := r.BreakdownText()
	frames := ""
	if n := s.Frames(); n > 0 {
		frames = fmt.Sprintf(" %d/%d", s.PlaybackCursor()+1, n)
	}
	if s.Requesting() {
		frames = " (requesting)"
	}

	rows := [][2]string{
		{"Mode", s.Mode().String()},
		{"Zoom", r.ZoomText()},
		{"Playback", s.PlaybackState().String() + frames},
		{"Iteration", fmt.Sprintf("%d", r.Iteration)},
		{"Cost", r.CostText()},
		{"Path length", length},
		{"Length cost", lt},
		{"Smooth cost", st},
		{"Obstacle cost", ot},
		{"Obstacles", fmt.Sprintf("%d", s.Scene().ObstacleCount())},
	}
	y := p.y
	for _, row := range rows {
		a.text(p.x+1, y, p.w-1, labelStyle, row[0])
		a.text(p.x+15, y, p.w-15, panelStyle, row[1])
		y++
	}
	y++
	a.text(p.x+1, y, p.w-1, labelStyle, "Parameters")
	y++
	for i, t := range session.Tunables {
		style, mark := panelStyle, "  "
		if i == a.selected {
			style, mark = selStyle, "> "
		}
		a.text(p.x+1, y, p.w-1, style, mark+t.Name)
		a.text(p.x+21, y, p.w-21, style, t.Format(s.TunableValue(i)))
		y++
	}
}

type helpCommand struct {
	key, desc string
}

var helpCommands = []helpCommand{
	{"s / g / o", "Place start, place goal, draw obstacles"},
	{"left click", "Place point, or drag to size an obstacle"},
	{"middle / alt-drag", "Pan"},
	{"wheel, + / -", "Zoom at pointer / at centre"},
	{"0", "Reset zoom"},
	{"r, Enter", "Run optimization"},
	{"x, Esc", "Stop request or playback"},
	{"c", "Clear scene"},
	{"up / down", "Select parameter"},
	{"left / right", "Adjust parameter"},
	{"q, Ctrl+C", "Quit"},
}

func (a *App) drawHelp() {
	lines := make([]string, 0, len(helpCommands)+2)
	lines = append(lines, "Keys", "")
	for _, c := range helpCommands {
		lines = append(lines, fmt.Sprintf("%-18s %s", c.key, c.desc))
	}
	a.drawBox(helpStyle, lines)
}

// drawBox draws lines in a bordered box centred on the screen.
func (a *App) drawBox(style tcell.Style, lines []string) {
	inner := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > inner {
			inner = n
		}
	}
	w := inner + 4
	if w > a.lay.width {
		w = a.lay.width
	}
	h := len(lines) + 2
	x0 := (a.lay.width - w) / 2
	y0 := (a.lay.height - h) / 2

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ch := ' '
			switch {
			case (y == 0 || y == h-1) && (x == 0 || x == w-1):
				ch = '+'
			case y == 0 || y == h-1:
				ch = '-'
			case x == 0 || x == w-1:
				ch = '|'
			}
			a.screen.SetContent(x0+x, y0+y, ch, nil, style)
		}
	}
	for i, l := range lines {
		a.text(x0+2, y0+1+i, w-4, style, l)
	}
}

func (a *App) fillRow(y int, style tcell.Style, s string) {
	if y < 0 {
		return
	}
	for x := 0; x < a.lay.width; x++ {
		a.screen.SetContent(x, y, ' ', nil, style)
	}
	a.text(0, y, a.lay.width, style, s)
}

// text writes s at (x, y), truncated to max cells.
func (a *App) text(x, y, max int, style tcell.Style, s string) {
	if max <= 0 {
		return
	}
	s = strings.TrimRight(s, "\n")
	i := 0
	for _, r := range s {
		if i >= max {
			return
		}
		a.screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}
