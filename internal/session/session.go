// Package session owns the application state (viewport, scene, interaction
// machine, playback engine) and the run/stop/clear controls around it.
//
// A Session is confined to its Loop. Front ends post input to the loop; the
// optimizer round-trip runs on its own goroutine and posts its result back,
// and playback steps are dispatched onto the loop by the engine's timer.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/pathviz/internal/db"
	"github.com/banshee-data/pathviz/internal/geom"
	"github.com/banshee-data/pathviz/internal/interact"
	"github.com/banshee-data/pathviz/internal/optimizer"
	"github.com/banshee-data/pathviz/internal/playback"
	"github.com/banshee-data/pathviz/internal/render"
	"github.com/banshee-data/pathviz/internal/scene"
	"github.com/banshee-data/pathviz/internal/timeutil"
	"github.com/banshee-data/pathviz/internal/viewport"
)

// Status line messages.
const (
	StatusReady      = "Ready - Click to set start point"
	StatusOptimizing = "Optimizing..."
	StatusComplete   = "Optimization complete!"
	StatusStopped    = "Optimization stopped"
	StatusFailed     = "Optimization failed"
	StatusCleared    = "Cleared - Click to set start point"

	noticeNeedEndpoints = "Please set both start and goal points!"
	noticeRunFailed     = "Error running optimization. Make sure the backend server is running!"
)

// Optimizer is the remote service used for runs.
type Optimizer interface {
	RequestOptimization(ctx context.Context, snap scene.Snapshot, p optimizer.Params) (optimizer.Run, error)
	CalculateCost(ctx context.Context, path geom.Path, obstacles []scene.Obstacle, p optimizer.Params) (optimizer.CostBreakdown, error)
}

// RunStore persists run summaries.
type RunStore interface {
	RecordRun(ctx context.Context, r db.Run) error
	SetCostBreakdown(ctx context.Context, id string, length, smoothness, obstacle float64) error
}

// FrameEvent describes one applied playback frame.
type FrameEvent struct {
	RunID     string    `json:"run_id"`
	Cursor    int       `json:"cursor"`
	Frames    int       `json:"frames"`
	Iteration int       `json:"iteration"`
	Cost      float64   `json:"cost"`
	Path      geom.Path `json:"path"`
}

// FramePublisher receives every applied frame. Publish is called on the loop
// and must not block.
type FramePublisher interface {
	Publish(ev FrameEvent)
}

// Display is the front end. Both methods are called on the loop.
type Display interface {
	// Render redraws from the session's current state.
	Render(s *Session)
	// Notify shows a blocking notice.
	Notify(msg string)
}

// Config wires a Session's collaborators. Only Optimizer is required.
type Config struct {
	Clock          timeutil.Clock
	Optimizer      Optimizer
	Store          RunStore
	Publisher      FramePublisher
	Display        Display
	Params         optimizer.Params
	FrameInterval  time.Duration
	RequestTimeout time.Duration
	CanvasWidth    float64
	CanvasHeight   float64
	// NewID generates run ids; uuid.NewString by default.
	NewID func() string
}

// Session is the application state for one canvas.
type Session struct {
	loop *Loop
	cfg  Config

	vp      *viewport.Viewport
	scene   *scene.Scene
	machine *interact.Machine
	engine  *playback.Engine

	pathView render.PathView
	graph    render.CostGraph

	params   optimizer.Params
	status   string
	readouts Readouts
	dirty    bool

	// runSeq identifies the latest Run call; responses and follow-ups
	// carrying an older value are dropped.
	runSeq   uint64
	inflight context.CancelFunc
	active   *activeRun
	// followup cancels the cost breakdown request of the last completed run.
	followup context.CancelFunc

	bg sync.WaitGroup
}

type activeRun struct {
	id      string
	seq     uint64
	started time.Time
	snap    scene.Snapshot
	params  optimizer.Params
	result  optimizer.Run
}

// New builds a session bound to loop.
func New(loop *Loop, cfg Config) *Session {
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = playback.DefaultInterval
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 2 * time.Minute
	}
	if cfg.Params == (optimizer.Params{}) {
		cfg.Params = optimizer.DefaultParams()
	}

	s := &Session{
		loop:     loop,
		cfg:      cfg,
		vp:       viewport.New(),
		scene:    scene.New(),
		pathView: render.NewPathView(cfg.Params.SafetyMargin),
		graph:    render.NewCostGraph(),
		params:   cfg.Params,
		status:   StatusReady,
	}
	s.readouts.ZoomPercent = s.vp.ZoomPercent()
	s.vp.SetOnChange(func() {
		s.readouts.ZoomPercent = s.vp.ZoomPercent()
		s.markDirty()
	})
	s.machine = interact.NewMachine(s.vp, s.scene,
		interact.WithRenderRequest(s.markDirty),
		interact.WithStatus(s.setStatus),
	)
	s.machine.SetCanvasSize(cfg.CanvasWidth, cfg.CanvasHeight)
	s.engine = playback.NewEngine(cfg.Clock, s,
		playback.WithInterval(cfg.FrameInterval),
		playback.WithDispatch(func(f func()) { loop.Post(f) }),
	)
	loop.OnIdle(s.flush)
	return s
}

// Viewport returns the session's viewport. Loop only.
func (s *Session) Viewport() *viewport.Viewport { return s.vp }

// Scene returns the session's scene. Loop only.
func (s *Session) Scene() *scene.Scene { return s.scene }

// Mode returns the authoring mode.
func (s *Session) Mode() interact.Mode { return s.machine.Mode() }

// Cursor returns the pointer affordance.
func (s *Session) Cursor() interact.Cursor { return s.machine.Cursor() }

// Status returns the status line.
func (s *Session) Status() string { return s.status }

// Readouts returns the numeric readouts.
func (s *Session) Readouts() Readouts { return s.readouts }

// Params returns the params the next run will use.
func (s *Session) Params() optimizer.Params { return s.params }

// PlaybackState returns the engine state.
func (s *Session) PlaybackState() playback.State { return s.engine.State() }

// PlaybackCursor returns the index of the displayed frame.
func (s *Session) PlaybackCursor() int { return s.engine.Cursor() }

// Frames returns the length of the trace being played.
func (s *Session) Frames() int { return s.engine.Len() }

// CostHistory returns the costs of the frames shown so far.
func (s *Session) CostHistory() []float64 { return s.engine.History() }

// Requesting reports whether an optimization request is in flight.
func (s *Session) Requesting() bool { return s.inflight != nil }

// SetCanvasSize records the canvas size used for centre zoom and the
// grid extent.
func (s *Session) SetCanvasSize(width, height float64) {
	s.cfg.CanvasWidth, s.cfg.CanvasHeight = width, height
	s.machine.SetCanvasSize(width, height)
	s.markDirty()
}

// HandleEvent feeds one pointer or wheel event to the interaction machine.
func (s *Session) HandleEvent(ev interact.Event) bool {
	tracef("event %s at %s button=%d mods=%d", ev.Type, ev.Screen, ev.Button, ev.Mods)
	return s.machine.Handle(ev)
}

// SetMode switches the authoring mode.
func (s *Session) SetMode(m interact.Mode) {
	s.machine.SetMode(m)
	s.markDirty()
}

// ZoomIn zooms in at the canvas centre.
func (s *Session) ZoomIn() { s.machine.ZoomIn() }

// ZoomOut zooms out at the canvas centre.
func (s *Session) ZoomOut() { s.machine.ZoomOut() }

// ResetZoom restores 100% zoom with no pan.
func (s *Session) ResetZoom() { s.machine.ResetZoom() }

// Run requests an optimization of the current scene. Playback already in
// progress is stopped first. The request completes asynchronously.
func (s *Session) Run() error {
	snap := s.scene.Snapshot()
	if snap.Start == nil || snap.Goal == nil {
		err := &UserInputError{Reason: noticeNeedEndpoints}
		s.notify(err.Reason)
		return err
	}
	if s.inflight != nil {
		return ErrRunInFlight
	}
	if err := s.params.Validate(); err != nil {
		ue := &UserInputError{Reason: fmt.Sprintf("Invalid parameters: %v", err)}
		s.notify(ue.Reason)
		return ue
	}

	s.cancelFollowup()
	s.engine.Reset()
	s.scene.ClearOverlay()
	s.clearFrameReadouts()

	s.runSeq++
	run := &activeRun{
		id:      s.cfg.NewID(),
		seq:     s.runSeq,
		started: s.cfg.Clock.Now(),
		snap:    snap,
		params:  s.params,
	}
	s.active = run

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RequestTimeout)
	s.inflight = cancel
	s.setStatus(StatusOptimizing)
	diagf("run %s: requesting %d iterations over %d obstacles", run.id, run.params.NIterations, len(snap.Obstacles))

	s.goBackground(func() {
		res, err := s.cfg.Optimizer.RequestOptimization(ctx, snap, run.params)
		s.loop.Post(func() { s.onResponse(run, cancel, res, err) })
	})
	return nil
}

func (s *Session) onResponse(run *activeRun, cancel context.CancelFunc, res optimizer.Run, err error) {
	cancel()
	if run.seq != s.runSeq || s.active != run {
		diagf("run %s: dropping superseded response", run.id)
		return
	}
	s.inflight = nil

	if err != nil {
		s.active = nil
		if errors.Is(err, context.Canceled) {
			return
		}
		opsf("run %s: %v", run.id, err)
		s.setStatus(StatusFailed)
		s.record(run, db.OutcomeFailed, 0, err)
		s.notify(noticeRunFailed)
		return
	}

	run.result = res
	if err := s.engine.Start(res.Trace); err != nil {
		// Unreachable: Run resets the engine and nothing else starts it.
		opsf("run %s: %v", run.id, err)
	}
}

// Stop cancels an in-flight request, a pending cost breakdown and any
// playback.
func (s *Session) Stop() {
	s.cancelFollowup()
	if s.inflight != nil {
		s.inflight()
		s.inflight = nil
		if s.active != nil {
			s.record(s.active, db.OutcomeCancelled, 0, nil)
			s.active = nil
		}
		s.setStatus(StatusStopped)
	}
	s.engine.Stop()
}

// Clear stops everything and empties the scene.
func (s *Session) Clear() {
	s.Stop()
	s.runSeq++
	s.engine.Reset()
	s.machine.Reset()
	s.scene.Clear()
	s.clearFrameReadouts()
	s.setStatus(StatusCleared)
	s.markDirty()
}

// FrameApplied implements playback.Observer.
func (s *Session) FrameApplied(f playback.Frame, cursor int, history []float64) {
	s.scene.SetOverlay(f.Path, f.Iteration, f.Cost)
	s.readouts.Iteration = f.Iteration
	s.readouts.Cost = f.Cost
	s.readouts.HasCost = true
	s.readouts.PathLength = f.Path.Length()
	s.markDirty()

	if s.cfg.Publisher != nil && s.active != nil {
		s.cfg.Publisher.Publish(FrameEvent{
			RunID:     s.active.id,
			Cursor:    cursor,
			Frames:    s.engine.Len(),
			Iteration: f.Iteration,
			Cost:      f.Cost,
			Path:      f.Path,
		})
	}
}

// PlaybackFinished implements playback.Observer.
func (s *Session) PlaybackFinished(o playback.Outcome) {
	run := s.active
	s.active = nil
	switch o {
	case playback.Completed:
		s.setStatus(StatusComplete)
		if run != nil {
			r := s.runRecord(run, db.OutcomeCompleted, len(run.result.Trace), nil)
			ov, ok := s.scene.Overlay()
			s.cancelFollowup()
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RequestTimeout)
			s.followup = cancel
			s.goBackground(func() {
				defer cancel()
				s.saveRun(r)
				if ok {
					s.fetchBreakdown(ctx, run, ov.Path.Clone())
				}
			})
		}
	case playback.Cancelled:
		s.setStatus(StatusStopped)
		if run != nil {
			s.record(run, db.OutcomeCancelled, s.engine.Cursor()+1, nil)
		}
	}
	s.markDirty()
}

// fetchBreakdown asks for the per-term cost of the final path and attaches it
// to the readouts and the stored run. Failures only log. It runs off the loop.
func (s *Session) fetchBreakdown(ctx context.Context, run *activeRun, path geom.Path) {
	bd, err := s.cfg.Optimizer.CalculateCost(ctx, path, run.snap.Obstacles, run.params)
	if errors.Is(err, context.Canceled) {
		diagf("run %s: cost breakdown cancelled", run.id)
		return
	}
	if err != nil {
		opsf("run %s: cost breakdown: %v", run.id, err)
		return
	}
	s.loop.Post(func() {
		if run.seq != s.runSeq || s.engine.Running() || s.inflight != nil {
			return
		}
		s.readouts.Breakdown = &bd
		s.markDirty()
	})
	if s.cfg.Store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.cfg.Store.SetCostBreakdown(ctx, run.id, bd.Length, bd.Smoothness, bd.Obstacle); err != nil {
			opsf("run %s: store cost breakdown: %v", run.id, err)
		}
	}
}

func (s *Session) cancelFollowup() {
	if s.followup != nil {
		s.followup()
		s.followup = nil
	}
}

// record stores a run summary without blocking the loop.
func (s *Session) record(run *activeRun, outcome string, frames int, runErr error) {
	r := s.runRecord(run, outcome, frames, runErr)
	s.goBackground(func() { s.saveRun(r) })
}

func (s *Session) runRecord(run *activeRun, outcome string, frames int, runErr error) db.Run {
	r := db.Run{
		ID:          run.id,
		StartedAt:   run.started.UTC(),
		FinishedAt:  s.cfg.Clock.Now().UTC(),
		Outcome:     outcome,
		Frames:      frames,
		Obstacles:   len(run.snap.Obstacles),
		NPoints:     run.params.NPoints,
		NIterations: run.params.NIterations,
	}
	if len(run.result.Trace) > 0 {
		initial, final := run.result.InitialCost, run.result.FinalCost
		r.InitialCost = &initial
		r.FinalCost = &final
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	diagf("run %s: %s after %d frames in %s", run.id, outcome, frames, r.Duration())
	return r
}

func (s *Session) saveRun(r db.Run) {
	if s.cfg.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.cfg.Store.RecordRun(ctx, r); err != nil {
		opsf("run %s: record: %v", r.ID, err)
	}
}

// Wait blocks until background requests and writes have finished. Do not
// call it from the loop while a request is in flight.
func (s *Session) Wait() { s.bg.Wait() }

func (s *Session) goBackground(fn func()) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		fn()
	}()
}

// DrawPathView renders the scene through the viewport onto surf. The safety
// ring follows the current params, not those of the last run.
func (s *Session) DrawPathView(surf render.Surface) {
	v := s.pathView
	v.SafetyMargin = s.params.SafetyMargin
	v.Draw(surf, s.scene, s.vp)
}

// DrawCostGraph renders the cost history onto surf.
func (s *Session) DrawCostGraph(surf render.Surface) {
	s.graph.Draw(surf, s.engine.History(), s.engine.Cursor())
}

// Snapshot is a read-only summary for debug endpoints.
type Snapshot struct {
	Mode        string           `json:"mode"`
	Playback    string           `json:"playback"`
	Requesting  bool             `json:"requesting"`
	Cursor      int              `json:"cursor"`
	Frames      int              `json:"frames"`
	Status      string           `json:"status"`
	RunID       string           `json:"run_id,omitempty"`
	Readouts    Readouts         `json:"readouts"`
	Viewport    viewport.State   `json:"viewport"`
	Scene       scene.Snapshot   `json:"scene"`
	Params      optimizer.Params `json:"params"`
	CostHistory []float64        `json:"cost_history"`
}

// Snapshot copies the state for reporting.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Mode:        s.machine.Mode().String(),
		Playback:    s.engine.State().String(),
		Requesting:  s.inflight != nil,
		Cursor:      s.engine.Cursor(),
		Frames:      s.engine.Len(),
		Status:      s.status,
		Readouts:    s.readouts,
		Viewport:    s.vp.Snapshot(),
		Scene:       s.scene.Snapshot(),
		Params:      s.params,
		CostHistory: s.engine.History(),
	}
	if s.active != nil {
		snap.RunID = s.active.id
	}
	return snap
}

func (s *Session) clearFrameReadouts() {
	zoom := s.readouts.ZoomPercent
	s.readouts = Readouts{ZoomPercent: zoom}
}

func (s *Session) setStatus(msg string) {
	s.status = msg
	s.markDirty()
}

func (s *Session) notify(msg string) {
	if s.cfg.Display != nil {
		s.cfg.Display.Notify(msg)
	}
}

func (s *Session) markDirty() { s.dirty = true }

// flush renders once per drained batch of loop tasks.
func (s *Session) flush() {
	if !s.dirty {
		return
	}
	s.dirty = false
	if s.cfg.Display != nil {
		s.cfg.Display.Render(s)
	}
}
