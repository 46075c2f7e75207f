// Package playback steps through an optimizer trace on a fixed cadence.
//
// The engine is not safe for concurrent use. All methods, and every step
// callback, must run on the same goroutine; the dispatch function passed to
// NewEngine is how timer fires get back onto it.
package playback

import (
	"errors"
	"time"

	"github.com/banshee-data/pathviz/internal/geom"
	"github.com/banshee-data/pathviz/internal/timeutil"
)

// DefaultInterval is the nominal delay between frames.
const DefaultInterval = 10 * time.Millisecond

// ErrAlreadyRunning is returned by Start while a trace is playing.
var ErrAlreadyRunning = errors.New("playback already running")

// Frame is one optimizer iteration snapshot.
type Frame struct {
	Iteration int       `json:"iteration"`
	Path      geom.Path `json:"path"`
	Cost      float64   `json:"cost"`
}

// Trace is the ordered frame sequence returned by one optimization run.
type Trace []Frame

// Costs returns the cost of every frame in order.
func (t Trace) Costs() []float64 {
	out := make([]float64, len(t))
	for i, f := range t {
		out[i] = f.Cost
	}
	return out
}

// State is the playback state.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Outcome describes how a playback ended.
type Outcome int

const (
	// Completed means every frame of the trace was applied.
	Completed Outcome = iota
	// Cancelled means Stop ended the playback early.
	Cancelled
)

func (o Outcome) String() string {
	if o == Completed {
		return "completed"
	}
	return "cancelled"
}

// Observer receives frames as they are applied.
type Observer interface {
	// FrameApplied is called after the cursor advances. history holds the
	// costs of frames [0..cursor] and must not be retained past the call.
	FrameApplied(frame Frame, cursor int, history []float64)
	// PlaybackFinished is called once per Start, when the trace is exhausted
	// or Stop is called.
	PlaybackFinished(outcome Outcome)
}

// Option configures an Engine.
type Option func(*Engine)

// WithDispatch sets the function that runs a timer fire on the owning
// goroutine. The default calls the step directly, which is only correct when
// the clock fires on that goroutine (as MockClock does).
func WithDispatch(fn func(func())) Option {
	return func(e *Engine) { e.dispatch = fn }
}

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// Engine owns the trace, the cursor and the single pending step timer.
type Engine struct {
	clock    timeutil.Clock
	dispatch func(func())
	interval time.Duration
	observer Observer

	trace   Trace
	cursor  int
	state   State
	timer   timeutil.Timer
	gen     uint64
	history []float64
}

// NewEngine returns an idle engine.
func NewEngine(clock timeutil.Clock, observer Observer, opts ...Option) *Engine {
	e := &Engine{
		clock:    clock,
		dispatch: func(f func()) { f() },
		interval: DefaultInterval,
		observer: observer,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current playback state.
func (e *Engine) State() State { return e.state }

// Running reports whether a trace is playing.
func (e *Engine) Running() bool { return e.state == Running }

// Cursor returns the index of the most recently applied frame.
func (e *Engine) Cursor() int { return e.cursor }

// Len returns the length of the loaded trace.
func (e *Engine) Len() int { return len(e.trace) }

// Interval returns the step cadence.
func (e *Engine) Interval() time.Duration { return e.interval }

// SetInterval changes the cadence for steps scheduled from now on.
func (e *Engine) SetInterval(d time.Duration) {
	if d > 0 {
		e.interval = d
	}
}

// History returns a copy of the costs of frames [0..cursor].
func (e *Engine) History() []float64 {
	return append([]float64(nil), e.history...)
}

// Current returns the frame under the cursor.
func (e *Engine) Current() (Frame, bool) {
	if e.cursor < 0 || e.cursor >= len(e.trace) || len(e.history) == 0 {
		return Frame{}, false
	}
	return e.trace[e.cursor], true
}

// Start begins playing trace from frame 0. The first frame is applied before
// Start returns and later frames follow at the configured interval.
func (e *Engine) Start(trace Trace) error {
	if e.state == Running {
		opsf("start rejected: %d-frame trace still playing at cursor %d", len(e.trace), e.cursor)
		return ErrAlreadyRunning
	}
	e.gen++
	e.trace = trace
	e.cursor = -1
	e.history = make([]float64, 0, len(trace))
	e.state = Running
	diagf("start: %d frames, interval %s", len(trace), e.interval)
	e.step(e.gen)
	return nil
}

// Stop cancels the pending step and returns to Idle. It is a no-op when
// already idle. No frame is applied after Stop returns, including a step
// whose timer already fired but has not yet been dispatched.
func (e *Engine) Stop() {
	if e.state != Running {
		return
	}
	e.cancelTimer()
	e.state = Idle
	diagf("stop: cancelled at cursor %d of %d", e.cursor, len(e.trace))
	e.finish(Cancelled)
}

// Reset stops playback and drops the trace, cursor and history.
func (e *Engine) Reset() {
	e.Stop()
	e.trace = nil
	e.cursor = 0
	e.history = nil
}

func (e *Engine) step(gen uint64) {
	if gen != e.gen || e.state != Running {
		tracef("discarding stale step (gen %d, current %d)", gen, e.gen)
		return
	}
	e.timer = nil

	if e.cursor+1 >= len(e.trace) {
		e.state = Idle
		// Bumping gen makes any step scheduled for this run inert.
		e.gen++
		diagf("complete: %d frames", len(e.trace))
		e.finish(Completed)
		return
	}

	e.cursor++
	f := e.trace[e.cursor]
	e.history = append(e.history, f.Cost)
	tracef("frame %d/%d iteration=%d cost=%.4f", e.cursor+1, len(e.trace), f.Iteration, f.Cost)
	if e.observer != nil {
		e.observer.FrameApplied(f, e.cursor, e.history)
	}

	// The observer may have stopped playback.
	if gen != e.gen || e.state != Running {
		return
	}
	e.timer = e.clock.AfterFunc(e.interval, func() {
		e.dispatch(func() { e.step(gen) })
	})
}

func (e *Engine) cancelTimer() {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) finish(o Outcome) {
	if e.observer != nil {
		e.observer.PlaybackFinished(o)
	}
}
