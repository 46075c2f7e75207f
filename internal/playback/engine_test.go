package playback

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pathviz/internal/geom"
	"github.com/banshee-data/pathviz/internal/timeutil"
)

type recorder struct {
	iterations []int
	cursors    []int
	histories  [][]float64
	outcomes   []Outcome
	onFrame    func(cursor int)
}

func (r *recorder) FrameApplied(f Frame, cursor int, history []float64) {
	r.iterations = append(r.iterations, f.Iteration)
	r.cursors = append(r.cursors, cursor)
	r.histories = append(r.histories, append([]float64(nil), history...))
	if r.onFrame != nil {
		r.onFrame(cursor)
	}
}

func (r *recorder) PlaybackFinished(o Outcome) {
	r.outcomes = append(r.outcomes, o)
}

func makeTrace(costs ...float64) Trace {
	tr := make(Trace, len(costs))
	for i, c := range costs {
		tr[i] = Frame{
			Iteration: i * 10,
			Path:      geom.Path{geom.Pt(0, 0), geom.Pt(float64(i), 1), geom.Pt(10, 10)},
			Cost:      c,
		}
	}
	return tr
}

func newTestEngine() (*Engine, *timeutil.MockClock, *recorder) {
	clock := timeutil.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	rec := &recorder{}
	return NewEngine(clock, rec), clock, rec
}

func TestStartAppliesFramesInOrder(t *testing.T) {
	e, clock, rec := newTestEngine()
	tr := makeTrace(10, 8, 8, 5)

	require.NoError(t, e.Start(tr))
	assert.Equal(t, Running, e.State())
	assert.Equal(t, []int{0}, rec.cursors, "first frame applies immediately")

	for i := 0; i < 10; i++ {
		clock.Advance(DefaultInterval)
	}

	if diff := cmp.Diff([]int{0, 10, 20, 30}, rec.iterations); diff != "" {
		t.Errorf("iterations mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3}, rec.cursors); diff != "" {
		t.Errorf("cursors mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, Idle, e.State())
	assert.Equal(t, []Outcome{Completed}, rec.outcomes)
	assert.Zero(t, clock.Pending())
}

func TestDoubleStartLeavesOneSchedule(t *testing.T) {
	e, clock, rec := newTestEngine()
	tr := makeTrace(3, 2, 1)

	require.NoError(t, e.Start(tr))
	assert.ErrorIs(t, e.Start(tr), ErrAlreadyRunning)
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(time.Second)
	assert.Equal(t, []int{0, 1, 2}, rec.cursors, "no skips or repeats")
	assert.Equal(t, Idle, e.State())
	assert.Len(t, rec.outcomes, 1)
}

func TestStopPreventsFurtherFrames(t *testing.T) {
	e, clock, rec := newTestEngine()
	require.NoError(t, e.Start(makeTrace(5, 4, 3, 2, 1)))
	clock.Advance(DefaultInterval)
	require.Equal(t, 1, e.Cursor())

	e.Stop()
	assert.Equal(t, Idle, e.State())
	assert.Zero(t, clock.Pending())

	clock.Advance(time.Second)
	assert.Equal(t, 1, e.Cursor())
	assert.Len(t, rec.cursors, 2)
	assert.Equal(t, []Outcome{Cancelled}, rec.outcomes)
}

func TestStopDiscardsAlreadyFiredStep(t *testing.T) {
	clock := timeutil.NewMockClock(time.Time{})
	rec := &recorder{}
	var queued []func()
	e := NewEngine(clock, rec, WithDispatch(func(f func()) { queued = append(queued, f) }))

	require.NoError(t, e.Start(makeTrace(1, 2, 3)))
	// The timer fires and its step is queued, but not yet run.
	clock.Advance(DefaultInterval)
	require.Len(t, queued, 1)

	e.Stop()
	for _, f := range queued {
		f()
	}
	assert.Equal(t, 0, e.Cursor())
	assert.Len(t, rec.cursors, 1)
}

func TestStopFromObserver(t *testing.T) {
	e, clock, rec := newTestEngine()
	rec.onFrame = func(cursor int) {
		if cursor == 1 {
			e.Stop()
		}
	}
	require.NoError(t, e.Start(makeTrace(1, 2, 3, 4)))
	clock.Advance(time.Second)

	assert.Equal(t, []int{0, 1}, rec.cursors)
	assert.Zero(t, clock.Pending())
	assert.Equal(t, []Outcome{Cancelled}, rec.outcomes)
}

func TestCostHistoryPrefix(t *testing.T) {
	e, clock, rec := newTestEngine()
	require.NoError(t, e.Start(makeTrace(10, 8, 8, 5)))
	clock.Advance(DefaultInterval)
	clock.Advance(DefaultInterval)

	require.Equal(t, 2, e.Cursor())
	assert.Equal(t, []float64{10, 8, 8}, e.History())
	assert.Equal(t, []float64{10, 8, 8}, rec.histories[2])
	assert.Equal(t, []float64{10}, rec.histories[0], "observer copies are not aliased")

	cur, ok := e.Current()
	require.True(t, ok)
	assert.Equal(t, 8.0, cur.Cost)
}

func TestResetWhileRunning(t *testing.T) {
	e, clock, rec := newTestEngine()
	require.NoError(t, e.Start(makeTrace(3, 2, 1)))
	clock.Advance(DefaultInterval)

	e.Reset()
	assert.Equal(t, Idle, e.State())
	assert.Zero(t, e.Cursor())
	assert.Empty(t, e.History())
	assert.Zero(t, e.Len())
	_, ok := e.Current()
	assert.False(t, ok)
	assert.Equal(t, []Outcome{Cancelled}, rec.outcomes)

	clock.Advance(time.Second)
	assert.Len(t, rec.cursors, 2)
}

func TestRestartAfterStopBeginsAtFrameZero(t *testing.T) {
	e, clock, rec := newTestEngine()
	require.NoError(t, e.Start(makeTrace(3, 2, 1)))
	clock.Advance(DefaultInterval)
	e.Stop()

	rec.cursors = nil
	require.NoError(t, e.Start(makeTrace(9, 8)))
	clock.Advance(time.Second)
	assert.Equal(t, []int{0, 1}, rec.cursors)
	assert.Equal(t, []float64{9, 8}, e.History())
}

func TestEmptyTraceCompletesImmediately(t *testing.T) {
	e, clock, rec := newTestEngine()
	require.NoError(t, e.Start(nil))
	assert.Equal(t, Idle, e.State())
	assert.Equal(t, []Outcome{Completed}, rec.outcomes)
	assert.Zero(t, clock.Pending())
}

func TestIntervalOption(t *testing.T) {
	clock := timeutil.NewMockClock(time.Time{})
	rec := &recorder{}
	e := NewEngine(clock, rec, WithInterval(50*time.Millisecond))
	require.NoError(t, e.Start(makeTrace(1, 2)))

	clock.Advance(49 * time.Millisecond)
	assert.Len(t, rec.cursors, 1)
	clock.Advance(time.Millisecond)
	assert.Len(t, rec.cursors, 2)
}

func TestTraceCosts(t *testing.T) {
	assert.Equal(t, []float64{10, 8, 8, 5}, makeTrace(10, 8, 8, 5).Costs())
}
