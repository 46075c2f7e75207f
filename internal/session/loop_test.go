package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T, l *Loop) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestLoopRunsTasksInPostOrder(t *testing.T) {
	l := NewLoop()
	startLoop(t, l)

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	require.NoError(t, l.Call(context.Background(), func() {}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLoopPostFromTaskRunsLater(t *testing.T) {
	l := NewLoop()
	startLoop(t, l)

	var got []string
	require.NoError(t, l.Call(context.Background(), func() {
		l.Post(func() { got = append(got, "inner") })
		got = append(got, "outer")
	}))
	require.NoError(t, l.Call(context.Background(), func() {}))
	assert.Equal(t, []string{"outer", "inner"}, got)
}

func TestLoopIdleRunsAfterBatch(t *testing.T) {
	l := NewLoop()
	var mu sync.Mutex
	idles := 0
	l.OnIdle(func() {
		mu.Lock()
		idles++
		mu.Unlock()
	})
	// Queued before Run, so both tasks drain in one batch.
	l.Post(func() {})
	l.Post(func() {})
	startLoop(t, l)

	require.NoError(t, l.Call(context.Background(), func() {}))
	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, idles, 1)
	assert.LessOrEqual(t, idles, 2)
}

func TestLoopCallHonoursContext(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	// Not running, so the task never executes.
	assert.ErrorIs(t, l.Call(ctx, func() {}), context.DeadlineExceeded)
}

func TestLoopRejectsPostAfterStop(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Run(ctx), context.Canceled)
	assert.False(t, l.Post(func() {}))
	assert.ErrorIs(t, l.Call(context.Background(), func() {}), context.Canceled)
}
