package session

import (
	"context"
	"sync"
)

// Loop runs posted tasks one at a time on the goroutine that called Run.
// Every mutation of session state happens inside a task.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	closed bool

	idle func()
}

// NewLoop returns a loop that is not yet running.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// OnIdle registers fn to run on the loop after each batch of tasks drains.
// It must be set before Run.
func (l *Loop) OnIdle(fn func()) {
	l.idle = fn
}

// Post queues fn. It never blocks and is safe from any goroutine, including
// the loop itself. It reports false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return context.Canceled
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes tasks until ctx is cancelled. Tasks still queued at that point
// are dropped.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.mu.Unlock()
	}()

	for {
		for {
			batch := l.take()
			if len(batch) == 0 {
				break
			}
			for _, fn := range batch {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				fn()
			}
		}
		if l.idle != nil {
			l.idle()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.queue
	l.queue = nil
	return batch
}
