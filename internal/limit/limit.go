// Package limit implements a FIFO admission queue that caps the number of
// asynchronous tasks in flight. It is used to throttle media probes so that
// a large composition does not open dozens of decoders at once.
package limit

import (
	"context"
	"fmt"
	"sync"
)

// DefaultWidth is the number of tasks allowed in flight when none is given.
const DefaultWidth = 5

// Limiter admits at most Width tasks at a time. Tasks beyond the cap wait in
// arrival order. There is no priority and no cancellation: a task that never
// returns holds its slot forever.
type Limiter struct {
	mu     sync.Mutex
	width  int
	active int
	queue  []func()
}

// New creates a Limiter. A non-positive width falls back to DefaultWidth.
func New(width int) *Limiter {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Limiter{width: width}
}

var defaultLimiter = New(DefaultWidth)

// Default returns the process-wide limiter shared by probes that were not
// given their own.
func Default() *Limiter {
	return defaultLimiter
}

// Width returns the concurrency cap.
func (l *Limiter) Width() int {
	return l.width
}

// Active returns the number of tasks currently running.
func (l *Limiter) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Queued returns the number of tasks waiting for a slot.
func (l *Limiter) Queued() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Limiter) admit(start func()) {
	l.mu.Lock()
	if l.active < l.width {
		l.active++
		l.mu.Unlock()
		start()
		return
	}
	l.queue = append(l.queue, start)
	l.mu.Unlock()
}

func (l *Limiter) release() {
	l.mu.Lock()
	l.active--
	if len(l.queue) == 0 || l.active >= l.width {
		l.mu.Unlock()
		return
	}
	next := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	l.active++
	l.mu.Unlock()

	next()
}

// Future is the deferred result of a submitted task.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Done is closed once the task has finished and its slot is released.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the task finishes or ctx is done. Cancelling ctx only
// stops the wait; the task itself keeps running.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit queues fn on l and returns immediately. Each submitter gets its own
// Future; a failing or panicking task does not affect the others.
func Submit[T any](l *Limiter, fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	l.admit(func() {
		go func() {
			defer close(f.done)
			defer l.release()
			f.value, f.err = run(fn)
		}()
	})
	return f
}

// Do submits fn and waits for its result.
func Do[T any](ctx context.Context, l *Limiter, fn func() (T, error)) (T, error) {
	return Submit(l, fn).Wait(ctx)
}

func run[T any](fn func() (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return fn()
}
