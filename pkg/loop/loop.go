package loop

import "sync/atomic"

// Thunk is a unit of work run against owner on the loop's single goroutine.
type Thunk[T any] func(T)

// Loop serializes all mutation of T behind a single consuming goroutine.
type Loop[T any] struct {
	thunks  chan Thunk[T]
	running atomic.Bool
}

// New creates a Loop with the given channel buffer size.
func New[T any](bufferSize int) *Loop[T] {
	l := &Loop[T]{thunks: make(chan Thunk[T], bufferSize)}
	l.running.Store(true)
	return l
}

// Push enqueues a thunk. Safe to call from any goroutine. Once Shutdown has
// been called, pushed thunks are silently dropped rather than blocking or
// panicking on a closed channel.
func (l *Loop[T]) Push(thunk Thunk[T]) {
	if !l.running.Load() {
		return
	}
	l.thunks <- thunk
}

// Run blocks the calling goroutine, invoking each thunk with owner in
// enqueue order until Shutdown unblocks it.
func (l *Loop[T]) Run(owner T) {
	for thunk := range l.thunks {
		if thunk == nil {
			return
		}
		thunk(owner)
	}
}

// Shutdown flips the running flag and pushes a sentinel thunk so a blocked
// Run returns. Safe to call once.
func (l *Loop[T]) Shutdown() {
	l.running.Store(false)
	l.thunks <- nil
}

// Running reports whether the loop is still accepting work.
func (l *Loop[T]) Running() bool {
	return l.running.Load()
}
