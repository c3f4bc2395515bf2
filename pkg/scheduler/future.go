package scheduler

import (
	"context"
)

// Future is the pending result of a submitted work item. C delivers exactly
// one result.
type Future[T any] struct {
	c      chan T
	cancel context.CancelFunc
}

func newFuture[T any](cancel context.CancelFunc) *Future[T] {
	return &Future[T]{
		c:      make(chan T, 1),
		cancel: cancel,
	}
}

func (f *Future[T]) C() <-chan T {
	return f.c
}

// Stop cancels the context passed to the work.
func (f *Future[T]) Stop() {
	f.cancel()
}

func (f *Future[T]) resolve(v T) {
	f.c <- v
}
