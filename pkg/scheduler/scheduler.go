package scheduler

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type workRequest struct {
	fn     Work[any]
	ctx    context.Context
	future *Future[Result[any]]
	// release detaches ctx from the scheduler context once the work is done.
	release func() bool
}

// Scheduler runs work on a fixed number of workers in submission order.
type Scheduler struct {
	mu         sync.Mutex
	cond       *sync.Cond
	workQueue  queue[workRequest]
	closed     bool
	closeOnce  sync.Once
	wg         sync.WaitGroup
	mainCtx    context.Context
	mainCancel context.CancelFunc
}

func NewScheduler(nbWorkers int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		mainCtx:    ctx,
		mainCancel: cancel,
	}
	s.cond = sync.NewCond(&s.mu)

	for range max(nbWorkers, 1) {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

// AddWork queues w and returns its future. Work added after Close resolves
// with context.Canceled without running.
func (s *Scheduler) AddWork(w Work[any]) *Future[Result[any]] {
	ctx, cancel := context.WithCancel(context.Background())
	release := context.AfterFunc(s.mainCtx, cancel)
	future := newFuture[Result[any]](cancel)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		release()
		cancel()
		future.resolve(Result[any]{Err: context.Canceled})
		return future
	}

	s.workQueue.Push(workRequest{fn: w, ctx: ctx, future: future, release: release})
	s.cond.Signal()
	return future
}

// Close cancels running work, resolves queued work with context.Canceled
// and waits for the workers to return.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		s.mainCancel()

		s.mu.Lock()
		s.closed = true
		pending := s.workQueue.Drain()
		s.cond.Broadcast()
		s.mu.Unlock()

		for _, r := range pending {
			r.release()
			r.future.resolve(Result[any]{Err: context.Canceled})
		}

		s.wg.Wait()
	})
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		for s.workQueue.Len() == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		r := s.workQueue.Pop()
		s.mu.Unlock()

		r.future.resolve(run(r))
	}
}

func run(r workRequest) (result Result[any]) {
	defer r.release()
	defer func() {
		if p := recover(); p != nil {
			zap.S().Named("scheduler").Errorw("worker panicked", "panic", p)
			result = Result[any]{Err: fmt.Errorf("worker panicked: %v", p)}
		}
	}()

	v, err := r.fn(r.ctx)
	return Result[any]{Data: v, Err: err}
}
