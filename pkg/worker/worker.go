// Package worker runs fire-and-forget background tasks that outlive the
// HTTP request which started them.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

// ErrShuttingDown returned by Go after Shutdown has begun
var ErrShuttingDown = errors.New("worker: shutting down")

// Task one unit of background work. The context is cancelled on Shutdown.
type Task func(ctx context.Context) error

// Hooks observe task lifecycle
type Hooks interface {
	TaskStarted()
	TaskDone()
}

// Pool tracks in-flight tasks so the process can drain them on exit
type Pool struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
	logger *zap.Logger
	hooks  Hooks
}

// NewPool creates a pool; hooks may be nil
func NewPool(logger *zap.Logger, hooks Hooks) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{ctx: ctx, cancel: cancel, logger: logger, hooks: hooks}
}

// Go starts task in its own goroutine. Panics and errors are logged, never
// propagated; the task is responsible for recording its own outcome.
func (p *Pool) Go(name string, task Task) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrShuttingDown
	}
	p.wg.Add(1)
	p.mu.Unlock()

	if p.hooks != nil {
		p.hooks.TaskStarted()
	}
	go func() {
		defer p.wg.Done()
		if p.hooks != nil {
			defer p.hooks.TaskDone()
		}
		if err := p.run(task); err != nil {
			p.logger.Error("background task failed", zap.String("task", name), zap.Error(err))
		}
	}()
	return nil
}

func (p *Pool) run(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return task(p.ctx)
}

// Shutdown refuses new tasks and waits for running ones until ctx expires,
// then cancels them.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}
