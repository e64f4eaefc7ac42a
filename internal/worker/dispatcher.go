// Package worker provides a bounded background dispatcher for fire-and-forget
// tasks. Each task runs inside its own panic boundary so a failing unit of
// work can never take down the request path that spawned it.
package worker

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Task is a unit of background work.
type Task func(ctx context.Context)

// Dispatcher runs tasks on goroutines gated by a weighted semaphore.
// Submission never blocks the caller: when the pool is saturated the task
// waits for a slot on its own goroutine, so a webhook acknowledgment is never
// delayed by slow downstream calls.
type Dispatcher struct {
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher allowing up to poolSize concurrent tasks.
func NewDispatcher(poolSize int64, logger *slog.Logger) *Dispatcher {
	if poolSize <= 0 {
		poolSize = 1
	}
	return &Dispatcher{
		sem:    semaphore.NewWeighted(poolSize),
		logger: logger,
	}
}

// Submit schedules a task for background execution and returns immediately.
// The task receives a context detached from any HTTP request; outbound calls
// are expected to carry their own timeouts.
func (d *Dispatcher) Submit(task Task) {
	d.wg.Add(1)

	go func() {
		defer d.wg.Done()

		if err := d.sem.Acquire(context.Background(), 1); err != nil {
			d.logger.Error("failed to acquire worker slot", slog.Any("error", err))
			return
		}
		defer d.sem.Release(1)

		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("panic in background task", slog.Any("panic", r))
			}
		}()

		task(context.Background())
	}()
}

// Shutdown waits for all in-flight tasks to finish or the context to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
