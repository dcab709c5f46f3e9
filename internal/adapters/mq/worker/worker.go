// Package worker drains vital-sign readings off the queue and feeds
// them into session tracking.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/quietweek/quietweek/internal/domain/vitals"
	"github.com/quietweek/quietweek/pkg/logger"
	"github.com/quietweek/quietweek/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 4
	workerShutdownTimeout = 5 * time.Second
)

// Reading abstracts what workers read off the queue.
type Reading = vitals.Reading

// Ingester accepts readings into their monitoring sessions.
type Ingester interface {
	Ingest(r Reading) (vitals.LoadResult, bool, error)
}

// Queue defines how workers receive readings.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Reading
}

// Worker processes readings using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing readings.
type InMemoryWorker struct {
	queue    Queue
	ingester Ingester
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, ingester Ingester, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		ingester: ingester,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	readings := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case r, ok := <-readings:
			if !ok {
				return
			}
			if err := w.process(ctx, r); err != nil {
				w.logger.Error(ctx, "error processing reading", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process feeds a single reading into its session.
func (w *InMemoryWorker) process(ctx context.Context, r Reading) error {
	_, _, err := w.ingester.Ingest(r)
	if err != nil {
		// Sessions end while readings are still in flight; late
		// arrivals are dropped, not errors.
		if errors.Is(err, vitals.ErrSessionNotFound) {
			metrics.RecordReadingDropped()
			w.logger.Debug(ctx, "dropping reading for inactive session",
				logger.String("session_id", r.SessionID))
			return nil
		}
		return fmt.Errorf("ingest reading for session %s: %w", r.SessionID, err)
	}

	metrics.RecordReadingProcessed()
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	ingester Ingester

	logger logger.Logger
}

// NewPool creates a new worker pool. A non-positive workerCount falls
// back to one worker per CPU.
func NewPool(workerCount int, queue Queue, ingester Ingester) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
		if workerCount < defaultWorkerCount {
			workerCount = defaultWorkerCount
		}
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		ingester: ingester,
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			ingester,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Shutdown gracefully stops all workers, giving each a bounded wait.
func (p *Pool) Shutdown(ctx context.Context) error {
	var firstErr error
	for _, w := range p.workers {
		shutdownCtx, cancel := context.WithTimeout(ctx, workerShutdownTimeout)
		if err := w.Shutdown(shutdownCtx); err != nil && firstErr == nil {
			firstErr = err
		}
		cancel()
	}
	metrics.UpdateWorkerCount(0)
	return firstErr
}
