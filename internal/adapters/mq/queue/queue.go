// Package queue defines the contract for enqueuing and consuming
// vital-sign readings.
//
// Readings arrive in bursts from monitoring clients; the bounded
// in-memory queue absorbs them so the HTTP handler can answer fast and
// shed load explicitly instead of blocking.
package queue

import (
	"context"
	"sync"

	"github.com/quietweek/quietweek/internal/domain/vitals"
	"github.com/quietweek/quietweek/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 4096
)

// Reading is the payload type flowing through the queue.
type Reading = vitals.Reading

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a reading to the queue.
	// Returns false if the queue is full and the reading was dropped.
	Enqueue(ctx context.Context, r Reading) bool

	// Dequeue returns a channel that will receive readings as they
	// become available. The channel is closed when the queue closes.
	Dequeue(ctx context.Context) <-chan Reading

	// Len returns the current number of queued readings.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue. After closing, no new
	// readings can be enqueued and the dequeue channel is closed.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	readings chan Reading
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}

	q.readings = make(chan Reading, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a reading to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Reading) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordReadingDropped()
		return false
	}

	select {
	case q.readings <- r:
		metrics.UpdateQueueSize(len(q.readings))
		return true
	case <-ctx.Done():
		metrics.RecordReadingDropped()
		return false
	default:
		// queue is full
		metrics.RecordReadingDropped()
		return false
	}
}

// Dequeue returns a channel that will receive readings as they become
// available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Reading {
	out := make(chan Reading)
	go func() {
		defer close(out)
		for r := range q.readings {
			select {
			case out <- r:
				metrics.UpdateQueueSize(len(q.readings))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued readings.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.readings)
	metrics.UpdateQueueSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.readings)
	q.closed = true
	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
