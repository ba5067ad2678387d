// Package queue holds the pending winning numbers waiting for a spin.
package queue

import (
	"errors"
	"sync"
)

const (
	// DefaultMaxSize is the queue bound applied when none is configured.
	DefaultMaxSize = 100
)

var ErrQueueFull = errors.New("queue_full")

// PendingQueue is a bounded FIFO of queued winning numbers.
// All methods are safe for concurrent use.
type PendingQueue struct {
	mu      sync.Mutex
	items   []int
	maxSize int
}

// New creates a queue bounded at maxSize entries. A non-positive
// maxSize falls back to DefaultMaxSize.
func New(maxSize int) *PendingQueue {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &PendingQueue{maxSize: maxSize}
}

// Enqueue appends n at the tail. It fails with ErrQueueFull when the
// queue already holds maxSize entries.
func (q *PendingQueue) Enqueue(n int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.maxSize {
		return ErrQueueFull
	}
	q.items = append(q.items, n)
	return nil
}

// PushFront inserts n at the head so the next drain sees it first.
// The bound applies the same way it does for Enqueue.
func (q *PendingQueue) PushFront(n int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.maxSize {
		return ErrQueueFull
	}
	q.items = append([]int{n}, q.items...)
	return nil
}

// DrainAll removes and returns every queued number in FIFO order.
// An empty queue drains to a nil slice.
func (q *PendingQueue) DrainAll() []int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	drained := q.items
	q.items = nil
	return drained
}

// RestoreFront puts previously drained numbers back at the head in
// their original order. It ignores the bound: rolled-back values must
// not be lost even if new entries arrived in between.
func (q *PendingQueue) RestoreFront(values []int) {
	if len(values) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	restored := make([]int, 0, len(values)+len(q.items))
	restored = append(restored, values...)
	restored = append(restored, q.items...)
	q.items = restored
}

// RemoveValue deletes every occurrence of n and reports how many
// entries were removed.
func (q *PendingQueue) RemoveValue(n int) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.items[:0]
	removed := 0
	for _, v := range q.items {
		if v == n {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	q.items = kept
	return removed
}

// Clear empties the queue and reports how many entries were dropped.
func (q *PendingQueue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	dropped := len(q.items)
	q.items = nil
	return dropped
}

// Values returns a copy of the queued numbers in FIFO order.
func (q *PendingQueue) Values() []int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	values := make([]int, len(q.items))
	copy(values, q.items)
	return values
}

// Len returns the number of queued entries.
func (q *PendingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
