package filequeue

import (
	"context"
	"errors"
)

var ErrQueueFull = errors.New("queue is full")

// BoundedQueue is a fixed-capacity FIFO of work items shared by the
// generator and the processor. Put blocks while the queue is full and Take
// blocks while it is empty; both give up as soon as their context is done.
type BoundedQueue struct {
	items chan WorkItem
}

// NewBoundedQueue creates a queue holding at most capacity items.
func NewBoundedQueue(capacity int) (*BoundedQueue, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &BoundedQueue{items: make(chan WorkItem, capacity)}, nil
}

// Put appends item, waiting for free capacity. It returns ctx.Err() without
// enqueuing if ctx is done before space becomes available.
func (q *BoundedQueue) Put(ctx context.Context, item WorkItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.items <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Take removes and returns the head item, waiting for one to arrive.
func (q *BoundedQueue) Take(ctx context.Context) (WorkItem, error) {
	if err := ctx.Err(); err != nil {
		return WorkItem{}, err
	}
	select {
	case item := <-q.items:
		return item, nil
	case <-ctx.Done():
		return WorkItem{}, ctx.Err()
	}
}

// TryPut appends item only if there is room right now.
func (q *BoundedQueue) TryPut(item WorkItem) error {
	select {
	case q.items <- item:
		return nil
	default:
		return ErrQueueFull
	}
}

// TryTake returns the head item if one is waiting.
func (q *BoundedQueue) TryTake() (WorkItem, bool) {
	select {
	case item := <-q.items:
		return item, true
	default:
		return WorkItem{}, false
	}
}

// Len is a snapshot of the number of queued items.
func (q *BoundedQueue) Len() int { return len(q.items) }

// Cap is the fixed capacity given to NewBoundedQueue.
func (q *BoundedQueue) Cap() int { return cap(q.items) }
