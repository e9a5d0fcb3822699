package editor

import (
	"sync"

	"github.com/dshills/blockpad/internal/document"
)

// Queue is an unbounded FIFO of document operations. Push may be called
// from any goroutine; a single consumer drains it.
type Queue struct {
	mu    sync.Mutex
	ops   []document.Op
	ready chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Push appends ops in order and signals Ready.
func (q *Queue) Push(ops ...document.Op) {
	if len(ops) == 0 {
		return
	}
	q.mu.Lock()
	q.ops = append(q.ops, ops...)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Pop removes and returns the oldest op.
func (q *Queue) Pop() (document.Op, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.ops) == 0 {
		return nil, false
	}
	op := q.ops[0]
	q.ops[0] = nil
	q.ops = q.ops[1:]
	return op, true
}

// Len returns the number of queued ops.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

// Clear drops every queued op and returns how many were dropped.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.ops)
	q.ops = nil
	return n
}

// Ready receives a value after ops were pushed. Several pushes may be
// coalesced into one signal, so consumers drain until Pop reports empty.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}
