// Package serialqueue provides a FIFO task queue with a bounded number of
// concurrently executing tasks. Pushing never blocks: the producer is free
// to run ahead while tasks drain one after the other.
package serialqueue

import (
	"context"
	"sync"
)

// Task is one unit of queued work
type Task func() error

// Queue runs pushed tasks in push order, at most limit at a time. Once a
// task fails or the queue's context is cancelled, tasks that have not
// started yet are settled without ever running.
type Queue struct {
	ctx   context.Context
	limit int

	wg sync.WaitGroup

	mu       sync.Mutex
	pending  []*Op
	running  int
	firstErr error
}

// Op is the future of one pushed task
type Op struct {
	task Task
	err  error
	done chan struct{}
}

// Wait blocks until the task has settled, and returns its outcome. Tasks
// that were skipped (earlier failure, cancellation) settle with the error
// that caused the skip.
func (op *Op) Wait() error {
	<-op.done
	return op.err
}

// New returns a queue executing at most limit tasks at a time. A limit
// below 1 is treated as 1. Cancelling ctx prevents queued tasks from
// starting; it does not interrupt a task that is already running.
func New(ctx context.Context, limit int) *Queue {
	if limit < 1 {
		limit = 1
	}
	return &Queue{
		ctx:   ctx,
		limit: limit,
	}
}

// Push appends a task to the queue, starting it immediately if the queue
// is idle, and returns its future.
func (q *Queue) Push(task Task) *Op {
	op := &Op{
		task: task,
		done: make(chan struct{}),
	}

	q.mu.Lock()
	q.pending = append(q.pending, op)
	spawn := q.running < q.limit
	if spawn {
		q.running++
	}
	q.mu.Unlock()

	if spawn {
		q.wg.Add(1)
		go q.work()
	}
	return op
}

// Err returns the first error any task settled with, or nil
func (q *Queue) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.firstErr
}

// Wait blocks until every pushed task has settled and all workers have
// wound down. Pushing concurrently with Wait is not supported.
func (q *Queue) Wait() {
	q.wg.Wait()
}

func (q *Queue) work() {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running--
			q.mu.Unlock()
			return
		}
		op := q.pending[0]
		q.pending = q.pending[1:]
		skipErr := q.firstErr
		q.mu.Unlock()

		var err error
		switch {
		case q.ctx.Err() != nil:
			err = q.ctx.Err()
		case skipErr != nil:
			err = skipErr
		default:
			err = op.task()
		}

		if err != nil {
			q.mu.Lock()
			if q.firstErr == nil {
				q.firstErr = err
			}
			q.mu.Unlock()
		}

		op.err = err
		close(op.done)
	}
}
