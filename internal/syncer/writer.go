package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/envelope-zero/tracker/internal/models"
)

const opFlush = "flush"

// write is a remote write issued by a mutation.
type write struct {
	kind models.Kind
	op   string
	run  func(ctx context.Context) error
}

// writer runs remote writes one at a time in the order they were queued, so
// that e.g. an update never overtakes the create of the same record.
//
// The queue is unbounded. Enqueueing never blocks, which allows queueing
// while the coordinator is locked.
type writer struct {
	mu     sync.Mutex
	queue  []write
	closed bool

	wake chan struct{}
	done chan struct{}
}

func newWriter() *writer {
	return &writer{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// enqueue adds w to the queue. It returns false once the writer is closed.
func (w *writer) enqueue(wr write) bool {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return false
	}
	w.queue = append(w.queue, wr)
	w.mu.Unlock()

	w.signal()
	return true
}

func (w *writer) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// run processes the queue until the writer is closed and drained.
func (w *writer) run(ctx context.Context, failed func(write, error)) {
	defer close(w.done)

	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			closed := w.closed
			w.mu.Unlock()

			if closed {
				return
			}
			<-w.wake
			continue
		}

		wr := w.queue[0]
		w.queue[0] = write{}
		w.queue = w.queue[1:]
		w.mu.Unlock()

		if err := ctx.Err(); err != nil && wr.op != opFlush {
			failed(wr, err)
			continue
		}

		if err := wr.run(ctx); err != nil {
			failed(wr, err)
		}
	}
}

// flush waits until every write queued before the call has run.
func (w *writer) flush(ctx context.Context) error {
	done := make(chan struct{})
	if !w.enqueue(write{op: opFlush, run: func(context.Context) error {
		close(done)
		return nil
	}}) {
		return ErrClosed
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops accepting writes and waits until the queue is drained, but no
// longer than timeout. A timeout of zero or less waits until drained. It
// reports whether the queue was drained in time.
func (w *writer) close(timeout time.Duration) bool {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	w.signal()

	if timeout <= 0 {
		<-w.done
		return true
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-w.done:
		return true
	case <-t.C:
		return false
	}
}
