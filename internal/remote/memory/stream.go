package memory

import (
	"sync"
)

// stream holds at most one pending snapshot. A newer snapshot replaces a
// pending one, consumers only ever see the latest state.
type stream[T any] struct {
	owner string
	ch    chan []T
	err   error

	once   sync.Once
	stop   func() bool
	detach func()
}

func (s *stream[T]) Snapshots() <-chan []T {
	return s.ch
}

// Err must only be called after the snapshot channel was closed.
func (s *stream[T]) Err() error {
	return s.err
}

func (s *stream[T]) Close() {
	s.once.Do(func() {
		s.stop()
		s.detach()
	})
}

// send must be called with the collection locked, which makes it the only
// sender.
func (s *stream[T]) send(records []T) {
	select {
	case <-s.ch:
	default:
	}
	s.ch <- records
}
