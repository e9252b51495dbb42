package state

import (
	"sync"
)

// Listener is called with the new state after every dispatch.
type Listener func(State)

// Store holds the current State and serializes all transitions.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	next      int
}

// NewStore returns a store holding initial.
func NewStore(initial State) *Store {
	return &Store{
		state:     initial,
		listeners: map[int]Listener{},
	}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies the actions in order and returns the resulting state.
//
// Listeners are notified once per call, after all actions were applied.
// They run while the store is locked and must not dispatch.
func (s *Store) Dispatch(actions ...Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range actions {
		s.state = Reduce(s.state, a)
	}

	for _, l := range s.listeners {
		l(s.state)
	}

	return s.state
}

// Subscribe registers l for state changes. The returned function removes it.
func (s *Store) Subscribe(l Listener) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
