package auth

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("the provider is closed")

// Manual is a Provider driven by explicit calls, used by the CLI and tests.
type Manual struct {
	mu     sync.Mutex
	events chan Event
	closed bool
}

// NewManual returns a provider that buffers up to buffer events.
func NewManual(buffer int) *Manual {
	return &Manual{events: make(chan Event, buffer)}
}

func (m *Manual) Events() <-chan Event {
	return m.events
}

// SignIn emits identity. It blocks while the buffer is full.
func (m *Manual) SignIn(identity string) error {
	return m.emit(Event{Identity: identity})
}

// SignOut emits a signed out event.
func (m *Manual) SignOut() error {
	return m.emit(Event{})
}

func (m *Manual) emit(e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.events <- e
	return nil
}

// Close closes the event channel. It is safe to call multiple times.
func (m *Manual) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.events)
	}
}
