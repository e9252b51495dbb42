// Package auth delivers identity changes to the sync coordinator.
package auth

// Event reports the current identity. An empty identity means signed out.
type Event struct {
	Identity string
}

// SignedIn reports whether the event carries an identity.
func (e Event) SignedIn() bool {
	return e.Identity != ""
}

// Provider is implemented by authentication providers.
//
// The channel is closed when the provider shuts down.
type Provider interface {
	Events() <-chan Event
}
