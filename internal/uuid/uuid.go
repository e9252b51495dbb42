// Package uuid generates record ids.
//
// Records created while no identity is signed in need an id before the
// remote store has seen them, so ids are always generated client side
// in the same format the remote store uses.
package uuid

import (
	google_uuid "github.com/google/uuid"
)

// New returns a new random id as string.
func New() string {
	return google_uuid.NewString()
}

// Valid reports whether id is a well-formed UUID.
func Valid(id string) bool {
	return google_uuid.Validate(id) == nil
}

// OrNew returns id unless it is empty, in which case a new id is generated.
func OrNew(id string) string {
	if id == "" {
		return New()
	}
	return id
}
