// Package kv implements the durable key-value primitive the local cache is
// built on.
//
// Two backends exist: SQLite through gorm, which is the default, and badger.
package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotFound = errors.New("there is no value for this key")
	ErrGeneral  = errors.New("an error occurred in the local store")
)

// Store gets, sets and removes values by string key.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value for key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing a key that does not exist is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases the underlying resources.
	Close() error
}

// Backend selects a Store implementation.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendBadger Backend = "badger"
)

type options struct {
	log zerolog.Logger
}

type Option func(*options)

// WithLogger sets the logger for the database driver. It defaults to the
// global logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

func newOptions(opts []Option) options {
	o := options{log: log.Logger}
	for _, opt := range opts {
		opt(&o)
	}
	o.log = o.log.With().Str("component", "cache").Logger()
	return o
}

// Open opens the store for backend at path.
func Open(backend Backend, path string, opts ...Option) (Store, error) {
	switch backend {
	case BackendSQLite, "":
		return OpenSQLite(path, opts...)
	case BackendBadger:
		return OpenBadger(path, opts...)
	}

	return nil, fmt.Errorf("unknown local store backend %q", backend)
}
