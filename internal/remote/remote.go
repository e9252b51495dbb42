// Package remote defines the remote document store the tracker synchronizes
// with.
//
// The store is a stateless channel: every collection can be fetched, written
// and subscribed to, scoped by the identity owning the records.
package remote

import (
	"context"
	"errors"

	"github.com/envelope-zero/tracker/internal/models"
)

var (
	ErrIndexMissing = errors.New("the query requires an index that does not exist")
	ErrUnavailable  = errors.New("the remote store is unavailable")
	ErrNotFound     = errors.New("there is no document with this ID")
)

// Stream delivers full collection snapshots until it is closed.
type Stream[T any] interface {
	// Snapshots yields every snapshot of the collection. The channel is
	// closed when the stream ends.
	Snapshots() <-chan []T

	// Err returns the reason the stream ended on its own, nil if it was
	// closed by the consumer.
	Err() error

	// Close ends the stream. It is safe to call multiple times.
	Close()
}

// Collection is one remote collection of records.
type Collection[T any] interface {
	Kind() models.Kind

	// FetchAll returns the records of all owners.
	FetchAll(ctx context.Context) ([]T, error)

	// FetchByOwner returns the records of owner in the order of the
	// collection.
	FetchByOwner(ctx context.Context, owner string) ([]T, error)

	// FetchByOwnerUnordered returns the records of owner without applying
	// the collection order. It does not need an index.
	FetchByOwnerUnordered(ctx context.Context, owner string) ([]T, error)

	// Create stores a record and returns it with its document ID. The ID of
	// the record is kept if it is a valid unused ID.
	Create(ctx context.Context, record T) (T, error)

	Update(ctx context.Context, id string, patch models.Patch) error
	Delete(ctx context.Context, id string) error

	// Subscribe opens a stream of all records of owner. The first snapshot is
	// delivered immediately.
	Subscribe(ctx context.Context, owner string) (Stream[T], error)
}

// Profiles stores one profile per identity.
type Profiles interface {
	// Get returns the profile of identity or ErrNotFound.
	Get(ctx context.Context, identity string) (models.UserProfile, error)
	Create(ctx context.Context, profile models.UserProfile) error
	Update(ctx context.Context, profile models.UserProfile) error
}

// Gateway bundles all collections of the remote store.
type Gateway struct {
	Transactions          Collection[models.Transaction]
	Budgets               Collection[models.Budget]
	Goals                 Collection[models.Goal]
	Wallets               Collection[models.Wallet]
	RecurringTransactions Collection[models.RecurringTransaction]
	SharedExpenses        Collection[models.SharedExpense]
	Receipts              Collection[models.Receipt]
	Notifications         Collection[models.Notification]
	Categories            Collection[models.Category]
	Profiles              Profiles
}

// Retryable reports whether a failed read can be retried with a narrower
// query.
func Retryable(err error) bool {
	return errors.Is(err, ErrIndexMissing) || errors.Is(err, ErrUnavailable)
}
