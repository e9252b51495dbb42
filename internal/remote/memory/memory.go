// Package memory implements an in-process remote document store.
//
// It is used by the document server and by tests. Every write publishes a
// fresh snapshot to all streams of the owner of the written record.
package memory

import (
	"context"
	"sync"

	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/remote"
)

// Op names an operation of the store, used by hooks.
type Op string

const (
	OpFetchAll              Op = "fetchAll"
	OpFetchByOwner          Op = "fetchByOwner"
	OpFetchByOwnerUnordered Op = "fetchByOwnerUnordered"
	OpCreate                Op = "create"
	OpUpdate                Op = "update"
	OpDelete                Op = "delete"
	OpSubscribe             Op = "subscribe"
	OpGet                   Op = "get"
)

// Hook is called before every operation. A non-nil error fails the
// operation with that error. Hooks may block.
type Hook func(ctx context.Context, kind models.Kind, op Op) error

// Store holds one collection per kind and the profiles.
type Store struct {
	mu   sync.RWMutex
	hook Hook

	Transactions          *Collection[models.Transaction, *models.Transaction]
	Budgets               *Collection[models.Budget, *models.Budget]
	Goals                 *Collection[models.Goal, *models.Goal]
	Wallets               *Collection[models.Wallet, *models.Wallet]
	RecurringTransactions *Collection[models.RecurringTransaction, *models.RecurringTransaction]
	SharedExpenses        *Collection[models.SharedExpense, *models.SharedExpense]
	Receipts              *Collection[models.Receipt, *models.Receipt]
	Notifications         *Collection[models.Notification, *models.Notification]
	Categories            *Collection[models.Category, *models.Category]
	Profiles              *Profiles
}

// New returns an empty store.
func New() *Store {
	s := &Store{}

	s.Transactions = newCollection[models.Transaction](s, models.KindTransactions)
	s.Budgets = newCollection[models.Budget](s, models.KindBudgets)
	s.Goals = newCollection[models.Goal](s, models.KindGoals)
	s.Wallets = newCollection[models.Wallet](s, models.KindWallets)
	s.RecurringTransactions = newCollection[models.RecurringTransaction](s, models.KindRecurringTransactions)
	s.SharedExpenses = newCollection[models.SharedExpense](s, models.KindSharedExpenses)
	s.Receipts = newCollection[models.Receipt](s, models.KindReceipts)
	s.Notifications = newCollection[models.Notification](s, models.KindNotifications)
	s.Categories = newCollection[models.Category](s, models.KindCategories)
	s.Profiles = &Profiles{store: s, profiles: map[string]models.UserProfile{}}

	return s
}

// SetHook installs h, replacing any previous hook. A nil hook removes it.
func (s *Store) SetHook(h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = h
}

func (s *Store) before(ctx context.Context, kind models.Kind, op Op) error {
	s.mu.RLock()
	h := s.hook
	s.mu.RUnlock()

	if h == nil {
		return ctx.Err()
	}
	return h(ctx, kind, op)
}

// Gateway returns the store as a remote.Gateway.
func (s *Store) Gateway() remote.Gateway {
	return remote.Gateway{
		Transactions:          s.Transactions,
		Budgets:               s.Budgets,
		Goals:                 s.Goals,
		Wallets:               s.Wallets,
		RecurringTransactions: s.RecurringTransactions,
		SharedExpenses:        s.SharedExpenses,
		Receipts:              s.Receipts,
		Notifications:         s.Notifications,
		Categories:            s.Categories,
		Profiles:              s.Profiles,
	}
}

// Streams returns the number of open streams across all collections.
func (s *Store) Streams() int {
	n := 0
	for _, c := range s.collections() {
		n += c.streamCount()
	}
	return n
}

// Close ends every open stream with remote.ErrUnavailable.
func (s *Store) Close() {
	for _, c := range s.collections() {
		c.closeStreams(remote.ErrUnavailable)
	}
}

type streamOwner interface {
	streamCount() int
	closeStreams(err error)
}

func (s *Store) collections() []streamOwner {
	return []streamOwner{
		s.Transactions,
		s.Budgets,
		s.Goals,
		s.Wallets,
		s.RecurringTransactions,
		s.SharedExpenses,
		s.Receipts,
		s.Notifications,
		s.Categories,
	}
}
