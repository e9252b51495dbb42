// Package state holds the in-memory state tree of the tracker.
//
// The state is only ever changed through Reduce, which takes the current
// state and an Action and returns the new state. Slices and maps of the
// previous state are never modified, changed collections are replaced.
package state

import (
	"time"

	"github.com/envelope-zero/tracker/internal/models"
)

// MaxNotifications is the maximum number of notifications held in memory.
const MaxNotifications = 50

// SortField is the field visible transactions are sorted by.
type SortField string

const (
	SortByDate   SortField = "date"
	SortByAmount SortField = "amount"
)

// Sort configures the order of visible transactions.
type Sort struct {
	Field     SortField `json:"field"`
	Ascending bool      `json:"ascending"`
}

// Filter restricts visible transactions. Empty fields do not filter.
type Filter struct {
	Category string                 `json:"category,omitempty"`
	WalletID string                 `json:"walletId,omitempty"`
	Type     models.TransactionType `json:"type,omitempty"`
}

// DateRange restricts visible transactions to [From, Until). Zero values
// leave the respective side open.
type DateRange struct {
	From  time.Time `json:"from"`
	Until time.Time `json:"until"`
}

// Contains reports whether t is within the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.Until.IsZero() && !t.Before(r.Until) {
		return false
	}
	return true
}

// State is the complete client state.
//
// A State must be treated as immutable. Its slices may be shared with other
// State values.
type State struct {
	Identity string
	Profile  *models.UserProfile

	Transactions          []models.Transaction
	Budgets               models.Budgets
	Goals                 []models.Goal
	Wallets               []models.Wallet
	RecurringTransactions []models.RecurringTransaction
	SharedExpenses        []models.SharedExpense
	Receipts              []models.Receipt
	Notifications         []models.Notification
	Categories            []models.Category

	AuthLoading bool
	DataLoading bool

	Filter    Filter
	Sort      Sort
	Search    string
	DateRange DateRange
	DarkMode  bool
}

// Initial returns the state before any identity is known.
func Initial() State {
	s := State{
		AuthLoading: true,
		Sort:        Sort{Field: SortByDate},
	}
	return clearCollections(s)
}

// clearCollections empties all entity collections. Categories are reset to
// the defaults.
func clearCollections(s State) State {
	s.Profile = nil
	s.Transactions = []models.Transaction{}
	s.Budgets = models.Budgets{}
	s.Goals = []models.Goal{}
	s.Wallets = []models.Wallet{}
	s.RecurringTransactions = []models.RecurringTransaction{}
	s.SharedExpenses = []models.SharedExpense{}
	s.Receipts = []models.Receipt{}
	s.Notifications = []models.Notification{}
	s.Categories = models.DefaultCategories()
	return s
}

// Snapshot returns all collections of s for persistence.
func (s State) Snapshot() Snapshot {
	return Snapshot{
		Profile:               s.Profile,
		Transactions:          s.Transactions,
		Budgets:               s.Budgets,
		Goals:                 s.Goals,
		Wallets:               s.Wallets,
		RecurringTransactions: s.RecurringTransactions,
		SharedExpenses:        s.SharedExpenses,
		Receipts:              s.Receipts,
		Notifications:         s.Notifications,
		Categories:            s.Categories,
	}
}
