package state

import (
	"github.com/envelope-zero/tracker/internal/models"
)

// Snapshot is a partial state. A nil field is absent and leaves the
// corresponding collection untouched when loaded, a non-nil empty field
// replaces the collection with an empty one.
type Snapshot struct {
	Profile               *models.UserProfile           `json:"profile"`
	Transactions          []models.Transaction          `json:"transactions"`
	Budgets               models.Budgets                `json:"budgets"`
	Goals                 []models.Goal                 `json:"goals"`
	Wallets               []models.Wallet               `json:"wallets"`
	RecurringTransactions []models.RecurringTransaction `json:"recurringTransactions"`
	SharedExpenses        []models.SharedExpense        `json:"sharedExpenses"`
	Receipts              []models.Receipt              `json:"receipts"`
	Notifications         []models.Notification         `json:"notifications"`
	Categories            []models.Category             `json:"categories"`
}

// Owners returns the set of identities owning any record in the snapshot.
// Default categories have no owner and are not included.
func (s Snapshot) Owners() map[string]bool {
	owners := map[string]bool{}
	add := func(r models.Record) {
		if r.Owner() != "" {
			owners[r.Owner()] = true
		}
	}

	for _, r := range s.Transactions {
		add(r)
	}
	for _, r := range s.Goals {
		add(r)
	}
	for _, r := range s.Wallets {
		add(r)
	}
	for _, r := range s.RecurringTransactions {
		add(r)
	}
	for _, r := range s.SharedExpenses {
		add(r)
	}
	for _, r := range s.Receipts {
		add(r)
	}
	for _, r := range s.Notifications {
		add(r)
	}
	for _, r := range s.Categories {
		add(r)
	}
	if s.Profile != nil && s.Profile.UserID != "" {
		owners[s.Profile.UserID] = true
	}

	return owners
}
