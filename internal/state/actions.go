package state

import (
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/shopspring/decimal"
)

// Action is a named state transition. The set of actions is closed, see
// Reduce for their semantics.
type Action interface {
	action()
}

// Collection is the set of record types held as lists in the state.
type Collection interface {
	models.Transaction | models.Goal | models.Wallet | models.RecurringTransaction | models.SharedExpense | models.Receipt | models.Notification
	models.Record
}

type (
	// SetIdentity records the signed in identity, "" when signed out.
	SetIdentity struct{ Identity string }

	// SetUserProfile replaces the profile of the signed in identity.
	SetUserProfile struct{ Profile *models.UserProfile }

	SetAuthLoading struct{ Loading bool }
	SetDataLoading struct{ Loading bool }

	// Add inserts a record. A record with the same ID is replaced in place.
	Add[T Collection] struct{ Record T }

	// Update merges Patch into the record with ID.
	Update[T Collection] struct {
		ID    string
		Patch models.Patch
	}

	// Delete removes the record with ID.
	Delete[T Collection] struct{ ID string }

	// Replace replaces the whole collection.
	Replace[T Collection] struct{ Records []T }

	// SetBudget sets the amount allocated to a category.
	SetBudget struct {
		Category string
		Amount   decimal.Decimal
	}

	DeleteBudget struct{ Category string }

	// SetBudgets replaces all budgets.
	SetBudgets struct{ Budgets models.Budgets }

	// LoadData merges a partial snapshot into the state and marks data
	// loading as done.
	LoadData struct{ Snapshot Snapshot }

	// Reset empties all collections. The identity and UI settings are kept.
	Reset struct{}

	SetFilter    struct{ Filter Filter }
	SetSort      struct{ Sort Sort }
	SetSearch    struct{ Search string }
	SetDateRange struct{ DateRange DateRange }

	ToggleDarkMode struct{}
	SetDarkMode    struct{ DarkMode bool }

	// AddCategory appends a user defined category.
	AddCategory struct{ Category models.Category }

	// UpdateCategory replaces the user defined category named OldName.
	// Transactions and budgets referencing OldName follow the new name.
	UpdateCategory struct {
		OldName  string
		Category models.Category
	}

	// DeleteCategory removes the user defined category with Name.
	DeleteCategory struct{ Name string }

	// SetCategories replaces the user defined categories. Defaults are
	// always kept.
	SetCategories struct{ Categories []models.Category }
)

func (SetIdentity) action()    {}
func (SetUserProfile) action() {}
func (SetAuthLoading) action() {}
func (SetDataLoading) action() {}
func (Add[T]) action()         {}
func (Update[T]) action()      {}
func (Delete[T]) action()      {}
func (Replace[T]) action()     {}
func (SetBudget) action()      {}
func (DeleteBudget) action()   {}
func (SetBudgets) action()     {}
func (LoadData) action()       {}
func (Reset) action()          {}
func (SetFilter) action()      {}
func (SetSort) action()        {}
func (SetSearch) action()      {}
func (SetDateRange) action()   {}
func (ToggleDarkMode) action() {}
func (SetDarkMode) action()    {}
func (AddCategory) action()    {}
func (UpdateCategory) action() {}
func (DeleteCategory) action() {}
func (SetCategories) action()  {}
