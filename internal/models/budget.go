package models

import (
	"github.com/shopspring/decimal"
)

// Budget is the amount allocated to one category.
//
// The remote store keeps one document per category and owner, the state keeps
// them reduced into Budgets.
type Budget struct {
	Model
	Category string          `json:"category" validate:"required" example:"Food"`
	Amount   decimal.Decimal `json:"amount" example:"250"`
}

// Budgets maps category names to the allocated amount.
type Budgets map[string]decimal.Decimal

// ReduceBudgets folds a flat list of budget documents into Budgets.
// Later documents for the same category win.
func ReduceBudgets(list []Budget) Budgets {
	b := make(Budgets, len(list))
	for _, budget := range list {
		b[budget.Category] = budget.Amount
	}
	return b
}

// Clone returns a copy of b. A nil map stays nil.
func (b Budgets) Clone() Budgets {
	if b == nil {
		return nil
	}

	c := make(Budgets, len(b))
	for k, v := range b {
		c[k] = v
	}
	return c
}
