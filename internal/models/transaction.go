package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money going out from money coming in.
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypeIncome  TransactionType = "income"
)

// Transaction is a single booking against a wallet.
type Transaction struct {
	Model
	Amount   decimal.Decimal `json:"amount" example:"-12.5"`                                   // Signed amount
	Category string          `json:"category" validate:"required" example:"Food"`              // Name of the category
	WalletID string          `json:"walletId" validate:"required" example:"w1"`                // ID of the wallet
	Date     time.Time       `json:"date" example:"2024-03-01T12:00:00Z"`                      // Date of the booking
	Note     string          `json:"note,omitempty" example:"Groceries"`                       // Free text note
	Type     TransactionType `json:"type,omitempty" validate:"omitempty,oneof=expense income"` // Expense or income
}

func (t *Transaction) afterPatch() {
	t.Date = t.Date.In(time.UTC)
}
