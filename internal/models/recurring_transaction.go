package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is the interval of a recurring transaction.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// RecurringTransaction is a template that is materialized into
// transactions periodically.
type RecurringTransaction struct {
	Model
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category" validate:"required"`
	WalletID  string          `json:"walletId"`
	Note      string          `json:"note,omitempty"`
	Type      TransactionType `json:"type,omitempty" validate:"omitempty,oneof=expense income"`
	Frequency Frequency       `json:"frequency" validate:"required,oneof=daily weekly monthly yearly"`
	NextDate  time.Time       `json:"nextDate"`
	Active    bool            `json:"active"`
}
