package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Participant is one person an expense is split with.
type Participant struct {
	Name    string          `json:"name"`
	Share   decimal.Decimal `json:"share"`
	Settled bool            `json:"settled"`
}

// SharedExpense is an expense split between several participants.
type SharedExpense struct {
	Model
	Description  string          `json:"description"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	PaidBy       string          `json:"paidBy"`
	Participants []Participant   `json:"participants"`
	CreatedAt    time.Time       `json:"createdAt"`
}
