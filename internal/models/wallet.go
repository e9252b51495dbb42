package models

import (
	"encoding/json"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// WalletType is the kind of a wallet.
type WalletType string

const (
	WalletTypeCash   WalletType = "cash"
	WalletTypeCredit WalletType = "credit"
)

// Wallet holds money. Credit wallets carry billing information, cash wallets
// never do, see NormalizeWallet.
type Wallet struct {
	Model
	Name             string          `json:"name" validate:"required" example:"Checking"`
	Balance          decimal.Decimal `json:"balance" example:"1024.5"`
	Color            string          `json:"color,omitempty" example:"#4caf50"`
	Icon             string          `json:"icon,omitempty" example:"wallet"`
	Type             WalletType      `json:"type" validate:"oneof=cash credit" example:"credit"`
	CreditLimit      decimal.Decimal `json:"creditLimit" example:"2000"`
	BillingDate      *int            `json:"billingDate" example:"15"`                      // Day of month the bill is issued
	LastBillingDate  *time.Time      `json:"lastBillingDate" example:"2024-02-15T00:00:00Z"` // Date the last bill was issued
	LastBilledAmount decimal.Decimal `json:"lastBilledAmount" example:"312.2"`
}

// UnmarshalJSON decodes a wallet leniently. Amounts that are not finite
// numbers decode to zero and billing days that are not whole numbers decode
// to nil, so that every wallet can be normalized.
func (w *Wallet) UnmarshalJSON(data []byte) error {
	type alias Wallet
	aux := struct {
		*alias
		Balance          json.RawMessage `json:"balance"`
		CreditLimit      json.RawMessage `json:"creditLimit"`
		LastBilledAmount json.RawMessage `json:"lastBilledAmount"`
		BillingDate      json.RawMessage `json:"billingDate"`
	}{alias: (*alias)(w)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	w.Balance = finiteAmount(aux.Balance)
	w.CreditLimit = finiteAmount(aux.CreditLimit)
	w.LastBilledAmount = finiteAmount(aux.LastBilledAmount)
	w.BillingDate = dayOfMonth(aux.BillingDate)

	return nil
}

func (w *Wallet) afterPatch() {
	*w = NormalizeWallet(w)
}

// finiteAmount decodes raw into a decimal. Anything that is not a finite
// number, including null, decodes to zero.
func finiteAmount(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}

	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero
	}
	return d
}

// dayOfMonth decodes raw into a whole day number. Range checks are left to
// NormalizeWallet.
func dayOfMonth(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}

	var f *float64
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		return nil
	}

	if math.IsNaN(*f) || math.IsInf(*f, 0) || *f != math.Trunc(*f) {
		return nil
	}

	day := int(*f)
	return &day
}
