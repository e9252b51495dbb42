package models

import (
	"github.com/envelope-zero/tracker/internal/uuid"
	"github.com/shopspring/decimal"
)

// NormalizeWallet returns w with the cash and credit invariants applied.
//
// It never fails. A nil wallet yields a default cash wallet with a new ID.
// Credit wallets keep a non-negative credit limit, a billing day in [1, 31]
// or nil, and their last billing information. Cash wallets have no credit
// limit and no billing information. Any type other than credit is cash.
//
// NormalizeWallet is idempotent.
func NormalizeWallet(w *Wallet) Wallet {
	if w == nil {
		return Wallet{
			Model: Model{ID: uuid.New()},
			Name:  "Cash",
			Icon:  "wallet",
			Color: "#4caf50",
			Type:  WalletTypeCash,
		}
	}

	n := *w
	n.ID = uuid.OrNew(n.ID)

	if n.Type != WalletTypeCredit {
		n.Type = WalletTypeCash
	}

	if n.Type == WalletTypeCash {
		n.CreditLimit = decimal.Zero
		n.BillingDate = nil
		n.LastBillingDate = nil
		n.LastBilledAmount = decimal.Zero
		return n
	}

	if n.CreditLimit.IsNegative() {
		n.CreditLimit = decimal.Zero
	}

	// Copy pointers so that the normalized wallet never shares memory
	// with its input
	if n.BillingDate != nil {
		day := *n.BillingDate
		if day < 1 || day > 31 {
			n.BillingDate = nil
		} else {
			n.BillingDate = &day
		}
	}

	if n.LastBillingDate != nil {
		t := *n.LastBillingDate
		n.LastBillingDate = &t
	}

	return n
}

// NormalizeWallets normalizes every wallet in list into a new slice.
func NormalizeWallets(list []Wallet) []Wallet {
	if list == nil {
		return nil
	}

	out := make([]Wallet, 0, len(list))
	for i := range list {
		out = append(out, NormalizeWallet(&list[i]))
	}
	return out
}

// MergeCategories returns the defaults in their fixed order, followed by all
// user defined categories whose name does not collide with a default.
//
// User defined categories keep their relative order. When several of them
// share a name, the first one wins.
func MergeCategories(defaults, userDefined []Category) []Category {
	merged := make([]Category, 0, len(defaults)+len(userDefined))
	seen := make(map[string]bool, len(defaults)+len(userDefined))

	for _, c := range defaults {
		merged = append(merged, c)
		seen[c.Name] = true
	}

	for _, c := range userDefined {
		if seen[c.Name] {
			continue
		}
		merged = append(merged, c)
		seen[c.Name] = true
	}

	return merged
}

// UserCategories returns the categories that are not defaults.
func UserCategories(categories []Category) []Category {
	user := make([]Category, 0, len(categories))
	for _, c := range categories {
		if !IsDefaultCategory(c.Name) {
			user = append(user, c)
		}
	}
	return user
}
