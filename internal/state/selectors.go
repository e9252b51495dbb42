package state

import (
	"strings"

	"github.com/envelope-zero/tracker/internal/models"
	"github.com/ryanuber/go-glob"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// UnreadCount returns the number of unread notifications.
func UnreadCount(s State) int {
	n := 0
	for _, notification := range s.Notifications {
		if !notification.Read {
			n++
		}
	}
	return n
}

// VisibleTransactions returns the transactions matching the filter, date
// range and search term of s, ordered by its sort setting.
//
// A search term containing "*" is matched as a glob against the note and the
// category, any other term as a case insensitive substring.
func VisibleTransactions(s State) []models.Transaction {
	out := make([]models.Transaction, 0, len(s.Transactions))
	for _, t := range s.Transactions {
		if s.Filter.Category != "" && t.Category != s.Filter.Category {
			continue
		}
		if s.Filter.WalletID != "" && t.WalletID != s.Filter.WalletID {
			continue
		}
		if s.Filter.Type != "" && t.Type != s.Filter.Type {
			continue
		}
		if !s.DateRange.Contains(t.Date) {
			continue
		}
		if !matches(s.Search, t) {
			continue
		}
		out = append(out, t)
	}

	slices.SortStableFunc(out, func(a, b models.Transaction) int {
		var c int
		switch s.Sort.Field {
		case SortByAmount:
			c = a.Amount.Cmp(b.Amount)
		default:
			c = a.Date.Compare(b.Date)
		}

		if !s.Sort.Ascending {
			c = -c
		}
		return c
	})

	return out
}

func matches(term string, t models.Transaction) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}

	if strings.Contains(term, "*") {
		term = strings.ToLower(term)
		return glob.Glob(term, strings.ToLower(t.Note)) || glob.Glob(term, strings.ToLower(t.Category))
	}

	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(t.Note), term) || strings.Contains(strings.ToLower(t.Category), term)
}

// TotalsByCategory sums the amounts of the visible transactions per category.
func TotalsByCategory(s State) map[string]decimal.Decimal {
	totals := map[string]decimal.Decimal{}
	for _, t := range VisibleTransactions(s) {
		totals[t.Category] = totals[t.Category].Add(t.Amount)
	}
	return totals
}

// WalletByID returns the wallet with the given id.
func WalletByID(s State, id string) (models.Wallet, bool) {
	return Find(s.Wallets, id)
}
