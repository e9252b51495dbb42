package remote

import (
	"time"

	"github.com/envelope-zero/tracker/internal/models"
	"golang.org/x/exp/slices"
)

// Sort orders records the way the remote store materializes them: dated
// records newest first, all others in insertion order. The slice is sorted
// in place.
func Sort[T any](records []T) {
	key := sortKey[T]()
	if key == nil {
		return
	}

	slices.SortStableFunc(records, func(a, b T) int {
		return key(b).Compare(key(a))
	})
}

func sortKey[T any]() func(T) time.Time {
	var f any
	switch any(*new(T)).(type) {
	case models.Transaction:
		f = func(t models.Transaction) time.Time { return t.Date }
	case models.Goal:
		f = func(g models.Goal) time.Time { return g.CreatedAt }
	case models.SharedExpense:
		f = func(e models.SharedExpense) time.Time { return e.CreatedAt }
	case models.Receipt:
		f = func(r models.Receipt) time.Time { return r.UploadedAt }
	case models.Notification:
		f = func(n models.Notification) time.Time { return n.CreatedAt }
	default:
		return nil
	}
	return f.(func(T) time.Time)
}
