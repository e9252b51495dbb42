package state

import (
	"github.com/envelope-zero/tracker/internal/models"
)

// prepends reports whether new records of T are inserted at the front.
// Lists of dated records are kept newest first.
func prepends[T Collection]() bool {
	switch any(*new(T)).(type) {
	case models.Wallet, models.RecurringTransaction:
		return false
	}
	return true
}

// limit returns the maximum length of a list of T, 0 for unlimited.
func limit[T Collection]() int {
	if _, ok := any(*new(T)).(models.Notification); ok {
		return MaxNotifications
	}
	return 0
}

// normalize applies the invariants of T to a record entering the state.
func normalize[T Collection](r T) T {
	if w, ok := any(r).(models.Wallet); ok {
		return any(models.NormalizeWallet(&w)).(T)
	}
	return r
}

// patch merges p into r with the merge function of its kind.
func patch[T Collection](r T, p models.Patch) (T, error) {
	var (
		out any
		err error
	)

	switch r := any(r).(type) {
	case models.Transaction:
		out, err = models.ApplyPatch(r, p)
	case models.Goal:
		out, err = models.ApplyPatch(r, p)
	case models.Wallet:
		out, err = models.ApplyPatch(r, p)
	case models.RecurringTransaction:
		out, err = models.ApplyPatch(r, p)
	case models.SharedExpense:
		out, err = models.ApplyPatch(r, p)
	case models.Receipt:
		out, err = models.ApplyPatch(r, p)
	case models.Notification:
		out, err = models.ApplyPatch(r, p)
	}

	return out.(T), err
}

// Patched returns r with p merged into it, or the merge error. It is used
// to validate a patch before dispatching Update.
func Patched[T Collection](r T, p models.Patch) (T, error) {
	return patch(r, p)
}

func index[T Collection](list []T, id string) int {
	for i, r := range list {
		if r.GetID() == id {
			return i
		}
	}
	return -1
}

// Records returns the list of T held by s.
func Records[T Collection](s State) []T {
	var list any
	switch any(*new(T)).(type) {
	case models.Transaction:
		list = s.Transactions
	case models.Goal:
		list = s.Goals
	case models.Wallet:
		list = s.Wallets
	case models.RecurringTransaction:
		list = s.RecurringTransactions
	case models.SharedExpense:
		list = s.SharedExpenses
	case models.Receipt:
		list = s.Receipts
	case models.Notification:
		list = s.Notifications
	}
	return list.([]T)
}

// Find returns the record with id from list.
func Find[T Collection](list []T, id string) (T, bool) {
	if i := index(list, id); i >= 0 {
		return list[i], true
	}
	var zero T
	return zero, false
}

// add inserts r into a copy of list. An existing record with the same ID is
// replaced at its position.
func add[T Collection](list []T, r T) []T {
	r = normalize(r)

	if i := index(list, r.GetID()); i >= 0 {
		out := make([]T, len(list))
		copy(out, list)
		out[i] = r
		return out
	}

	out := make([]T, 0, len(list)+1)
	if prepends[T]() {
		out = append(out, r)
		out = append(out, list...)
	} else {
		out = append(out, list...)
		out = append(out, r)
	}

	if n := limit[T](); n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// update merges p into the record with id. Unknown IDs and invalid patches
// leave list unchanged.
func update[T Collection](list []T, id string, p models.Patch) []T {
	i := index(list, id)
	if i < 0 {
		return list
	}

	r, err := patch(list[i], p)
	if err != nil {
		return list
	}

	out := make([]T, len(list))
	copy(out, list)
	out[i] = normalize(r)
	return out
}

func remove[T Collection](list []T, id string) []T {
	i := index(list, id)
	if i < 0 {
		return list
	}

	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}

// replace returns a normalized copy of records. A nil input yields an empty
// list.
func replace[T Collection](records []T) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		out = append(out, normalize(r))
	}

	if n := limit[T](); n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
