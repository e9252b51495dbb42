// Package models contains the records synchronized by the tracker and the
// pure functions that keep them consistent.
package models

// Kind names a collection of records. The value is the collection name used
// by the remote document store.
type Kind string

const (
	KindTransactions          Kind = "transactions"
	KindBudgets               Kind = "budgets"
	KindGoals                 Kind = "goals"
	KindWallets               Kind = "wallets"
	KindRecurringTransactions Kind = "recurringTransactions"
	KindSharedExpenses        Kind = "sharedExpenses"
	KindReceipts              Kind = "receipts"
	KindNotifications         Kind = "notifications"
	KindCategories            Kind = "categories"
	KindUsers                 Kind = "users"
)

// Kinds lists every synchronized collection in the order they are fetched.
//
// Users are not part of it, there is exactly one profile per identity and it
// is handled separately.
var Kinds = []Kind{
	KindTransactions,
	KindBudgets,
	KindGoals,
	KindWallets,
	KindRecurringTransactions,
	KindSharedExpenses,
	KindReceipts,
	KindNotifications,
	KindCategories,
}

// Record is implemented by all synchronized records.
type Record interface {
	GetID() string
	Owner() string
}

// MutableRecord is the pointer side of a Record. It is used as a constraint
// so that generic code can assign ids and owners to value records.
type MutableRecord[T any] interface {
	*T
	Record
	SetID(string)
	SetOwner(string)
}

// Model is the base of all records. It carries the document id and the
// identity that owns the record.
type Model struct {
	ID     string `json:"id" example:"65392deb-5e92-4268-b114-297faad6cdce"` // Document ID
	UserID string `json:"userId" example:"u1"`                               // Owning identity
}

func (m Model) GetID() string {
	return m.ID
}

func (m Model) Owner() string {
	return m.UserID
}

func (m *Model) SetID(id string) {
	m.ID = id
}

func (m *Model) SetOwner(owner string) {
	m.UserID = owner
}

// WithIdentity returns a copy of r with id and owner set.
func WithIdentity[T any, P MutableRecord[T]](r T, id, owner string) T {
	p := P(&r)
	p.SetID(id)
	p.SetOwner(owner)
	return r
}

// IDs returns the ids of all records in order.
func IDs[T Record](records []T) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.GetID())
	}
	return ids
}
