package syncer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/remote"
	"github.com/envelope-zero/tracker/internal/state"
	"github.com/envelope-zero/tracker/internal/uuid"
	"github.com/shopspring/decimal"
)

// Gateway applies mutations.
//
// Every mutation changes the state synchronously and writes it through to
// the cache. While an identity is signed in, the matching remote write is
// queued afterwards. Remote write failures are logged, the push
// subscriptions eventually reconcile the state with the remote store.
type Gateway struct {
	c *Coordinator
}

// Gateway returns the mutation gateway of the coordinator.
func (c *Coordinator) Gateway() *Gateway {
	return &Gateway{c: c}
}

// check validates a record against the current state before it is written.
type check[T any] func(s state.State, record T) error

// add inserts record under a new id owned by the current identity.
func add[T state.Collection, P models.MutableRecord[T]](ctx context.Context, c *Coordinator, coll remote.Collection[T], record T, valid check[T]) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return record, ErrClosed
	}

	s := c.store.State()
	record = models.WithIdentity[T, P](record, uuid.New(), s.Identity)

	if err := models.Validate(record); err != nil {
		return record, err
	}
	if valid != nil {
		if err := valid(s, record); err != nil {
			return record, err
		}
	}

	s = c.store.Dispatch(state.Add[T]{Record: record})
	c.persist(ctx, s)

	if s.Identity == "" {
		return record, nil
	}

	gen := c.generation
	c.enqueue(coll.Kind(), "create", func(ctx context.Context) error {
		created, err := coll.Create(ctx, record)
		if err != nil {
			return err
		}

		if created.GetID() != record.GetID() {
			c.apply(gen, state.Delete[T]{ID: record.GetID()}, state.Add[T]{Record: created})
		}
		return nil
	})

	return record, nil
}

// update merges patch into the record with id.
func update[T state.Collection](ctx context.Context, c *Coordinator, coll remote.Collection[T], id string, patch models.Patch, valid check[T]) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	s := c.store.State()
	current, ok := state.Find(state.Records[T](s), id)
	if !ok {
		return fmt.Errorf("%w: %s/%s", models.ErrRecordNotFound, coll.Kind(), id)
	}

	updated, err := state.Patched(current, patch)
	if err != nil {
		return err
	}
	if err := models.Validate(updated); err != nil {
		return err
	}
	if valid != nil {
		if err := valid(s, updated); err != nil {
			return err
		}
	}

	// Wallets are sent normalized as a whole
	if w, ok := any(updated).(models.Wallet); ok {
		if patch, err = recordPatch(w); err != nil {
			return err
		}
	}

	s = c.store.Dispatch(state.Update[T]{ID: id, Patch: patch})
	c.persist(ctx, s)

	if s.Identity != "" {
		c.enqueue(coll.Kind(), "update", func(ctx context.Context) error {
			return coll.Update(ctx, id, patch)
		})
	}

	return nil
}

// remove deletes the record with id. Deleting a record that does not exist
// is not an error.
func remove[T state.Collection](ctx context.Context, c *Coordinator, coll remote.Collection[T], id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	s := c.store.Dispatch(state.Delete[T]{ID: id})
	c.persist(ctx, s)

	if s.Identity != "" {
		c.enqueue(coll.Kind(), "delete", func(ctx context.Context) error {
			return coll.Delete(ctx, id)
		})
	}

	return nil
}

// recordPatch returns a patch that replaces every mutable field with the
// value in r.
func recordPatch(r any) (models.Patch, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}

	var p models.Patch
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}

	delete(p, "id")
	delete(p, "userId")
	return p, nil
}

// references checks that the category and the wallet of a booking exist.
// An empty wallet ID is not checked.
func references(s state.State, category, walletID string) error {
	if models.FindCategory(s.Categories, category) < 0 {
		return fmt.Errorf("%w: %s", models.ErrUnknownCategory, category)
	}
	if walletID == "" {
		return nil
	}
	if _, ok := state.WalletByID(s, walletID); !ok {
		return fmt.Errorf("%w: %s", models.ErrUnknownWallet, walletID)
	}
	return nil
}

func validTransaction(s state.State, t models.Transaction) error {
	return references(s, t.Category, t.WalletID)
}

func validRecurring(s state.State, t models.RecurringTransaction) error {
	return references(s, t.Category, t.WalletID)
}

// AddTransaction books a transaction. Its category and wallet must exist.
func (g *Gateway) AddTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	return add(ctx, g.c, g.c.remote.Transactions, t, validTransaction)
}

func (g *Gateway) UpdateTransaction(ctx context.Context, id string, patch models.Patch) error {
	return update(ctx, g.c, g.c.remote.Transactions, id, patch, validTransaction)
}

func (g *Gateway) DeleteTransaction(ctx context.Context, id string) error {
	return remove(ctx, g.c, g.c.remote.Transactions, id)
}

func (g *Gateway) AddGoal(ctx context.Context, goal models.Goal) (models.Goal, error) {
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = g.c.now()
	}
	return add(ctx, g.c, g.c.remote.Goals, goal, nil)
}

// UpdateGoal merges patch into a goal. Reaching the target amount marks the
// goal as achieved.
func (g *Gateway) UpdateGoal(ctx context.Context, id string, patch models.Patch) error {
	return update(ctx, g.c, g.c.remote.Goals, id, patch, nil)
}

func (g *Gateway) DeleteGoal(ctx context.Context, id string) error {
	return remove(ctx, g.c, g.c.remote.Goals, id)
}

// AddWallet adds a normalized copy of w.
func (g *Gateway) AddWallet(ctx context.Context, w models.Wallet) (models.Wallet, error) {
	return add(ctx, g.c, g.c.remote.Wallets, models.NormalizeWallet(&w), nil)
}

func (g *Gateway) UpdateWallet(ctx context.Context, id string, patch models.Patch) error {
	return update(ctx, g.c, g.c.remote.Wallets, id, patch, nil)
}

func (g *Gateway) DeleteWallet(ctx context.Context, id string) error {
	return remove(ctx, g.c, g.c.remote.Wallets, id)
}

func (g *Gateway) AddRecurringTransaction(ctx context.Context, t models.RecurringTransaction) (models.RecurringTransaction, error) {
	return add(ctx, g.c, g.c.remote.RecurringTransactions, t, validRecurring)
}

func (g *Gateway) UpdateRecurringTransaction(ctx context.Context, id string, patch models.Patch) error {
	return update(ctx, g.c, g.c.remote.RecurringTransactions, id, patch, validRecurring)
}

func (g *Gateway) DeleteRecurringTransaction(ctx context.Context, id string) error {
	return remove(ctx, g.c, g.c.remote.RecurringTransactions, id)
}

func (g *Gateway) AddSharedExpense(ctx context.Context, e models.SharedExpense) (models.SharedExpense, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = g.c.now()
	}
	return add(ctx, g.c, g.c.remote.SharedExpenses, e, nil)
}

func (g *Gateway) UpdateSharedExpense(ctx context.Context, id string, patch models.Patch) error {
	return update(ctx, g.c, g.c.remote.SharedExpenses, id, patch, nil)
}

func (g *Gateway) DeleteSharedExpense(ctx context.Context, id string) error {
	return remove(ctx, g.c, g.c.remote.SharedExpenses, id)
}

func (g *Gateway) AddReceipt(ctx context.Context, r models.Receipt) (models.Receipt, error) {
	if r.UploadedAt.IsZero() {
		r.UploadedAt = g.c.now()
	}
	return add(ctx, g.c, g.c.remote.Receipts, r, nil)
}

func (g *Gateway) UpdateReceipt(ctx context.Context, id string, patch models.Patch) error {
	return update(ctx, g.c, g.c.remote.Receipts, id, patch, nil)
}

func (g *Gateway) DeleteReceipt(ctx context.Context, id string) error {
	return remove(ctx, g.c, g.c.remote.Receipts, id)
}

// AddNotification inserts n at the front of the notifications. Only the
// newest notifications are kept.
func (g *Gateway) AddNotification(ctx context.Context, n models.Notification) (models.Notification, error) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = g.c.now()
	}
	return add(ctx, g.c, g.c.remote.Notifications, n, nil)
}

func (g *Gateway) UpdateNotification(ctx context.Context, id string, patch models.Patch) error {
	return update(ctx, g.c, g.c.remote.Notifications, id, patch, nil)
}

func (g *Gateway) DeleteNotification(ctx context.Context, id string) error {
	return remove(ctx, g.c, g.c.remote.Notifications, id)
}

func (g *Gateway) MarkNotificationRead(ctx context.Context, id string) error {
	return g.UpdateNotification(ctx, id, models.Patch{"read": true})
}

// MarkAllNotificationsRead marks every unread notification as read in one
// transition.
func (g *Gateway) MarkAllNotificationsRead(ctx context.Context) error {
	c := g.c
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	read := models.Patch{"read": true}

	var (
		actions []state.Action
		ids     []string
	)
	for _, n := range c.store.State().Notifications {
		if !n.Read {
			actions = append(actions, state.Update[models.Notification]{ID: n.ID, Patch: read})
			ids = append(ids, n.ID)
		}
	}

	if len(actions) == 0 {
		return nil
	}

	s := c.store.Dispatch(actions...)
	c.persist(ctx, s)

	if s.Identity != "" {
		coll := c.remote.Notifications
		for _, id := range ids {
			c.enqueue(coll.Kind(), "update", func(ctx context.Context) error {
				return coll.Update(ctx, id, read)
			})
		}
	}

	return nil
}

// SetBudget allocates amount to an existing category.
func (g *Gateway) SetBudget(ctx context.Context, category string, amount decimal.Decimal) error {
	c := g.c
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	if models.FindCategory(c.store.State().Categories, category) < 0 {
		return fmt.Errorf("%w: %s", models.ErrUnknownCategory, category)
	}

	s := c.store.Dispatch(state.SetBudget{Category: category, Amount: amount})
	c.persist(ctx, s)

	if owner := s.Identity; owner != "" {
		c.enqueue(models.KindBudgets, "set", func(ctx context.Context) error {
			return c.putBudget(ctx, owner, category, amount)
		})
	}

	return nil
}

func (g *Gateway) DeleteBudget(ctx context.Context, category string) error {
	c := g.c
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	s := c.store.Dispatch(state.DeleteBudget{Category: category})
	c.persist(ctx, s)

	if owner := s.Identity; owner != "" {
		c.enqueue(models.KindBudgets, "delete", func(ctx context.Context) error {
			return c.deleteBudget(ctx, owner, category)
		})
	}

	return nil
}

// putBudget updates the budget document of the category or creates it.
func (c *Coordinator) putBudget(ctx context.Context, owner, category string, amount decimal.Decimal) error {
	list, err := c.remote.Budgets.FetchByOwnerUnordered(ctx, owner)
	if err != nil {
		return err
	}

	for _, b := range list {
		if b.Category == category {
			return c.remote.Budgets.Update(ctx, b.ID, models.Patch{"amount": amount})
		}
	}

	_, err = c.remote.Budgets.Create(ctx, models.Budget{
		Model:    models.Model{ID: uuid.New(), UserID: owner},
		Category: category,
		Amount:   amount,
	})
	return err
}

// deleteBudget deletes all budget documents of the category.
func (c *Coordinator) deleteBudget(ctx context.Context, owner, category string) error {
	list, err := c.remote.Budgets.FetchByOwnerUnordered(ctx, owner)
	if err != nil {
		return err
	}

	for _, b := range list {
		if b.Category != category {
			continue
		}
		if err := c.remote.Budgets.Delete(ctx, b.ID); err != nil {
			return err
		}
	}
	return nil
}

// AddCategory adds a user defined category. Its name must not be used by any
// visible category.
func (g *Gateway) AddCategory(ctx context.Context, category models.Category) (models.Category, error) {
	c := g.c
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return category, ErrClosed
	}

	s := c.store.State()
	category = models.WithIdentity(models.NormalizeCategory(category), uuid.New(), s.Identity)

	if err := models.Validate(category); err != nil {
		return category, err
	}
	if models.FindCategory(s.Categories, category.Name) >= 0 {
		return category, fmt.Errorf("%w: %s", models.ErrCategoryNameNotUnique, category.Name)
	}

	s = c.store.Dispatch(state.AddCategory{Category: category})
	c.persist(ctx, s)

	if s.Identity == "" {
		return category, nil
	}

	gen := c.generation
	coll := c.remote.Categories
	c.enqueue(coll.Kind(), "create", func(ctx context.Context) error {
		created, err := coll.Create(ctx, category)
		if err != nil {
			return err
		}

		if created.ID != category.ID {
			c.apply(gen, state.UpdateCategory{OldName: category.Name, Category: created})
		}
		return nil
	})

	return category, nil
}

// UpdateCategory replaces the user defined category named oldName. On a
// rename, transactions, recurring transactions and the budget of the
// category follow.
func (g *Gateway) UpdateCategory(ctx context.Context, oldName string, category models.Category) error {
	c := g.c
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	if models.IsDefaultCategory(oldName) {
		return fmt.Errorf("%w: %s", models.ErrDefaultCategory, oldName)
	}

	prev := c.store.State()
	i := models.FindCategory(prev.Categories, oldName)
	if i < 0 {
		return fmt.Errorf("%w: %s", models.ErrUnknownCategory, oldName)
	}

	category = models.NormalizeCategory(category)
	category.Model = prev.Categories[i].Model

	if err := models.Validate(category); err != nil {
		return err
	}
	if category.Name != oldName && models.FindCategory(prev.Categories, category.Name) >= 0 {
		return fmt.Errorf("%w: %s", models.ErrCategoryNameNotUnique, category.Name)
	}

	s := c.store.Dispatch(state.UpdateCategory{OldName: oldName, Category: category})
	c.persist(ctx, s)

	owner := s.Identity
	if owner == "" {
		return nil
	}

	if category.ID != "" {
		fields, err := recordPatch(category)
		if err != nil {
			return err
		}

		c.enqueue(models.KindCategories, "update", func(ctx context.Context) error {
			return c.remote.Categories.Update(ctx, category.ID, fields)
		})
	}

	if category.Name == oldName {
		return nil
	}

	renamed := models.Patch{"category": category.Name}
	for _, t := range prev.Transactions {
		if t.Category == oldName {
			c.enqueue(models.KindTransactions, "update", func(ctx context.Context) error {
				return c.remote.Transactions.Update(ctx, t.ID, renamed)
			})
		}
	}
	for _, t := range prev.RecurringTransactions {
		if t.Category == oldName {
			c.enqueue(models.KindRecurringTransactions, "update", func(ctx context.Context) error {
				return c.remote.RecurringTransactions.Update(ctx, t.ID, renamed)
			})
		}
	}

	if amount, ok := prev.Budgets[oldName]; ok {
		c.enqueue(models.KindBudgets, "rename", func(ctx context.Context) error {
			if err := c.deleteBudget(ctx, owner, oldName); err != nil {
				return err
			}
			return c.putBudget(ctx, owner, category.Name, amount)
		})
	}

	return nil
}

// DeleteCategory deletes a user defined category. It fails with
// models.ErrCategoryInUse while any transaction references it.
func (g *Gateway) DeleteCategory(ctx context.Context, name string) error {
	c := g.c
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	if models.IsDefaultCategory(name) {
		return fmt.Errorf("%w: %s", models.ErrDefaultCategory, name)
	}

	s := c.store.State()
	i := models.FindCategory(s.Categories, name)
	if i < 0 {
		return fmt.Errorf("%w: %s", models.ErrUnknownCategory, name)
	}
	if state.CategoryInUse(s, name) {
		return fmt.Errorf("%w: %s", models.ErrCategoryInUse, name)
	}

	id := s.Categories[i].ID

	s = c.store.Dispatch(state.DeleteCategory{Name: name})
	c.persist(ctx, s)

	if s.Identity != "" && id != "" {
		c.enqueue(models.KindCategories, "delete", func(ctx context.Context) error {
			return c.remote.Categories.Delete(ctx, id)
		})
	}

	return nil
}
