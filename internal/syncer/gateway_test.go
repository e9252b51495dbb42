package syncer_test

import (
	"context"
	"time"

	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/remote"
	"github.com/envelope-zero/tracker/internal/remote/memory"
	"github.com/envelope-zero/tracker/internal/state"
	"github.com/shopspring/decimal"
)

// signIn signs in identity without push subscriptions, so that only local
// mutations change the state. hook, if set, runs for every other remote call.
func (suite *SyncSuite) signIn(identity string, hook memory.Hook) {
	suite.remote.SetHook(func(ctx context.Context, kind models.Kind, op memory.Op) error {
		if op == memory.OpSubscribe {
			return remote.ErrUnavailable
		}
		if hook != nil {
			return hook(ctx, kind, op)
		}
		return nil
	})
	suite.login(identity)
}

func (suite *SyncSuite) addWallet() models.Wallet {
	w, err := suite.gw.AddWallet(context.Background(), models.Wallet{Name: "Cash", Type: models.WalletTypeCash})
	suite.Require().Nil(err)
	return w
}

func (suite *SyncSuite) TestTransactionWriteThrough() {
	ctx := context.Background()
	suite.signIn("u1", nil)
	w := suite.addWallet()

	tx, err := suite.gw.AddTransaction(ctx, models.Transaction{
		Amount:   decimal.NewFromInt(-12),
		Category: "Food",
		WalletID: w.ID,
		Date:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	suite.Require().Nil(err)
	suite.Equal("u1", tx.UserID)
	suite.Equal([]string{tx.ID}, suite.transactionIDs(), "the add is applied before any remote write")

	snap, err := suite.cache.Snapshot(ctx)
	suite.Require().Nil(err)
	suite.Equal([]string{tx.ID}, models.IDs(snap.Transactions))

	suite.flush()
	created, err := suite.remote.Transactions.FetchByOwner(ctx, "u1")
	suite.Require().Nil(err)
	suite.Equal([]string{tx.ID}, models.IDs(created), "the remote store keeps the id")

	suite.Require().Nil(suite.gw.UpdateTransaction(ctx, tx.ID, models.Patch{"note": "Bakery"}))
	suite.Equal("Bakery", suite.store.State().Transactions[0].Note)

	suite.flush()
	updated, err := suite.remote.Transactions.FetchByOwner(ctx, "u1")
	suite.Require().Nil(err)
	suite.Equal("Bakery", updated[0].Note)

	suite.Require().Nil(suite.gw.DeleteTransaction(ctx, tx.ID))
	suite.Empty(suite.store.State().Transactions)

	suite.flush()
	suite.Equal(0, suite.remote.Transactions.Len())
}

func (suite *SyncSuite) TestTransactionValidation() {
	ctx := context.Background()
	w := suite.addWallet()

	tests := []struct {
		name string
		tx   models.Transaction
		err  error
	}{
		{"Missing category", models.Transaction{WalletID: w.ID}, models.ErrInvalid},
		{"Missing wallet", models.Transaction{Category: "Food"}, models.ErrInvalid},
		{"Unknown category", models.Transaction{Category: "Yachts", WalletID: w.ID}, models.ErrUnknownCategory},
		{"Unknown wallet", models.Transaction{Category: "Food", WalletID: "nope"}, models.ErrUnknownWallet},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.gw.AddTransaction(ctx, tt.tx)
			suite.ErrorIs(err, tt.err)
			suite.Empty(suite.store.State().Transactions)
		})
	}

	suite.ErrorIs(suite.gw.UpdateTransaction(ctx, "missing", models.Patch{"note": "x"}), models.ErrRecordNotFound)

	tx, err := suite.gw.AddTransaction(ctx, models.Transaction{Category: "Food", WalletID: w.ID})
	suite.Require().Nil(err)

	suite.ErrorIs(suite.gw.UpdateTransaction(ctx, tx.ID, models.Patch{"category": "Yachts"}), models.ErrUnknownCategory)
	suite.ErrorIs(suite.gw.UpdateTransaction(ctx, tx.ID, models.Patch{"id": "other"}), models.ErrImmutableField)
	suite.Equal("Food", suite.store.State().Transactions[0].Category)
}

func (suite *SyncSuite) TestRemoteWriteFailureKeepsLocalRecord() {
	ctx := context.Background()
	suite.signIn("u1", func(_ context.Context, kind models.Kind, op memory.Op) error {
		if kind == models.KindGoals && op == memory.OpCreate {
			return remote.ErrUnavailable
		}
		return nil
	})

	goal, err := suite.gw.AddGoal(ctx, models.Goal{Name: "Bike", TargetAmount: decimal.NewFromInt(500)})
	suite.Require().Nil(err, "remote write errors are not returned")
	suite.False(goal.CreatedAt.IsZero())

	suite.flush()
	suite.Equal([]string{goal.ID}, models.IDs(suite.store.State().Goals))
	suite.Equal(0, suite.remote.Goals.Len())
}

func (suite *SyncSuite) TestGoalAchieved() {
	ctx := context.Background()

	goal, err := suite.gw.AddGoal(ctx, models.Goal{Name: "Bike", TargetAmount: decimal.NewFromInt(500)})
	suite.Require().Nil(err)

	suite.Require().Nil(suite.gw.UpdateGoal(ctx, goal.ID, models.Patch{"currentAmount": "500"}))
	suite.True(suite.store.State().Goals[0].Achieved)

	suite.Require().Nil(suite.gw.DeleteGoal(ctx, goal.ID))
	suite.Empty(suite.store.State().Goals)
}

func (suite *SyncSuite) TestWalletNormalized() {
	ctx := context.Background()
	suite.signIn("u1", nil)

	day := 40
	w, err := suite.gw.AddWallet(ctx, models.Wallet{
		Name:        "Card",
		Type:        models.WalletTypeCredit,
		CreditLimit: decimal.NewFromInt(-100),
		BillingDate: &day,
	})
	suite.Require().Nil(err)
	suite.Nil(w.BillingDate)
	suite.True(w.CreditLimit.IsZero())

	suite.Require().Nil(suite.gw.UpdateWallet(ctx, w.ID, models.Patch{"creditLimit": "1000", "billingDate": 15}))
	suite.Require().Nil(suite.gw.UpdateWallet(ctx, w.ID, models.Patch{"type": "cash"}))

	local := suite.store.State().Wallets[0]
	suite.Equal(models.WalletTypeCash, local.Type)
	suite.True(local.CreditLimit.IsZero())
	suite.Nil(local.BillingDate)

	suite.flush()
	stored, err := suite.remote.Wallets.FetchByOwner(ctx, "u1")
	suite.Require().Nil(err)
	suite.Require().Len(stored, 1)
	suite.Equal(models.WalletTypeCash, stored[0].Type)
	suite.True(stored[0].CreditLimit.IsZero(), "the remote wallet is normalized, too")
	suite.Nil(stored[0].BillingDate)

	suite.Require().Nil(suite.gw.DeleteWallet(ctx, w.ID))
	suite.flush()
	suite.Equal(0, suite.remote.Wallets.Len())
}

func (suite *SyncSuite) TestOtherCollections() {
	ctx := context.Background()
	suite.signIn("u1", nil)
	w := suite.addWallet()

	rt, err := suite.gw.AddRecurringTransaction(ctx, models.RecurringTransaction{
		Category:  "Bills",
		WalletID:  w.ID,
		Frequency: models.FrequencyMonthly,
		Amount:    decimal.NewFromInt(-800),
	})
	suite.Require().Nil(err)
	suite.Require().Nil(suite.gw.UpdateRecurringTransaction(ctx, rt.ID, models.Patch{"active": true}))

	se, err := suite.gw.AddSharedExpense(ctx, models.SharedExpense{Description: "Dinner", TotalAmount: decimal.NewFromInt(90)})
	suite.Require().Nil(err)
	suite.Require().Nil(suite.gw.UpdateSharedExpense(ctx, se.ID, models.Patch{"description": "Team dinner"}))

	r, err := suite.gw.AddReceipt(ctx, models.Receipt{Merchant: "Bakery", Total: decimal.NewFromInt(4)})
	suite.Require().Nil(err)
	suite.Require().Nil(suite.gw.UpdateReceipt(ctx, r.ID, models.Patch{"merchant": "Corner bakery"}))

	suite.flush()
	suite.Equal(1, suite.remote.RecurringTransactions.Len())
	suite.Equal(1, suite.remote.SharedExpenses.Len())
	suite.Equal(1, suite.remote.Receipts.Len())

	s := suite.store.State()
	suite.True(s.RecurringTransactions[0].Active)
	suite.Equal("Team dinner", s.SharedExpenses[0].Description)
	suite.Equal("Corner bakery", s.Receipts[0].Merchant)

	suite.Require().Nil(suite.gw.DeleteRecurringTransaction(ctx, rt.ID))
	suite.Require().Nil(suite.gw.DeleteSharedExpense(ctx, se.ID))
	suite.Require().Nil(suite.gw.DeleteReceipt(ctx, r.ID))

	suite.flush()
	suite.Equal(0, suite.remote.RecurringTransactions.Len())
	suite.Equal(0, suite.remote.SharedExpenses.Len())
	suite.Equal(0, suite.remote.Receipts.Len())
}

func (suite *SyncSuite) TestNotifications() {
	ctx := context.Background()
	suite.signIn("u1", nil)

	var ids []string
	for i := 0; i < 3; i++ {
		n, err := suite.gw.AddNotification(ctx, models.Notification{Message: "Budget exceeded"})
		suite.Require().Nil(err)
		ids = append(ids, n.ID)
	}
	suite.Equal(3, state.UnreadCount(suite.store.State()))

	suite.Require().Nil(suite.gw.MarkNotificationRead(ctx, ids[0]))
	suite.Equal(2, state.UnreadCount(suite.store.State()))

	suite.Require().Nil(suite.gw.MarkAllNotificationsRead(ctx))
	suite.Equal(0, state.UnreadCount(suite.store.State()))

	suite.flush()
	stored, err := suite.remote.Notifications.FetchByOwner(ctx, "u1")
	suite.Require().Nil(err)
	suite.Len(stored, 3)
	for _, n := range stored {
		suite.True(n.Read)
	}

	suite.Require().Nil(suite.gw.DeleteNotification(ctx, ids[1]))
	suite.Len(suite.store.State().Notifications, 2)
}

func (suite *SyncSuite) TestNotificationsCapped() {
	ctx := context.Background()

	var last string
	for i := 0; i < state.MaxNotifications+5; i++ {
		n, err := suite.gw.AddNotification(ctx, models.Notification{Message: "Hello"})
		suite.Require().Nil(err)
		last = n.ID
	}

	s := suite.store.State()
	suite.Len(s.Notifications, state.MaxNotifications)
	suite.Equal(last, s.Notifications[0].ID, "newest first")
}

func (suite *SyncSuite) TestBudgets() {
	ctx := context.Background()
	suite.signIn("u1", nil)

	suite.ErrorIs(suite.gw.SetBudget(ctx, "Yachts", decimal.NewFromInt(1)), models.ErrUnknownCategory)

	suite.Require().Nil(suite.gw.SetBudget(ctx, "Food", decimal.NewFromInt(250)))
	suite.Require().Nil(suite.gw.SetBudget(ctx, "Food", decimal.NewFromInt(300)))
	suite.True(suite.store.State().Budgets["Food"].Equal(decimal.NewFromInt(300)))

	suite.flush()
	stored, err := suite.remote.Budgets.FetchByOwner(ctx, "u1")
	suite.Require().Nil(err)
	suite.Require().Len(stored, 1, "one document per category")
	suite.True(stored[0].Amount.Equal(decimal.NewFromInt(300)))

	suite.Require().Nil(suite.gw.DeleteBudget(ctx, "Food"))
	suite.NotContains(suite.store.State().Budgets, "Food")

	suite.flush()
	suite.Equal(0, suite.remote.Budgets.Len())
}

func (suite *SyncSuite) TestAddCategory() {
	ctx := context.Background()
	suite.signIn("u1", nil)

	c, err := suite.gw.AddCategory(ctx, models.Category{Name: " Hobbies "})
	suite.Require().Nil(err)
	suite.Equal("Hobbies", c.Name)
	suite.Equal(models.CategoryTypeExpense, c.Type)

	_, err = suite.gw.AddCategory(ctx, models.Category{Name: "Hobbies"})
	suite.ErrorIs(err, models.ErrCategoryNameNotUnique)

	_, err = suite.gw.AddCategory(ctx, models.Category{Name: "Food"})
	suite.ErrorIs(err, models.ErrCategoryNameNotUnique)

	_, err = suite.gw.AddCategory(ctx, models.Category{})
	suite.ErrorIs(err, models.ErrInvalid)

	suite.flush()
	suite.Equal(1, suite.remote.Categories.Len())

	s := suite.store.State()
	suite.Len(s.Categories, len(models.DefaultCategories())+1)
	suite.Equal("Hobbies", s.Categories[len(s.Categories)-1].Name)
}

func (suite *SyncSuite) TestDeleteCategory() {
	ctx := context.Background()
	w := suite.addWallet()

	_, err := suite.gw.AddCategory(ctx, models.Category{Name: "Hobbies"})
	suite.Require().Nil(err)
	_, err = suite.gw.AddCategory(ctx, models.Category{Name: "Garden"})
	suite.Require().Nil(err)
	_, err = suite.gw.AddTransaction(ctx, models.Transaction{Category: "Hobbies", WalletID: w.ID})
	suite.Require().Nil(err)

	before := suite.store.State()

	suite.ErrorIs(suite.gw.DeleteCategory(ctx, "Hobbies"), models.ErrCategoryInUse)
	suite.Equal(before.Categories, suite.store.State().Categories, "a rejected delete leaves the state unchanged")

	suite.ErrorIs(suite.gw.DeleteCategory(ctx, "Food"), models.ErrDefaultCategory)
	suite.ErrorIs(suite.gw.DeleteCategory(ctx, "Yachts"), models.ErrUnknownCategory)

	suite.Require().Nil(suite.gw.DeleteCategory(ctx, "Garden"))
	suite.Equal(-1, models.FindCategory(suite.store.State().Categories, "Garden"))
}

func (suite *SyncSuite) TestDeleteCategoryRemote() {
	ctx := context.Background()
	suite.signIn("u1", nil)

	_, err := suite.gw.AddCategory(ctx, models.Category{Name: "Garden"})
	suite.Require().Nil(err)
	suite.flush()
	suite.Equal(1, suite.remote.Categories.Len())

	suite.Require().Nil(suite.gw.DeleteCategory(ctx, "Garden"))
	suite.flush()
	suite.Equal(0, suite.remote.Categories.Len())
}

func (suite *SyncSuite) TestUpdateCategory() {
	ctx := context.Background()
	suite.signIn("u1", nil)
	w := suite.addWallet()

	_, err := suite.gw.AddCategory(ctx, models.Category{Name: "Hobbies"})
	suite.Require().Nil(err)
	_, err = suite.gw.AddCategory(ctx, models.Category{Name: "Garden"})
	suite.Require().Nil(err)
	tx, err := suite.gw.AddTransaction(ctx, models.Transaction{Category: "Hobbies", WalletID: w.ID})
	suite.Require().Nil(err)
	suite.Require().Nil(suite.gw.SetBudget(ctx, "Hobbies", decimal.NewFromInt(50)))

	suite.ErrorIs(suite.gw.UpdateCategory(ctx, "Food", models.Category{Name: "Meals"}), models.ErrDefaultCategory)
	suite.ErrorIs(suite.gw.UpdateCategory(ctx, "Yachts", models.Category{Name: "Boats"}), models.ErrUnknownCategory)
	suite.ErrorIs(suite.gw.UpdateCategory(ctx, "Hobbies", models.Category{Name: "Garden"}), models.ErrCategoryNameNotUnique)
	suite.ErrorIs(suite.gw.UpdateCategory(ctx, "Hobbies", models.Category{Name: "Food"}), models.ErrCategoryNameNotUnique)

	suite.Require().Nil(suite.gw.UpdateCategory(ctx, "Hobbies", models.Category{Name: "Crafts", Icon: "scissors"}))

	s := suite.store.State()
	suite.Equal(-1, models.FindCategory(s.Categories, "Hobbies"))
	suite.Equal("Crafts", s.Transactions[0].Category)
	suite.Contains(s.Budgets, "Crafts")

	suite.flush()

	transactions, err := suite.remote.Transactions.FetchByOwner(ctx, "u1")
	suite.Require().Nil(err)
	suite.Require().Len(transactions, 1)
	suite.Equal(tx.ID, transactions[0].ID)
	suite.Equal("Crafts", transactions[0].Category)

	budgets, err := suite.remote.Budgets.FetchByOwner(ctx, "u1")
	suite.Require().Nil(err)
	suite.Require().Len(budgets, 1)
	suite.Equal("Crafts", budgets[0].Category)

	categories, err := suite.remote.Categories.FetchByOwner(ctx, "u1")
	suite.Require().Nil(err)
	suite.Require().Len(categories, 2)
	suite.ElementsMatch([]string{"Crafts", "Garden"}, []string{categories[0].Name, categories[1].Name})
}
