package state_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/state"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transaction(id, category string) models.Transaction {
	return models.Transaction{
		Model:    models.Model{ID: id, UserID: "u1"},
		Amount:   decimal.NewFromInt(-10),
		Category: category,
		WalletID: "w1",
		Date:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func reduce(s state.State, actions ...state.Action) state.State {
	for _, a := range actions {
		s = state.Reduce(s, a)
	}
	return s
}

func TestInitial(t *testing.T) {
	s := state.Initial()

	assert.True(t, s.AuthLoading)
	assert.False(t, s.DataLoading)
	assert.Empty(t, s.Transactions)
	assert.NotNil(t, s.Transactions)
	assert.Equal(t, models.DefaultCategories(), s.Categories)
	assert.Equal(t, state.SortByDate, s.Sort.Field)
}

func TestNotificationsCapped(t *testing.T) {
	s := state.Initial()

	const n = 73
	for i := 0; i < n; i++ {
		s = state.Reduce(s, state.Add[models.Notification]{Record: models.Notification{
			Model:   models.Model{ID: fmt.Sprintf("n%d", i)},
			Message: fmt.Sprint(i),
		}})
		assert.LessOrEqual(t, len(s.Notifications), state.MaxNotifications)
	}

	require.Len(t, s.Notifications, state.MaxNotifications)
	for i, notification := range s.Notifications {
		assert.Equal(t, fmt.Sprintf("n%d", n-1-i), notification.ID, "notifications are not the newest, newest first")
	}
}

func TestAddOrder(t *testing.T) {
	s := reduce(state.Initial(),
		state.Add[models.Transaction]{Record: transaction("t1", "Food")},
		state.Add[models.Transaction]{Record: transaction("t2", "Food")},
		state.Add[models.Wallet]{Record: models.Wallet{Model: models.Model{ID: "w1"}, Name: "One"}},
		state.Add[models.Wallet]{Record: models.Wallet{Model: models.Model{ID: "w2"}, Name: "Two"}},
	)

	assert.Equal(t, []string{"t2", "t1"}, models.IDs(s.Transactions), "transactions are prepended")
	assert.Equal(t, []string{"w1", "w2"}, models.IDs(s.Wallets), "wallets are appended")
}

func TestAddExistingIDReplaces(t *testing.T) {
	s := reduce(state.Initial(),
		state.Add[models.Transaction]{Record: transaction("t1", "Food")},
		state.Add[models.Transaction]{Record: transaction("t2", "Food")},
		state.Add[models.Transaction]{Record: transaction("t1", "Bills")},
	)

	require.Equal(t, []string{"t2", "t1"}, models.IDs(s.Transactions))
	assert.Equal(t, "Bills", s.Transactions[1].Category)
}

func TestAddNormalizesWallet(t *testing.T) {
	s := state.Reduce(state.Initial(), state.Add[models.Wallet]{Record: models.Wallet{
		Model:       models.Model{ID: "w1"},
		Type:        models.WalletTypeCash,
		CreditLimit: decimal.NewFromInt(100),
		BillingDate: func() *int { d := 4; return &d }(),
	}})

	require.Len(t, s.Wallets, 1)
	assert.True(t, s.Wallets[0].CreditLimit.IsZero())
	assert.Nil(t, s.Wallets[0].BillingDate)
}

func TestReduceDoesNotModifyPrevious(t *testing.T) {
	before := reduce(state.Initial(),
		state.Add[models.Transaction]{Record: transaction("t1", "Food")},
		state.Add[models.Transaction]{Record: transaction("t2", "Food")},
		state.SetBudget{Category: "Food", Amount: decimal.NewFromInt(100)},
	)

	after := reduce(before,
		state.Update[models.Transaction]{ID: "t1", Patch: models.Patch{"note": "changed"}},
		state.Delete[models.Transaction]{ID: "t2"},
		state.Add[models.Transaction]{Record: transaction("t3", "Food")},
		state.SetBudget{Category: "Food", Amount: decimal.NewFromInt(5)},
	)

	assert.Equal(t, []string{"t2", "t1"}, models.IDs(before.Transactions))
	assert.Equal(t, "", before.Transactions[1].Note)
	assert.True(t, before.Budgets["Food"].Equal(decimal.NewFromInt(100)))

	assert.Equal(t, []string{"t3", "t1"}, models.IDs(after.Transactions))
	assert.Equal(t, "changed", after.Transactions[1].Note)
	assert.True(t, after.Budgets["Food"].Equal(decimal.NewFromInt(5)))
}

func TestUpdate(t *testing.T) {
	s := reduce(state.Initial(),
		state.Add[models.Notification]{Record: models.Notification{Model: models.Model{ID: "n1"}, Message: "hi"}},
		state.Add[models.Goal]{Record: models.Goal{Model: models.Model{ID: "g1"}, Name: "Bike", TargetAmount: decimal.NewFromInt(500)}},
		state.Update[models.Notification]{ID: "n1", Patch: models.Patch{"read": true}},
		state.Update[models.Goal]{ID: "g1", Patch: models.Patch{"currentAmount": "500"}},
	)

	assert.True(t, s.Notifications[0].Read)
	assert.Equal(t, "hi", s.Notifications[0].Message)
	assert.True(t, s.Goals[0].Achieved, "goal reaching its target is achieved")
}

func TestUpdateRejected(t *testing.T) {
	before := state.Reduce(state.Initial(), state.Add[models.Transaction]{Record: transaction("t1", "Food")})

	tests := []struct {
		name   string
		action state.Action
	}{
		{"unknown id", state.Update[models.Transaction]{ID: "nope", Patch: models.Patch{"note": "x"}}},
		{"immutable id", state.Update[models.Transaction]{ID: "t1", Patch: models.Patch{"id": "t2"}}},
		{"immutable owner", state.Update[models.Transaction]{ID: "t1", Patch: models.Patch{"userId": "u2"}}},
		{"wrong type", state.Update[models.Transaction]{ID: "t1", Patch: models.Patch{"date": 12}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after := state.Reduce(before, tt.action)
			assert.Equal(t, before.Transactions, after.Transactions)
		})
	}
}

func TestUpdateWalletNormalizes(t *testing.T) {
	s := reduce(state.Initial(),
		state.Add[models.Wallet]{Record: models.Wallet{Model: models.Model{ID: "w1"}, Type: models.WalletTypeCredit, CreditLimit: decimal.NewFromInt(1000)}},
		state.Update[models.Wallet]{ID: "w1", Patch: models.Patch{"type": "cash"}},
	)

	assert.Equal(t, models.WalletTypeCash, s.Wallets[0].Type)
	assert.True(t, s.Wallets[0].CreditLimit.IsZero())
}

func TestReplaceIsNotUnion(t *testing.T) {
	first := []models.Transaction{transaction("t1", "Food")}
	second := []models.Transaction{transaction("t1", "Food"), transaction("t2", "Bills")}

	s := reduce(state.Initial(),
		state.Add[models.Transaction]{Record: transaction("local", "Food")},
		state.Replace[models.Transaction]{Records: first},
		state.Replace[models.Transaction]{Records: second},
	)

	assert.Equal(t, second, s.Transactions)
}

func TestReplaceNil(t *testing.T) {
	s := reduce(state.Initial(),
		state.Add[models.Goal]{Record: models.Goal{Model: models.Model{ID: "g1"}}},
		state.Replace[models.Goal]{},
	)

	assert.NotNil(t, s.Goals)
	assert.Empty(t, s.Goals)
}

func TestLoadData(t *testing.T) {
	s := reduce(state.Initial(),
		state.SetDataLoading{Loading: true},
		state.Add[models.Goal]{Record: models.Goal{Model: models.Model{ID: "g1"}}},
		state.LoadData{Snapshot: state.Snapshot{
			Transactions: []models.Transaction{transaction("t1", "Food")},
			Wallets:      []models.Wallet{{Model: models.Model{ID: "w1"}, Type: "unknown", CreditLimit: decimal.NewFromInt(3)}},
			Budgets:      models.Budgets{"Food": decimal.NewFromInt(10)},
			Categories:   []models.Category{{Name: "Pets"}, {Name: "Food", Icon: "user"}},
		}},
	)

	assert.False(t, s.DataLoading)
	assert.Equal(t, []string{"g1"}, models.IDs(s.Goals), "absent collections are kept")
	assert.Equal(t, []string{"t1"}, models.IDs(s.Transactions))
	assert.Equal(t, models.WalletTypeCash, s.Wallets[0].Type)
	assert.True(t, s.Wallets[0].CreditLimit.IsZero())
	assert.Len(t, s.Budgets, 1)

	defaults := models.DefaultCategories()
	require.Len(t, s.Categories, len(defaults)+1)
	assert.Equal(t, defaults, s.Categories[:len(defaults)], "defaults take precedence")
	assert.Equal(t, "Pets", s.Categories[len(defaults)].Name)
	assert.Equal(t, models.CategoryTypeExpense, s.Categories[len(defaults)].Type)
}

func TestLoadDataEmptyReplaces(t *testing.T) {
	s := reduce(state.Initial(),
		state.Add[models.Transaction]{Record: transaction("t1", "Food")},
		state.LoadData{Snapshot: state.Snapshot{Transactions: []models.Transaction{}}},
	)

	assert.Empty(t, s.Transactions)
}

func TestReset(t *testing.T) {
	s := reduce(state.Initial(),
		state.SetIdentity{Identity: "u1"},
		state.SetDarkMode{DarkMode: true},
		state.Add[models.Transaction]{Record: transaction("t1", "Food")},
		state.AddCategory{Category: models.Category{Name: "Pets"}},
		state.SetBudget{Category: "Food", Amount: decimal.NewFromInt(1)},
		state.Reset{},
	)

	assert.Equal(t, "u1", s.Identity)
	assert.True(t, s.DarkMode)
	assert.Empty(t, s.Transactions)
	assert.Empty(t, s.Budgets)
	assert.Equal(t, models.DefaultCategories(), s.Categories)
}

func TestBudgets(t *testing.T) {
	s := reduce(state.Initial(),
		state.SetBudget{Category: "Food", Amount: decimal.NewFromInt(100)},
		state.SetBudget{Category: "Bills", Amount: decimal.NewFromInt(50)},
		state.DeleteBudget{Category: "Bills"},
		state.DeleteBudget{Category: "Unknown"},
	)
	assert.Len(t, s.Budgets, 1)
	assert.True(t, s.Budgets["Food"].Equal(decimal.NewFromInt(100)))

	s = state.Reduce(s, state.SetBudgets{})
	assert.NotNil(t, s.Budgets)
	assert.Empty(t, s.Budgets)
}

func TestDarkMode(t *testing.T) {
	s := state.Reduce(state.Initial(), state.ToggleDarkMode{})
	assert.True(t, s.DarkMode)

	s = state.Reduce(s, state.ToggleDarkMode{})
	assert.False(t, s.DarkMode)
}

func TestCategories(t *testing.T) {
	defaults := len(models.DefaultCategories())

	s := reduce(state.Initial(),
		state.AddCategory{Category: models.Category{Name: " Pets "}},
		state.AddCategory{Category: models.Category{Name: "Pets", Icon: "dup"}},
		state.AddCategory{Category: models.Category{Name: "Food"}},
	)
	require.Len(t, s.Categories, defaults+1, "duplicate names are not added")
	assert.Equal(t, "Pets", s.Categories[defaults].Name)
	assert.Empty(t, s.Categories[defaults].Icon)

	s = state.Reduce(s, state.SetCategories{Categories: []models.Category{{Name: "Garden"}, {Name: "Salary"}}})
	require.Len(t, s.Categories, defaults+1)
	assert.Equal(t, "Garden", s.Categories[defaults].Name)
}

func TestDeleteCategory(t *testing.T) {
	base := reduce(state.Initial(),
		state.AddCategory{Category: models.Category{Name: "Pets"}},
		state.AddCategory{Category: models.Category{Name: "Garden"}},
		state.Add[models.Transaction]{Record: transaction("t1", "Pets")},
	)

	tests := []struct {
		name    string
		deleted bool
	}{
		{"Pets", false},
		{"Garden", true},
		{"Food", false},
		{"Unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := state.Reduce(base, state.DeleteCategory{Name: tt.name})
			if tt.deleted {
				assert.Equal(t, -1, models.FindCategory(s.Categories, tt.name))
				assert.Len(t, s.Categories, len(base.Categories)-1)
			} else {
				assert.Equal(t, base, s)
			}
		})
	}
}

func TestUpdateCategoryRenamesReferences(t *testing.T) {
	s := reduce(state.Initial(),
		state.AddCategory{Category: models.Category{Name: "Pets"}},
		state.Add[models.Transaction]{Record: transaction("t1", "Pets")},
		state.Add[models.Transaction]{Record: transaction("t2", "Food")},
		state.Add[models.RecurringTransaction]{Record: models.RecurringTransaction{Model: models.Model{ID: "r1"}, Category: "Pets"}},
		state.SetBudget{Category: "Pets", Amount: decimal.NewFromInt(30)},
		state.UpdateCategory{OldName: "Pets", Category: models.Category{Name: "Animals", Color: "#000"}},
	)

	assert.Equal(t, -1, models.FindCategory(s.Categories, "Pets"))
	i := models.FindCategory(s.Categories, "Animals")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, "#000", s.Categories[i].Color)

	assert.Equal(t, "Food", s.Transactions[0].Category)
	assert.Equal(t, "Animals", s.Transactions[1].Category)
	assert.Equal(t, "Animals", s.RecurringTransactions[0].Category)

	_, ok := s.Budgets["Pets"]
	assert.False(t, ok)
	assert.True(t, s.Budgets["Animals"].Equal(decimal.NewFromInt(30)))
}

func TestUpdateCategoryRejected(t *testing.T) {
	base := reduce(state.Initial(),
		state.AddCategory{Category: models.Category{Name: "Pets"}},
		state.AddCategory{Category: models.Category{Name: "Garden"}},
	)

	for _, a := range []state.UpdateCategory{
		{OldName: "Food", Category: models.Category{Name: "Meals"}},
		{OldName: "Pets", Category: models.Category{Name: "Food"}},
		{OldName: "Pets", Category: models.Category{Name: "Garden"}},
		{OldName: "Unknown", Category: models.Category{Name: "Other things"}},
	} {
		assert.Equal(t, base, state.Reduce(base, a), "%s -> %s", a.OldName, a.Category.Name)
	}
}

func TestRecords(t *testing.T) {
	s := reduce(state.Initial(),
		state.Add[models.Transaction]{Record: transaction("t1", "Food")},
		state.Add[models.Notification]{Record: models.Notification{Model: models.Model{ID: "n1"}}},
	)

	assert.Equal(t, []string{"t1"}, models.IDs(state.Records[models.Transaction](s)))
	assert.Equal(t, []string{"n1"}, models.IDs(state.Records[models.Notification](s)))
	assert.Empty(t, state.Records[models.Goal](s))
}
