package state

import (
	"github.com/envelope-zero/tracker/internal/models"
)

// Reduce returns the state after applying a to s.
//
// Reduce is pure. Actions that would break an invariant, e.g. deleting a
// category that is still in use, leave the state unchanged. Callers that need
// to report such cases check them before dispatching.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetIdentity:
		s.Identity = a.Identity
	case SetUserProfile:
		s.Profile = a.Profile
	case SetAuthLoading:
		s.AuthLoading = a.Loading
	case SetDataLoading:
		s.DataLoading = a.Loading

	case Add[models.Transaction]:
		s.Transactions = add(s.Transactions, a.Record)
	case Add[models.Goal]:
		s.Goals = add(s.Goals, a.Record)
	case Add[models.Wallet]:
		s.Wallets = add(s.Wallets, a.Record)
	case Add[models.RecurringTransaction]:
		s.RecurringTransactions = add(s.RecurringTransactions, a.Record)
	case Add[models.SharedExpense]:
		s.SharedExpenses = add(s.SharedExpenses, a.Record)
	case Add[models.Receipt]:
		s.Receipts = add(s.Receipts, a.Record)
	case Add[models.Notification]:
		s.Notifications = add(s.Notifications, a.Record)

	case Update[models.Transaction]:
		s.Transactions = update(s.Transactions, a.ID, a.Patch)
	case Update[models.Goal]:
		s.Goals = update(s.Goals, a.ID, a.Patch)
	case Update[models.Wallet]:
		s.Wallets = update(s.Wallets, a.ID, a.Patch)
	case Update[models.RecurringTransaction]:
		s.RecurringTransactions = update(s.RecurringTransactions, a.ID, a.Patch)
	case Update[models.SharedExpense]:
		s.SharedExpenses = update(s.SharedExpenses, a.ID, a.Patch)
	case Update[models.Receipt]:
		s.Receipts = update(s.Receipts, a.ID, a.Patch)
	case Update[models.Notification]:
		s.Notifications = update(s.Notifications, a.ID, a.Patch)

	case Delete[models.Transaction]:
		s.Transactions = remove(s.Transactions, a.ID)
	case Delete[models.Goal]:
		s.Goals = remove(s.Goals, a.ID)
	case Delete[models.Wallet]:
		s.Wallets = remove(s.Wallets, a.ID)
	case Delete[models.RecurringTransaction]:
		s.RecurringTransactions = remove(s.RecurringTransactions, a.ID)
	case Delete[models.SharedExpense]:
		s.SharedExpenses = remove(s.SharedExpenses, a.ID)
	case Delete[models.Receipt]:
		s.Receipts = remove(s.Receipts, a.ID)
	case Delete[models.Notification]:
		s.Notifications = remove(s.Notifications, a.ID)

	case Replace[models.Transaction]:
		s.Transactions = replace(a.Records)
	case Replace[models.Goal]:
		s.Goals = replace(a.Records)
	case Replace[models.Wallet]:
		s.Wallets = replace(a.Records)
	case Replace[models.RecurringTransaction]:
		s.RecurringTransactions = replace(a.Records)
	case Replace[models.SharedExpense]:
		s.SharedExpenses = replace(a.Records)
	case Replace[models.Receipt]:
		s.Receipts = replace(a.Records)
	case Replace[models.Notification]:
		s.Notifications = replace(a.Records)

	case SetBudget:
		b := s.Budgets.Clone()
		if b == nil {
			b = models.Budgets{}
		}
		b[a.Category] = a.Amount
		s.Budgets = b
	case DeleteBudget:
		if _, ok := s.Budgets[a.Category]; ok {
			b := s.Budgets.Clone()
			delete(b, a.Category)
			s.Budgets = b
		}
	case SetBudgets:
		s.Budgets = budgets(a.Budgets)

	case LoadData:
		s = load(s, a.Snapshot)
	case Reset:
		s = clearCollections(s)

	case SetFilter:
		s.Filter = a.Filter
	case SetSort:
		s.Sort = a.Sort
	case SetSearch:
		s.Search = a.Search
	case SetDateRange:
		s.DateRange = a.DateRange

	case ToggleDarkMode:
		s.DarkMode = !s.DarkMode
	case SetDarkMode:
		s.DarkMode = a.DarkMode

	case AddCategory:
		s = addCategory(s, a.Category)
	case UpdateCategory:
		s = updateCategory(s, a.OldName, a.Category)
	case DeleteCategory:
		s = deleteCategory(s, a.Name)
	case SetCategories:
		s.Categories = categories(a.Categories)
	}

	return s
}

// load merges every present collection of snap into s.
func load(s State, snap Snapshot) State {
	if snap.Profile != nil {
		p := *snap.Profile
		s.Profile = &p
	}
	if snap.Transactions != nil {
		s.Transactions = replace(snap.Transactions)
	}
	if snap.Budgets != nil {
		s.Budgets = budgets(snap.Budgets)
	}
	if snap.Goals != nil {
		s.Goals = replace(snap.Goals)
	}
	if snap.Wallets != nil {
		s.Wallets = replace(snap.Wallets)
	}
	if snap.RecurringTransactions != nil {
		s.RecurringTransactions = replace(snap.RecurringTransactions)
	}
	if snap.SharedExpenses != nil {
		s.SharedExpenses = replace(snap.SharedExpenses)
	}
	if snap.Receipts != nil {
		s.Receipts = replace(snap.Receipts)
	}
	if snap.Notifications != nil {
		s.Notifications = replace(snap.Notifications)
	}
	if snap.Categories != nil {
		s.Categories = categories(snap.Categories)
	}

	s.DataLoading = false
	return s
}

func budgets(b models.Budgets) models.Budgets {
	if b == nil {
		return models.Budgets{}
	}
	return b.Clone()
}

// categories returns the visible category set for a list that may or may
// not already contain the defaults.
func categories(list []models.Category) []models.Category {
	user := make([]models.Category, 0, len(list))
	for _, c := range models.UserCategories(list) {
		user = append(user, models.NormalizeCategory(c))
	}
	return models.MergeCategories(models.DefaultCategories(), user)
}

func addCategory(s State, c models.Category) State {
	c = models.NormalizeCategory(c)
	if c.Name == "" || models.FindCategory(s.Categories, c.Name) >= 0 {
		return s
	}

	user := append(models.UserCategories(s.Categories), c)
	s.Categories = models.MergeCategories(models.DefaultCategories(), user)
	return s
}

func updateCategory(s State, oldName string, c models.Category) State {
	c = models.NormalizeCategory(c)
	if c.Name == "" || models.IsDefaultCategory(oldName) || models.IsDefaultCategory(c.Name) {
		return s
	}

	user := models.UserCategories(s.Categories)
	i := models.FindCategory(user, oldName)
	if i < 0 {
		return s
	}
	if c.Name != oldName && models.FindCategory(user, c.Name) >= 0 {
		return s
	}

	user[i] = c
	s.Categories = models.MergeCategories(models.DefaultCategories(), user)

	if c.Name == oldName {
		return s
	}

	// References follow the rename
	s.Transactions = rename(s.Transactions, oldName, c.Name, func(t *models.Transaction) *string { return &t.Category })
	s.RecurringTransactions = rename(s.RecurringTransactions, oldName, c.Name, func(t *models.RecurringTransaction) *string { return &t.Category })

	if amount, ok := s.Budgets[oldName]; ok {
		b := s.Budgets.Clone()
		delete(b, oldName)
		b[c.Name] = amount
		s.Budgets = b
	}

	return s
}

func deleteCategory(s State, name string) State {
	if models.IsDefaultCategory(name) || CategoryInUse(s, name) {
		return s
	}

	i := models.FindCategory(s.Categories, name)
	if i < 0 {
		return s
	}

	list := make([]models.Category, 0, len(s.Categories)-1)
	list = append(list, s.Categories[:i]...)
	s.Categories = append(list, s.Categories[i+1:]...)
	return s
}

// rename returns list with every category reference equal to from changed to
// to. The list is only copied when at least one record changes.
func rename[T any](list []T, from, to string, field func(*T) *string) []T {
	var out []T
	for i := range list {
		if *field(&list[i]) != from {
			continue
		}
		if out == nil {
			out = make([]T, len(list))
			copy(out, list)
		}
		*field(&out[i]) = to
	}

	if out == nil {
		return list
	}
	return out
}

// CategoryInUse reports whether any transaction references the category.
func CategoryInUse(s State, name string) bool {
	for _, t := range s.Transactions {
		if t.Category == name {
			return true
		}
	}
	return false
}
