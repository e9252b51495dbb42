package models

import (
	"strings"
)

// CategoryType is the type of transactions a category is meant for.
type CategoryType string

const (
	CategoryTypeExpense CategoryType = "expense"
	CategoryTypeIncome  CategoryType = "income"
)

// Category groups transactions. Categories are identified by their name, the
// document ID is only used to address the remote document.
type Category struct {
	Model
	Name  string       `json:"name" validate:"required" example:"Groceries"` // Name of the category, unique among visible categories
	Icon  string       `json:"icon,omitempty" example:"cart"`
	Color string       `json:"color,omitempty" example:"#ff9800"`
	Type  CategoryType `json:"type" validate:"omitempty,oneof=expense income" example:"expense" default:"expense"`
}

func (c *Category) afterPatch() {
	*c = NormalizeCategory(*c)
}

// NormalizeCategory trims the name and defaults the type to expense.
func NormalizeCategory(c Category) Category {
	c.Name = strings.TrimSpace(c.Name)
	if c.Type != CategoryTypeIncome {
		c.Type = CategoryTypeExpense
	}
	return c
}

var defaultCategories = []Category{
	{Name: "Food", Icon: "restaurant", Color: "#ff7043", Type: CategoryTypeExpense},
	{Name: "Transport", Icon: "car", Color: "#42a5f5", Type: CategoryTypeExpense},
	{Name: "Shopping", Icon: "cart", Color: "#ab47bc", Type: CategoryTypeExpense},
	{Name: "Entertainment", Icon: "film", Color: "#ec407a", Type: CategoryTypeExpense},
	{Name: "Bills", Icon: "receipt", Color: "#8d6e63", Type: CategoryTypeExpense},
	{Name: "Health", Icon: "medkit", Color: "#26a69a", Type: CategoryTypeExpense},
	{Name: "Education", Icon: "school", Color: "#5c6bc0", Type: CategoryTypeExpense},
	{Name: "Salary", Icon: "cash", Color: "#66bb6a", Type: CategoryTypeIncome},
	{Name: "Other", Icon: "ellipsis", Color: "#9e9e9e", Type: CategoryTypeExpense},
}

// DefaultCategories returns a copy of the fixed default category set.
func DefaultCategories() []Category {
	c := make([]Category, len(defaultCategories))
	copy(c, defaultCategories)
	return c
}

// IsDefaultCategory reports whether name is the name of a default category.
func IsDefaultCategory(name string) bool {
	for _, c := range defaultCategories {
		if c.Name == name {
			return true
		}
	}
	return false
}

// FindCategory returns the index of the category with the given name, or -1.
func FindCategory(categories []Category, name string) int {
	for i, c := range categories {
		if c.Name == name {
			return i
		}
	}
	return -1
}
