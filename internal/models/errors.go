package models

import (
	"errors"
)

var (
	ErrGeneral               = errors.New("an error occurred during your request")
	ErrRecordNotFound        = errors.New("there is no record matching your query")
	ErrNotAuthenticated      = errors.New("no identity is signed in")
	ErrInvalid               = errors.New("invalid record")
	ErrCategoryInUse         = errors.New("the category is used by at least one transaction and cannot be deleted")
	ErrCategoryNameNotUnique = errors.New("the category name must be unique")
	ErrDefaultCategory       = errors.New("default categories cannot be changed or deleted")
	ErrUnknownCategory       = errors.New("the category does not exist")
	ErrUnknownWallet         = errors.New("the wallet does not exist")
	ErrImmutableField        = errors.New("the field cannot be changed")
)
