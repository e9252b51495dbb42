package models

import (
	"fmt"
	"time"

	"golang.org/x/text/currency"
)

// DefaultCurrency is used for profiles that are created without a currency.
const DefaultCurrency = "USD"

// UserProfile holds the settings of one identity.
type UserProfile struct {
	UserID      string    `json:"userId" validate:"required" example:"u1"`
	Email       string    `json:"email,omitempty" validate:"omitempty,email" example:"jane@example.com"`
	DisplayName string    `json:"displayName,omitempty" example:"Jane"`
	Currency    string    `json:"currency" example:"EUR"` // ISO 4217 currency code
	CreatedAt   time.Time `json:"createdAt"`
}

// NewUserProfile returns the profile created on first sign-in.
func NewUserProfile(identity, email string, now time.Time) UserProfile {
	return UserProfile{
		UserID:    identity,
		Email:     email,
		Currency:  DefaultCurrency,
		CreatedAt: now.In(time.UTC),
	}
}

// CurrencyUnit parses the profile currency.
func (p UserProfile) CurrencyUnit() (currency.Unit, error) {
	u, err := currency.ParseISO(p.Currency)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("%w: currency %q is not a valid ISO 4217 code", ErrInvalid, p.Currency)
	}
	return u, nil
}

// Patch returns p with patch merged on top of it. The identity cannot be
// changed and the currency must stay a valid ISO 4217 code.
func (p UserProfile) Patch(patch Patch) (UserProfile, error) {
	if len(patch) == 0 {
		return p, nil
	}

	out, err := merge(p, patch, []string{"userId"})
	if err != nil {
		return p, err
	}

	if _, err := out.CurrencyUnit(); err != nil {
		return p, err
	}

	if err := Validate(out); err != nil {
		return p, err
	}

	return out, nil
}
