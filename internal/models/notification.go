package models

import (
	"time"
)

// Notification is a message shown to the user.
type Notification struct {
	Model
	Kind      string    `json:"kind,omitempty" example:"budget"`
	Title     string    `json:"title,omitempty" example:"Budget exceeded"`
	Message   string    `json:"message" example:"You spent more than 250 on Food"`
	Read      bool      `json:"read" default:"false"`
	CreatedAt time.Time `json:"createdAt"`
}
