package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a saving target.
type Goal struct {
	Model
	Name          string          `json:"name" validate:"required" example:"New bike"`
	TargetAmount  decimal.Decimal `json:"targetAmount" example:"750"`
	CurrentAmount decimal.Decimal `json:"currentAmount" example:"120"`
	CreatedAt     time.Time       `json:"createdAt" example:"2024-01-01T00:00:00Z"`
	Deadline      *time.Time      `json:"deadline,omitempty" example:"2024-12-24T00:00:00Z"`
	Achieved      bool            `json:"achieved" example:"false"`
}

// afterPatch trims the name and flags the goal as achieved once the current
// amount reaches the target.
func (g *Goal) afterPatch() {
	g.Name = strings.TrimSpace(g.Name)
	if g.TargetAmount.IsPositive() && g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) {
		g.Achieved = true
	}
}
