package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a customer wallet keyed by the chat-platform user id.
// Balance holds deposited funds available to satisfy dues; it never goes
// negative. Mutations clamp at zero.
type Account struct {
	UserID      string           `json:"userId"`
	Name        string           `json:"name,omitempty"`
	Balance     decimal.Decimal  `json:"balance"`
	DueOverride *decimal.Decimal `json:"dueBalanceOverride,omitempty"`
	Blocked     bool             `json:"blocked,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// ApplyDelta returns the balance after applying delta, floored at zero.
// The floor is a safety net: callers that debit must prove sufficiency
// beforehand rather than rely on the clamp.
func (a *Account) ApplyDelta(delta decimal.Decimal) decimal.Decimal {
	next := a.Balance.Add(delta)
	if next.IsNegative() {
		return decimal.Zero
	}
	return next
}

// HasDueOverride reports whether an admin has pinned this account's due.
func (a *Account) HasDueOverride() bool {
	return a.DueOverride != nil
}
