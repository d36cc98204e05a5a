package dto

import (
	"github.com/shopspring/decimal"
)

// LoginRequest is a panel PIN login.
type LoginRequest struct {
	PIN string `json:"pin"`
}

// ChangePINRequest rotates the panel PIN.
type ChangePINRequest struct {
	CurrentPIN string `json:"current_pin"`
	NewPIN     string `json:"new_pin"`
}

// SetRateRequest updates a group's price per diamond.
type SetRateRequest struct {
	Rate decimal.Decimal `json:"rate"`
}

// SetDueLimitRequest updates a group's informational due ceiling. A null
// limit clears it.
type SetDueLimitRequest struct {
	Limit *decimal.Decimal `json:"limit"`
}

// SetBalanceRequest replaces a user's balance.
type SetBalanceRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// CreditRequest adds (or with a negative delta removes) balance. The credit
// endpoint runs an auto-deduction pass afterwards.
type CreditRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	UserName string          `json:"user_name,omitempty"`
}

// DueOverrideRequest pins a user's due to a fixed amount; null clears the
// override.
type DueOverrideRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

// SetBlockedRequest blocks or unblocks a user.
type SetBlockedRequest struct {
	Blocked bool `json:"blocked"`
}

// RecordDeductionRequest appends a manual auto-type ledger record, the panel
// escape hatch for marking due as paid outside the automatic pass.
type RecordDeductionRequest struct {
	UserID   string          `json:"user_id"`
	UserName string          `json:"user_name,omitempty"`
	GroupID  string          `json:"group_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// SetStockRequest replaces the shared diamond stock counter.
type SetStockRequest struct {
	Stock int64 `json:"stock"`
}

// ToggleStockRequest switches the diamond system on or off; Notice replaces
// the off message when set.
type ToggleStockRequest struct {
	Enabled bool   `json:"enabled"`
	Notice  string `json:"notice,omitempty"`
}
