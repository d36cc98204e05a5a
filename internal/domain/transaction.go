package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes how a ledger record came to be.
type TransactionType string

const (
	// TransactionManual records a deposit or payment entered by an admin
	// or the deposit workflow. Manual records increase audit history only;
	// they never count as "paid" against a due.
	TransactionManual TransactionType = "manual"

	// TransactionAuto records an automatic deduction taken from balance to
	// satisfy due. The sum of auto records for (user, group) is that
	// group's paid amount.
	TransactionAuto TransactionType = "auto"
)

// TransactionApproved is the only status the model supports; there are no
// pending ledger transactions.
const TransactionApproved = "approved"

// Transaction is an append-only monetary event against a (user, group) pair.
type Transaction struct {
	ID        int64           `json:"id"`
	UserID    string          `json:"userId"`
	UserName  string          `json:"userName,omitempty"`
	GroupID   string          `json:"groupId"`
	Amount    decimal.Decimal `json:"amount"`
	Type      TransactionType `json:"type"`
	Status    string          `json:"status"`
	Reason    string          `json:"reason,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Valid reports whether a persisted row is well formed. Malformed historical
// rows are filtered out by administrative cleanup, never counted.
func (t *Transaction) Valid() bool {
	if t == nil || t.UserID == "" || t.Status != TransactionApproved {
		return false
	}
	return t.Type == TransactionManual || t.Type == TransactionAuto
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	UserID  string
	GroupID string
	Type    TransactionType
	Limit   int
}

// Matches reports whether t passes the filter.
func (f TransactionFilter) Matches(t *Transaction) bool {
	if f.UserID != "" && t.UserID != f.UserID {
		return false
	}
	if f.GroupID != "" && t.GroupID != f.GroupID {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	return true
}
