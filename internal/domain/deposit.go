package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositStatus is the lifecycle state of a deposit request.
type DepositStatus string

const (
	DepositPending   DepositStatus = "pending"
	DepositCompleted DepositStatus = "completed"
	DepositRejected  DepositStatus = "rejected"
)

// DepositRequest is a user's claim that they sent money, awaiting admin
// verification. Requests live in process memory only: they are created on
// demand, resolved on approval/rejection, and do not survive a restart.
type DepositRequest struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	UserName   string          `json:"userName,omitempty"`
	GroupID    string          `json:"groupId,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Status     DepositStatus   `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	ResolvedAt *time.Time      `json:"resolvedAt,omitempty"`
}

// DepositStats aggregates completed and pending deposit requests.
type DepositStats struct {
	TotalDeposited decimal.Decimal `json:"totalDeposited"`
	Completed      int             `json:"completed"`
	UniqueUsers    int             `json:"uniqueUsers"`
	Pending        int             `json:"pending"`
	PendingAmount  decimal.Decimal `json:"pendingAmount"`
}
