package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/domain"
)

// TokenResponse carries the session token issued after a PIN login.
type TokenResponse struct {
	Token string `json:"token"`
}

// UserResponse represents a customer wallet in API responses.
type UserResponse struct {
	UserID      string           `json:"user_id"`
	Name        string           `json:"name,omitempty"`
	Balance     decimal.Decimal  `json:"balance"`
	DueOverride *decimal.Decimal `json:"due_override,omitempty"`
	Blocked     bool             `json:"blocked"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// UserFromDomain converts a domain account to a response.
func UserFromDomain(a *domain.Account) *UserResponse {
	return &UserResponse{
		UserID:      a.UserID,
		Name:        a.Name,
		Balance:     a.Balance,
		DueOverride: a.DueOverride,
		Blocked:     a.Blocked,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// UsersFromDomain converts domain accounts to responses.
func UsersFromDomain(accounts []*domain.Account) []*UserResponse {
	result := make([]*UserResponse, len(accounts))
	for i, a := range accounts {
		result[i] = UserFromDomain(a)
	}
	return result
}

// UserDetailResponse is a wallet joined with its ledger position.
type UserDetailResponse struct {
	*UserResponse

	TotalDue     decimal.Decimal `json:"total_due"`
	RemainingDue decimal.Decimal `json:"remaining_due"`
}

// EntryResponse represents a diamond order in API responses.
type EntryResponse struct {
	ID         int64           `json:"id"`
	UserID     string          `json:"user_id"`
	UserName   string          `json:"user_name,omitempty"`
	PlayerRef  string          `json:"player_ref,omitempty"`
	Diamonds   int64           `json:"diamonds"`
	Rate       decimal.Decimal `json:"rate"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	ApprovedAt *time.Time      `json:"approved_at,omitempty"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:         e.ID,
		UserID:     e.UserID,
		UserName:   e.UserName,
		PlayerRef:  e.PlayerRef,
		Diamonds:   e.Diamonds,
		Rate:       e.Rate,
		Amount:     e.Amount(),
		Status:     string(e.Status),
		CreatedAt:  e.CreatedAt,
		ApprovedAt: e.ApprovedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// GroupResponse represents a group in API responses.
type GroupResponse struct {
	GroupID   string           `json:"group_id"`
	Name      string           `json:"name,omitempty"`
	Rate      decimal.Decimal  `json:"rate"`
	DueLimit  *decimal.Decimal `json:"due_limit,omitempty"`
	Entries   []*EntryResponse `json:"entries"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// GroupFromDomain converts a domain group to a response.
func GroupFromDomain(g *domain.Group) *GroupResponse {
	return &GroupResponse{
		GroupID:   g.ID,
		Name:      g.Name,
		Rate:      g.Rate,
		DueLimit:  g.DueLimit,
		Entries:   EntriesFromDomain(g.Entries),
		UpdatedAt: g.UpdatedAt,
	}
}

// GroupsFromDomain converts domain groups to responses.
func GroupsFromDomain(groups []*domain.Group) []*GroupResponse {
	result := make([]*GroupResponse, len(groups))
	for i, g := range groups {
		result[i] = GroupFromDomain(g)
	}
	return result
}

// TransactionResponse represents a ledger record in API responses.
type TransactionResponse struct {
	ID        int64           `json:"id"`
	UserID    string          `json:"user_id"`
	UserName  string          `json:"user_name,omitempty"`
	GroupID   string          `json:"group_id"`
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type"`
	Status    string          `json:"status"`
	Reason    string          `json:"reason,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:        t.ID,
		UserID:    t.UserID,
		UserName:  t.UserName,
		GroupID:   t.GroupID,
		Amount:    t.Amount,
		Type:      string(t.Type),
		Status:    t.Status,
		Reason:    t.Reason,
		CreatedAt: t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// DepositResponse represents a deposit request in API responses.
type DepositResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	UserName   string          `json:"user_name,omitempty"`
	GroupID    string          `json:"group_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
}

// DepositFromDomain converts a domain deposit request to a response.
func DepositFromDomain(d *domain.DepositRequest) *DepositResponse {
	return &DepositResponse{
		ID:         d.ID,
		UserID:     d.UserID,
		UserName:   d.UserName,
		GroupID:    d.GroupID,
		Amount:     d.Amount,
		Status:     string(d.Status),
		CreatedAt:  d.CreatedAt,
		ResolvedAt: d.ResolvedAt,
	}
}

// DepositsFromDomain converts domain deposit requests to responses.
func DepositsFromDomain(deposits []*domain.DepositRequest) []*DepositResponse {
	result := make([]*DepositResponse, len(deposits))
	for i, d := range deposits {
		result[i] = DepositFromDomain(d)
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
