package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/domain"
)

// AccountRepository defines data access for customer wallets.
type AccountRepository interface {
	Get(userID string) (*domain.Account, error)
	Balance(userID string) (decimal.Decimal, error)
	List() ([]*domain.Account, error)
	SetBalance(userID string, amount decimal.Decimal) (decimal.Decimal, error)
	AdjustBalance(userID string, delta decimal.Decimal) (decimal.Decimal, error)
	SetDueOverride(userID string, amount *decimal.Decimal) error
	DueOverride(userID string) (*decimal.Decimal, error)
	SetBlocked(userID string, blocked bool) (bool, error)
	SetName(userID, name string) error
	Clear() error
}

// TransactionRepository defines data access for the append-only ledger
// records.
type TransactionRepository interface {
	Append(t *domain.Transaction) (*domain.Transaction, error)
	List(f domain.TransactionFilter) ([]*domain.Transaction, error)
	SumAuto(userID, groupID string) (decimal.Decimal, error)
	LastAuto(userID, groupID string) (*domain.Transaction, error)
	RemoveAuto(userID, groupID string) (int, error)
	Clean() (int, error)
	Clear() error
}

// GroupRepository defines data access for groups and their order entries.
type GroupRepository interface {
	Get(groupID string) (*domain.Group, error)
	List() ([]*domain.Group, error)
	AddEntry(groupID, groupName string, e *domain.Entry) (*domain.Entry, error)
	ApproveEntry(groupID string, entryID int64) (*domain.Entry, error)
	MarkEntryDeleted(groupID string, entryID int64) (*domain.Entry, error)
	RemoveEntry(groupID string, entryID int64) (*domain.Entry, error)
	SetRate(groupID string, rate decimal.Decimal) error
	SetDueLimit(groupID string, limit *decimal.Decimal) error
	ClearEntries(groupID string) error
	Clear() error
}

// DepositStore holds pending deposit requests in memory.
type DepositStore interface {
	Put(d *domain.DepositRequest)
	Get(id string) (*domain.DepositRequest, bool)
	FindPending(userID string, amount decimal.Decimal) (*domain.DepositRequest, bool)
	Pending() []*domain.DepositRequest
	All() []*domain.DepositRequest
	Resolve(id string, status domain.DepositStatus) (*domain.DepositRequest, bool)
	Reopen(id string) bool
}

// SettingsRepository defines data access for the diamond-system switches.
type SettingsRepository interface {
	Get() (*domain.Settings, error)
	Update(fn func(*domain.Settings) error) (*domain.Settings, error)
}

// AdminRepository defines data access for chat admins and the panel PIN.
type AdminRepository interface {
	List() ([]*domain.Admin, error)
	Add(a *domain.Admin) (bool, error)
	Remove(chatID string) (bool, error)
	IsAdmin(chatID string) (bool, error)
	VerifyPIN(pin string) (bool, error)
	UpdatePIN(pin string) error
}

// UserLocker serializes ledger mutations per user so read-modify-write
// cycles cannot interleave.
type UserLocker interface {
	Acquire(ctx context.Context, key string) error
	Release(key string)
}

// IDGenerator generates unique IDs for deposit requests.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore caches responses keyed by Idempotency-Key so repeated
// panel submissions replay instead of re-executing.
type IdempotencyStore interface {
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
