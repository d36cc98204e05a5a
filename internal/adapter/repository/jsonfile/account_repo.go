package jsonfile

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/domain"
)

const usersFile = "users.json"

// AccountRepository persists customer wallets in users.json, keyed by user
// id. Every operation is a full load-mutate-save cycle so state is always
// re-derived from disk; the per-user serialization that makes the cycle safe
// against concurrent ledger mutations lives in the use case layer.
type AccountRepository struct {
	mu    sync.Mutex
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

func (r *AccountRepository) load() (map[string]*domain.Account, error) {
	accounts := make(map[string]*domain.Account)
	err := r.store.read(usersFile, &accounts, func() {
		accounts = make(map[string]*domain.Account)
	})
	if err != nil {
		return nil, err
	}
	for id, a := range accounts {
		if a.UserID == "" {
			a.UserID = id
		}
	}
	return accounts, nil
}

func (r *AccountRepository) save(accounts map[string]*domain.Account) error {
	return r.store.write(usersFile, accounts)
}

// Get returns the account for userID, or domain.ErrAccountNotFound.
func (r *AccountRepository) Get(userID string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.load()
	if err != nil {
		return nil, err
	}
	a, ok := accounts[userID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return a, nil
}

// Balance returns the account balance, zero for unknown users.
func (r *AccountRepository) Balance(userID string) (decimal.Decimal, error) {
	a, err := r.Get(userID)
	if err != nil {
		if err == domain.ErrAccountNotFound {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return a.Balance, nil
}

// List returns all accounts sorted by user id.
func (r *AccountRepository) List() ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// Mutate applies fn to the account for userID, creating it lazily with a
// zero balance, and persists the result.
func (r *AccountRepository) Mutate(userID string, fn func(*domain.Account)) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.load()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	a, ok := accounts[userID]
	if !ok {
		a = &domain.Account{
			UserID:    userID,
			Balance:   decimal.Zero,
			CreatedAt: now,
		}
		accounts[userID] = a
	}

	fn(a)
	if a.Balance.IsNegative() {
		a.Balance = decimal.Zero
	}
	a.UpdatedAt = now

	if err := r.save(accounts); err != nil {
		return nil, err
	}
	return a, nil
}

// SetBalance sets the balance to max(0, amount). Administrative correction;
// the deposit flow uses AdjustBalance instead.
func (r *AccountRepository) SetBalance(userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	a, err := r.Mutate(userID, func(a *domain.Account) {
		if amount.IsNegative() {
			amount = decimal.Zero
		}
		a.Balance = amount
	})
	if err != nil {
		return decimal.Zero, err
	}
	return a.Balance, nil
}

// AdjustBalance applies delta to the balance, floored at zero.
func (r *AccountRepository) AdjustBalance(userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	a, err := r.Mutate(userID, func(a *domain.Account) {
		a.Balance = a.ApplyDelta(delta)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return a.Balance, nil
}

// SetDueOverride pins (or, with nil, clears) the user's due override.
func (r *AccountRepository) SetDueOverride(userID string, amount *decimal.Decimal) error {
	_, err := r.Mutate(userID, func(a *domain.Account) {
		a.DueOverride = amount
	})
	return err
}

// DueOverride returns the user's due override, nil when unset or unknown.
func (r *AccountRepository) DueOverride(userID string) (*decimal.Decimal, error) {
	a, err := r.Get(userID)
	if err != nil {
		if err == domain.ErrAccountNotFound {
			return nil, nil
		}
		return nil, err
	}
	return a.DueOverride, nil
}

// SetBlocked flips the user's blocked flag and returns the new value.
func (r *AccountRepository) SetBlocked(userID string, blocked bool) (bool, error) {
	a, err := r.Mutate(userID, func(a *domain.Account) {
		a.Blocked = blocked
	})
	if err != nil {
		return false, err
	}
	return a.Blocked, nil
}

// SetName records the user's display name.
func (r *AccountRepository) SetName(userID, name string) error {
	if name == "" {
		return nil
	}
	_, err := r.Mutate(userID, func(a *domain.Account) {
		a.Name = name
	})
	return err
}

// Clear removes every account. Bulk data-clear only.
func (r *AccountRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(make(map[string]*domain.Account))
}
