package jsonfile

import (
	"encoding/json"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/domain"
)

const transactionsFile = "payment-transactions.json"

// legacy type names produced by older exporters; normalized on load so the
// ambiguity never reaches the ledger API.
const (
	legacyTypeAutoDeduction = "auto-deduction"
	legacyTypePayment       = "payment"
)

// TransactionRepository persists the append-only ledger records. On disk the
// file is canonically a JSON array; the legacy {"payments": [...]} wrapper
// is still accepted when loading.
type TransactionRepository struct {
	mu    sync.Mutex
	store *Store
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

type legacyWrapper struct {
	Payments []*domain.Transaction `json:"payments"`
}

func (r *TransactionRepository) load() ([]*domain.Transaction, error) {
	var raw json.RawMessage
	err := r.store.read(transactionsFile, &raw, func() {
		raw = json.RawMessage("[]")
	})
	if err != nil {
		return nil, err
	}

	var list []*domain.Transaction
	if err := json.Unmarshal(raw, &list); err != nil {
		var wrapped legacyWrapper
		if err := json.Unmarshal(raw, &wrapped); err != nil || wrapped.Payments == nil {
			// Neither shape fits: reset to the canonical empty array.
			if err := r.store.heal(transactionsFile, &list, func() { list = []*domain.Transaction{} }); err != nil {
				return nil, err
			}
			return list, nil
		}
		list = wrapped.Payments
	}

	for _, t := range list {
		switch string(t.Type) {
		case legacyTypeAutoDeduction:
			t.Type = domain.TransactionAuto
		case legacyTypePayment:
			t.Type = domain.TransactionManual
		}
	}
	return list, nil
}

func (r *TransactionRepository) save(list []*domain.Transaction) error {
	if list == nil {
		list = []*domain.Transaction{}
	}
	return r.store.write(transactionsFile, list)
}

// Append assigns the next integer id (max existing + 1, starting at 1) and
// persists the record. Records are never mutated afterwards.
func (r *TransactionRepository) Append(t *domain.Transaction) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load()
	if err != nil {
		return nil, err
	}

	var maxID int64
	for _, existing := range list {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	t.ID = maxID + 1

	list = append(list, t)
	if err := r.save(list); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns transactions matching the filter in insertion order. A
// positive Limit keeps only the most recent matches.
func (r *TransactionRepository) List(f domain.TransactionFilter) ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load()
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Transaction, 0, len(list))
	for _, t := range list {
		if t.Valid() && f.Matches(t) {
			out = append(out, t)
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out, nil
}

// SumAuto sums approved auto-deduction amounts for (user, group): the
// group's "paid" figure. Manual deposits are deliberately excluded.
func (r *TransactionRepository) SumAuto(userID, groupID string) (decimal.Decimal, error) {
	list, err := r.List(domain.TransactionFilter{UserID: userID, GroupID: groupID, Type: domain.TransactionAuto})
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, t := range list {
		sum = sum.Add(t.Amount)
	}
	return sum, nil
}

// LastAuto returns the most recent auto-deduction for (user, group) by
// creation time, or nil when there is none.
func (r *TransactionRepository) LastAuto(userID, groupID string) (*domain.Transaction, error) {
	list, err := r.List(domain.TransactionFilter{UserID: userID, GroupID: groupID, Type: domain.TransactionAuto})
	if err != nil {
		return nil, err
	}

	var last *domain.Transaction
	for _, t := range list {
		if last == nil || t.CreatedAt.After(last.CreatedAt) {
			last = t
		}
	}
	return last, nil
}

// RemoveAuto drops all auto-deduction records for (user, group) and returns
// how many were removed. Administrative cleanup only.
func (r *TransactionRepository) RemoveAuto(userID, groupID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load()
	if err != nil {
		return 0, err
	}

	kept := list[:0]
	removed := 0
	for _, t := range list {
		if t.Type == domain.TransactionAuto && t.UserID == userID && (groupID == "" || t.GroupID == groupID) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	if removed == 0 {
		return 0, nil
	}
	if err := r.save(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// Clean filters out malformed historical rows (missing user, unknown type,
// non-approved status) and persists the result. Returns how many rows were
// dropped. Run once at startup.
func (r *TransactionRepository) Clean() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load()
	if err != nil {
		return 0, err
	}

	kept := make([]*domain.Transaction, 0, len(list))
	for _, t := range list {
		if t.Valid() {
			kept = append(kept, t)
		}
	}

	dropped := len(list) - len(kept)
	if dropped == 0 {
		return 0, nil
	}
	if err := r.save(kept); err != nil {
		return 0, err
	}
	return dropped, nil
}

// Clear removes every transaction. Bulk data-clear only.
func (r *TransactionRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(nil)
}
