package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/domain"
)

// DepositStore keeps pending deposit requests in process memory. The store
// is created at process start, entries are resolved on approval/rejection,
// and nothing survives a restart. Users simply re-request.
type DepositStore struct {
	mu       sync.RWMutex
	deposits map[string]*domain.DepositRequest
}

// NewDepositStore creates an empty DepositStore.
func NewDepositStore() *DepositStore {
	return &DepositStore{deposits: make(map[string]*domain.DepositRequest)}
}

// Put stores a deposit request.
func (s *DepositStore) Put(d *domain.DepositRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deposits[d.ID] = d
}

// Get returns the request by id.
func (s *DepositStore) Get(id string) (*domain.DepositRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.deposits[id]
	return d, ok
}

// FindPending returns the oldest pending request for (userID, amount). Admin
// chat approvals identify deposits by quoted user and amount, not by id.
func (s *DepositStore) FindPending(userID string, amount decimal.Decimal) (*domain.DepositRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *domain.DepositRequest
	for _, d := range s.deposits {
		if d.Status != domain.DepositPending || d.UserID != userID || !d.Amount.Equal(amount) {
			continue
		}
		if found == nil || d.CreatedAt.Before(found.CreatedAt) {
			found = d
		}
	}
	return found, found != nil
}

// Pending returns all pending requests, oldest first.
func (s *DepositStore) Pending() []*domain.DepositRequest {
	return s.list(func(d *domain.DepositRequest) bool { return d.Status == domain.DepositPending })
}

// All returns every request, oldest first.
func (s *DepositStore) All() []*domain.DepositRequest {
	return s.list(func(*domain.DepositRequest) bool { return true })
}

func (s *DepositStore) list(keep func(*domain.DepositRequest) bool) []*domain.DepositRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.DepositRequest, 0, len(s.deposits))
	for _, d := range s.deposits {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Resolve moves a pending request to a terminal status. Returns false when
// the request is unknown or already resolved.
func (s *DepositStore) Resolve(id string, status domain.DepositStatus) (*domain.DepositRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deposits[id]
	if !ok || d.Status != domain.DepositPending {
		return nil, false
	}
	now := time.Now().UTC()
	d.Status = status
	d.ResolvedAt = &now
	return d, true
}

// Reopen puts a resolved request back to pending. Used when a settlement
// was claimed but failed before touching the ledger.
func (s *DepositStore) Reopen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deposits[id]
	if !ok || d.Status == domain.DepositPending {
		return false
	}
	d.Status = domain.DepositPending
	d.ResolvedAt = nil
	return true
}
