package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/domain"
)

// MockAccountRepository is a mock implementation of AccountRepository with
// in-memory default behavior matching the jsonfile repository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	GetFunc            func(userID string) (*domain.Account, error)
	BalanceFunc        func(userID string) (decimal.Decimal, error)
	ListFunc           func() ([]*domain.Account, error)
	SetBalanceFunc     func(userID string, amount decimal.Decimal) (decimal.Decimal, error)
	AdjustBalanceFunc  func(userID string, delta decimal.Decimal) (decimal.Decimal, error)
	SetDueOverrideFunc func(userID string, amount *decimal.Decimal) error
	DueOverrideFunc    func(userID string) (*decimal.Decimal, error)
	SetBlockedFunc     func(userID string, blocked bool) (bool, error)
	SetNameFunc        func(userID, name string) error
	ClearFunc          func() error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) get(userID string) *domain.Account {
	a, ok := m.accounts[userID]
	if !ok {
		a = &domain.Account{UserID: userID, Balance: decimal.Zero, CreatedAt: time.Now().UTC()}
		m.accounts[userID] = a
	}
	return a
}

func (m *MockAccountRepository) Get(userID string) (*domain.Account, error) {
	if m.GetFunc != nil {
		return m.GetFunc(userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accounts[userID]; ok {
		return a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) Balance(userID string) (decimal.Decimal, error) {
	if m.BalanceFunc != nil {
		return m.BalanceFunc(userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accounts[userID]; ok {
		return a.Balance, nil
	}
	return decimal.Zero, nil
}

func (m *MockAccountRepository) List() ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *MockAccountRepository) SetBalance(userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if m.SetBalanceFunc != nil {
		return m.SetBalanceFunc(userID, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	a := m.get(userID)
	a.Balance = amount
	return a.Balance, nil
}

func (m *MockAccountRepository) AdjustBalance(userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	if m.AdjustBalanceFunc != nil {
		return m.AdjustBalanceFunc(userID, delta)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.get(userID)
	a.Balance = a.ApplyDelta(delta)
	return a.Balance, nil
}

func (m *MockAccountRepository) SetDueOverride(userID string, amount *decimal.Decimal) error {
	if m.SetDueOverrideFunc != nil {
		return m.SetDueOverrideFunc(userID, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.get(userID).DueOverride = amount
	return nil
}

func (m *MockAccountRepository) DueOverride(userID string) (*decimal.Decimal, error) {
	if m.DueOverrideFunc != nil {
		return m.DueOverrideFunc(userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accounts[userID]; ok {
		return a.DueOverride, nil
	}
	return nil, nil
}

func (m *MockAccountRepository) SetBlocked(userID string, blocked bool) (bool, error) {
	if m.SetBlockedFunc != nil {
		return m.SetBlockedFunc(userID, blocked)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.get(userID)
	a.Blocked = blocked
	return a.Blocked, nil
}

func (m *MockAccountRepository) SetName(userID, name string) error {
	if m.SetNameFunc != nil {
		return m.SetNameFunc(userID, name)
	}
	if name == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.get(userID).Name = name
	return nil
}

func (m *MockAccountRepository) Clear() error {
	if m.ClearFunc != nil {
		return m.ClearFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = make(map[string]*domain.Account)
	return nil
}

// MockTransactionRepository is a mock implementation of
// TransactionRepository.
type MockTransactionRepository struct {
	mu   sync.RWMutex
	txns []*domain.Transaction

	AppendFunc     func(t *domain.Transaction) (*domain.Transaction, error)
	ListFunc       func(f domain.TransactionFilter) ([]*domain.Transaction, error)
	SumAutoFunc    func(userID, groupID string) (decimal.Decimal, error)
	LastAutoFunc   func(userID, groupID string) (*domain.Transaction, error)
	RemoveAutoFunc func(userID, groupID string) (int, error)
	CleanFunc      func() (int, error)
	ClearFunc      func() error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

func (m *MockTransactionRepository) Append(t *domain.Transaction) (*domain.Transaction, error) {
	if m.AppendFunc != nil {
		return m.AppendFunc(t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var maxID int64
	for _, existing := range m.txns {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	t.ID = maxID + 1
	m.txns = append(m.txns, t)
	return t, nil
}

func (m *MockTransactionRepository) List(f domain.TransactionFilter) ([]*domain.Transaction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(f)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Transaction, 0, len(m.txns))
	for _, t := range m.txns {
		if t.Valid() && f.Matches(t) {
			out = append(out, t)
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out, nil
}

func (m *MockTransactionRepository) SumAuto(userID, groupID string) (decimal.Decimal, error) {
	if m.SumAutoFunc != nil {
		return m.SumAutoFunc(userID, groupID)
	}
	list, err := m.List(domain.TransactionFilter{UserID: userID, GroupID: groupID, Type: domain.TransactionAuto})
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, t := range list {
		sum = sum.Add(t.Amount)
	}
	return sum, nil
}

func (m *MockTransactionRepository) LastAuto(userID, groupID string) (*domain.Transaction, error) {
	if m.LastAutoFunc != nil {
		return m.LastAutoFunc(userID, groupID)
	}
	list, err := m.List(domain.TransactionFilter{UserID: userID, GroupID: groupID, Type: domain.TransactionAuto})
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

func (m *MockTransactionRepository) RemoveAuto(userID, groupID string) (int, error) {
	if m.RemoveAutoFunc != nil {
		return m.RemoveAutoFunc(userID, groupID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.txns[:0]
	removed := 0
	for _, t := range m.txns {
		if t.Type == domain.TransactionAuto && t.UserID == userID && (groupID == "" || t.GroupID == groupID) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	m.txns = kept
	return removed, nil
}

func (m *MockTransactionRepository) Clean() (int, error) {
	if m.CleanFunc != nil {
		return m.CleanFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make([]*domain.Transaction, 0, len(m.txns))
	for _, t := range m.txns {
		if t.Valid() {
			kept = append(kept, t)
		}
	}
	dropped := len(m.txns) - len(kept)
	m.txns = kept
	return dropped, nil
}

func (m *MockTransactionRepository) Clear() error {
	if m.ClearFunc != nil {
		return m.ClearFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns = nil
	return nil
}

// MockGroupRepository is a mock implementation of GroupRepository. Entry ids
// are sequential so tests stay deterministic.
type MockGroupRepository struct {
	mu     sync.RWMutex
	groups map[string]*domain.Group
	nextID int64

	DefaultRate decimal.Decimal

	GetFunc              func(groupID string) (*domain.Group, error)
	ListFunc             func() ([]*domain.Group, error)
	AddEntryFunc         func(groupID, groupName string, e *domain.Entry) (*domain.Entry, error)
	ApproveEntryFunc     func(groupID string, entryID int64) (*domain.Entry, error)
	MarkEntryDeletedFunc func(groupID string, entryID int64) (*domain.Entry, error)
	RemoveEntryFunc      func(groupID string, entryID int64) (*domain.Entry, error)
	SetRateFunc          func(groupID string, rate decimal.Decimal) error
	SetDueLimitFunc      func(groupID string, limit *decimal.Decimal) error
	ClearEntriesFunc     func(groupID string) error
	ClearFunc            func() error
}

func NewMockGroupRepository() *MockGroupRepository {
	return &MockGroupRepository{
		groups:      make(map[string]*domain.Group),
		DefaultRate: domain.DefaultRate,
	}
}

func (m *MockGroupRepository) group(groupID string, rate decimal.Decimal) *domain.Group {
	g, ok := m.groups[groupID]
	if !ok {
		if rate.LessThanOrEqual(decimal.Zero) {
			rate = m.DefaultRate
		}
		g = &domain.Group{ID: groupID, Rate: rate, Entries: []*domain.Entry{}}
		m.groups[groupID] = g
	}
	return g
}

func (m *MockGroupRepository) Get(groupID string) (*domain.Group, error) {
	if m.GetFunc != nil {
		return m.GetFunc(groupID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.groups[groupID]; ok {
		return g, nil
	}
	return &domain.Group{ID: groupID, Rate: m.DefaultRate, Entries: []*domain.Entry{}}, nil
}

func (m *MockGroupRepository) List() ([]*domain.Group, error) {
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Group, 0, len(m.groups))
	for _, g := range m.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockGroupRepository) AddEntry(groupID, groupName string, e *domain.Entry) (*domain.Entry, error) {
	if m.AddEntryFunc != nil {
		return m.AddEntryFunc(groupID, groupName, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.group(groupID, e.Rate)
	if groupName != "" && g.Name == "" {
		g.Name = groupName
	}
	m.nextID++
	e.ID = m.nextID
	e.Status = domain.EntryPending
	e.CreatedAt = time.Now().UTC()
	g.Entries = append(g.Entries, e)
	return e, nil
}

func (m *MockGroupRepository) mutateEntry(groupID string, entryID int64, fn func(*domain.Entry) error) (*domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[groupID]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	e := g.FindEntry(entryID)
	if e == nil {
		return nil, domain.ErrEntryNotFound
	}
	if err := fn(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (m *MockGroupRepository) ApproveEntry(groupID string, entryID int64) (*domain.Entry, error) {
	if m.ApproveEntryFunc != nil {
		return m.ApproveEntryFunc(groupID, entryID)
	}
	return m.mutateEntry(groupID, entryID, func(e *domain.Entry) error {
		if e.Terminal() {
			return domain.ErrEntryTerminal
		}
		now := time.Now().UTC()
		e.Status = domain.EntryApproved
		e.ApprovedAt = &now
		return nil
	})
}

func (m *MockGroupRepository) MarkEntryDeleted(groupID string, entryID int64) (*domain.Entry, error) {
	if m.MarkEntryDeletedFunc != nil {
		return m.MarkEntryDeletedFunc(groupID, entryID)
	}
	return m.mutateEntry(groupID, entryID, func(e *domain.Entry) error {
		if e.Terminal() {
			return domain.ErrEntryTerminal
		}
		now := time.Now().UTC()
		e.Status = domain.EntryDeleted
		e.DeletedAt = &now
		return nil
	})
}

func (m *MockGroupRepository) RemoveEntry(groupID string, entryID int64) (*domain.Entry, error) {
	if m.RemoveEntryFunc != nil {
		return m.RemoveEntryFunc(groupID, entryID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[groupID]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	for i, e := range g.Entries {
		if e.ID == entryID {
			g.Entries = append(g.Entries[:i], g.Entries[i+1:]...)
			return e, nil
		}
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockGroupRepository) SetRate(groupID string, rate decimal.Decimal) error {
	if m.SetRateFunc != nil {
		return m.SetRateFunc(groupID, rate)
	}
	if err := domain.ValidateRate(rate); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.group(groupID, rate).Rate = rate
	return nil
}

func (m *MockGroupRepository) SetDueLimit(groupID string, limit *decimal.Decimal) error {
	if m.SetDueLimitFunc != nil {
		return m.SetDueLimitFunc(groupID, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.group(groupID, decimal.Decimal{}).DueLimit = limit
	return nil
}

func (m *MockGroupRepository) ClearEntries(groupID string) error {
	if m.ClearEntriesFunc != nil {
		return m.ClearEntriesFunc(groupID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.group(groupID, decimal.Decimal{}).Entries = []*domain.Entry{}
	return nil
}

func (m *MockGroupRepository) Clear() error {
	if m.ClearFunc != nil {
		return m.ClearFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups = make(map[string]*domain.Group)
	return nil
}

// MockSettingsRepository is a mock implementation of SettingsRepository.
type MockSettingsRepository struct {
	mu       sync.Mutex
	settings domain.Settings

	GetFunc    func() (*domain.Settings, error)
	UpdateFunc func(fn func(*domain.Settings) error) (*domain.Settings, error)
}

func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{
		settings: domain.Settings{
			StockEnabled: true,
			OffNotice:    domain.DefaultOffNotice,
		},
	}
}

func (m *MockSettingsRepository) Get() (*domain.Settings, error) {
	if m.GetFunc != nil {
		return m.GetFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.settings
	return &s, nil
}

func (m *MockSettingsRepository) Update(fn func(*domain.Settings) error) (*domain.Settings, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(fn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := fn(&m.settings); err != nil {
		return nil, err
	}
	m.settings.UpdatedAt = time.Now().UTC()
	s := m.settings
	return &s, nil
}

// MockAdminRepository is a mock implementation of AdminRepository.
type MockAdminRepository struct {
	mu     sync.RWMutex
	admins map[string]*domain.Admin
	pin    string

	ListFunc      func() ([]*domain.Admin, error)
	AddFunc       func(a *domain.Admin) (bool, error)
	RemoveFunc    func(chatID string) (bool, error)
	IsAdminFunc   func(chatID string) (bool, error)
	VerifyPINFunc func(pin string) (bool, error)
	UpdatePINFunc func(pin string) error
}

func NewMockAdminRepository() *MockAdminRepository {
	return &MockAdminRepository{
		admins: make(map[string]*domain.Admin),
		pin:    domain.DefaultPIN,
	}
}

func (m *MockAdminRepository) List() ([]*domain.Admin, error) {
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Admin, 0, len(m.admins))
	for _, a := range m.admins {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChatID < out[j].ChatID })
	return out, nil
}

func (m *MockAdminRepository) Add(a *domain.Admin) (bool, error) {
	if m.AddFunc != nil {
		return m.AddFunc(a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.admins[a.ChatID]; ok {
		return false, nil
	}
	m.admins[a.ChatID] = a
	return true, nil
}

func (m *MockAdminRepository) Remove(chatID string) (bool, error) {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(chatID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.admins[chatID]; !ok {
		return false, nil
	}
	delete(m.admins, chatID)
	return true, nil
}

func (m *MockAdminRepository) IsAdmin(chatID string) (bool, error) {
	if m.IsAdminFunc != nil {
		return m.IsAdminFunc(chatID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.admins[chatID]
	return ok, nil
}

func (m *MockAdminRepository) VerifyPIN(pin string) (bool, error) {
	if m.VerifyPINFunc != nil {
		return m.VerifyPINFunc(pin)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return pin == m.pin, nil
}

func (m *MockAdminRepository) UpdatePIN(pin string) error {
	if m.UpdatePINFunc != nil {
		return m.UpdatePINFunc(pin)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pin = pin
	return nil
}

// MockUserLocker is a mock implementation of UserLocker. The default is a
// pass-through; AcquireFunc lets tests inject lock failures, and the counters
// let them assert balanced acquire/release pairs.
type MockUserLocker struct {
	mu       sync.Mutex
	acquired map[string]int
	released map[string]int

	AcquireFunc func(ctx context.Context, key string) error
	ReleaseFunc func(key string)
}

func NewMockUserLocker() *MockUserLocker {
	return &MockUserLocker{
		acquired: make(map[string]int),
		released: make(map[string]int),
	}
}

func (m *MockUserLocker) Acquire(ctx context.Context, key string) error {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acquired[key]++
	return nil
}

func (m *MockUserLocker) Release(key string) {
	if m.ReleaseFunc != nil {
		m.ReleaseFunc(key)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released[key]++
}

// Balanced reports whether every acquire for key was released.
func (m *MockUserLocker) Balanced(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquired[key] == m.released[key] && m.acquired[key] > 0
}

// MockIDGenerator is a mock implementation of IDGenerator producing
// predictable sequential ids.
type MockIDGenerator struct {
	mu   sync.Mutex
	next int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return fmt.Sprintf("dep-%04d", m.next)
}
