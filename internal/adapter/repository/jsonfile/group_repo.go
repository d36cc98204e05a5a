package jsonfile

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/domain"
)

const groupsFile = "database.json"

type groupsDocument struct {
	Groups      map[string]*domain.Group `json:"groups"`
	LastUpdated time.Time                `json:"lastUpdated"`
}

// GroupRepository persists per-group order entries and group settings in
// database.json. It owns entry status transitions; due math lives in the
// ledger use case.
type GroupRepository struct {
	mu          sync.Mutex
	store       *Store
	defaultRate decimal.Decimal
}

// NewGroupRepository creates a new GroupRepository. defaultRate is handed to
// unknown groups (the system's fallback price per diamond).
func NewGroupRepository(store *Store, defaultRate decimal.Decimal) *GroupRepository {
	if defaultRate.LessThanOrEqual(decimal.Zero) {
		defaultRate = domain.DefaultRate
	}
	return &GroupRepository{store: store, defaultRate: defaultRate}
}

func (r *GroupRepository) load() (*groupsDocument, error) {
	doc := &groupsDocument{}
	err := r.store.read(groupsFile, doc, func() {
		*doc = groupsDocument{Groups: make(map[string]*domain.Group)}
	})
	if err != nil {
		return nil, err
	}
	if doc.Groups == nil {
		doc.Groups = make(map[string]*domain.Group)
	}
	for id, g := range doc.Groups {
		if g.ID == "" {
			g.ID = id
		}
		if g.Rate.LessThanOrEqual(decimal.Zero) {
			g.Rate = r.defaultRate
		}
	}
	return doc, nil
}

func (r *GroupRepository) save(doc *groupsDocument) error {
	doc.LastUpdated = time.Now().UTC()
	return r.store.write(groupsFile, doc)
}

// Get returns the group, or a detached default {entries: [], rate: default}
// for unknown ids. The default is not persisted until something writes to
// the group.
func (r *GroupRepository) Get(groupID string) (*domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	if g, ok := doc.Groups[groupID]; ok {
		return g, nil
	}
	return &domain.Group{ID: groupID, Rate: r.defaultRate, Entries: []*domain.Entry{}}, nil
}

// List returns all known groups sorted by id ascending. The ordering is
// what makes partial auto-deduction allocation deterministic.
func (r *GroupRepository) List() ([]*domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Group, 0, len(doc.Groups))
	for _, g := range doc.Groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AddEntry appends a pending entry to the group, creating the group record
// with the entry's rate when absent. The entry id is millisecond-epoch
// based, bumped past any existing id to stay unique.
func (r *GroupRepository) AddEntry(groupID, groupName string, e *domain.Entry) (*domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}

	g, ok := doc.Groups[groupID]
	if !ok {
		g = &domain.Group{ID: groupID, Rate: e.Rate, Entries: []*domain.Entry{}}
		doc.Groups[groupID] = g
	}
	if groupName != "" && g.Name == "" {
		g.Name = groupName
	}

	id := time.Now().UnixMilli()
	for _, existing := range g.Entries {
		if existing.ID >= id {
			id = existing.ID + 1
		}
	}
	e.ID = id
	e.Status = domain.EntryPending
	e.CreatedAt = time.Now().UTC()

	g.Entries = append(g.Entries, e)
	g.UpdatedAt = e.CreatedAt

	if err := r.save(doc); err != nil {
		return nil, err
	}
	return e, nil
}

// mutateEntry applies fn to a non-terminal entry and persists.
func (r *GroupRepository) mutateEntry(groupID string, entryID int64, fn func(*domain.Entry) error) (*domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	g, ok := doc.Groups[groupID]
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
	g.UpdatedAt = time.Now().UTC()
	if err := r.save(doc); err != nil {
		return nil, err
	}
	return e, nil
}

// ApproveEntry transitions a pending entry to approved and stamps
// approvedAt. Terminal entries report domain.ErrEntryTerminal.
func (r *GroupRepository) ApproveEntry(groupID string, entryID int64) (*domain.Entry, error) {
	return r.mutateEntry(groupID, entryID, func(e *domain.Entry) error {
		if e.Terminal() {
			return domain.ErrEntryTerminal
		}
		now := time.Now().UTC()
		e.Status = domain.EntryApproved
		e.ApprovedAt = &now
		return nil
	})
}

// MarkEntryDeleted soft-deletes an entry in place, preserving the row for
// audit. Used when the source chat message is revoked.
func (r *GroupRepository) MarkEntryDeleted(groupID string, entryID int64) (*domain.Entry, error) {
	return r.mutateEntry(groupID, entryID, func(e *domain.Entry) error {
		if e.Terminal() {
			return domain.ErrEntryTerminal
		}
		now := time.Now().UTC()
		e.Status = domain.EntryDeleted
		e.DeletedAt = &now
		return nil
	})
}

// RemoveEntry hard-removes an entry from the group and returns it. Used for
// explicit admin/user deletion, unlike the soft revocation path.
func (r *GroupRepository) RemoveEntry(groupID string, entryID int64) (*domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	g, ok := doc.Groups[groupID]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	for i, e := range g.Entries {
		if e.ID == entryID {
			g.Entries = append(g.Entries[:i], g.Entries[i+1:]...)
			g.UpdatedAt = time.Now().UTC()
			if err := r.save(doc); err != nil {
				return nil, err
			}
			return e, nil
		}
	}
	return nil, domain.ErrEntryNotFound
}

// mutateGroup applies fn to the group, creating it when absent.
func (r *GroupRepository) mutateGroup(groupID string, fn func(*domain.Group)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	g, ok := doc.Groups[groupID]
	if !ok {
		g = &domain.Group{ID: groupID, Rate: r.defaultRate, Entries: []*domain.Entry{}}
		doc.Groups[groupID] = g
	}
	fn(g)
	g.UpdatedAt = time.Now().UTC()
	return r.save(doc)
}

// SetRate updates the group's rate. Existing entries keep their snapshots.
func (r *GroupRepository) SetRate(groupID string, rate decimal.Decimal) error {
	if err := domain.ValidateRate(rate); err != nil {
		return err
	}
	return r.mutateGroup(groupID, func(g *domain.Group) {
		g.Rate = rate
	})
}

// SetDueLimit updates (or with nil clears) the group's informational due
// ceiling.
func (r *GroupRepository) SetDueLimit(groupID string, limit *decimal.Decimal) error {
	return r.mutateGroup(groupID, func(g *domain.Group) {
		g.DueLimit = limit
	})
}

// ClearEntries drops all of the group's entries.
func (r *GroupRepository) ClearEntries(groupID string) error {
	return r.mutateGroup(groupID, func(g *domain.Group) {
		g.Entries = []*domain.Entry{}
	})
}

// Clear removes every group. Bulk data-clear only.
func (r *GroupRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(&groupsDocument{Groups: make(map[string]*domain.Group)})
}
