package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/domain"
)

// OrderUseCase handles the diamond order lifecycle: placement, approval
// (with the approval-time auto-deduction pass), cancellation, and the group
// administration the panel needs.
type OrderUseCase struct {
	groups   GroupRepository
	settings SettingsRepository
	ledger   *LedgerUseCase
	log      zerolog.Logger
}

// NewOrderUseCase creates a new OrderUseCase.
func NewOrderUseCase(groups GroupRepository, settings SettingsRepository, ledger *LedgerUseCase, log zerolog.Logger) *OrderUseCase {
	return &OrderUseCase{
		groups:   groups,
		settings: settings,
		ledger:   ledger,
		log:      log,
	}
}

// PlaceOrderInput describes a new diamond order.
type PlaceOrderInput struct {
	GroupID   string
	GroupName string
	UserID    string
	UserName  string
	PlayerRef string
	Diamonds  int64
	MessageID string
}

// PlaceOrder creates a pending entry, snapshotting the group's current rate.
// Rejected when the diamond system is off or the user is blocked.
func (uc *OrderUseCase) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Entry, error) {
	if err := domain.ValidateDiamonds(input.Diamonds); err != nil {
		return nil, err
	}

	if acct, err := uc.ledger.Account(input.UserID); err == nil && acct.Blocked {
		return nil, domain.ErrUserBlocked
	} else if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	settings, err := uc.settings.Get()
	if err != nil {
		return nil, err
	}
	if !settings.StockEnabled {
		return nil, domain.ErrStockDisabled
	}
	// A positive stock counter means stock is tracked; orders above it are
	// refused up front rather than failing at approval.
	if settings.Stock > 0 && input.Diamonds > settings.Stock {
		return nil, fmt.Errorf("%w: %d left", domain.ErrOutOfStock, settings.Stock)
	}

	g, err := uc.groups.Get(input.GroupID)
	if err != nil {
		return nil, err
	}

	entry, err := uc.groups.AddEntry(input.GroupID, input.GroupName, &domain.Entry{
		UserID:    input.UserID,
		UserName:  input.UserName,
		PlayerRef: input.PlayerRef,
		Diamonds:  input.Diamonds,
		Rate:      g.Rate,
		MessageID: input.MessageID,
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("group_id", input.GroupID).
		Str("user_id", input.UserID).
		Int64("diamonds", input.Diamonds).
		Str("rate", g.Rate.String()).
		Int64("entry_id", entry.ID).
		Msg("order placed")

	return entry, nil
}

// ApproveOrder transitions the entry to approved, deducts admin stock, and
// runs an auto-deduction pass: the entry now counts toward due, so any
// balance the user already holds pays it immediately. Approval and the
// deduction run under the user's lock as one unit.
func (uc *OrderUseCase) ApproveOrder(ctx context.Context, groupID string, entryID int64) (*domain.Entry, AutoDeductionResult, error) {
	g, err := uc.groups.Get(groupID)
	if err != nil {
		return nil, AutoDeductionResult{}, err
	}
	pending := g.FindEntry(entryID)
	if pending == nil {
		return nil, AutoDeductionResult{}, domain.ErrEntryNotFound
	}

	if err := uc.ledger.lockUser(ctx, pending.UserID); err != nil {
		return nil, AutoDeductionResult{}, err
	}
	defer uc.ledger.unlockUser(pending.UserID)

	entry, err := uc.groups.ApproveEntry(groupID, entryID)
	if err != nil {
		return nil, AutoDeductionResult{}, err
	}

	uc.deductStock(entry.Diamonds)

	result, err := uc.ledger.applyAutoDeduction(entry.UserID, entry.UserName)
	if err != nil {
		// The approval is already persisted; the due stays outstanding and
		// the next deduction pass picks it up.
		uc.log.Error().Err(err).Int64("entry_id", entryID).Msg("auto-deduction after approval failed")
		return entry, AutoDeductionResult{}, err
	}

	return entry, result, nil
}

// deductStock decrements the shared diamond stock when tracking is on, and
// switches the system off once the stock runs out.
func (uc *OrderUseCase) deductStock(diamonds int64) {
	depleted := false
	_, err := uc.settings.Update(func(s *domain.Settings) error {
		if !s.StockEnabled || s.Stock <= 0 {
			return nil
		}
		s.Stock -= diamonds
		if s.Stock <= 0 {
			s.Stock = 0
			s.StockEnabled = false
			s.OffNotice = domain.StockDepletedNotice
			depleted = true
		}
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Msg("stock deduction failed")
		return
	}
	if depleted {
		uc.log.Warn().Msg("diamond stock depleted, system switched off")
	}
}

// CancelOrder hard-removes an entry (explicit user/admin deletion).
func (uc *OrderUseCase) CancelOrder(groupID string, entryID int64) (*domain.Entry, error) {
	return uc.groups.RemoveEntry(groupID, entryID)
}

// CancelLatestPending removes the user's newest pending entry in the group,
// the chat /cancel behavior. Reports ErrEntryNotFound when there is none.
func (uc *OrderUseCase) CancelLatestPending(groupID, userID string) (*domain.Entry, error) {
	g, err := uc.groups.Get(groupID)
	if err != nil {
		return nil, err
	}
	var latest *domain.Entry
	for _, e := range g.Entries {
		if e.UserID == userID && e.Status == domain.EntryPending {
			if latest == nil || e.CreatedAt.After(latest.CreatedAt) {
				latest = e
			}
		}
	}
	if latest == nil {
		return nil, domain.ErrEntryNotFound
	}
	return uc.groups.RemoveEntry(groupID, latest.ID)
}

// RevokeByMessage soft-deletes the pending entry created from a chat
// message that was deleted upstream. The row stays for audit.
func (uc *OrderUseCase) RevokeByMessage(groupID, messageID string) (*domain.Entry, error) {
	g, err := uc.groups.Get(groupID)
	if err != nil {
		return nil, err
	}
	for _, e := range g.Entries {
		if e.MessageID == messageID && e.Status == domain.EntryPending {
			return uc.groups.MarkEntryDeleted(groupID, e.ID)
		}
	}
	return nil, domain.ErrEntryNotFound
}

// FindByMessage locates the entry created from a chat message, used to
// resolve admin reply-approvals.
func (uc *OrderUseCase) FindByMessage(groupID, messageID string) (*domain.Entry, error) {
	g, err := uc.groups.Get(groupID)
	if err != nil {
		return nil, err
	}
	for _, e := range g.Entries {
		if e.MessageID == messageID {
			return e, nil
		}
	}
	return nil, domain.ErrEntryNotFound
}

// PendingOrders lists a group's pending entries, oldest first.
func (uc *OrderUseCase) PendingOrders(groupID string) ([]*domain.Entry, error) {
	g, err := uc.groups.Get(groupID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Entry, 0)
	for _, e := range g.Entries {
		if e.Status == domain.EntryPending {
			out = append(out, e)
		}
	}
	return out, nil
}

// GroupOrder is an entry joined with its group, for cross-group listings.
type GroupOrder struct {
	GroupID   string        `json:"groupId"`
	GroupName string        `json:"groupName,omitempty"`
	Entry     *domain.Entry `json:"entry"`
}

// Orders lists entries across every group, optionally filtered by status.
func (uc *OrderUseCase) Orders(status domain.EntryStatus) ([]GroupOrder, error) {
	groups, err := uc.groups.List()
	if err != nil {
		return nil, err
	}
	out := make([]GroupOrder, 0)
	for _, g := range groups {
		for _, e := range g.Entries {
			if status != "" && e.Status != status {
				continue
			}
			out = append(out, GroupOrder{GroupID: g.ID, GroupName: g.Name, Entry: e})
		}
	}
	return out, nil
}

// Groups lists all known groups.
func (uc *OrderUseCase) Groups() ([]*domain.Group, error) {
	return uc.groups.List()
}

// Group returns one group (a default record for unknown ids).
func (uc *OrderUseCase) Group(groupID string) (*domain.Group, error) {
	return uc.groups.Get(groupID)
}

// SetRate updates a group's price per diamond. Existing entries keep their
// snapshots.
func (uc *OrderUseCase) SetRate(groupID string, rate decimal.Decimal) error {
	return uc.groups.SetRate(groupID, rate)
}

// BulkSetRate applies one rate to every known group and returns how many
// were updated.
func (uc *OrderUseCase) BulkSetRate(rate decimal.Decimal) (int, error) {
	if err := domain.ValidateRate(rate); err != nil {
		return 0, err
	}
	groups, err := uc.groups.List()
	if err != nil {
		return 0, err
	}
	for _, g := range groups {
		if err := uc.groups.SetRate(g.ID, rate); err != nil {
			return 0, err
		}
	}
	return len(groups), nil
}

// SetDueLimit updates a group's informational due ceiling.
func (uc *OrderUseCase) SetDueLimit(groupID string, limit *decimal.Decimal) error {
	return uc.groups.SetDueLimit(groupID, limit)
}

// ClearGroup drops all of a group's entries.
func (uc *OrderUseCase) ClearGroup(groupID string) error {
	return uc.groups.ClearEntries(groupID)
}
