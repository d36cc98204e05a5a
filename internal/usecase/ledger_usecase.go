package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/domain"
)

// LedgerUseCase is the single source of truth for balances, dues, and paid
// amounts, and owns the auto-deduction algorithm. Every mutation for a user
// runs under that user's lock so the load-compute-write cycle cannot
// interleave with another mutation for the same user.
type LedgerUseCase struct {
	accounts AccountRepository
	txns     TransactionRepository
	groups   GroupRepository
	locks    UserLocker
	log      zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(accounts AccountRepository, txns TransactionRepository, groups GroupRepository, locks UserLocker, log zerolog.Logger) *LedgerUseCase {
	return &LedgerUseCase{
		accounts: accounts,
		txns:     txns,
		groups:   groups,
		locks:    locks,
		log:      log,
	}
}

// GroupDue is one group's outstanding due in a summary.
type GroupDue struct {
	GroupID string          `json:"groupId"`
	Due     decimal.Decimal `json:"due"`
}

// DueSummary is a user's outstanding due across all groups.
type DueSummary struct {
	Groups []GroupDue      `json:"groups"`
	Total  decimal.Decimal `json:"total"`
}

// GroupDeduction is one group's share of an auto-deduction pass.
type GroupDeduction struct {
	GroupID string          `json:"groupId"`
	Amount  decimal.Decimal `json:"amount"`
}

// AutoDeductionResult reports what an auto-deduction pass did.
type AutoDeductionResult struct {
	TotalDue   decimal.Decimal  `json:"totalDue"`
	Deducted   decimal.Decimal  `json:"deducted"`
	NewBalance decimal.Decimal  `json:"newBalance"`
	PerGroup   []GroupDeduction `json:"perGroup"`
}

// LastDeduction is the most recent auto-deduction for a (user, group).
// CreatedAt is nil when no deduction has ever happened.
type LastDeduction struct {
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt *time.Time      `json:"createdAt"`
}

// Balance returns the user's free balance, zero for unknown users.
func (uc *LedgerUseCase) Balance(userID string) (decimal.Decimal, error) {
	return uc.accounts.Balance(userID)
}

// Account returns the full account record.
func (uc *LedgerUseCase) Account(userID string) (*domain.Account, error) {
	return uc.accounts.Get(userID)
}

// SetBalance sets the balance to max(0, amount). Administrative correction;
// the deposit flow uses AdjustBalance.
func (uc *LedgerUseCase) SetBalance(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := uc.locks.Acquire(ctx, userID); err != nil {
		return decimal.Zero, err
	}
	defer uc.locks.Release(userID)
	return uc.accounts.SetBalance(userID, amount)
}

// AdjustBalance applies delta to the balance, floored at zero, and returns
// the new balance. Callers debiting must validate sufficiency first; the
// floor is a guard, not a transactional check.
func (uc *LedgerUseCase) AdjustBalance(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	if err := uc.locks.Acquire(ctx, userID); err != nil {
		return decimal.Zero, err
	}
	defer uc.locks.Release(userID)
	return uc.accounts.AdjustBalance(userID, delta)
}

// RecordTransaction validates and appends a ledger record.
func (uc *LedgerUseCase) RecordTransaction(userID, userName, groupID string, amount decimal.Decimal, txType domain.TransactionType) (*domain.Transaction, error) {
	return uc.recordTransaction(userID, userName, groupID, amount, txType, "")
}

func (uc *LedgerUseCase) recordTransaction(userID, userName, groupID string, amount decimal.Decimal, txType domain.TransactionType, reason string) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if userName == "" {
		userName = userID
	}
	return uc.txns.Append(&domain.Transaction{
		UserID:    userID,
		UserName:  userName,
		GroupID:   groupID,
		Amount:    amount,
		Type:      txType,
		Status:    domain.TransactionApproved,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	})
}

// ApprovedDue resolves what the user owes in a group: the admin override
// when present, otherwise the sum of approved entries.
func (uc *LedgerUseCase) ApprovedDue(userID, groupID string) (decimal.Decimal, error) {
	return uc.resolveDue(userID, groupID)
}

// resolveDue isolates the override quirk: the override is stored once per
// user but returned verbatim for EVERY group asked, ignoring groupID. A
// future per-group override only needs to change this function.
func (uc *LedgerUseCase) resolveDue(userID, groupID string) (decimal.Decimal, error) {
	override, err := uc.accounts.DueOverride(userID)
	if err != nil {
		return decimal.Zero, err
	}
	if override != nil {
		return *override, nil
	}

	g, err := uc.groups.Get(groupID)
	if err != nil {
		return decimal.Zero, err
	}
	return g.ApprovedDue(userID), nil
}

// Paid returns how much has been auto-deducted against the group's due.
// Manual deposits only raise balance; they never count here.
func (uc *LedgerUseCase) Paid(userID, groupID string) (decimal.Decimal, error) {
	return uc.txns.SumAuto(userID, groupID)
}

// RemainingDue is max(0, due - paid) for one group.
func (uc *LedgerUseCase) RemainingDue(userID, groupID string) (decimal.Decimal, error) {
	due, err := uc.resolveDue(userID, groupID)
	if err != nil {
		return decimal.Zero, err
	}
	paid, err := uc.txns.SumAuto(userID, groupID)
	if err != nil {
		return decimal.Zero, err
	}
	remaining := due.Sub(paid)
	if remaining.IsNegative() {
		return decimal.Zero, nil
	}
	return remaining, nil
}

// LastAutoDeduction returns the most recent auto-deduction for the pair, or
// a zero amount with nil time when there is none.
func (uc *LedgerUseCase) LastAutoDeduction(userID, groupID string) (LastDeduction, error) {
	t, err := uc.txns.LastAuto(userID, groupID)
	if err != nil {
		return LastDeduction{Amount: decimal.Zero}, err
	}
	if t == nil {
		return LastDeduction{Amount: decimal.Zero}, nil
	}
	createdAt := t.CreatedAt
	return LastDeduction{Amount: t.Amount, CreatedAt: &createdAt}, nil
}

// AllGroupsRemainingDue walks every group in the system and reports the
// ones where the user still owes something, sorted by group id ascending
// for deterministic allocation, plus the grand total. A due override, being
// global, contributes identically to every group's figure.
func (uc *LedgerUseCase) AllGroupsRemainingDue(userID string) (DueSummary, error) {
	summary := DueSummary{Groups: []GroupDue{}, Total: decimal.Zero}

	groups, err := uc.groups.List()
	if err != nil {
		return summary, err
	}

	override, err := uc.accounts.DueOverride(userID)
	if err != nil {
		return summary, err
	}

	for _, g := range groups {
		due := g.ApprovedDue(userID)
		if override != nil {
			due = *override
		}
		paid, err := uc.txns.SumAuto(userID, g.ID)
		if err != nil {
			return summary, err
		}
		remaining := due.Sub(paid)
		if remaining.IsPositive() {
			summary.Groups = append(summary.Groups, GroupDue{GroupID: g.ID, Due: remaining})
			summary.Total = summary.Total.Add(remaining)
		}
	}
	return summary, nil
}

// ApplyAutoDeduction pays as much outstanding due as the user's balance
// covers, walking groups in their sorted order, and debits the balance once
// for the total. It only ever requests deductions proven <= balance, so the
// repository's zero floor is never exercised on this path.
func (uc *LedgerUseCase) ApplyAutoDeduction(ctx context.Context, userID, userName string) (AutoDeductionResult, error) {
	if err := uc.locks.Acquire(ctx, userID); err != nil {
		return AutoDeductionResult{}, err
	}
	defer uc.locks.Release(userID)
	return uc.applyAutoDeduction(userID, userName)
}

// applyAutoDeduction is the lock-free core, shared with the deposit and
// order workflows that already hold the user's lock.
func (uc *LedgerUseCase) applyAutoDeduction(userID, userName string) (AutoDeductionResult, error) {
	balance, err := uc.accounts.Balance(userID)
	if err != nil {
		return AutoDeductionResult{}, err
	}
	summary, err := uc.AllGroupsRemainingDue(userID)
	if err != nil {
		return AutoDeductionResult{}, err
	}

	result := AutoDeductionResult{
		TotalDue:   summary.Total,
		Deducted:   decimal.Zero,
		NewBalance: balance,
		PerGroup:   []GroupDeduction{},
	}
	if len(summary.Groups) == 0 || !balance.IsPositive() {
		return result, nil
	}

	toDeduct := decimal.Min(balance, summary.Total)
	if !toDeduct.IsPositive() {
		return result, nil
	}

	remaining := toDeduct
	for _, g := range summary.Groups {
		if !remaining.IsPositive() {
			break
		}
		pay := decimal.Min(remaining, g.Due)
		if !pay.IsPositive() {
			continue
		}
		if _, err := uc.recordTransaction(userID, userName, g.GroupID, pay, domain.TransactionAuto, "auto-deduction"); err != nil {
			return result, err
		}
		result.PerGroup = append(result.PerGroup, GroupDeduction{GroupID: g.GroupID, Amount: pay})
		remaining = remaining.Sub(pay)
	}

	newBalance, err := uc.accounts.AdjustBalance(userID, toDeduct.Neg())
	if err != nil {
		return result, err
	}

	result.Deducted = toDeduct
	result.NewBalance = newBalance

	uc.log.Info().
		Str("user_id", userID).
		Str("deducted", toDeduct.String()).
		Str("new_balance", newBalance.String()).
		Int("groups", len(result.PerGroup)).
		Msg("auto-deduction applied")

	return result, nil
}

// SetDueOverride pins (or with nil clears) the user's global due override.
// While set, every group's due resolves to this value.
func (uc *LedgerUseCase) SetDueOverride(ctx context.Context, userID string, amount *decimal.Decimal) error {
	if amount != nil && amount.IsNegative() {
		return domain.ErrInvalidAmount
	}
	if err := uc.locks.Acquire(ctx, userID); err != nil {
		return err
	}
	defer uc.locks.Release(userID)
	return uc.accounts.SetDueOverride(userID, amount)
}

// Transactions lists ledger records through the repository filter.
func (uc *LedgerUseCase) Transactions(f domain.TransactionFilter) ([]*domain.Transaction, error) {
	return uc.txns.List(f)
}

// ClearAutoDeductions drops a user's auto-deduction history. Administrative
// cleanup; the user's "paid" figures reset to zero.
func (uc *LedgerUseCase) ClearAutoDeductions(ctx context.Context, userID, groupID string) (int, error) {
	if err := uc.locks.Acquire(ctx, userID); err != nil {
		return 0, err
	}
	defer uc.locks.Release(userID)
	return uc.txns.RemoveAuto(userID, groupID)
}

// DashboardSnapshot aggregates everything the chat dashboard shows.
type DashboardSnapshot struct {
	Balance       decimal.Decimal `json:"balance"`
	Due           decimal.Decimal `json:"due"`
	Paid          decimal.Decimal `json:"paid"`
	RemainingDue  decimal.Decimal `json:"remainingDue"`
	Available     decimal.Decimal `json:"available"`
	LastDeduction LastDeduction   `json:"lastDeduction"`
	Entries       []*domain.Entry `json:"entries"`
	Rate          decimal.Decimal `json:"rate"`
}

// Snapshot builds the dashboard view for a user in a group.
func (uc *LedgerUseCase) Snapshot(userID, groupID string) (DashboardSnapshot, error) {
	balance, err := uc.accounts.Balance(userID)
	if err != nil {
		return DashboardSnapshot{}, err
	}
	due, err := uc.resolveDue(userID, groupID)
	if err != nil {
		return DashboardSnapshot{}, err
	}
	paid, err := uc.txns.SumAuto(userID, groupID)
	if err != nil {
		return DashboardSnapshot{}, err
	}
	last, err := uc.LastAutoDeduction(userID, groupID)
	if err != nil {
		return DashboardSnapshot{}, err
	}
	g, err := uc.groups.Get(groupID)
	if err != nil {
		return DashboardSnapshot{}, err
	}

	remaining := due.Sub(paid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	available := balance.Sub(remaining)
	if available.IsNegative() {
		available = decimal.Zero
	}

	entries := make([]*domain.Entry, 0)
	for _, e := range g.Entries {
		if e.UserID == userID && e.Status == domain.EntryApproved {
			entries = append(entries, e)
		}
	}

	return DashboardSnapshot{
		Balance:       balance,
		Due:           due,
		Paid:          paid,
		RemainingDue:  remaining,
		Available:     available,
		LastDeduction: last,
		Entries:       entries,
		Rate:          g.Rate,
	}, nil
}

// lockUser exposes the per-user lock to sibling workflows in this package.
func (uc *LedgerUseCase) lockUser(ctx context.Context, userID string) error {
	return uc.locks.Acquire(ctx, userID)
}

func (uc *LedgerUseCase) unlockUser(userID string) {
	uc.locks.Release(userID)
}
