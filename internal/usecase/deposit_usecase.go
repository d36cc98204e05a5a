package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/domain"
)

// DepositUseCase owns the deposit workflow: users request, admins approve or
// reject, and an approval credits the balance and immediately settles any
// outstanding due.
type DepositUseCase struct {
	deposits   DepositStore
	ledger     *LedgerUseCase
	ids        IDGenerator
	maxDeposit decimal.Decimal
	log        zerolog.Logger
}

// NewDepositUseCase creates a new DepositUseCase.
func NewDepositUseCase(deposits DepositStore, ledger *LedgerUseCase, ids IDGenerator, maxDeposit decimal.Decimal, log zerolog.Logger) *DepositUseCase {
	if maxDeposit.IsZero() {
		maxDeposit = domain.DefaultMaxDeposit
	}
	return &DepositUseCase{
		deposits:   deposits,
		ledger:     ledger,
		ids:        ids,
		maxDeposit: maxDeposit,
		log:        log,
	}
}

// DepositResult reports what an approval did to the user's ledger.
type DepositResult struct {
	Deposit       *domain.DepositRequest `json:"deposit"`
	BalanceBefore decimal.Decimal        `json:"balanceBefore"`
	AutoDeducted  decimal.Decimal        `json:"autoDeducted"`
	NewBalance    decimal.Decimal        `json:"newBalance"`
	PerGroup      []GroupDeduction       `json:"perGroup"`
}

// Request registers a pending deposit claim. Blocked users cannot request.
func (uc *DepositUseCase) Request(userID, userName, groupID string, amount decimal.Decimal) (*domain.DepositRequest, error) {
	if err := domain.ValidateDepositAmount(amount, uc.maxDeposit); err != nil {
		return nil, err
	}

	if acct, err := uc.ledger.Account(userID); err == nil && acct.Blocked {
		return nil, domain.ErrUserBlocked
	}

	d := &domain.DepositRequest{
		ID:        uc.ids.Generate(),
		UserID:    userID,
		UserName:  userName,
		GroupID:   groupID,
		Amount:    amount,
		Status:    domain.DepositPending,
		CreatedAt: time.Now().UTC(),
	}
	uc.deposits.Put(d)

	uc.log.Info().
		Str("deposit_id", d.ID).
		Str("user_id", userID).
		Str("amount", amount.String()).
		Msg("deposit requested")

	return d, nil
}

// Approve settles a pending deposit by id.
func (uc *DepositUseCase) Approve(ctx context.Context, depositID string) (*DepositResult, error) {
	d, ok := uc.deposits.Get(depositID)
	if !ok || d.Status != domain.DepositPending {
		return nil, domain.ErrDepositNotFound
	}
	return uc.approve(ctx, d)
}

// ApproveMatching settles the oldest pending deposit for (userID, amount).
// Admin chat approvals quote the user and the amount instead of an id.
func (uc *DepositUseCase) ApproveMatching(ctx context.Context, userID string, amount decimal.Decimal) (*DepositResult, error) {
	d, ok := uc.deposits.FindPending(userID, amount)
	if !ok {
		return nil, domain.ErrDepositNotFound
	}
	return uc.approve(ctx, d)
}

// approve runs the settlement sequence under the user's lock: credit the
// balance, sweep dues via auto-deduction, then record the manual transaction.
// The manual record is appended after the sweep so the deduction pass never
// mistakes it for settled due (only auto rows count as paid).
func (uc *DepositUseCase) approve(ctx context.Context, d *domain.DepositRequest) (*DepositResult, error) {
	if err := uc.ledger.lockUser(ctx, d.UserID); err != nil {
		return nil, err
	}
	defer uc.ledger.unlockUser(d.UserID)

	// Claim the deposit before touching the ledger. Concurrent approvals of
	// the same deposit serialize on the user lock, so the loser's claim
	// fails here and the ledger is never credited twice.
	resolved, ok := uc.deposits.Resolve(d.ID, domain.DepositCompleted)
	if !ok {
		return nil, domain.ErrDepositNotFound
	}

	balanceBefore, err := uc.ledger.accounts.Balance(d.UserID)
	if err != nil {
		// Nothing moved yet; the request stays approvable.
		uc.deposits.Reopen(d.ID)
		return nil, err
	}
	if _, err := uc.ledger.accounts.AdjustBalance(d.UserID, d.Amount); err != nil {
		uc.deposits.Reopen(d.ID)
		return nil, err
	}
	if d.UserName != "" {
		if err := uc.ledger.accounts.SetName(d.UserID, d.UserName); err != nil {
			uc.log.Warn().Err(err).Str("user_id", d.UserID).Msg("display name update failed")
		}
	}

	deduction, err := uc.ledger.applyAutoDeduction(d.UserID, d.UserName)
	if err != nil {
		// The credit already landed; reopening would let a retry credit it
		// again. The deposit stays completed and the sweep is left to the
		// next balance change.
		uc.log.Error().Err(err).Str("deposit_id", d.ID).Str("user_id", d.UserID).Msg("deposit credited but due sweep failed")
		return nil, err
	}

	if _, err := uc.ledger.recordTransaction(d.UserID, d.UserName, d.GroupID, d.Amount, domain.TransactionManual, "deposit"); err != nil {
		uc.log.Error().Err(err).Str("deposit_id", d.ID).Str("user_id", d.UserID).Msg("deposit credited but manual record failed")
		return nil, err
	}

	uc.log.Info().
		Str("deposit_id", d.ID).
		Str("user_id", d.UserID).
		Str("amount", d.Amount.String()).
		Str("auto_deducted", deduction.Deducted.String()).
		Str("new_balance", deduction.NewBalance.String()).
		Msg("deposit approved")

	return &DepositResult{
		Deposit:       resolved,
		BalanceBefore: balanceBefore,
		AutoDeducted:  deduction.Deducted,
		NewBalance:    deduction.NewBalance,
		PerGroup:      deduction.PerGroup,
	}, nil
}

// ProcessPayment runs the deposit settlement sequence for money received
// outside the request flow (admin acknowledges a payment no one requested).
// Same ordering as approve: credit, sweep, then the manual record.
func (uc *DepositUseCase) ProcessPayment(ctx context.Context, userID, userName, groupID string, amount decimal.Decimal) (*DepositResult, error) {
	if err := domain.ValidateDepositAmount(amount, uc.maxDeposit); err != nil {
		return nil, err
	}
	if err := uc.ledger.lockUser(ctx, userID); err != nil {
		return nil, err
	}
	defer uc.ledger.unlockUser(userID)

	balanceBefore, err := uc.ledger.accounts.Balance(userID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.ledger.accounts.AdjustBalance(userID, amount); err != nil {
		return nil, err
	}
	deduction, err := uc.ledger.applyAutoDeduction(userID, userName)
	if err != nil {
		return nil, err
	}
	if _, err := uc.ledger.recordTransaction(userID, userName, groupID, amount, domain.TransactionManual, "payment"); err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("user_id", userID).
		Str("amount", amount.String()).
		Str("auto_deducted", deduction.Deducted.String()).
		Msg("manual payment processed")

	return &DepositResult{
		BalanceBefore: balanceBefore,
		AutoDeducted:  deduction.Deducted,
		NewBalance:    deduction.NewBalance,
		PerGroup:      deduction.PerGroup,
	}, nil
}

// Reject marks a pending deposit rejected. No ledger effect.
func (uc *DepositUseCase) Reject(depositID string) (*domain.DepositRequest, error) {
	d, ok := uc.deposits.Resolve(depositID, domain.DepositRejected)
	if !ok {
		return nil, domain.ErrDepositNotFound
	}
	uc.log.Info().Str("deposit_id", d.ID).Str("user_id", d.UserID).Msg("deposit rejected")
	return d, nil
}

// Pending lists unresolved requests, oldest first.
func (uc *DepositUseCase) Pending() []*domain.DepositRequest {
	return uc.deposits.Pending()
}

// Stats aggregates the deposit history currently in memory.
func (uc *DepositUseCase) Stats() domain.DepositStats {
	stats := domain.DepositStats{
		TotalDeposited: decimal.Zero,
		PendingAmount:  decimal.Zero,
	}
	users := make(map[string]struct{})
	for _, d := range uc.deposits.All() {
		switch d.Status {
		case domain.DepositCompleted:
			stats.Completed++
			stats.TotalDeposited = stats.TotalDeposited.Add(d.Amount)
			users[d.UserID] = struct{}{}
		case domain.DepositPending:
			stats.Pending++
			stats.PendingAmount = stats.PendingAmount.Add(d.Amount)
		}
	}
	stats.UniqueUsers = len(users)
	return stats
}
