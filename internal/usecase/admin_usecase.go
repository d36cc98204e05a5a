package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/arefin/diamondledger/internal/domain"
)

// AdminUseCase manages the chat admin roster, the panel PIN, user blocking,
// and data maintenance.
type AdminUseCase struct {
	admins   AdminRepository
	accounts AccountRepository
	txns     TransactionRepository
	groups   GroupRepository
	locks    UserLocker
	log      zerolog.Logger
}

// NewAdminUseCase creates a new AdminUseCase.
func NewAdminUseCase(admins AdminRepository, accounts AccountRepository, txns TransactionRepository, groups GroupRepository, locks UserLocker, log zerolog.Logger) *AdminUseCase {
	return &AdminUseCase{
		admins:   admins,
		accounts: accounts,
		txns:     txns,
		groups:   groups,
		locks:    locks,
		log:      log,
	}
}

// VerifyPIN checks the panel PIN, returning ErrInvalidPIN on mismatch.
func (uc *AdminUseCase) VerifyPIN(pin string) error {
	ok, err := uc.admins.VerifyPIN(pin)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidPIN
	}
	return nil
}

// ChangePIN rotates the panel PIN after verifying the current one.
func (uc *AdminUseCase) ChangePIN(current, next string) error {
	if err := uc.VerifyPIN(current); err != nil {
		return err
	}
	if len(next) < 4 {
		return domain.ErrInvalidPIN
	}
	if err := uc.admins.UpdatePIN(next); err != nil {
		return err
	}
	uc.log.Info().Msg("panel PIN rotated")
	return nil
}

// IsAdmin reports whether the chat id belongs to a registered admin.
func (uc *AdminUseCase) IsAdmin(chatID string) (bool, error) {
	return uc.admins.IsAdmin(chatID)
}

// Admins lists the roster.
func (uc *AdminUseCase) Admins() ([]*domain.Admin, error) {
	return uc.admins.List()
}

// AddAdmin registers a chat id as admin. Returns false for duplicates.
func (uc *AdminUseCase) AddAdmin(chatID, phone, name string) (bool, error) {
	added, err := uc.admins.Add(&domain.Admin{
		ChatID:  chatID,
		Phone:   phone,
		Name:    name,
		Role:    domain.RoleAdmin,
		AddedAt: time.Now().UTC(),
	})
	if err != nil {
		return false, err
	}
	if added {
		uc.log.Info().Str("chat_id", chatID).Msg("admin added")
	}
	return added, nil
}

// RemoveAdmin drops a chat id from the roster.
func (uc *AdminUseCase) RemoveAdmin(chatID string) (bool, error) {
	removed, err := uc.admins.Remove(chatID)
	if err != nil {
		return false, err
	}
	if removed {
		uc.log.Info().Str("chat_id", chatID).Msg("admin removed")
	}
	return removed, nil
}

// SetBlocked blocks or unblocks a user. Blocked users cannot place orders
// or request deposits; their existing ledger state is untouched.
func (uc *AdminUseCase) SetBlocked(ctx context.Context, userID string, blocked bool) (bool, error) {
	if err := uc.locks.Acquire(ctx, userID); err != nil {
		return false, err
	}
	defer uc.locks.Release(userID)

	was, err := uc.accounts.SetBlocked(userID, blocked)
	if err != nil {
		return false, err
	}
	uc.log.Info().Str("user_id", userID).Bool("blocked", blocked).Msg("user block state changed")
	return was, nil
}

// Users lists every known account.
func (uc *AdminUseCase) Users() ([]*domain.Account, error) {
	return uc.accounts.List()
}

// CleanTransactions drops malformed ledger rows and returns how many went.
func (uc *AdminUseCase) CleanTransactions() (int, error) {
	dropped, err := uc.txns.Clean()
	if err != nil {
		return 0, err
	}
	if dropped > 0 {
		uc.log.Warn().Int("dropped", dropped).Msg("malformed transactions removed")
	}
	return dropped, nil
}

// ClearAllData wipes accounts, transactions, and group entries. The admin
// roster and settings survive.
func (uc *AdminUseCase) ClearAllData() error {
	if err := uc.accounts.Clear(); err != nil {
		return err
	}
	if err := uc.txns.Clear(); err != nil {
		return err
	}
	if err := uc.groups.Clear(); err != nil {
		return err
	}
	uc.log.Warn().Msg("all ledger data cleared")
	return nil
}
