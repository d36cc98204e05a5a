package domain

import "errors"

var (
	// Ledger errors
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrAmountTooLarge = errors.New("amount exceeds maximum allowed")
	ErrLockTimeout    = errors.New("ledger is busy for this user, try again")

	// Order errors
	ErrInvalidDiamonds = errors.New("diamond count must be positive")
	ErrGroupNotFound   = errors.New("group not found")
	ErrEntryNotFound   = errors.New("order entry not found")
	ErrEntryTerminal   = errors.New("order entry already approved or deleted")
	ErrStockDisabled   = errors.New("diamond system is off")
	ErrOutOfStock      = errors.New("not enough diamond stock")

	// Deposit errors
	ErrDepositNotFound = errors.New("no matching pending deposit")

	// User errors
	ErrAccountNotFound = errors.New("account not found")
	ErrUserBlocked     = errors.New("user is blocked")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidPIN   = errors.New("invalid PIN")
)
