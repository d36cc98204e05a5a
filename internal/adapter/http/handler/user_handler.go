package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/adapter/http/dto"
	"github.com/arefin/diamondledger/internal/domain"
	"github.com/arefin/diamondledger/internal/usecase"
)

// LedgerService defines the ledger behavior needed by UserHandler.
type LedgerService interface {
	Account(userID string) (*domain.Account, error)
	SetBalance(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error)
	AdjustBalance(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error)
	ApplyAutoDeduction(ctx context.Context, userID, userName string) (usecase.AutoDeductionResult, error)
	SetDueOverride(ctx context.Context, userID string, amount *decimal.Decimal) error
	AllGroupsRemainingDue(userID string) (usecase.DueSummary, error)
	RecordTransaction(userID, userName, groupID string, amount decimal.Decimal, txType domain.TransactionType) (*domain.Transaction, error)
	Transactions(f domain.TransactionFilter) ([]*domain.Transaction, error)
	LastAutoDeduction(userID, groupID string) (usecase.LastDeduction, error)
	ClearAutoDeductions(ctx context.Context, userID, groupID string) (int, error)
}

// UserAdminService defines the account administration behavior needed by
// UserHandler.
type UserAdminService interface {
	Users() ([]*domain.Account, error)
	SetBlocked(ctx context.Context, userID string, blocked bool) (bool, error)
}

// UserHandler handles user wallet and ledger-record endpoints.
type UserHandler struct {
	ledger LedgerService
	admin  UserAdminService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(ledger LedgerService, admin UserAdminService) *UserHandler {
	return &UserHandler{ledger: ledger, admin: admin}
}

// List lists every known wallet.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.Users()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.UsersFromDomain(users))
}

// Get returns one wallet joined with its cross-group due position.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	account, err := h.ledger.Account(userID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get user", err.Error())
		return
	}

	summary, err := h.ledger.AllGroupsRemainingDue(userID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to resolve dues", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.UserDetailResponse{
		UserResponse: dto.UserFromDomain(account),
		TotalDue:     summary.Total,
		RemainingDue: summary.Total,
	})
}

// SetBalance replaces a user's balance.
func (h *UserHandler) SetBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req dto.SetBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	balance, err := h.ledger.SetBalance(r.Context(), userID, req.Amount)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to set balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "balance": balance})
}

// Credit adds balance and immediately sweeps outstanding dues with it.
func (h *UserHandler) Credit(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req dto.CreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "invalid amount", domain.ErrInvalidAmount.Error())
		return
	}

	if _, err := h.ledger.AdjustBalance(r.Context(), userID, req.Amount); err != nil {
		writeError(w, mapDomainError(err), "failed to credit balance", err.Error())
		return
	}

	result, err := h.ledger.ApplyAutoDeduction(r.Context(), userID, req.UserName)
	if err != nil {
		writeError(w, mapDomainError(err), "credit applied but deduction failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// SetDueOverride pins or clears a user's due override.
func (h *UserHandler) SetDueOverride(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req dto.DueOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.ledger.SetDueOverride(r.Context(), userID, req.Amount); err != nil {
		writeError(w, mapDomainError(err), "failed to set due override", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SetBlocked blocks or unblocks a user.
func (h *UserHandler) SetBlocked(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req dto.SetBlockedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if _, err := h.admin.SetBlocked(r.Context(), userID, req.Blocked); err != nil {
		writeError(w, mapDomainError(err), "failed to update block state", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "blocked": req.Blocked})
}

// Transactions lists ledger records, filterable by user, group, and type.
func (h *UserHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	f := domain.TransactionFilter{
		UserID:  r.URL.Query().Get("user"),
		GroupID: r.URL.Query().Get("group"),
		Type:    domain.TransactionType(r.URL.Query().Get("type")),
		Limit:   parseIntQuery(r, "limit", 100),
	}

	txns, err := h.ledger.Transactions(f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txns))
}

// AutoDeductions lists auto-type records only.
func (h *UserHandler) AutoDeductions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.ledger.Transactions(domain.TransactionFilter{
		UserID:  r.URL.Query().Get("user"),
		GroupID: r.URL.Query().Get("group"),
		Type:    domain.TransactionAuto,
		Limit:   parseIntQuery(r, "limit", 100),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list auto-deductions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txns))
}

// LastAutoDeduction returns the most recent auto-deduction for a
// (user, group) pair.
func (h *UserHandler) LastAutoDeduction(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	groupID := r.URL.Query().Get("group")
	if userID == "" || groupID == "" {
		writeError(w, http.StatusBadRequest, "user and group query parameters are required", "")
		return
	}

	last, err := h.ledger.LastAutoDeduction(userID, groupID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get last deduction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, last)
}

// RecordDeduction appends a manual auto-type record, marking due as paid
// outside the automatic pass.
func (h *UserHandler) RecordDeduction(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordDeductionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.UserID == "" || req.GroupID == "" {
		writeError(w, http.StatusBadRequest, "user_id and group_id are required", "")
		return
	}

	txn, err := h.ledger.RecordTransaction(req.UserID, req.UserName, req.GroupID, req.Amount, domain.TransactionAuto)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record deduction", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// ClearDeductions drops a user's auto-deduction history in a group (or in
// every group when no group is given), resetting their paid figures.
func (h *UserHandler) ClearDeductions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user query parameter is required", "")
		return
	}

	removed, err := h.ledger.ClearAutoDeductions(r.Context(), userID, r.URL.Query().Get("group"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to clear deductions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
}
