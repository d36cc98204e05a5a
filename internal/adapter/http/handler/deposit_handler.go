package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arefin/diamondledger/internal/adapter/http/dto"
	"github.com/arefin/diamondledger/internal/domain"
	"github.com/arefin/diamondledger/internal/usecase"
)

// DepositService defines the behavior needed by DepositHandler.
type DepositService interface {
	Pending() []*domain.DepositRequest
	Approve(ctx context.Context, depositID string) (*usecase.DepositResult, error)
	Reject(depositID string) (*domain.DepositRequest, error)
	Stats() domain.DepositStats
}

// DepositHandler handles the panel side of the deposit workflow.
type DepositHandler struct {
	deposits DepositService
}

// NewDepositHandler creates a new DepositHandler.
func NewDepositHandler(deposits DepositService) *DepositHandler {
	return &DepositHandler{deposits: deposits}
}

// Pending lists unresolved deposit requests, oldest first.
func (h *DepositHandler) Pending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.DepositsFromDomain(h.deposits.Pending()))
}

// Approve settles a pending deposit: credit, due sweep, manual record.
func (h *DepositHandler) Approve(w http.ResponseWriter, r *http.Request) {
	result, err := h.deposits.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to approve deposit", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Reject marks a pending deposit rejected with no ledger effect.
func (h *DepositHandler) Reject(w http.ResponseWriter, r *http.Request) {
	d, err := h.deposits.Reject(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reject deposit", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DepositFromDomain(d))
}

// Stats aggregates the deposit history.
func (h *DepositHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deposits.Stats())
}
