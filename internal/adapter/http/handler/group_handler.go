package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/adapter/http/dto"
	"github.com/arefin/diamondledger/internal/domain"
	"github.com/arefin/diamondledger/internal/usecase"
)

// OrderService defines the group and order behavior needed by GroupHandler.
type OrderService interface {
	Groups() ([]*domain.Group, error)
	Group(groupID string) (*domain.Group, error)
	SetRate(groupID string, rate decimal.Decimal) error
	BulkSetRate(rate decimal.Decimal) (int, error)
	SetDueLimit(groupID string, limit *decimal.Decimal) error
	ClearGroup(groupID string) error
	Orders(status domain.EntryStatus) ([]usecase.GroupOrder, error)
}

// GroupHandler handles group administration and cross-group order listings.
type GroupHandler struct {
	orders OrderService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(orders OrderService) *GroupHandler {
	return &GroupHandler{orders: orders}
}

// List lists all known groups with their entries.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.orders.Groups()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list groups", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.GroupsFromDomain(groups))
}

// Get returns one group.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.orders.Group(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get group", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.GroupFromDomain(g))
}

// SetRate updates a group's price per diamond. Existing entries keep their
// snapshotted rates.
func (h *GroupHandler) SetRate(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	var req dto.SetRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if !req.Rate.IsPositive() {
		writeError(w, http.StatusBadRequest, "invalid rate", domain.ErrInvalidAmount.Error())
		return
	}

	if err := h.orders.SetRate(groupID, req.Rate); err != nil {
		writeError(w, mapDomainError(err), "failed to set rate", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"group_id": groupID, "rate": req.Rate})
}

// BulkSetRate applies one rate to every group.
func (h *GroupHandler) BulkSetRate(w http.ResponseWriter, r *http.Request) {
	var req dto.SetRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	updated, err := h.orders.BulkSetRate(req.Rate)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to set rates", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"updated": updated, "rate": req.Rate})
}

// SetDueLimit updates a group's informational due ceiling.
func (h *GroupHandler) SetDueLimit(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	var req dto.SetDueLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.orders.SetDueLimit(groupID, req.Limit); err != nil {
		writeError(w, mapDomainError(err), "failed to set due limit", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Clear drops all of a group's entries.
func (h *GroupHandler) Clear(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	if err := h.orders.ClearGroup(groupID); err != nil {
		writeError(w, mapDomainError(err), "failed to clear group", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Orders lists entries across every group, filterable by status.
func (h *GroupHandler) Orders(w http.ResponseWriter, r *http.Request) {
	status := domain.EntryStatus(r.URL.Query().Get("status"))

	orders, err := h.orders.Orders(status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list orders", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, orders)
}
