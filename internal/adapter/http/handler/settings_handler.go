package handler

import (
	"encoding/json"
	"net/http"

	"github.com/arefin/diamondledger/internal/adapter/http/dto"
	"github.com/arefin/diamondledger/internal/domain"
)

// SettingsService defines the behavior needed by SettingsHandler.
type SettingsService interface {
	Status() (*domain.Settings, error)
	SetEnabled(enabled bool) (*domain.Settings, error)
	SetStock(stock int64) (*domain.Settings, error)
	SetOffNotice(notice string) (*domain.Settings, error)
}

// SettingsHandler handles the diamond-system switches.
type SettingsHandler struct {
	settings SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settings SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get returns the current stock state.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Status()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Toggle switches the diamond system on or off, optionally replacing the
// off notice.
func (h *SettingsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req dto.ToggleStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if !req.Enabled && req.Notice != "" {
		if _, err := h.settings.SetOffNotice(req.Notice); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to set notice", err.Error())
			return
		}
	}

	s, err := h.settings.SetEnabled(req.Enabled)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to toggle system", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s)
}

// SetStock replaces the stock counter.
func (h *SettingsHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	var req dto.SetStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	s, err := h.settings.SetStock(req.Stock)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to set stock", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s)
}
