package handler

import (
	"net/http"
)

// MaintenanceService defines the behavior needed by MaintenanceHandler.
type MaintenanceService interface {
	CleanTransactions() (int, error)
	ClearAllData() error
}

// MaintenanceHandler handles destructive data administration.
type MaintenanceHandler struct {
	admin MaintenanceService
}

// NewMaintenanceHandler creates a new MaintenanceHandler.
func NewMaintenanceHandler(admin MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{admin: admin}
}

// CleanTransactions drops malformed historical ledger rows.
func (h *MaintenanceHandler) CleanTransactions(w http.ResponseWriter, r *http.Request) {
	dropped, err := h.admin.CleanTransactions()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clean transactions", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dropped": dropped})
}

// ClearData wipes accounts, transactions, and group entries. Admins and
// settings survive.
func (h *MaintenanceHandler) ClearData(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.ClearAllData(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear data", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
