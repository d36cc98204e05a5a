package handler

import (
	"net/http"

	"github.com/arefin/diamondledger/internal/usecase"
)

// StatsService defines the behavior needed by StatsHandler.
type StatsService interface {
	Overview() (usecase.Overview, error)
	Analytics() ([]usecase.GroupAnalytics, error)
}

// StatsHandler serves the panel's read-only aggregates.
type StatsHandler struct {
	stats StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(stats StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Overview returns the top-line totals.
func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.stats.Overview()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build overview", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

// Analytics returns the per-group breakdown.
func (h *StatsHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	rows, err := h.stats.Analytics()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build analytics", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
