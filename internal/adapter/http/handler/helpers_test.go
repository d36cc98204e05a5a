package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arefin/diamondledger/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrAccountNotFound, http.StatusNotFound},
		{domain.ErrGroupNotFound, http.StatusNotFound},
		{domain.ErrEntryNotFound, http.StatusNotFound},
		{domain.ErrDepositNotFound, http.StatusNotFound},
		{domain.ErrInvalidAmount, http.StatusBadRequest},
		{domain.ErrAmountTooLarge, http.StatusBadRequest},
		{domain.ErrInvalidDiamonds, http.StatusBadRequest},
		{domain.ErrEntryTerminal, http.StatusConflict},
		{domain.ErrStockDisabled, http.StatusUnprocessableEntity},
		{domain.ErrOutOfStock, http.StatusUnprocessableEntity},
		{domain.ErrUserBlocked, http.StatusUnprocessableEntity},
		{domain.ErrInvalidPIN, http.StatusUnauthorized},
		{domain.ErrInvalidToken, http.StatusUnauthorized},
		{domain.ErrLockTimeout, http.StatusServiceUnavailable},
		{fmt.Errorf("wrapped: %w", domain.ErrOutOfStock), http.StatusUnprocessableEntity},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := mapDomainError(tt.err); got != tt.want {
			t.Errorf("mapDomainError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=25&bad=abc", nil)

	if got := parseIntQuery(req, "limit", 10); got != 25 {
		t.Errorf("limit = %d, want 25", got)
	}
	if got := parseIntQuery(req, "bad", 10); got != 10 {
		t.Errorf("bad = %d, want default 10", got)
	}
	if got := parseIntQuery(req, "missing", 7); got != 7 {
		t.Errorf("missing = %d, want default 7", got)
	}
}
