package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/adapter/http/dto"
	"github.com/arefin/diamondledger/internal/domain"
	"github.com/arefin/diamondledger/internal/usecase"
)

type depositServiceStub struct {
	pendingFn func() []*domain.DepositRequest
	approveFn func(ctx context.Context, depositID string) (*usecase.DepositResult, error)
	rejectFn  func(depositID string) (*domain.DepositRequest, error)
	statsFn   func() domain.DepositStats
}

func (s *depositServiceStub) Pending() []*domain.DepositRequest { return s.pendingFn() }

func (s *depositServiceStub) Approve(ctx context.Context, depositID string) (*usecase.DepositResult, error) {
	return s.approveFn(ctx, depositID)
}

func (s *depositServiceStub) Reject(depositID string) (*domain.DepositRequest, error) {
	return s.rejectFn(depositID)
}

func (s *depositServiceStub) Stats() domain.DepositStats { return s.statsFn() }

func TestDepositHandler_Pending(t *testing.T) {
	h := NewDepositHandler(&depositServiceStub{
		pendingFn: func() []*domain.DepositRequest {
			return []*domain.DepositRequest{
				{ID: "dep-1", UserID: "u1", Amount: decimal.NewFromInt(500), Status: domain.DepositPending},
			}
		},
	})

	rec := httptest.NewRecorder()
	h.Pending(rec, httptest.NewRequest(http.MethodGet, "/deposits/pending", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []*dto.DepositResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != "dep-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestDepositHandler_Approve(t *testing.T) {
	h := NewDepositHandler(&depositServiceStub{
		approveFn: func(ctx context.Context, depositID string) (*usecase.DepositResult, error) {
			if depositID != "dep-1" {
				t.Fatalf("expected dep-1, got %s", depositID)
			}
			return &usecase.DepositResult{
				Deposit:      &domain.DepositRequest{ID: "dep-1", Status: domain.DepositCompleted},
				AutoDeducted: decimal.NewFromInt(200),
				NewBalance:   decimal.NewFromInt(300),
			}, nil
		},
	})

	req := setChiURLParam(httptest.NewRequest(http.MethodPost, "/deposits/dep-1/approve", nil), "id", "dep-1")
	rec := httptest.NewRecorder()

	h.Approve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDepositHandler_Approve_NotFound(t *testing.T) {
	h := NewDepositHandler(&depositServiceStub{
		approveFn: func(ctx context.Context, depositID string) (*usecase.DepositResult, error) {
			return nil, domain.ErrDepositNotFound
		},
	})

	req := setChiURLParam(httptest.NewRequest(http.MethodPost, "/deposits/ghost/approve", nil), "id", "ghost")
	rec := httptest.NewRecorder()

	h.Approve(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDepositHandler_Reject(t *testing.T) {
	h := NewDepositHandler(&depositServiceStub{
		rejectFn: func(depositID string) (*domain.DepositRequest, error) {
			return &domain.DepositRequest{ID: depositID, Status: domain.DepositRejected}, nil
		},
	})

	req := setChiURLParam(httptest.NewRequest(http.MethodPost, "/deposits/dep-2/reject", nil), "id", "dep-2")
	rec := httptest.NewRecorder()

	h.Reject(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.DepositResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != string(domain.DepositRejected) {
		t.Errorf("status = %s, want rejected", resp.Status)
	}
}
