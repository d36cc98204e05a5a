package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/adapter/http/dto"
	"github.com/arefin/diamondledger/internal/domain"
	"github.com/arefin/diamondledger/internal/usecase"
)

type ledgerServiceStub struct {
	accountFn         func(userID string) (*domain.Account, error)
	setBalanceFn      func(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error)
	adjustBalanceFn   func(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error)
	applyDeductionFn  func(ctx context.Context, userID, userName string) (usecase.AutoDeductionResult, error)
	setDueOverrideFn  func(ctx context.Context, userID string, amount *decimal.Decimal) error
	allGroupsDueFn    func(userID string) (usecase.DueSummary, error)
	recordFn          func(userID, userName, groupID string, amount decimal.Decimal, txType domain.TransactionType) (*domain.Transaction, error)
	transactionsFn    func(f domain.TransactionFilter) ([]*domain.Transaction, error)
	lastDeductionFn   func(userID, groupID string) (usecase.LastDeduction, error)
	clearDeductionsFn func(ctx context.Context, userID, groupID string) (int, error)
}

func (s *ledgerServiceStub) Account(userID string) (*domain.Account, error) {
	return s.accountFn(userID)
}

func (s *ledgerServiceStub) SetBalance(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.setBalanceFn(ctx, userID, amount)
}

func (s *ledgerServiceStub) AdjustBalance(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	return s.adjustBalanceFn(ctx, userID, delta)
}

func (s *ledgerServiceStub) ApplyAutoDeduction(ctx context.Context, userID, userName string) (usecase.AutoDeductionResult, error) {
	return s.applyDeductionFn(ctx, userID, userName)
}

func (s *ledgerServiceStub) SetDueOverride(ctx context.Context, userID string, amount *decimal.Decimal) error {
	return s.setDueOverrideFn(ctx, userID, amount)
}

func (s *ledgerServiceStub) AllGroupsRemainingDue(userID string) (usecase.DueSummary, error) {
	return s.allGroupsDueFn(userID)
}

func (s *ledgerServiceStub) RecordTransaction(userID, userName, groupID string, amount decimal.Decimal, txType domain.TransactionType) (*domain.Transaction, error) {
	return s.recordFn(userID, userName, groupID, amount, txType)
}

func (s *ledgerServiceStub) Transactions(f domain.TransactionFilter) ([]*domain.Transaction, error) {
	return s.transactionsFn(f)
}

func (s *ledgerServiceStub) LastAutoDeduction(userID, groupID string) (usecase.LastDeduction, error) {
	return s.lastDeductionFn(userID, groupID)
}

func (s *ledgerServiceStub) ClearAutoDeductions(ctx context.Context, userID, groupID string) (int, error) {
	return s.clearDeductionsFn(ctx, userID, groupID)
}

type userAdminServiceStub struct {
	usersFn      func() ([]*domain.Account, error)
	setBlockedFn func(ctx context.Context, userID string, blocked bool) (bool, error)
}

func (s *userAdminServiceStub) Users() ([]*domain.Account, error) { return s.usersFn() }

func (s *userAdminServiceStub) SetBlocked(ctx context.Context, userID string, blocked bool) (bool, error) {
	return s.setBlockedFn(ctx, userID, blocked)
}

func TestUserHandler_Get(t *testing.T) {
	ledger := &ledgerServiceStub{
		accountFn: func(userID string) (*domain.Account, error) {
			if userID != "u1" {
				t.Fatalf("expected id u1, got %s", userID)
			}
			return &domain.Account{UserID: "u1", Balance: decimal.NewFromInt(700)}, nil
		},
		allGroupsDueFn: func(userID string) (usecase.DueSummary, error) {
			return usecase.DueSummary{Total: decimal.NewFromInt(300)}, nil
		},
	}
	h := NewUserHandler(ledger, &userAdminServiceStub{})

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/users/u1", nil), "id", "u1")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.UserDetailResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.TotalDue.Equal(decimal.NewFromInt(300)) {
		t.Errorf("total due = %s, want 300", resp.TotalDue)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	h := NewUserHandler(&ledgerServiceStub{
		accountFn: func(userID string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	}, &userAdminServiceStub{})

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/users/ghost", nil), "id", "ghost")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUserHandler_Credit(t *testing.T) {
	var credited decimal.Decimal
	ledger := &ledgerServiceStub{
		adjustBalanceFn: func(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
			credited = delta
			return delta, nil
		},
		applyDeductionFn: func(ctx context.Context, userID, userName string) (usecase.AutoDeductionResult, error) {
			return usecase.AutoDeductionResult{
				Deducted:   decimal.NewFromInt(200),
				NewBalance: decimal.NewFromInt(300),
			}, nil
		},
	}
	h := NewUserHandler(ledger, &userAdminServiceStub{})

	body, _ := json.Marshal(dto.CreditRequest{Amount: decimal.NewFromInt(500)})
	req := setChiURLParam(httptest.NewRequest(http.MethodPost, "/users/u1/credit", bytes.NewReader(body)), "id", "u1")
	rec := httptest.NewRecorder()

	h.Credit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !credited.Equal(decimal.NewFromInt(500)) {
		t.Errorf("credited = %s, want 500", credited)
	}

	var result usecase.AutoDeductionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.Deducted.Equal(decimal.NewFromInt(200)) {
		t.Errorf("deducted = %s, want 200", result.Deducted)
	}
}

func TestUserHandler_Credit_RejectsNonPositive(t *testing.T) {
	h := NewUserHandler(&ledgerServiceStub{
		adjustBalanceFn: func(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
			t.Fatal("AdjustBalance should not be called for a non-positive amount")
			return decimal.Zero, nil
		},
	}, &userAdminServiceStub{})

	body, _ := json.Marshal(dto.CreditRequest{Amount: decimal.NewFromInt(-5)})
	req := setChiURLParam(httptest.NewRequest(http.MethodPost, "/users/u1/credit", bytes.NewReader(body)), "id", "u1")
	rec := httptest.NewRecorder()

	h.Credit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUserHandler_Credit_LockTimeout(t *testing.T) {
	h := NewUserHandler(&ledgerServiceStub{
		adjustBalanceFn: func(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
			return decimal.Zero, domain.ErrLockTimeout
		},
	}, &userAdminServiceStub{})

	body, _ := json.Marshal(dto.CreditRequest{Amount: decimal.NewFromInt(100)})
	req := setChiURLParam(httptest.NewRequest(http.MethodPost, "/users/u1/credit", bytes.NewReader(body)), "id", "u1")
	rec := httptest.NewRecorder()

	h.Credit(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestUserHandler_Transactions_Filter(t *testing.T) {
	var captured domain.TransactionFilter
	h := NewUserHandler(&ledgerServiceStub{
		transactionsFn: func(f domain.TransactionFilter) ([]*domain.Transaction, error) {
			captured = f
			return []*domain.Transaction{{ID: 1, UserID: "u1", Status: domain.TransactionApproved}}, nil
		},
	}, &userAdminServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/transactions?user=u1&group=g1&type=auto&limit=5", nil)
	rec := httptest.NewRecorder()

	h.Transactions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.UserID != "u1" || captured.GroupID != "g1" || captured.Type != domain.TransactionAuto || captured.Limit != 5 {
		t.Errorf("filter = %+v, want u1/g1/auto/5", captured)
	}
}

func TestUserHandler_LastAutoDeduction_RequiresParams(t *testing.T) {
	h := NewUserHandler(&ledgerServiceStub{}, &userAdminServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/auto-deductions/last?user=u1", nil)
	rec := httptest.NewRecorder()

	h.LastAutoDeduction(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUserHandler_RecordDeduction(t *testing.T) {
	h := NewUserHandler(&ledgerServiceStub{
		recordFn: func(userID, userName, groupID string, amount decimal.Decimal, txType domain.TransactionType) (*domain.Transaction, error) {
			if txType != domain.TransactionAuto {
				t.Fatalf("expected auto type, got %s", txType)
			}
			return &domain.Transaction{ID: 9, UserID: userID, GroupID: groupID, Amount: amount, Type: txType, Status: domain.TransactionApproved}, nil
		},
	}, &userAdminServiceStub{})

	body, _ := json.Marshal(dto.RecordDeductionRequest{
		UserID:  "u1",
		GroupID: "g1",
		Amount:  decimal.NewFromInt(150),
	})
	req := httptest.NewRequest(http.MethodPost, "/auto-deductions", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.RecordDeduction(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUserHandler_SetBlocked(t *testing.T) {
	var gotBlocked bool
	h := NewUserHandler(&ledgerServiceStub{}, &userAdminServiceStub{
		setBlockedFn: func(ctx context.Context, userID string, blocked bool) (bool, error) {
			gotBlocked = blocked
			return blocked, nil
		},
	})

	body, _ := json.Marshal(dto.SetBlockedRequest{Blocked: true})
	req := setChiURLParam(httptest.NewRequest(http.MethodPost, "/users/u1/toggle-block", bytes.NewReader(body)), "id", "u1")
	rec := httptest.NewRecorder()

	h.SetBlocked(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !gotBlocked {
		t.Error("expected blocked=true to reach the service")
	}
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}
