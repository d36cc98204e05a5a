package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arefin/diamondledger/internal/adapter/http/dto"
	"github.com/arefin/diamondledger/internal/domain"
	"github.com/arefin/diamondledger/internal/infrastructure/auth"
)

type pinServiceStub struct {
	verifyFn func(pin string) error
	changeFn func(current, next string) error
}

func (s *pinServiceStub) VerifyPIN(pin string) error { return s.verifyFn(pin) }

func (s *pinServiceStub) ChangePIN(current, next string) error { return s.changeFn(current, next) }

func newTestJWT() *auth.JWTManager {
	return auth.NewJWTManager("test-secret", time.Hour)
}

func TestAuthHandler_Login(t *testing.T) {
	h := NewAuthHandler(&pinServiceStub{
		verifyFn: func(pin string) error {
			if pin != "1234" {
				return domain.ErrInvalidPIN
			}
			return nil
		},
	}, newTestJWT())

	body, _ := json.Marshal(dto.LoginRequest{PIN: "1234"})
	rec := httptest.NewRecorder()

	h.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a session token")
	}
	if _, err := newTestJWT().Verify(resp.Token); err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
}

func TestAuthHandler_Login_WrongPIN(t *testing.T) {
	h := NewAuthHandler(&pinServiceStub{
		verifyFn: func(pin string) error { return domain.ErrInvalidPIN },
	}, newTestJWT())

	body, _ := json.Marshal(dto.LoginRequest{PIN: "0000"})
	rec := httptest.NewRecorder()

	h.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_ChangePIN(t *testing.T) {
	var gotCurrent, gotNext string
	h := NewAuthHandler(&pinServiceStub{
		changeFn: func(current, next string) error {
			gotCurrent, gotNext = current, next
			return nil
		},
	}, newTestJWT())

	body, _ := json.Marshal(dto.ChangePINRequest{CurrentPIN: "1234", NewPIN: "98765"})
	rec := httptest.NewRecorder()

	h.ChangePIN(rec, httptest.NewRequest(http.MethodPost, "/auth/pin", bytes.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotCurrent != "1234" || gotNext != "98765" {
		t.Errorf("change called with %q/%q", gotCurrent, gotNext)
	}
}
