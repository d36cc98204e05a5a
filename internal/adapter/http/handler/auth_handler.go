package handler

import (
	"encoding/json"
	"net/http"

	"github.com/arefin/diamondledger/internal/adapter/http/dto"
	"github.com/arefin/diamondledger/internal/infrastructure/auth"
)

// PINService defines the behavior needed by AuthHandler.
type PINService interface {
	VerifyPIN(pin string) error
	ChangePIN(current, next string) error
}

// AuthHandler handles panel authentication: PIN login and PIN rotation.
type AuthHandler struct {
	admin      PINService
	jwtManager *auth.JWTManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(admin PINService, jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{admin: admin, jwtManager: jwtManager}
}

// Login exchanges the panel PIN for a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.admin.VerifyPIN(req.PIN); err != nil {
		writeError(w, mapDomainError(err), "login failed", err.Error())
		return
	}

	token, err := h.jwtManager.Generate()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{Token: token})
}

// ChangePIN rotates the panel PIN.
func (h *AuthHandler) ChangePIN(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.admin.ChangePIN(req.CurrentPIN, req.NewPIN); err != nil {
		writeError(w, mapDomainError(err), "failed to change PIN", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
