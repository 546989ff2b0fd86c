// Package api exposes the account endpoints the websocket gateway
// depends on: registration and token issuance.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"chat-relay/auth"
	apperrors "chat-relay/errors"
	"chat-relay/services"
)

type AccountHandler struct {
	log      *slog.Logger
	accounts services.IAccountService
}

func NewAccountHandler(log *slog.Logger, accounts services.IAccountService) *AccountHandler {
	return &AccountHandler{log: log, accounts: accounts}
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Register serves POST /auth/register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.accounts.Register(r.Context(), req)
	switch {
	case errors.Is(err, apperrors.ErrInvalidPassword):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		http.Error(w, "email already registered", http.StatusConflict)
		return
	case err != nil:
		h.log.Error("Registration failed", "error", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	h.log.Info("Account registered", "email", req.Email)
	writeToken(w, http.StatusCreated, token)
}

// Login serves POST /auth/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.accounts.Login(r.Context(), req)
	if errors.Is(err, apperrors.ErrInvalidCredentials) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.log.Error("Login failed", "error", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	writeToken(w, http.StatusOK, token)
}

func writeToken(w http.ResponseWriter, status int, token services.Token) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(tokenResponse{Token: string(token)})
}
