package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/garnizeh/staffdir/internal/auth"
)

// Authenticator registers users and issues session tokens.
type Authenticator interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
}

type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(a Authenticator) *AuthHandler {
	return &AuthHandler{auth: a}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	err := h.auth.Register(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		writeJSON(w, messageResponse{Message: "User registered successfully"}, http.StatusCreated)
	case errors.Is(err, auth.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Missing fields")
	case errors.Is(err, auth.ErrPasswordTooLong):
		writeError(w, http.StatusBadRequest, "Password must be at most 72 bytes")
	case errors.Is(err, auth.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "Username already exists")
	default:
		logger.Error("signup failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Error creating user")
	}
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		writeJSON(w, authResponse{Token: token, Username: strings.TrimSpace(req.Username)}, http.StatusOK)
	case errors.Is(err, auth.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Missing fields")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	default:
		logger.Error("signin failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Error signing in")
	}
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	// For stateless JWT, signout is client-side (just delete token)
	writeJSON(w, messageResponse{Message: "signed out"}, http.StatusOK)
}
