package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kharcha/kharcha/internal/apperr"
	"github.com/kharcha/kharcha/internal/auth"
	"github.com/kharcha/kharcha/internal/middleware"
)

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`

	// UPIAddress is optional at registration; it can be set later via
	// PATCH /api/users/me/upi.
	UPIAddress string `json:"upiAddress"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// Register creates a new account and returns a session token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, apperr.New(apperr.Validation, "a valid email is required"))
		return
	}
	if req.DisplayName == "" {
		writeError(w, apperr.New(apperr.Validation, "display name is required"))
		return
	}

	user, err := h.authenticator.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, apperr.Wrap(apperr.Validation, err, err.Error()))
		case errors.Is(err, auth.ErrEmailExists):
			writeError(w, apperr.Wrap(apperr.Conflict, err, err.Error()))
		default:
			slog.Error("registration failed", "email", req.Email, "error", err)
			writeError(w, apperr.Wrap(apperr.Internal, err, "registration failed"))
		}
		return
	}

	if req.UPIAddress != "" {
		user, err = h.ledger.SetUPIAddress(r.Context(), user.ID, req.UPIAddress)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		slog.Error("token generation failed", "user_id", user.ID, "error", err)
		writeError(w, apperr.Wrap(apperr.Internal, err, "failed to create session"))
		return
	}

	slog.Info("User registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: toUserResponse(user)})
}

// Login authenticates an existing account and returns a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.authenticator.Authenticate(r.Context(), email, req.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: auth.ErrInvalidCredentials.Error()})
		return
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		slog.Error("token generation failed", "user_id", user.ID, "error", err)
		writeError(w, apperr.Wrap(apperr.Internal, err, "failed to create session"))
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: toUserResponse(user)})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.ledger.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

type setUPIRequest struct {
	UPIAddress string `json:"upiAddress"`
}

// SetUPIAddress updates the caller's UPI payment address.
func (h *Handler) SetUPIAddress(w http.ResponseWriter, r *http.Request) {
	var req setUPIRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.ledger.SetUPIAddress(r.Context(), middleware.GetUserID(r.Context()), req.UPIAddress)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}
