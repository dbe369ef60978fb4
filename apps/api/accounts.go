package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/DairyFarmers/dfi-chat/pkg/auth"
	"github.com/DairyFarmers/dfi-chat/pkg/directory"
)

// AccountsHandler owns POST /register and POST /login: the account surface
// the chat credential is issued from.
type AccountsHandler struct {
	users    directory.Directory
	tokens   *auth.TokenService
	validate *validator.Validate
	log      *slog.Logger
}

func NewAccountsHandler(users directory.Directory, tokens *auth.TokenService, log *slog.Logger) *AccountsHandler {
	return &AccountsHandler{users: users, tokens: tokens, validate: validator.New(), log: log}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

func (h *AccountsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "name, email and password (min 6 chars) are required")
		return
	}

	user, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, directory.ErrUserExists) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		h.log.Error("register failed", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	h.issue(w, user.ID, user.Name)
}

func (h *AccountsHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, directory.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.log.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.issue(w, user.ID, user.Name)
}

func (h *AccountsHandler) issue(w http.ResponseWriter, userID, name string) {
	token, err := h.tokens.Issue(userID, name)
	if err != nil {
		h.log.Error("token issue failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	// Browser clients pick the credential up from the cookie; everything
	// else reads it from the body.
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, UserID: userID})
}
