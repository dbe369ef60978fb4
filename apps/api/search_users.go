package main

import (
	"log/slog"
	"net/http"

	"github.com/DairyFarmers/dfi-chat/pkg/auth"
	"github.com/DairyFarmers/dfi-chat/pkg/directory"
	"github.com/DairyFarmers/dfi-chat/pkg/model"
)

// SearchUsersHandler serves GET /chats/search_users?q=. The caller is
// always excluded from results; queries under two characters return an
// empty list rather than an error.
type SearchUsersHandler struct {
	users directory.Directory
	log   *slog.Logger
}

func NewSearchUsersHandler(users directory.Directory, log *slog.Logger) *SearchUsersHandler {
	return &SearchUsersHandler{users: users, log: log}
}

func (h *SearchUsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	query := r.URL.Query().Get("q")
	found, err := h.users.SearchUsers(r.Context(), query, identity.UserID)
	if err != nil {
		h.log.Error("search failed", "user_id", identity.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	if found == nil {
		found = []model.User{}
	}
	writeJSON(w, http.StatusOK, found)
}
