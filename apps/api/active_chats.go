package main

import (
	"log/slog"
	"net/http"

	"github.com/DairyFarmers/dfi-chat/pkg/auth"
	"github.com/DairyFarmers/dfi-chat/pkg/model"
	"github.com/DairyFarmers/dfi-chat/pkg/store"
)

// ActiveChatsHandler serves GET /chats/active_chats: one summary per
// counterpart, newest conversation first.
type ActiveChatsHandler struct {
	store store.Store
	log   *slog.Logger
}

func NewActiveChatsHandler(store store.Store, log *slog.Logger) *ActiveChatsHandler {
	return &ActiveChatsHandler{store: store, log: log}
}

func (h *ActiveChatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	summaries, err := h.store.ActiveChats(r.Context(), identity.UserID)
	if err != nil {
		h.log.Error("active chats failed", "user_id", identity.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list chats")
		return
	}

	if summaries == nil {
		summaries = []model.ChatSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}
