package main

import (
	"log/slog"
	"net/http"

	"github.com/DairyFarmers/dfi-chat/pkg/auth"
	"github.com/DairyFarmers/dfi-chat/pkg/model"
	"github.com/DairyFarmers/dfi-chat/pkg/store"
)

// HistoryHandler serves GET /chats/{counterpart_id}/history. Fetching
// history is the read action: every unread message from the counterpart is
// marked read as part of the call.
type HistoryHandler struct {
	store store.Store
	log   *slog.Logger
}

func NewHistoryHandler(store store.Store, log *slog.Logger) *HistoryHandler {
	return &HistoryHandler{store: store, log: log}
}

func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	counterpartID := r.PathValue("counterpart_id")
	if counterpartID == "" {
		writeError(w, http.StatusBadRequest, "counterpart_id is required")
		return
	}

	messages, err := h.store.History(r.Context(), identity.UserID, counterpartID)
	if err != nil {
		h.log.Error("history failed", "user_id", identity.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to retrieve history")
		return
	}

	if messages == nil {
		messages = []model.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}
