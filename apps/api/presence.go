package main

import (
	"log/slog"
	"net/http"

	"github.com/DairyFarmers/dfi-chat/pkg/auth"
	"github.com/DairyFarmers/dfi-chat/pkg/presence"
)

// PresenceHandler serves GET /chats/{counterpart_id}/presence: whether the
// counterpart currently holds at least one live chat session.
type PresenceHandler struct {
	tracker presence.Tracker
	log     *slog.Logger
}

func NewPresenceHandler(tracker presence.Tracker, log *slog.Logger) *PresenceHandler {
	return &PresenceHandler{tracker: tracker, log: log}
}

func (h *PresenceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.IdentityFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	counterpartID := r.PathValue("counterpart_id")
	if counterpartID == "" {
		writeError(w, http.StatusBadRequest, "counterpart_id is required")
		return
	}

	online, err := h.tracker.IsOnline(r.Context(), counterpartID)
	if err != nil {
		h.log.Error("presence lookup failed", "counterpart_id", counterpartID, "error", err)
		writeError(w, http.StatusInternalServerError, "presence lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"online": online})
}
