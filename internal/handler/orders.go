package handler

import (
	"net/http"
	"strconv"

	"github.com/oakmart/checkout/internal/notify"
)

// recentOrders reads the local recovery mirror: the orders this user placed
// through this server, most recent first. It is a resilience/history view,
// never a source of truth; the order collaborator owns the real history.
func (h *Handler) recentOrders(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := h.mirror.Recent(r.Context(), userID(r), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "read recent orders")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// drainNotifications hands the pending debounced notifications to the client
// and clears them.
func (h *Handler) drainNotifications(w http.ResponseWriter, r *http.Request) {
	notices := h.notices.Drain(userID(r))
	if notices == nil {
		notices = []notify.Notice{}
	}
	respondJSON(w, http.StatusOK, notices)
}
