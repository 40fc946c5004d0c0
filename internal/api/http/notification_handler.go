package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"gamenight-backend/internal/domain"
	"gamenight-backend/internal/service"
)

type NotificationHandler struct {
	notes service.NotificationService
}

func NewNotificationHandler(notes service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notes: notes}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := CurrentUser(r.Context())

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)

	notes, total, err := h.notes.GetNotifications(r.Context(), claims.UserID, page, pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if notes == nil {
		notes = []domain.Notification{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"notifications": notes, "total": total})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	claims := CurrentUser(r.Context())

	noteID, err := strconv.ParseInt(mux.Vars(r)["noteID"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := h.notes.MarkAsRead(r.Context(), claims.UserID, int32(noteID)); err != nil {
		respondError(w, http.StatusNotFound, "notification not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "notification marked as read"})
}

func queryInt(r *http.Request, name string, fallback int32) int32 {
	val := r.URL.Query().Get(name)
	if val == "" {
		return fallback
	}
	n, err := strconv.ParseInt(val, 10, 32)
	if err != nil || n <= 0 {
		return fallback
	}
	return int32(n)
}
