package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the API routes. Everything under /api/v1 requires an
// authenticated caller.
func NewRouter(auth *AuthMiddleware, invites *InviteHandler, notes *NotificationHandler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(auth.Handler)

	api.HandleFunc("/games/{gameID}/invite", invites.IssueInvitations).Methods(http.MethodPost)
	api.HandleFunc("/games/{gameID}/invites", invites.ListGameInvitations).Methods(http.MethodGet)
	api.HandleFunc("/invites/{inviteID}/accept", invites.AcceptInvitation).Methods(http.MethodPost)

	api.HandleFunc("/notifications", notes.List).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{noteID}/read", notes.MarkAsRead).Methods(http.MethodPost)

	return r
}
