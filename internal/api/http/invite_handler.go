package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"gamenight-backend/internal/domain"
	"gamenight-backend/internal/service"
)

type InviteHandler struct {
	invites service.InviteService
}

func NewInviteHandler(invites service.InviteService) *InviteHandler {
	return &InviteHandler{invites: invites}
}

type issueRequest struct {
	Invitees     []service.InviteeInput `json:"invitees"`
	GamemasterID int32                  `json:"gamemaster_id"`
}

type invitationPayload struct {
	ID           string `json:"id"`
	GameID       int32  `json:"game_id"`
	GamemasterID int32  `json:"gamemaster_id"`
	MemberID     int32  `json:"member_id,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	DisplayName  string `json:"display_name"`
	ExpiresOn    string `json:"expires_on"`
	Notified     bool   `json:"notified"`
	Accepted     bool   `json:"accepted"`
	AcceptedAt   string `json:"accepted_at,omitempty"`
}

type issueResponse struct {
	InviteRecords   []invitationPayload      `json:"invite_records"`
	ExternalInvites []invitationPayload      `json:"external_invites"`
	Skipped         []service.SkippedInvitee `json:"skipped"`
}

type acceptResponse struct {
	Message string `json:"message"`
	GameID  int32  `json:"game_id"`
}

func (h *InviteHandler) IssueInvitations(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathID(w, r, "gameID")
	if !ok {
		return
	}
	claims := CurrentUser(r.Context())

	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.invites.IssueInvitations(r.Context(), gameID, req.GamemasterID, claims.UserID, req.Invitees)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := issueResponse{
		InviteRecords:   toPayloads(result.Created),
		ExternalInvites: toPayloads(result.External),
		Skipped:         result.Skipped,
	}
	if resp.Skipped == nil {
		resp.Skipped = []service.SkippedInvitee{}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *InviteHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	inviteID := mux.Vars(r)["inviteID"]
	claims := CurrentUser(r.Context())

	result, err := h.invites.AcceptInvitation(r.Context(), inviteID, claims.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, acceptResponse{Message: result.Message, GameID: result.GameID})
}

func (h *InviteHandler) ListGameInvitations(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathID(w, r, "gameID")
	if !ok {
		return
	}
	claims := CurrentUser(r.Context())

	invites, err := h.invites.ListGameInvitations(r.Context(), gameID, claims.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	payloads := make([]invitationPayload, 0, len(invites))
	for i := range invites {
		payloads = append(payloads, toPayload(&invites[i]))
	}
	respondJSON(w, http.StatusOK, map[string]any{"invitations": payloads})
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int32, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return int32(id), true
}

func toPayloads(invites []*domain.Invitation) []invitationPayload {
	payloads := make([]invitationPayload, 0, len(invites))
	for _, inv := range invites {
		payloads = append(payloads, toPayload(inv))
	}
	return payloads
}

func toPayload(inv *domain.Invitation) invitationPayload {
	p := invitationPayload{
		ID:           inv.ID,
		GameID:       inv.GameID,
		GamemasterID: inv.GamemasterID,
		DisplayName:  inv.DisplayName,
		ExpiresOn:    inv.ExpiresOn.Format(time.RFC3339),
		Notified:     inv.Notified,
		Accepted:     inv.Accepted,
	}
	if memberID, ok := inv.Invitee.MemberID(); ok {
		p.MemberID = memberID
	} else {
		p.Email = inv.Invitee.Email()
		p.Phone = inv.Invitee.Phone()
	}
	if inv.AcceptedAt != nil {
		p.AcceptedAt = inv.AcceptedAt.Format(time.RFC3339)
	}
	return p
}
