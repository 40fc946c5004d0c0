package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"gamenight-backend/internal/logger"
	"gamenight-backend/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps service-level sentinel errors onto HTTP statuses.
// Anything unrecognized is a store or transport failure and stays opaque.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNoInvitees),
		errors.Is(err, service.ErrMissingContact),
		errors.Is(err, service.ErrInviteExpired):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotGamemaster),
		errors.Is(err, service.ErrInviteClaimed):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrGameNotFound),
		errors.Is(err, service.ErrInviteNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		logger.Error("Request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
