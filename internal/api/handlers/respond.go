package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/budget-manager-be/internal/models/dto"
	"github.com/isdelr/budget-manager-be/internal/services"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

const msgInternal = "internal server error"

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, dto.ErrorResponse{Error: message})
}

// respondServiceError maps a service error to its HTTP status. Unexpected
// errors are logged with the request context and hidden from the client.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, services.ErrWrongCurrentPassword), errors.Is(err, services.ErrPasswordMismatch):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrNotAuthenticated):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrDuplicateUsername), errors.Is(err, services.ErrAlreadyExists):
		respondError(w, http.StatusConflict, err.Error())
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to " + action)
		respondError(w, http.StatusInternalServerError, msgInternal)
	}
}

// decodeJSON reads a JSON body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
