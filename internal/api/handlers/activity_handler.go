package handlers

import (
	"net/http"
	"strconv"

	"github.com/isdelr/budget-manager-be/internal/models"
	"github.com/isdelr/budget-manager-be/internal/models/dto"
	"github.com/isdelr/budget-manager-be/internal/services"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// ActivityHandler handles HTTP requests for a user's activity log.
type ActivityHandler struct {
	service services.ActivityServiceProvider
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(service services.ActivityServiceProvider) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// GetRecent handles the request for the user's recent activity, newest first.
func (h *ActivityHandler) GetRecent(w http.ResponseWriter, r *http.Request, user models.User) {
	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxActivityLimit)
	}

	entries, err := h.service.GetRecentForUser(r.Context(), user.ID, limit)
	if err != nil {
		respondServiceError(w, r, err, "list activity")
		return
	}
	respondJSON(w, http.StatusOK, dto.NewActivityList(entries))
}
