package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/isdelr/budget-manager-be/internal/models"
	"github.com/isdelr/budget-manager-be/internal/models/dto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// UserResolver loads the account a verified token refers to.
type UserResolver interface {
	GetByUsername(ctx context.Context, username string) (models.User, error)
}

// HandlerFunc is a protected handler. The authenticated user is passed in
// explicitly; nothing downstream looks it up again.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, user models.User)

// Authenticator guards protected routes with bearer tokens.
type Authenticator struct {
	tokens *TokenManager
	users  UserResolver
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(tokens *TokenManager, users UserResolver) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Require adapts a protected handler into an http.HandlerFunc. Requests
// without a valid token are answered with 401 before next runs.
func (a *Authenticator) Require(next HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := BearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing auth token")
			return
		}

		username, err := a.tokens.Verify(tokenStr)
		if err != nil {
			msg := ErrInvalidToken.Error()
			if errors.Is(err, ErrExpiredToken) {
				msg = ErrExpiredToken.Error()
			}
			log.Debug().Err(err).Msg("Rejected bearer token")
			writeError(w, http.StatusUnauthorized, msg)
			return
		}

		user, err := a.users.GetByUsername(r.Context(), username)
		if err != nil {
			// A valid token for a missing account means the store changed underneath us.
			log.Error().Err(err).Str("username", username).Msg("Token subject could not be resolved")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		log.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("username", user.Username)
		})
		next(w, r, user)
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(dto.ErrorResponse{Error: message}); err != nil {
		log.Error().Err(err).Msg("Failed to encode auth error")
	}
}
