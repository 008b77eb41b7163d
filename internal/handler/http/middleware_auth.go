package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-outbox-sync/internal/app"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/service"
	"github.com/MKhiriev/go-outbox-sync/internal/utils"
)

// auth is an HTTP middleware that enforces JWT-based authentication.
//
// It extracts the bearer token from the "Authorization" header, validates it
// via [service.AuthService.ParseToken] and stores the token subject in the
// request context with [utils.WithIdentity]. Every synced row is owned by
// that identity.
//
// Requests without a usable token are rejected with 401 Unauthorized.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			unauthorized(w, app.MsgMissingAuthorization)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Err(ErrInvalidAuthorizationHeader).Send()
			unauthorized(w, app.MsgMissingAuthorization)
			return
		}

		ctx := r.Context()
		token, err := h.services.AuthService.ParseToken(ctx, tokenString)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenIsExpired):
				log.Err(err).Msg("token expired")
				unauthorized(w, app.MsgTokenIsExpired)
			default:
				log.Err(err).Msg("error occurred during parsing token")
				unauthorized(w, app.MsgTokenIsExpiredOrInvalid)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(utils.WithIdentity(ctx, token.Identity)))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	_, _ = utils.WriteJSON(w, errorResponse{Error: msg}, http.StatusUnauthorized)
}
