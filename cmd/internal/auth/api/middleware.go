package authapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"atrium/cmd/internal/auth/session"
)

type ctxKey int

const identityKey ctxKey = 0

// IdentityFromContext returns the Identity attached by RequireSession.
func IdentityFromContext(ctx context.Context) (session.Identity, bool) {
	id, ok := ctx.Value(identityKey).(session.Identity)
	return id, ok
}

// RequireSession gates next behind a valid session. On success the
// resolved Identity rides the request context; on any failure the
// request ends with 401 and next never runs. Invalid and expired
// tokens also clear the cookie.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := h.sessionTokenFromRequest(r)
		id, err := h.sessions.Resolve(r.Context(), time.Now().UTC(), tok)
		switch {
		case err == nil:
			h.metrics.observe("gate", "ok")
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
		case errors.Is(err, session.ErrNoToken):
			h.metrics.observe("gate", "no_token")
			writeError(w, http.StatusUnauthorized, "unauthenticated")
		case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrSessionExpired):
			h.metrics.observe("gate", "rejected")
			h.clearSessionCookie(w)
			writeError(w, http.StatusUnauthorized, "unauthenticated")
		default:
			h.metrics.observe("gate", "error")
			h.log.Error("auth.gate.fail", "error", err)
			writeError(w, http.StatusInternalServerError, "server_error")
		}
	})
}
