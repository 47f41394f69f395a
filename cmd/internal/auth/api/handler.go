package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"atrium/cmd/identity"
	"atrium/cmd/internal/auth/session"
)

// Handler wires HTTP auth endpoints to the session service.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	sessions *session.Service
	metrics  *Metrics
}

// NewHandler constructs an auth Handler. metrics may be nil when
// metric collection is disabled.
func NewHandler(log *slog.Logger, cfg Config, sessions *session.Service, metrics *Metrics) (*Handler, error) {
	if sessions == nil {
		return nil, errors.New("authapi: nil session service")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, cfg: cfg, sessions: sessions, metrics: metrics}, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/api/auth/signup", h.handleSignUp)
	mux.HandleFunc("/api/auth/signin", h.handleSignIn)
	mux.HandleFunc("/api/auth/signout", h.handleSignOut)
	mux.HandleFunc("/api/auth/me", h.handleMe)
}

// ---- handlers ----

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	var req signupRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		h.metrics.observe("signup", "bad_request")
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	user, issued, err := h.sessions.SignUp(r.Context(), time.Now().UTC(), session.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		h.writeSignUpError(w, err)
		return
	}

	h.metrics.observe("signup", "ok")
	h.setSessionCookie(w, issued.Token, issued.ExpiresAt)
	writeJSON(w, http.StatusOK, userResponseFrom(user))
}

func (h *Handler) writeSignUpError(w http.ResponseWriter, err error) {
	var verr identity.ValidationError
	switch {
	case errors.As(err, &verr):
		h.metrics.observe("signup", "validation_failed")
		details := make([]fieldDetail, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			details = append(details, fieldDetail{Path: f.Path, Message: f.Message})
		}
		writeValidationError(w, details)
	case identity.IsConflict(err):
		h.metrics.observe("signup", "conflict")
		writeError(w, http.StatusConflict, "email_taken")
	default:
		h.metrics.observe("signup", "error")
		h.log.Error("auth.signup.fail", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	var req signinRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		h.metrics.observe("signin", "bad_request")
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	user, issued, err := h.sessions.SignIn(r.Context(), time.Now().UTC(), session.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			h.metrics.observe("signin", "rejected")
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		h.metrics.observe("signin", "error")
		h.log.Error("auth.signin.fail", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	h.metrics.observe("signin", "ok")
	h.setSessionCookie(w, issued.Token, issued.ExpiresAt)
	writeJSON(w, http.StatusOK, userResponseFrom(user))
}

// handleSignOut revokes whatever token the request carries and always
// clears the cookie. It is deliberately ungated: a client holding a
// stale token must still be able to sign out.
func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	if err := h.sessions.SignOut(r.Context(), h.sessionTokenFromRequest(r)); err != nil {
		h.metrics.observe("signout", "error")
		h.log.Error("auth.signout.fail", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	h.metrics.observe("signout", "ok")
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, ackResponse{OK: true})
}

// handleMe is a soft probe: it reports the authenticated user or
// {user:null} without ever failing the request, so the web client can
// render either state from a 200.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	tok := h.sessionTokenFromRequest(r)
	id, err := h.sessions.Resolve(r.Context(), time.Now().UTC(), tok)
	switch {
	case err == nil:
		h.metrics.observe("me", "ok")
		u := userResponseFromIdentity(id)
		writeJSON(w, http.StatusOK, meResponse{User: &u})
	case errors.Is(err, session.ErrNoToken):
		h.metrics.observe("me", "anonymous")
		writeJSON(w, http.StatusOK, meResponse{})
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrSessionExpired):
		// Dead cookie: tell the browser to drop it.
		h.metrics.observe("me", "stale")
		h.clearSessionCookie(w)
		writeJSON(w, http.StatusOK, meResponse{})
	default:
		h.metrics.observe("me", "error")
		h.log.Error("auth.me.fail", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}
