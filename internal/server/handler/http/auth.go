// Package http provides the JSON HTTP API of the calendar: registration,
// login and logout on a cookie session, the event list and the month grid.
package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/atinyakov/DayKeeper/internal/middleware"
	"github.com/atinyakov/DayKeeper/internal/models"
	"github.com/atinyakov/DayKeeper/internal/repository"
	"github.com/atinyakov/DayKeeper/internal/service"
	"github.com/atinyakov/DayKeeper/internal/session"
)

// AuthService defines the authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Register creates an account and logs it in on sess.
	Register(ctx context.Context, sess service.SessionStore, email, password string) (models.SessionIdentity, error)
	// Login checks the credentials and logs the user in on sess.
	Login(ctx context.Context, sess service.SessionStore, email, password string) (models.SessionIdentity, error)
	// Logout clears the identity from sess.
	Logout(ctx context.Context, sess service.SessionStore) error
}

// AuthHandler handles HTTP requests for registration, login and logout.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	// Sessions, if set, is used to drop the cookie session on logout.
	Sessions *session.Manager
	// SecureCookie must match the flag the session cookie was issued with.
	SecureCookie bool
}

// CredentialsRequest represents the JSON payload of register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// IdentityResponse is returned by every endpoint that reports who is logged in.
type IdentityResponse struct {
	Email string `json:"email"`
}

// Register handles user registration requests.
// On success the new user is logged in on the caller's session and 201 is returned.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, h.AuthService.Register, http.StatusCreated)
}

// Login handles login requests. Unknown emails and wrong passwords both yield 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, h.AuthService.Login, http.StatusOK)
}

type authFunc func(ctx context.Context, sess service.SessionStore, email, password string) (models.SessionIdentity, error)

func (h *AuthHandler) authenticate(w http.ResponseWriter, r *http.Request, fn authFunc, status int) {
	sess, ok := sessionRepository(w, r)
	if !ok {
		return
	}

	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	id, err := fn(r.Context(), sess, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, IdentityResponse{Email: id.Email})
}

// Logout clears the session identity and ends the cookie session. It succeeds
// whether or not anyone was logged in.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionRepository(w, r)
	if !ok {
		return
	}
	if err := h.AuthService.Logout(r.Context(), sess); err != nil {
		writeError(w, err)
		return
	}
	if h.Sessions != nil {
		middleware.EndSession(w, r, h.Sessions, h.SecureCookie)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session reports the identity of the caller's session, or 401.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionRepository(w, r)
	if !ok {
		return
	}
	id, ok, err := sess.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, models.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, IdentityResponse{Email: id.Email})
}

func sessionRepository(w http.ResponseWriter, r *http.Request) (*repository.SessionRepository, bool) {
	store := middleware.GetSessionFromContext(r.Context())
	if store == nil {
		http.Error(w, "no session", http.StatusInternalServerError)
		return nil, false
	}
	return repository.NewSessionRepository(store), true
}
