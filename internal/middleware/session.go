// Package middleware provides HTTP middlewares for sessions, authentication and logging.
package middleware

import (
	"context"
	"net/http"

	"github.com/atinyakov/DayKeeper/internal/kv"
	"github.com/atinyakov/DayKeeper/internal/models"
	"github.com/atinyakov/DayKeeper/internal/repository"
	"github.com/atinyakov/DayKeeper/internal/session"
)

type ctxKey string

const (
	sessionKey  ctxKey = "session"
	identityKey ctxKey = "identity"
	sessionID   ctxKey = "session_id"
)

// CookieName is the cookie carrying the session id.
const CookieName = "daykeeper_session"

// WithSession attaches the caller's session store to the request context.
//
// The session id is read from the CookieName cookie. Requests without a cookie,
// or whose session has ended or expired, get a fresh session and a new cookie.
func WithSession(m *session.Manager, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				id    string
				store kv.Store
				ok    bool
			)
			if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
				id = c.Value
				store, ok = m.Get(id)
			}
			if !ok {
				id, store = m.New()
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := ContextWithSession(r.Context(), store)
			ctx = context.WithValue(ctx, sessionID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EndSession drops the caller's session with everything in its store and
// expires the session cookie.
func EndSession(w http.ResponseWriter, r *http.Request, m *session.Manager, secure bool) {
	if id := GetSessionIDFromContext(r.Context()); id != "" {
		m.End(id)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireIdentity rejects requests whose session has no logged-in user and
// stores the identity in the context for the handlers below it.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store := GetSessionFromContext(r.Context())
		if store == nil {
			http.Error(w, "not logged in", http.StatusUnauthorized)
			return
		}
		id, ok, err := repository.NewSessionRepository(store).Current(r.Context())
		if err != nil || !ok {
			http.Error(w, "not logged in", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), id)))
	})
}

// ContextWithSession returns a copy of ctx carrying store as the session store.
func ContextWithSession(ctx context.Context, store kv.Store) context.Context {
	return context.WithValue(ctx, sessionKey, store)
}

// ContextWithIdentity returns a copy of ctx carrying the logged-in identity.
func ContextWithIdentity(ctx context.Context, id models.SessionIdentity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetSessionFromContext returns the session store set by WithSession, or nil.
func GetSessionFromContext(ctx context.Context) kv.Store {
	if s, ok := ctx.Value(sessionKey).(kv.Store); ok {
		return s
	}
	return nil
}

// GetSessionIDFromContext returns the session id set by WithSession, or "".
func GetSessionIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(sessionID).(string); ok {
		return s
	}
	return ""
}

// GetIdentityFromContext returns the identity set by RequireIdentity.
func GetIdentityFromContext(ctx context.Context) (models.SessionIdentity, bool) {
	id, ok := ctx.Value(identityKey).(models.SessionIdentity)
	return id, ok
}
