package http

import (
	"net/http"

	"github.com/atinyakov/DayKeeper/internal/middleware"
	"github.com/atinyakov/DayKeeper/internal/session"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig carries the dependencies of NewRouter.
type RouterConfig struct {
	Auth     *AuthHandler
	Events   *EventHandler
	Calendar *CalendarHandler
	Sessions *session.Manager
	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
	Logger       *zap.Logger
}

// NewRouter constructs and returns an HTTP handler that serves
// the calendar API.
//
// Routes:
//
//	POST /api/register    → Auth.Register
//	POST /api/login       → Auth.Login
//	POST /api/logout      → Auth.Logout
//	GET  /api/session     → Auth.Session
//	GET  /api/events      → Events.List      (requires login)
//	POST /api/events      → Events.Add       (requires login)
//	GET  /api/events.ics  → Events.Export    (requires login)
//	GET  /api/calendar    → Calendar.Month   (requires login)
//
// Middleware chain (applied in order):
//  1. AllowContentType("application/json") rejects non-JSON request bodies
//  2. WithRequestLogging(logger) logs incoming requests
//  3. WithSession attaches the cookie session store
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(cfg.Logger))
	r.Use(middleware.WithSession(cfg.Sessions, cfg.SecureCookie))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", cfg.Auth.Register)
		r.Post("/login", cfg.Auth.Login)
		r.Post("/logout", cfg.Auth.Logout)
		r.Get("/session", cfg.Auth.Session)

		// Protected group: requires a logged-in session
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireIdentity)
			r.Get("/events", cfg.Events.List)
			r.Post("/events", cfg.Events.Add)
			r.Get("/events.ics", cfg.Events.Export)
			r.Get("/calendar", cfg.Calendar.Month)
		})
	})

	return r
}
