package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/DayKeeper/internal/ics"
	"github.com/atinyakov/DayKeeper/internal/middleware"
	"github.com/atinyakov/DayKeeper/internal/models"
)

// EventService defines the event operations required by the HTTP handlers.
type EventService interface {
	LoadEvents(ctx context.Context, id models.SessionIdentity) ([]models.CalendarEvent, error)
	// AppendEvent adds one event to the saved list and returns the updated list.
	AppendEvent(ctx context.Context, id models.SessionIdentity, date, title string) ([]models.CalendarEvent, error)
}

// EventHandler serves the event list of the logged-in user.
type EventHandler struct {
	EventService EventService
	// Now returns the current time; time.Now if nil.
	Now func() time.Time
	// Log receives warnings about stored events that cannot be exported; may be nil.
	Log *zap.Logger
}

// AddEventRequest represents the JSON payload for adding an event.
type AddEventRequest struct {
	Date  string `json:"date"`
	Title string `json:"title"`
}

// List returns the saved events in insertion order.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	events, ok := loadEvents(w, r, h.EventService, id)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// Add appends one event and returns the updated list with 201.
func (h *EventHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req AddEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	updated, err := h.EventService.AppendEvent(r.Context(), id, req.Date, req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, updated)
}

// Export returns the event list as an iCalendar attachment.
func (h *EventHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	events, ok := loadEvents(w, r, h.EventService, id)
	if !ok {
		return
	}

	body, skipped := ics.Export(id, events, now(h.Now))
	if len(skipped) > 0 && h.Log != nil {
		h.Log.Warn("skipped events with malformed dates in export",
			zap.String("email", id.Email), zap.Int("skipped", len(skipped)))
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="daykeeper.ics"`)
	_, _ = w.Write([]byte(body))
}

func identity(w http.ResponseWriter, r *http.Request) (models.SessionIdentity, bool) {
	id, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, models.ErrUnauthenticated)
	}
	return id, ok
}

// loadEvents reads the event list of id. A corrupt list has already been reset
// to empty by the service and is served as such; an unreachable store is a 500.
func loadEvents(w http.ResponseWriter, r *http.Request, svc EventService, id models.SessionIdentity) ([]models.CalendarEvent, bool) {
	events, err := svc.LoadEvents(r.Context(), id)
	if err != nil && !errors.Is(err, models.ErrCorruptData) {
		writeError(w, err)
		return nil, false
	}
	if events == nil {
		events = []models.CalendarEvent{}
	}
	return events, true
}

func now(fn func() time.Time) time.Time {
	if fn == nil {
		return time.Now()
	}
	return fn()
}
